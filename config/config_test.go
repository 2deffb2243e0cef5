package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CLIENT_ID", "test-client")
	t.Setenv("CLIENT_SECRET", "test-secret")
	t.Setenv("TOKEN_URL", "https://auth.example.com/oauth/token")
	t.Setenv("SMS_SEND_URL", "https://api.example.com/messages")
	t.Setenv("SMS_FROM_NUMBER", "+15550001111")
}

func TestNewConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, ":3000", cfg.Address)
	assert.Equal(t, "./data", cfg.DataPath)
	assert.Equal(t, "2.0", cfg.Version)
	assert.Equal(t, "messaging", cfg.OAuthScope)
	assert.False(t, cfg.WebhookCreateStrict)
	assert.False(t, cfg.RateLimit_Enabled)
	assert.False(t, cfg.EnableTLS)
	assert.Equal(t, "*", cfg.CORS_Origins)
}

func TestNewConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ADDRESS", ":8080")
	t.Setenv("APP_VERSION", "3.1")
	t.Setenv("WEBHOOK_CREATE_STRICT", "true")
	t.Setenv("OAUTH_SCOPE", "sms.write")

	cfg := NewConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, "3.1", cfg.Version)
	assert.True(t, cfg.WebhookCreateStrict)
	assert.Equal(t, "sms.write", cfg.OAuthScope)
}

func TestNewConfigMissingRequired(t *testing.T) {
	// Chỉ set một phần các biến bắt buộc
	t.Setenv("CLIENT_ID", "test-client")
	t.Setenv("CLIENT_SECRET", "")
	t.Setenv("TOKEN_URL", "")
	t.Setenv("SMS_SEND_URL", "")
	t.Setenv("SMS_FROM_NUMBER", "")

	cfg := NewConfig()
	assert.Nil(t, cfg)
}
