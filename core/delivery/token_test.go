package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTokenServer dựng httptest server đóng vai token endpoint, đếm số exchange
func newTokenServer(t *testing.T, token string, expiresIn int, calls *int64) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
		assert.Equal(t, "test-client", r.FormValue("client_id"))
		assert.Equal(t, "test-secret", r.FormValue("client_secret"))
		assert.Equal(t, "messaging", r.FormValue("scope"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   expiresIn,
		})
	}))
}

func testTokenConfig(url string) TokenConfig {
	return TokenConfig{
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		Scope:        "messaging",
		TokenURL:     url,
	}
}

func TestGetTokenCachesWithinLifetime(t *testing.T) {
	var calls int64
	srv := newTokenServer(t, "tok-1", 3600, &calls)
	defer srv.Close()

	p := NewTokenProvider(testTokenConfig(srv.URL))

	first, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", first)

	second, err := p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "token còn hiệu lực không được exchange lại")
}

func TestGetTokenAppliesExpiryBuffer(t *testing.T) {
	var calls int64
	srv := newTokenServer(t, "tok-1", 3600, &calls)
	defer srv.Close()

	base := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	current := base
	var mu sync.Mutex
	p := NewTokenProvider(testTokenConfig(srv.URL))
	p.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	_, err := p.GetToken(context.Background())
	require.NoError(t, err)

	// 3600s lifetime với buffer 300s → hết hạn hiệu dụng tại +3300s
	mu.Lock()
	current = base.Add(3299 * time.Second)
	mu.Unlock()
	_, err = p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	mu.Lock()
	current = base.Add(3300 * time.Second)
	mu.Unlock()
	_, err = p.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls), "qua thời điểm buffer phải refresh")
}

func TestGetTokenConcurrentCallersSingleExchange(t *testing.T) {
	var calls int64
	// Chậm lại một chút để các goroutine dồn vào cùng một refresh window
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(50 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-shared",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	p := NewTokenProvider(testTokenConfig(srv.URL))

	const workers = 10
	var wg sync.WaitGroup
	results := make([]string, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = p.GetToken(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "tok-shared", results[i])
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls), "các caller đồng thời phải gom về một exchange")
}

func TestGetTokenExchangeFailureReturnsCredentialError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer srv.Close()

	p := NewTokenProvider(testTokenConfig(srv.URL))

	_, err := p.GetToken(context.Background())
	require.Error(t, err)
	assert.Equal(t, common.ErrCodeCredential.Code, common.CodeOf(err))
	assert.Contains(t, err.Error(), "invalid_client")

	// Cache không bị đụng - lần gọi sau thử lại từ đầu
	assert.False(t, p.token.Valid(time.Now()))
}

func TestGetTokenMissingAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"token_type": "Bearer", "expires_in": 3600})
	}))
	defer srv.Close()

	p := NewTokenProvider(testTokenConfig(srv.URL))

	_, err := p.GetToken(context.Background())
	require.Error(t, err)
	assert.Equal(t, common.ErrCodeCredential.Code, common.CodeOf(err))
}

func TestGetTokenNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Đóng ngay để mô phỏng endpoint không reachable

	p := NewTokenProvider(testTokenConfig(srv.URL))

	_, err := p.GetToken(context.Background())
	require.Error(t, err)
	assert.Equal(t, common.ErrCodeCredential.Code, common.CodeOf(err))
}
