package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/api/models"
	"github.com/eojodrabmol/goto-sms-webhook/core/common"
	"github.com/eojodrabmol/goto-sms-webhook/core/logger"

	"golang.org/x/sync/singleflight"
)

// expiryBuffer trừ sớm vào lifetime do issuer khai báo để che độ trễ renewal
// khỏi callers - token được coi là hết hạn 300s trước thời điểm thật
const expiryBuffer = 300 * time.Second

// TokenConfig chứa thông tin OAuth client-credentials
type TokenConfig struct {
	ClientID     string
	ClientSecret string
	Scope        string
	TokenURL     string
}

// TokenProvider sở hữu access token được cache và expiry của nó
// Đây là chủ sở hữu DUY NHẤT của token trong process - các component khác
// chỉ gọi GetToken, không tự giữ token
type TokenProvider struct {
	cfg    TokenConfig
	client *http.Client
	now    func() time.Time

	mu    sync.RWMutex
	token models.AccessToken

	// group gom các refresh đồng thời về một lần exchange duy nhất
	group singleflight.Group
}

// NewTokenProvider tạo mới TokenProvider
func NewTokenProvider(cfg TokenConfig) *TokenProvider {
	return &TokenProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// tokenResponse là response của token endpoint
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// GetToken trả về bearer token còn hiệu lực
// Token cache được tái sử dụng khi now < expiry; hết hạn thì thực hiện
// client-credentials exchange. Các caller đồng thời cùng thấy token hết hạn
// chỉ gây ra MỘT exchange (singleflight), tất cả nhận cùng kết quả.
// Exchange thất bại trả về CredentialError, cache cũ giữ nguyên để lần gọi
// sau thử lại từ đầu. Không retry.
func (p *TokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.RLock()
	cached := p.token
	p.mu.RUnlock()

	if cached.Valid(p.now()) {
		return cached.Value, nil
	}

	v, err, _ := p.group.Do("token", func() (any, error) {
		// Caller khác có thể đã refresh xong trong lúc chờ
		p.mu.RLock()
		cached := p.token
		p.mu.RUnlock()
		if cached.Valid(p.now()) {
			return cached.Value, nil
		}

		return p.exchange(ctx)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// exchange thực hiện client-credentials token exchange và cập nhật cache
func (p *TokenProvider) exchange(ctx context.Context) (string, error) {
	log := logger.GetAppLogger()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)
	form.Set("scope", p.cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", common.NewError(common.ErrCodeCredential, "Không tạo được token request", common.StatusInternalServerError, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		log.WithError(err).Error("🔑 [TOKEN] Token exchange thất bại (network)")
		return "", common.NewError(common.ErrCodeCredential, "Token exchange thất bại", common.StatusBadGateway, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithFields(map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		}).Error("🔑 [TOKEN] Token endpoint trả về lỗi")
		return "", common.NewError(common.ErrCodeCredential,
			fmt.Sprintf("Token endpoint trả về status %d", resp.StatusCode),
			common.StatusBadGateway,
			fmt.Errorf("upstream: %s", string(body)))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", common.NewError(common.ErrCodeCredential, "Không parse được token response", common.StatusBadGateway, err)
	}
	if tr.AccessToken == "" {
		return "", common.NewError(common.ErrCodeCredential, "Token response thiếu access_token", common.StatusBadGateway, nil)
	}

	lifetime := time.Duration(tr.ExpiresIn) * time.Second
	token := models.AccessToken{
		Value:  tr.AccessToken,
		Expiry: p.now().Add(lifetime - expiryBuffer),
	}

	p.mu.Lock()
	p.token = token
	p.mu.Unlock()

	log.WithField("expiresIn", tr.ExpiresIn).Debug("🔑 [TOKEN] Đã lấy access token mới")

	return token.Value, nil
}
