package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/common"
	"github.com/eojodrabmol/goto-sms-webhook/core/logger"
	"github.com/eojodrabmol/goto-sms-webhook/core/notification"
)

// DispatchConfig chứa thông tin gửi SMS qua nhà cung cấp
type DispatchConfig struct {
	SendURL    string // Endpoint gửi SMS
	FromNumber string // Số điện thoại gửi đi
}

// Dispatcher gửi SMS ra ngoài qua messaging API của nhà cung cấp
// Token được lấy từ TokenProvider inject vào, Dispatcher không giữ token
type Dispatcher struct {
	cfg    DispatchConfig
	tokens *TokenProvider
	client *http.Client
}

// NewDispatcher tạo mới Dispatcher
func NewDispatcher(cfg DispatchConfig, tokens *TokenProvider) *Dispatcher {
	return &Dispatcher{
		cfg:    cfg,
		tokens: tokens,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// sendRequest là payload gửi đến send endpoint của nhà cung cấp
type sendRequest struct {
	From string   `json:"from"`
	To   []string `json:"to"`
	Text string   `json:"text"`
}

// sendResponse là response của send endpoint
type sendResponse struct {
	ID string `json:"id"`
}

// Send gửi một message đến danh sách recipients (chuỗi phân cách bằng dấu phẩy)
//
// Toàn bộ danh sách đi trong MỘT call - all-or-nothing từ phía caller
// (nhà cung cấp có thể deliver một phần, hệ thống không track per-recipient).
// Không retry. Trả về message id của nhà cung cấp.
func (d *Dispatcher) Send(ctx context.Context, message string, recipients string) (string, error) {
	log := logger.GetAppLogger()

	numbers := notification.ParsePhoneNumbers(recipients)
	if len(numbers) == 0 {
		return "", common.NewError(common.ErrCodeNoRecipients, "Không có người nhận hợp lệ sau khi parse", common.StatusBadRequest, nil)
	}

	token, err := d.tokens.GetToken(ctx)
	if err != nil {
		// Lỗi token acquisition propagate dưới dạng DispatchError wrap nguyên nhân
		return "", common.NewError(common.ErrCodeDispatch, "Gửi SMS thất bại", common.StatusInternalServerError, err)
	}

	payload, err := json.Marshal(sendRequest{
		From: d.cfg.FromNumber,
		To:   numbers,
		Text: message,
	})
	if err != nil {
		return "", common.NewError(common.ErrCodeDispatch, "Không marshal được SMS payload", common.StatusInternalServerError, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.SendURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", common.NewError(common.ErrCodeDispatch, "Không tạo được SMS request", common.StatusInternalServerError, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := d.client.Do(req)
	if err != nil {
		log.WithError(err).Error("📨 [SMS] Gửi SMS thất bại (network)")
		return "", common.NewError(common.ErrCodeDispatch, "Gửi SMS thất bại", common.StatusInternalServerError, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithFields(map[string]interface{}{
			"status":     resp.StatusCode,
			"body":       string(body),
			"recipients": len(numbers),
		}).Error("📨 [SMS] Send endpoint trả về lỗi")
		return "", common.NewError(common.ErrCodeDispatch,
			fmt.Sprintf("Send endpoint trả về status %d", resp.StatusCode),
			common.StatusInternalServerError,
			fmt.Errorf("upstream: %s", string(body)))
	}

	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		// Response không phải JSON vẫn coi là gửi thành công (2xx),
		// chỉ không có message id
		log.WithError(err).Warn("📨 [SMS] Không parse được send response")
	}

	log.WithFields(map[string]interface{}{
		"recipients": len(numbers),
		"messageId":  sr.ID,
	}).Info("📨 [SMS] Đã gửi SMS")

	return sr.ID, nil
}
