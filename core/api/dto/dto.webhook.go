package dto

import "github.com/eojodrabmol/goto-sms-webhook/core/api/models"

// CreateWebhookRequest là request body để tạo/ghi đè một notification config
type CreateWebhookRequest struct {
	Name   string                     `json:"name" validate:"required,slug"`
	Config *models.NotificationConfig `json:"config" validate:"required"`
}

// UpdateWebhookRequest là request body để update một config (partial merge)
type UpdateWebhookRequest = models.NotificationConfigPatch

// TestSmsRequest là request body cho endpoint test-sms
type TestSmsRequest struct {
	Type    string `json:"type"`    // Tên config để lấy recipients, mặc định "general"
	Message string `json:"message"` // Nội dung test, mặc định có sẵn
}

// ImportRequest là request body cho import dump
// Cả hai field đều optional - thiếu cả hai vẫn là import rỗng hợp lệ về format,
// nhưng bị reject ở handler vì không có gì để merge
type ImportRequest struct {
	Webhooks map[string]models.NotificationConfig `json:"webhooks"`
	Archived map[string]models.NotificationConfig `json:"archived"`
}

// ExportDump là cấu trúc full JSON dump trả về từ /api/export
type ExportDump struct {
	Webhooks   map[string]models.NotificationConfig `json:"webhooks"`
	Archived   map[string]models.NotificationConfig `json:"archived"`
	Changelog  []models.ChangelogEntry              `json:"changelog"`
	Version    string                               `json:"version"`
	ExportedAt string                               `json:"exportedAt"`
}
