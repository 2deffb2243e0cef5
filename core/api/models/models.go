package models

import "time"

// NotificationConfig là một cấu hình thông báo có tên (URL-safe slug)
// Một tên chỉ nằm trong active HOẶC archived, không bao giờ cả hai
type NotificationConfig struct {
	Recipients      string   `json:"recipients"`            // Danh sách số điện thoại, phân cách bằng dấu phẩy
	MessageTemplate string   `json:"messageTemplate"`       // Template chứa các placeholder token
	Description     string   `json:"description,omitempty"` // Mô tả tự do
	Email           string   `json:"email,omitempty"`       // Chỉ mang tính thông tin - hệ thống không gửi email
	BrowserNotify   bool     `json:"browserNotify"`         // Chỉ UI admin sử dụng
	Tags            []string `json:"tags,omitempty"`        // Nhãn tự do, không quan tâm thứ tự
	ArchivedAt      string   `json:"archivedAt,omitempty"`  // ISO-8601, chỉ có khi nằm trong archived
}

// Clone trả về bản copy độc lập (snapshot) của config
func (c NotificationConfig) Clone() NotificationConfig {
	out := c
	if c.Tags != nil {
		out.Tags = make([]string, len(c.Tags))
		copy(out.Tags, c.Tags)
	}
	return out
}

// NotificationConfigPatch là partial config cho thao tác update
// Field nil = giữ nguyên giá trị cũ (shallow field-level merge)
type NotificationConfigPatch struct {
	Recipients      *string   `json:"recipients,omitempty"`
	MessageTemplate *string   `json:"messageTemplate,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Email           *string   `json:"email,omitempty"`
	BrowserNotify   *bool     `json:"browserNotify,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
}

// Apply merge patch lên config và trả về config mới
func (p NotificationConfigPatch) Apply(base NotificationConfig) NotificationConfig {
	out := base.Clone()
	if p.Recipients != nil {
		out.Recipients = *p.Recipients
	}
	if p.MessageTemplate != nil {
		out.MessageTemplate = *p.MessageTemplate
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.BrowserNotify != nil {
		out.BrowserNotify = *p.BrowserNotify
	}
	if p.Tags != nil {
		tags := make([]string, len(*p.Tags))
		copy(tags, *p.Tags)
		out.Tags = tags
	}
	return out
}

// Các action được ghi vào changelog
const (
	ActionConfigCreated    = "config_created"
	ActionConfigUpdated    = "config_updated"
	ActionConfigArchived   = "config_archived"
	ActionConfigRestored   = "config_restored"
	ActionWebhookTriggered = "webhook_triggered"
	ActionDataImported     = "data_imported"
)

// SystemName là webhookName cho các entry không gắn với config cụ thể (import)
const SystemName = "system"

// ChangelogEntry là một record bất biến trong changelog
type ChangelogEntry struct {
	Timestamp   string `json:"timestamp"`   // ISO-8601, thời điểm tạo entry
	Action      string `json:"action"`      // Một trong các Action* constants
	WebhookName string `json:"webhookName"` // Tên config, hoặc "system" cho import
	Details     any    `json:"details"`     // Payload tự do (diff old/new, số gọi đến, ...)
	Version     string `json:"version"`     // Schema version tag của producer
}

// AccessToken là credential được cache trong process
type AccessToken struct {
	Value  string    // Bearer token
	Expiry time.Time // Thời điểm token hết hiệu lực (đã trừ buffer)
}

// Valid kiểm tra token còn dùng được tại thời điểm now không
func (t AccessToken) Valid(now time.Time) bool {
	return t.Value != "" && now.Before(t.Expiry)
}
