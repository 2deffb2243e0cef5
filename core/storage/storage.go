package storage

// Store là persistence collaborator cho các JSON document của ứng dụng
// (webhooks.json, archived.json, changelog.json). Mỗi document được load/save
// nguyên khối, keyed theo tên document.
type Store interface {
	// Load đọc document theo tên và unmarshal vào v.
	// Document chưa tồn tại KHÔNG phải là lỗi - v giữ nguyên zero value.
	Load(name string, v any) error

	// Save ghi đè toàn bộ document theo tên.
	Save(name string, v any) error
}

// Tên các document cố định của hệ thống
const (
	DocWebhooks  = "webhooks"
	DocArchived  = "archived"
	DocChangelog = "changelog"
)
