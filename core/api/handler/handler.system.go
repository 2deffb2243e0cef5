package handler

import (
	"strings"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/global"
	"github.com/eojodrabmol/goto-sms-webhook/core/notification"
	"github.com/eojodrabmol/goto-sms-webhook/core/webhook"

	"github.com/gofiber/fiber/v3"
)

// SystemHandler xử lý các endpoint hệ thống: status, health, config summary, static pages
type SystemHandler struct {
	store   *webhook.Store
	version string
}

// NewSystemHandler tạo mới SystemHandler
func NewSystemHandler(store *webhook.Store, version string) *SystemHandler {
	return &SystemHandler{store: store, version: version}
}

// HandleRoot xử lý GET / - service status và danh sách endpoint
func (h *SystemHandler) HandleRoot(c fiber.Ctx) error {
	active, _ := h.store.List()

	baseURL := c.Protocol() + "://" + c.Hostname()
	endpoints := make([]string, 0, len(active))
	for name := range active {
		endpoints = append(endpoints, baseURL+"/sms-whook/"+name)
	}

	return c.JSON(fiber.Map{
		"service":   "goto-sms-webhook",
		"status":    "running",
		"version":   h.version,
		"endpoints": endpoints,
	})
}

// HandleHealth xử lý GET /health
func (h *SystemHandler) HandleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"uptime":    int64(time.Since(global.StartTime).Seconds()),
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleConfigSummary xử lý GET /config
// Trả về summary đã redact của các config active - KHÔNG lộ số điện thoại thô
func (h *SystemHandler) HandleConfigSummary(c fiber.Ctx) error {
	active, archived := h.store.List()

	summary := make(map[string]fiber.Map, len(active))
	for name, cfg := range active {
		numbers := notification.ParsePhoneNumbers(cfg.Recipients)
		masked := make([]string, len(numbers))
		for i, n := range numbers {
			masked[i] = maskNumber(n)
		}

		summary[name] = fiber.Map{
			"description":    cfg.Description,
			"tags":           cfg.Tags,
			"recipientCount": len(numbers),
			"recipients":     masked,
			"browserNotify":  cfg.BrowserNotify,
			"hasEmail":       cfg.Email != "",
		}
	}

	return c.JSON(fiber.Map{
		"webhooks":      summary,
		"archivedCount": len(archived),
		"version":       h.version,
	})
}

// maskNumber che số điện thoại, chỉ giữ 4 ký tự cuối
func maskNumber(number string) string {
	if len(number) <= 4 {
		return strings.Repeat("*", len(number))
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

// HandleManager xử lý GET /manager - trang admin UI tĩnh
// UI đầy đủ nằm ngoài scope của service, đây chỉ là trang placeholder
func (h *SystemHandler) HandleManager(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(managerHTML)
}

// HandleHelp xử lý GET /help
func (h *SystemHandler) HandleHelp(c fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(helpHTML)
}

const managerHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>SMS Webhook Manager</title></head>
<body>
<h1>SMS Webhook Manager</h1>
<p>Quản lý notification configs qua REST API:</p>
<ul>
<li><code>GET /api/webhooks</code> - danh sách configs</li>
<li><code>POST /api/webhooks</code> - tạo config</li>
<li><code>PUT /api/webhooks/:name</code> - update config</li>
<li><code>POST /api/webhooks/:name/archive</code> | <code>/restore</code></li>
<li><code>GET /api/changelog</code> - lịch sử thay đổi</li>
<li><code>GET /api/export</code> | <code>POST /api/import</code></li>
</ul>
</body>
</html>`

const helpHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Help</title></head>
<body>
<h1>SMS Webhook Relay</h1>
<p>Trigger: <code>POST /sms-whook/:name</code> với call-event payload JSON.</p>
<p>Template placeholders: <code>{callerNumber} {callerName} {extension} {time} {date} {customMessage} {queueName} {waitTime}</code></p>
<p>Xem <code>/manager</code> cho management API.</p>
</body>
</html>`
