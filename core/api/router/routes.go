package router

import (
	"github.com/eojodrabmol/goto-sms-webhook/core/api/handler"

	"github.com/gofiber/fiber/v3"
)

// Router quản lý việc định tuyến cho API
type Router struct {
	app *fiber.App
}

// NewRouter tạo mới Router
func NewRouter(app *fiber.App) *Router {
	return &Router{app: app}
}

// Handlers gom các handler cần cho việc đăng ký route
type Handlers struct {
	System  *handler.SystemHandler
	Config  *handler.WebhookConfigHandler
	Trigger *handler.WebhookTriggerHandler
}

// SetupRoutes đăng ký toàn bộ route của service
func (r *Router) SetupRoutes(h Handlers) {
	// System surface
	r.app.Get("/", h.System.HandleRoot)
	r.app.Get("/health", h.System.HandleHealth)
	r.app.Get("/config", h.System.HandleConfigSummary)
	r.app.Get("/manager", h.System.HandleManager)
	r.app.Get("/help", h.System.HandleHelp)

	// Webhook trigger (không có authentication - tổng đài gọi trực tiếp)
	r.app.Post("/sms-whook/:name", h.Trigger.HandleTrigger)
	// Alias cũ, giữ cho các webhook đã cấu hình từ trước
	r.app.Post("/notify/:name", h.Trigger.HandleTrigger)
	r.app.Post("/test-sms", h.Trigger.HandleTestSms)

	// Management API
	api := r.app.Group("/api")
	api.Get("/webhooks", h.Config.HandleList)
	api.Post("/webhooks", h.Config.HandleCreate)
	api.Put("/webhooks/:name", h.Config.HandleUpdate)
	api.Post("/webhooks/:name/archive", h.Config.HandleArchive)
	api.Post("/webhooks/:name/restore", h.Config.HandleRestore)
	api.Get("/changelog", h.Config.HandleChangelog)
	api.Get("/export", h.Config.HandleExport)
	api.Post("/import", h.Config.HandleImport)
}
