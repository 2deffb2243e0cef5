package handler

import (
	"fmt"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/api/dto"
	"github.com/eojodrabmol/goto-sms-webhook/core/common"
	"github.com/eojodrabmol/goto-sms-webhook/core/global"
	"github.com/eojodrabmol/goto-sms-webhook/core/logger"
	"github.com/eojodrabmol/goto-sms-webhook/core/webhook"

	"github.com/gofiber/fiber/v3"
)

// WebhookConfigHandler xử lý CRUD surface trên Configuration Store
type WebhookConfigHandler struct {
	store   *webhook.Store
	version string
}

// NewWebhookConfigHandler tạo mới WebhookConfigHandler
func NewWebhookConfigHandler(store *webhook.Store, version string) *WebhookConfigHandler {
	return &WebhookConfigHandler{store: store, version: version}
}

// HandleList xử lý GET /api/webhooks
func (h *WebhookConfigHandler) HandleList(c fiber.Ctx) error {
	active, archived := h.store.List()
	return c.JSON(fiber.Map{
		"webhooks": active,
		"archived": archived,
		"version":  h.version,
	})
}

// HandleCreate xử lý POST /api/webhooks
// Tạo mới hoặc ghi đè config cùng tên (trừ khi strict create mode bật)
func (h *WebhookConfigHandler) HandleCreate(c fiber.Ctx) error {
	log := logger.WithRequest(c)

	var req dto.CreateWebhookRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Dữ liệu gửi lên không đúng định dạng JSON",
			"code":    common.ErrCodeValidationFormat.Code,
		})
	}

	if err := global.Validate.Struct(&req); err != nil {
		return c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Thiếu name hoặc config, hoặc name không phải slug hợp lệ: %v", err),
			"code":    common.ErrCodeValidationInput.Code,
		})
	}

	if err := h.store.Create(req.Name, *req.Config); err != nil {
		log.WithError(err).WithField("webhook", req.Name).Error("🗂 [CONFIG] Create thất bại")
		return c.Status(common.StatusOf(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    common.CodeOf(err),
		})
	}

	log.WithField("webhook", req.Name).Info("🗂 [CONFIG] Đã tạo config")

	return c.Status(common.StatusCreated).JSON(fiber.Map{
		"success": true,
		"name":    req.Name,
	})
}

// HandleUpdate xử lý PUT /api/webhooks/:name
// Body là partial config, merge shallow lên config hiện có
func (h *WebhookConfigHandler) HandleUpdate(c fiber.Ctx) error {
	log := logger.WithRequest(c)
	name := c.Params("name")

	var patch dto.UpdateWebhookRequest
	if err := c.Bind().Body(&patch); err != nil {
		return c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Dữ liệu gửi lên không đúng định dạng JSON",
			"code":    common.ErrCodeValidationFormat.Code,
		})
	}

	old, updated, err := h.store.Update(name, patch)
	if err != nil {
		return c.Status(common.StatusOf(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    common.CodeOf(err),
		})
	}

	log.WithField("webhook", name).Info("🗂 [CONFIG] Đã update config")

	return c.JSON(fiber.Map{
		"success": true,
		"name":    name,
		"old":     old,
		"webhook": updated,
	})
}

// HandleArchive xử lý POST /api/webhooks/:name/archive
func (h *WebhookConfigHandler) HandleArchive(c fiber.Ctx) error {
	name := c.Params("name")

	if err := h.store.Archive(name); err != nil {
		return c.Status(common.StatusOf(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    common.CodeOf(err),
		})
	}

	logger.WithRequest(c).WithField("webhook", name).Info("🗂 [CONFIG] Đã archive config")

	return c.JSON(fiber.Map{
		"success": true,
		"name":    name,
	})
}

// HandleRestore xử lý POST /api/webhooks/:name/restore
func (h *WebhookConfigHandler) HandleRestore(c fiber.Ctx) error {
	name := c.Params("name")

	if err := h.store.Restore(name); err != nil {
		return c.Status(common.StatusOf(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    common.CodeOf(err),
		})
	}

	logger.WithRequest(c).WithField("webhook", name).Info("🗂 [CONFIG] Đã restore config")

	return c.JSON(fiber.Map{
		"success": true,
		"name":    name,
	})
}

// HandleChangelog xử lý GET /api/changelog
func (h *WebhookConfigHandler) HandleChangelog(c fiber.Ctx) error {
	entries := h.store.Changelog().List()
	return c.JSON(fiber.Map{
		"changelog": entries,
		"count":     len(entries),
	})
}

// HandleExport xử lý GET /api/export
// Trả về full JSON dump dưới dạng file attachment
func (h *WebhookConfigHandler) HandleExport(c fiber.Ctx) error {
	active, archived := h.store.List()

	dump := dto.ExportDump{
		Webhooks:   active,
		Archived:   archived,
		Changelog:  h.store.Changelog().List(),
		Version:    h.version,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}

	fileName := fmt.Sprintf("sms-webhook-export-%s.json", time.Now().Format("2006-01-02"))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, fileName))

	return c.JSON(dump)
}

// HandleImport xử lý POST /api/import
// Shallow-merge webhooks/archived từ dump vào state hiện tại
func (h *WebhookConfigHandler) HandleImport(c fiber.Ctx) error {
	log := logger.WithRequest(c)

	var req dto.ImportRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Dữ liệu gửi lên không đúng định dạng JSON",
			"code":    common.ErrCodeValidationFormat.Code,
		})
	}

	if req.Webhooks == nil && req.Archived == nil {
		return c.Status(common.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Import cần ít nhất một trong hai field webhooks/archived",
			"code":    common.ErrCodeValidationInput.Code,
		})
	}

	count, err := h.store.Import(req.Webhooks, req.Archived)
	if err != nil {
		log.WithError(err).Error("🗂 [CONFIG] Import thất bại")
		return c.Status(common.StatusOf(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    common.CodeOf(err),
		})
	}

	log.WithField("imported", count).Info("🗂 [CONFIG] Đã import dump")

	return c.JSON(fiber.Map{
		"success":  true,
		"imported": count,
	})
}
