package handler

import (
	"errors"
	"fmt"

	"github.com/eojodrabmol/goto-sms-webhook/core/api/dto"
	"github.com/eojodrabmol/goto-sms-webhook/core/api/models"
	"github.com/eojodrabmol/goto-sms-webhook/core/common"
	"github.com/eojodrabmol/goto-sms-webhook/core/delivery"
	"github.com/eojodrabmol/goto-sms-webhook/core/logger"
	"github.com/eojodrabmol/goto-sms-webhook/core/notification"
	"github.com/eojodrabmol/goto-sms-webhook/core/webhook"

	"github.com/gofiber/fiber/v3"
)

// eventAliases map canonical field → các alias trong payload, theo thứ tự ưu tiên
// Tổng đài gửi payload với tên field không thống nhất giữa các event type
var eventAliases = map[string][]string{
	"callerNumber":  {"callerNumber", "caller", "from"},
	"callerName":    {"callerName", "name"},
	"extension":     {"extension", "extensionNumber", "to"},
	"queueName":     {"queueName", "queue"},
	"waitTime":      {"waitTime", "wait"},
	"customMessage": {"customMessage", "message"},
}

// WebhookTriggerHandler nhận call-event payload và dispatch SMS theo config
type WebhookTriggerHandler struct {
	store            *webhook.Store
	renderer         *notification.Renderer
	dispatcher       *delivery.Dispatcher
	defaultRecipient string
}

// NewWebhookTriggerHandler tạo mới WebhookTriggerHandler
func NewWebhookTriggerHandler(store *webhook.Store, renderer *notification.Renderer, dispatcher *delivery.Dispatcher, defaultRecipient string) *WebhookTriggerHandler {
	return &WebhookTriggerHandler{
		store:            store,
		renderer:         renderer,
		dispatcher:       dispatcher,
		defaultRecipient: defaultRecipient,
	}
}

// buildEventData build dữ liệu event từ payload: alias field theo thứ tự ưu tiên
// merge lên trên raw payload (raw payload là fallback bag cho các field khác)
func buildEventData(payload map[string]any) map[string]any {
	eventData := make(map[string]any, len(payload))
	for k, v := range payload {
		eventData[k] = v
	}

	for canonical, aliases := range eventAliases {
		for _, alias := range aliases {
			if v, ok := payload[alias]; ok && v != nil && v != "" {
				eventData[canonical] = v
				break
			}
		}
	}

	return eventData
}

// HandleTrigger xử lý POST /sms-whook/:name (và alias cũ /notify/:name)
// Lookup config trong active map, render template, gửi SMS, ghi changelog
func (h *WebhookTriggerHandler) HandleTrigger(c fiber.Ctx) error {
	log := logger.WithRequest(c)
	name := c.Params("name")

	cfg, ok := h.store.Get(name)
	if !ok {
		// Không gửi, không ghi changelog
		log.WithField("webhook", name).Warn("🔔 [WEBHOOK] Trigger cho config chưa đăng ký")
		return c.Status(common.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Webhook '%s' chưa được đăng ký", name),
			"code":    common.ErrCodeUnknownConfig.Code,
		})
	}

	// Payload rỗng hoặc không phải JSON vẫn trigger được - mọi field đều có default
	payload := make(map[string]any)
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&payload); err != nil {
			log.WithError(err).Warn("🔔 [WEBHOOK] Payload không phải JSON, dùng event data rỗng")
			payload = make(map[string]any)
		}
	}

	eventData := buildEventData(payload)
	message := h.renderer.Render(cfg.MessageTemplate, eventData)
	recipientCount := len(notification.ParsePhoneNumbers(cfg.Recipients))

	if _, err := h.dispatcher.Send(c.Context(), message, cfg.Recipients); err != nil {
		log.WithError(err).WithField("webhook", name).Error("🔔 [WEBHOOK] Dispatch thất bại")
		status := common.StatusOf(err)
		// Config không có recipients hợp lệ là lỗi phía server,
		// không phải lỗi của tổng đài gọi vào
		if errors.Is(err, common.ErrNoRecipients) {
			status = common.StatusInternalServerError
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    common.CodeOf(err),
		})
	}

	callerNumber := "Unknown"
	if v, ok := eventData["callerNumber"]; ok && v != nil {
		callerNumber = fmt.Sprintf("%v", v)
	}

	h.store.Changelog().Record(models.ActionWebhookTriggered, name, map[string]any{
		"callerNumber": callerNumber,
	})

	log.WithFields(map[string]interface{}{
		"webhook":        name,
		"recipientCount": recipientCount,
	}).Info("🔔 [WEBHOOK] Đã dispatch SMS")

	return c.JSON(fiber.Map{
		"success":        true,
		"type":           name,
		"recipientCount": recipientCount,
	})
}

// HandleTestSms xử lý POST /test-sms
// Gửi test message đến recipients của config được chỉ định (mặc định "general");
// config không có recipients thì fallback về DEFAULT_RECIPIENT
func (h *WebhookTriggerHandler) HandleTestSms(c fiber.Ctx) error {
	log := logger.WithRequest(c)

	var req dto.TestSmsRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(common.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Dữ liệu gửi lên không đúng định dạng JSON",
				"code":    common.ErrCodeValidationFormat.Code,
			})
		}
	}

	name := req.Type
	if name == "" {
		name = "general"
	}

	message := req.Message
	if message == "" {
		message = fmt.Sprintf("Test message từ SMS relay (config: %s)", name)
	}

	recipients := h.defaultRecipient
	if cfg, ok := h.store.Get(name); ok && len(notification.ParsePhoneNumbers(cfg.Recipients)) > 0 {
		recipients = cfg.Recipients
	}

	recipientCount := len(notification.ParsePhoneNumbers(recipients))

	if _, err := h.dispatcher.Send(c.Context(), message, recipients); err != nil {
		log.WithError(err).WithField("webhook", name).Error("📨 [SMS] Test SMS thất bại")
		return c.Status(common.StatusOf(err)).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
			"code":    common.CodeOf(err),
		})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"type":           name,
		"recipientCount": recipientCount,
	})
}
