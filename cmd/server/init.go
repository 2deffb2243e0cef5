package main

import (
	"fmt"

	"github.com/eojodrabmol/goto-sms-webhook/config"
	"github.com/eojodrabmol/goto-sms-webhook/core/api/handler"
	"github.com/eojodrabmol/goto-sms-webhook/core/api/router"
	"github.com/eojodrabmol/goto-sms-webhook/core/delivery"
	"github.com/eojodrabmol/goto-sms-webhook/core/global"
	"github.com/eojodrabmol/goto-sms-webhook/core/notification"
	"github.com/eojodrabmol/goto-sms-webhook/core/storage"
	"github.com/eojodrabmol/goto-sms-webhook/core/webhook"

	"github.com/gofiber/fiber/v3"
)

// InitGlobal khởi tạo các biến toàn cục: config và validator
func InitGlobal() {
	cfg := config.NewConfig()
	if cfg == nil {
		panic("Không load được cấu hình - kiểm tra environment variables")
	}
	global.ServerConfig = cfg

	global.InitValidator()
}

// InitComponents khởi tạo các component cốt lõi và đăng ký routes vào app
//
// Thứ tự dựng leaf-first: persistence → changelog → store → renderer →
// token provider → dispatcher → handlers
func InitComponents(app *fiber.App) error {
	cfg := global.ServerConfig

	persist, err := storage.NewFileStore(cfg.DataPath)
	if err != nil {
		return fmt.Errorf("failed to create file store: %w", err)
	}

	changelog, err := webhook.NewRecorder(persist, cfg.Version)
	if err != nil {
		return fmt.Errorf("failed to create changelog recorder: %w", err)
	}

	store, err := webhook.NewStore(persist, changelog, cfg.WebhookCreateStrict)
	if err != nil {
		return fmt.Errorf("failed to create configuration store: %w", err)
	}

	renderer := notification.NewRenderer()

	tokens := delivery.NewTokenProvider(delivery.TokenConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scope:        cfg.OAuthScope,
		TokenURL:     cfg.TokenURL,
	})

	dispatcher := delivery.NewDispatcher(delivery.DispatchConfig{
		SendURL:    cfg.SmsSendURL,
		FromNumber: cfg.SmsFromNumber,
	}, tokens)

	r := router.NewRouter(app)
	r.SetupRoutes(router.Handlers{
		System:  handler.NewSystemHandler(store, cfg.Version),
		Config:  handler.NewWebhookConfigHandler(store, cfg.Version),
		Trigger: handler.NewWebhookTriggerHandler(store, renderer, dispatcher, cfg.DefaultRecipient),
	})

	return nil
}
