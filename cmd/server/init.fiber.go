package main

import (
	"strings"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/common"
	"github.com/eojodrabmol/goto-sms-webhook/core/global"
	"github.com/eojodrabmol/goto-sms-webhook/core/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
)

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp() *fiber.App {
	cfg := global.ServerConfig

	app := fiber.New(fiber.Config{
		AppName:      "GoTo SMS Webhook Relay",
		ServerHeader: "goto-sms-webhook",
		UnescapePath: true,
		BodyLimit:    1 * 1024 * 1024, // Call-event payload nhỏ, 1MB là quá đủ
	})

	// Recover trước tiên để panic trong handler không làm chết process
	app.Use(recover.New())
	app.Use(requestid.New())

	// CORS cho admin UI
	origins := []string{"*"}
	if cfg.CORS_Origins != "" && cfg.CORS_Origins != "*" {
		origins = strings.Split(cfg.CORS_Origins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: cfg.CORS_AllowCredentials,
	}))

	// Rate limiting mặc định tắt - inbound webhook từ tổng đài không nên bị chặn
	if cfg.RateLimit_Enabled {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(common.StatusTooManyRequests).JSON(fiber.Map{
					"success": false,
					"error":   "Quá nhiều request, thử lại sau",
				})
			},
		}))
	}

	logger.GetAppLogger().Info("Fiber app initialized")

	return app
}
