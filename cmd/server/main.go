package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/global"
	"github.com/eojodrabmol/goto-sms-webhook/core/logger"

	"github.com/gofiber/fiber/v3"
)

// initLogger khởi tạo và cấu hình logger cho toàn bộ ứng dụng
func initLogger() {
	// Logger tự động đọc environment variables để cấu hình
	if err := logger.Init(nil); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// serve khởi động Fiber server (HTTP hoặc HTTPS theo cấu hình)
func serve(app *fiber.App) error {
	cfg := global.ServerConfig
	log := logger.GetAppLogger()

	if cfg.EnableTLS && cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("error loading TLS certificate: %w", err)
		}

		ln, err := net.Listen("tcp", cfg.Address)
		if err != nil {
			return fmt.Errorf("error creating listener: %w", err)
		}

		tlsListener := tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})

		log.WithFields(map[string]interface{}{
			"address":  cfg.Address,
			"protocol": "HTTPS",
		}).Info("Starting server with HTTPS/TLS")

		return app.Listener(tlsListener)
	}

	log.WithFields(map[string]interface{}{
		"address":  cfg.Address,
		"protocol": "HTTP",
	}).Info("Starting server with HTTP")

	return app.Listen(cfg.Address, fiber.ListenConfig{
		DisableStartupMessage: true,
	})
}

// Hàm main
func main() {
	// Khởi tạo logger
	initLogger()

	// Khởi tạo các biến toàn cục (config, validator)
	InitGlobal()

	// Khởi tạo Fiber app với middleware
	app := InitFiberApp()

	// Khởi tạo components và đăng ký routes
	log := logger.GetAppLogger()
	if err := InitComponents(app); err != nil {
		log.WithError(err).Fatal("Failed to initialize components")
	}

	// Graceful shutdown khi nhận SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- serve(app)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Fatal("Server error")
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received, draining connections...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("Shutdown error")
		}
		log.Info("Server stopped")
	}
}
