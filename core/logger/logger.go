package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// loggers map lưu các logger instances
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex

	// config chứa cấu hình logging
	config *LogConfig
)

// Init khởi tạo hệ thống logging với cấu hình
func Init(cfg *LogConfig) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	config = cfg

	// Tạo thư mục logs nếu chưa tồn tại (chỉ khi ghi ra file)
	if cfg.Output != "stdout" {
		if err := os.MkdirAll(cfg.LogPath, 0o755); err != nil {
			return fmt.Errorf("failed to create logs directory: %w", err)
		}
	}

	return nil
}

// GetLogger trả về logger theo tên (app, error)
func GetLogger(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	// Nếu chưa init, init với config mặc định
	if config == nil {
		config = DefaultConfig()
		if config.Output != "stdout" {
			if err := os.MkdirAll(config.LogPath, 0o755); err != nil {
				// Không tạo được thư mục logs thì chỉ ghi ra stdout
				config.Output = "stdout"
			}
		}
	}

	// Trả về logger đã tồn tại
	if logger, ok := loggers[name]; ok {
		return logger
	}

	// Tạo logger mới
	logger := createLogger(name)
	loggers[name] = logger

	return logger
}

// createLogger tạo một logger mới với cấu hình
func createLogger(name string) *logrus.Logger {
	logger := logrus.New()

	// Set log level
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Set formatter
	if config.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	// Set output theo cấu hình
	var fileName string
	switch name {
	case "error":
		fileName = config.ErrorFile
	default:
		fileName = config.AppFile
	}

	switch config.Output {
	case "stdout":
		logger.SetOutput(os.Stdout)
	case "file":
		logger.SetOutput(newRotatingWriter(fileName))
	default: // both
		// Ghi ra file qua async hook để không block request handling,
		// stdout giữ synchronous cho dev
		logger.SetOutput(os.Stdout)
		logger.AddHook(NewAsyncHook(newRotatingWriter(fileName), 1000))
	}

	return logger
}

// newRotatingWriter tạo writer có rotation bằng lumberjack
func newRotatingWriter(fileName string) io.Writer {
	return &lumberjack.Logger{
		Filename:   filepath.Join(config.LogPath, fileName),
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}
}

// GetAppLogger trả về logger chính của ứng dụng
func GetAppLogger() *logrus.Logger {
	return GetLogger("app")
}

// GetErrorLogger trả về logger riêng cho errors
func GetErrorLogger() *logrus.Logger {
	return GetLogger("error")
}
