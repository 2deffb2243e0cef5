package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
// Bao gồm thông tin server, OAuth client và các endpoint của nhà cung cấp SMS
type Configuration struct {
	Address  string `env:"ADDRESS" envDefault:":3000"`    // Địa chỉ server
	DataPath string `env:"DATA_PATH" envDefault:"./data"` // Thư mục chứa các file JSON persistence
	Version  string `env:"APP_VERSION" envDefault:"2.0"`  // Version tag ghi vào changelog và /health

	// OAuth client credentials cho token exchange
	ClientID     string `env:"CLIENT_ID,required"`                // OAuth client id
	ClientSecret string `env:"CLIENT_SECRET,required"`            // OAuth client secret
	OAuthScope   string `env:"OAUTH_SCOPE" envDefault:"messaging"` // Scope cố định cho client-credentials grant
	TokenURL     string `env:"TOKEN_URL,required"`                // Endpoint trao đổi token

	// SMS provider
	SmsSendURL       string `env:"SMS_SEND_URL,required"`    // Endpoint gửi SMS của nhà cung cấp
	SmsFromNumber    string `env:"SMS_FROM_NUMBER,required"` // Số điện thoại gửi đi
	DefaultRecipient string `env:"DEFAULT_RECIPIENT"`        // Số nhận fallback cho test-sms

	// Webhook config lifecycle
	WebhookCreateStrict bool `env:"WEBHOOK_CREATE_STRICT" envDefault:"false"` // true = reject khi tạo trùng tên, false = overwrite (hành vi cũ)

	// CORS
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy, * = tất cả)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials

	// Rate limiting (mặc định tắt - inbound webhook không có backpressure)
	RateLimit_Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"false"` // Bật/tắt rate limiting
	RateLimit_Max     int  `env:"RATE_LIMIT_MAX" envDefault:"100"`       // Số request tối đa trong window
	RateLimit_Window  int  `env:"RATE_LIMIT_WINDOW" envDefault:"60"`     // Thời gian window (giây)

	// TLS/HTTPS Configuration
	EnableTLS   bool   `env:"ENABLE_TLS" envDefault:"false"` // Bật HTTPS
	TLSCertFile string `env:"TLS_CERT_FILE"`                 // Đường dẫn đến file certificate (.crt hoặc .pem)
	TLSKeyFile  string `env:"TLS_KEY_FILE"`                  // Đường dẫn đến file private key (.key)
}

// getEnvPath trả về đường dẫn đến file env dựa trên môi trường
func getEnvPath() string {
	// Mặc định sử dụng môi trường development
	envName := os.Getenv("GO_ENV")
	if envName == "" {
		envName = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		fmt.Printf("Không thể lấy được thư mục hiện tại: %v\n", err)
		return ""
	}

	// Tìm thư mục config/env bằng cách đi lên từ working directory
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", envName))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig sẽ đọc dữ liệu cấu hình từ file env và environment variables
func NewConfig() *Configuration {
	envPath := getEnvPath()
	if envPath != "" {
		// File env là optional - environment variables vẫn dùng được khi không có file
		// Sử dụng fmt.Printf vì logger có thể chưa được init ở đây
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("Không thể load file env tại %s: %v\n", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		fmt.Printf("Lỗi khi parse config: %+v\n", err)
		return nil
	}

	return &cfg
}
