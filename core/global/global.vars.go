package global

import (
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/config"

	"github.com/go-playground/validator/v10"
)

// Các biến toàn cục
var Validate *validator.Validate           // Biến để xác thực dữ liệu
var ServerConfig *config.Configuration     // Cấu hình của server
var StartTime time.Time = time.Now()       // Thời điểm process khởi động (cho /health uptime)

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("slug", validateSlug)
}

// validateSlug kiểm tra tên config là URL-safe slug
// Chỉ cho phép chữ cái, số, gạch ngang và gạch dưới
func validateSlug(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
