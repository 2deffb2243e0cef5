package common

import "errors"

// HTTP Status Code Constants
const (
	// Success Codes (2xx)
	StatusOK      = 200 // Thành công
	StatusCreated = 201 // Tạo mới thành công

	// Client Error Codes (4xx)
	StatusBadRequest      = 400 // Yêu cầu không hợp lệ
	StatusNotFound        = 404 // Không tìm thấy tài nguyên
	StatusConflict        = 409 // Xung đột dữ liệu
	StatusTooManyRequests = 429 // Quá nhiều yêu cầu

	// Server Error Codes (5xx)
	StatusInternalServerError = 500 // Lỗi server
	StatusBadGateway          = 502 // Gateway không hợp lệ
	StatusServiceUnavailable  = 503 // Dịch vụ không khả dụng
)

// Response Messages
const (
	MsgSuccess         = "Thao tác thành công"
	MsgCreated         = "Tạo mới thành công"
	MsgBadRequest      = "Yêu cầu không hợp lệ"
	MsgNotFound        = "Không tìm thấy tài nguyên"
	MsgConflict        = "Xung đột dữ liệu"
	MsgInternalError   = "Lỗi hệ thống"
	MsgValidationError = "Dữ liệu không hợp lệ"
	MsgInvalidFormat   = "Định dạng dữ liệu không hợp lệ"
)

// ErrorCode định nghĩa mã lỗi chi tiết
type ErrorCode struct {
	Code        string // Mã lỗi (ví dụ: AUTH_001)
	Category    string // Phân loại lỗi (ví dụ: Credential)
	SubCategory string // Phân loại con (ví dụ: Exchange)
	Description string // Mô tả chi tiết
}

// Định nghĩa các mã lỗi theo hệ thống phân cấp
var (
	// System Errors (SYS_xxx)
	ErrCodeInternalServer = ErrorCode{
		Code:        "SYS_001",
		Category:    "System",
		SubCategory: "Internal",
		Description: "Lỗi hệ thống nội bộ",
	}

	// Credential Errors (AUTH_xxx)
	ErrCodeCredential = ErrorCode{
		Code:        "AUTH_001",
		Category:    "Credential",
		SubCategory: "Exchange",
		Description: "Lỗi trao đổi OAuth token với nhà cung cấp",
	}

	// SMS Dispatch Errors (SMS_xxx)
	ErrCodeDispatch = ErrorCode{
		Code:        "SMS_001",
		Category:    "Dispatch",
		SubCategory: "Send",
		Description: "Lỗi gửi SMS qua nhà cung cấp",
	}

	ErrCodeNoRecipients = ErrorCode{
		Code:        "SMS_002",
		Category:    "Dispatch",
		SubCategory: "Recipients",
		Description: "Danh sách người nhận rỗng sau khi parse",
	}

	// Webhook Config Errors (CFG_xxx)
	ErrCodeConfigNotFound = ErrorCode{
		Code:        "CFG_001",
		Category:    "Config",
		SubCategory: "Lookup",
		Description: "Không tìm thấy cấu hình thông báo",
	}

	ErrCodeUnknownConfig = ErrorCode{
		Code:        "CFG_002",
		Category:    "Config",
		SubCategory: "Trigger",
		Description: "Webhook trigger cho cấu hình chưa đăng ký",
	}

	ErrCodeConfigConflict = ErrorCode{
		Code:        "CFG_003",
		Category:    "Config",
		SubCategory: "Conflict",
		Description: "Tên cấu hình đã tồn tại (strict create mode)",
	}

	// Validation Errors (VAL_xxx)
	ErrCodeValidationInput = ErrorCode{
		Code:        "VAL_001",
		Category:    "Validation",
		SubCategory: "Input",
		Description: "Lỗi dữ liệu đầu vào",
	}

	ErrCodeValidationFormat = ErrorCode{
		Code:        "VAL_002",
		Category:    "Validation",
		SubCategory: "Format",
		Description: "Lỗi định dạng dữ liệu",
	}

	// Storage Errors (STORE_xxx)
	ErrCodeStorage = ErrorCode{
		Code:        "STORE_001",
		Category:    "Storage",
		SubCategory: "Write",
		Description: "Lỗi ghi dữ liệu xuống file JSON",
	}
)

// Error định nghĩa cấu trúc lỗi chi tiết
type Error struct {
	Code       ErrorCode // Mã lỗi chi tiết
	Message    string    // Thông báo lỗi
	StatusCode int       // HTTP status code
	Details    any       // Thông tin chi tiết thêm về lỗi
	Cause      error     // Lỗi gốc từ upstream (nếu có)
}

// Error trả về message của lỗi
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap trả về lỗi gốc để hỗ trợ errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is kiểm tra xem error có phải là target error không (hỗ trợ errors.Is)
// Hai *Error được coi là cùng loại khi có cùng error code
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if targetErr, ok := target.(*Error); ok {
		return e.Code.Code == targetErr.Code.Code
	}
	return false
}

// NewError tạo một error mới với đầy đủ thông tin
func NewError(code ErrorCode, message string, statusCode int, cause error) error {
	return &Error{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Cause:      cause,
	}
}

// Custom errors - các lỗi định nghĩa sẵn cho toàn hệ thống
var (
	ErrCredential   = NewError(ErrCodeCredential, "Không lấy được OAuth token từ nhà cung cấp", StatusBadGateway, nil)
	ErrDispatch     = NewError(ErrCodeDispatch, "Gửi SMS thất bại", StatusInternalServerError, nil)
	ErrNoRecipients = NewError(ErrCodeNoRecipients, "Không có người nhận hợp lệ", StatusBadRequest, nil)
	ErrNotFound     = NewError(ErrCodeConfigNotFound, "Không tìm thấy cấu hình thông báo", StatusNotFound, nil)
	ErrUnknown      = NewError(ErrCodeUnknownConfig, "Webhook chưa được đăng ký", StatusNotFound, nil)
	ErrConflict     = NewError(ErrCodeConfigConflict, "Tên cấu hình đã tồn tại", StatusConflict, nil)
	ErrInvalidInput = NewError(ErrCodeValidationInput, "Dữ liệu đầu vào không hợp lệ", StatusBadRequest, nil)
	ErrStorage      = NewError(ErrCodeStorage, "Không ghi được dữ liệu xuống đĩa", StatusInternalServerError, nil)
)

// StatusOf trả về HTTP status code tương ứng của một error
// Nếu không phải *Error (kể cả wrapped) thì trả về 500
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return StatusInternalServerError
}

// CodeOf trả về error code của một error, "SYS_001" nếu không xác định
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code.Code
	}
	return ErrCodeInternalServer.Code
}
