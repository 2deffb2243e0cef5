package notification

import (
	"fmt"
	"strings"
	"time"
)

// Renderer render message template với dữ liệu event từ tổng đài
// Render là pure function - không side effect, clock có thể inject cho tests
type Renderer struct {
	now func() time.Time
}

// NewRenderer tạo mới Renderer với system clock
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// NewRendererWithClock tạo Renderer với clock cố định (dùng trong tests)
func NewRendererWithClock(now func() time.Time) *Renderer {
	return &Renderer{now: now}
}

// placeholderOrder là thứ tự thay thế cố định của các token
var placeholderOrder = []string{
	"callerNumber",
	"callerName",
	"extension",
	"time",
	"date",
	"customMessage",
	"queueName",
	"waitTime",
}

// Render thay thế các placeholder token trong template bằng giá trị từ eventData
//
// Quy tắc:
//   - Thay thế một lượt theo thứ tự cố định, mỗi token CHỈ thay occurrence đầu tiên
//     (hành vi lịch sử của hệ thống, giữ nguyên - xem template_test.go)
//   - Field thiếu trong eventData dùng giá trị mặc định
//   - {time}/{date} luôn lấy từ clock tại thời điểm render, không phải từ event
//   - Token không nằm trong danh sách được giữ nguyên trong output
func (r *Renderer) Render(template string, eventData map[string]any) string {
	invokedAt := r.now()
	out := template

	for _, key := range placeholderOrder {
		value := r.resolve(key, eventData, invokedAt)
		out = strings.Replace(out, "{"+key+"}", value, 1)
	}

	return out
}

// resolve trả về giá trị cho một token, áp dụng defaults
func (r *Renderer) resolve(key string, eventData map[string]any, invokedAt time.Time) string {
	switch key {
	case "time":
		return invokedAt.Format("15:04:05")
	case "date":
		return invokedAt.Format("02/01/2006")
	case "callerName":
		if v, ok := stringField(eventData, "callerName"); ok {
			return v
		}
		// callerName fallback về callerNumber trước khi về "Unknown"
		if v, ok := stringField(eventData, "callerNumber"); ok {
			return v
		}
		return "Unknown"
	case "callerNumber":
		if v, ok := stringField(eventData, key); ok {
			return v
		}
		return "Unknown"
	case "customMessage":
		if v, ok := stringField(eventData, key); ok {
			return v
		}
		return "Notification"
	default: // extension, queueName, waitTime
		if v, ok := stringField(eventData, key); ok {
			return v
		}
		return "N/A"
	}
}

// stringField đọc một field từ eventData dưới dạng string
// Giá trị không phải string được format lại, nil/rỗng coi như thiếu
func stringField(eventData map[string]any, key string) (string, bool) {
	v, ok := eventData[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		if s == "" {
			return "", false
		}
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

// ParsePhoneNumbers parse chuỗi recipients phân cách bằng dấu phẩy thành
// danh sách số điện thoại đã trim, bỏ phần tử rỗng và trùng lặp, giữ thứ tự
func ParsePhoneNumbers(recipients string) []string {
	parts := strings.Split(recipients, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, p := range parts {
		number := strings.TrimSpace(p)
		if number == "" || seen[number] {
			continue
		}
		seen[number] = true
		out = append(out, number)
	}

	return out
}
