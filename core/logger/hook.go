package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// AsyncHook là một hook để ghi log bất đồng bộ, tránh blocking request handling
// Hook này sẽ buffer log entries và ghi chúng vào writer trong một goroutine riêng
type AsyncHook struct {
	writer  io.Writer
	entries chan *logrus.Entry
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// NewAsyncHook tạo một async hook mới
// bufferSize: kích thước buffer cho log entries (mặc định 1000)
func NewAsyncHook(writer io.Writer, bufferSize int) *AsyncHook {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	hook := &AsyncHook{
		writer:  writer,
		entries: make(chan *logrus.Entry, bufferSize),
	}

	// Khởi động goroutine để xử lý log entries
	hook.wg.Add(1)
	go hook.processEntries()

	return hook
}

// Levels trả về các log levels mà hook này xử lý
func (h *AsyncHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire được gọi mỗi khi có log entry mới
// Hàm này sẽ không block, chỉ đưa entry vào channel
func (h *AsyncHook) Fire(entry *logrus.Entry) error {
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()

	if closed {
		// Hook đã đóng, ghi trực tiếp (fallback)
		data, err := format(entry)
		if err != nil {
			return err
		}
		_, _ = h.writer.Write(data)
		return nil
	}

	// Non-blocking send: nếu channel đầy, bỏ qua log entry này
	// để không block request handling
	select {
	case h.entries <- entry:
	default:
	}

	return nil
}

// processEntries xử lý log entries trong một goroutine riêng
func (h *AsyncHook) processEntries() {
	defer h.wg.Done()

	for entry := range h.entries {
		data, err := format(entry)
		if err != nil {
			continue
		}
		_, _ = h.writer.Write(data)
	}
}

// Close đóng hook và chờ các entry còn lại được ghi hết
func (h *AsyncHook) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.mu.Unlock()

	close(h.entries)
	h.wg.Wait()
}

// format serialize một entry bằng formatter của logger gốc
func format(entry *logrus.Entry) ([]byte, error) {
	if entry.Logger != nil && entry.Logger.Formatter != nil {
		return entry.Logger.Formatter.Format(entry)
	}
	line, err := entry.String()
	if err != nil {
		return nil, err
	}
	return []byte(line), nil
}
