package webhook

import (
	"sync"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/api/models"
	"github.com/eojodrabmol/goto-sms-webhook/core/logger"
	"github.com/eojodrabmol/goto-sms-webhook/core/storage"
)

// maxChangelogEntries là số entry tối đa giữ lại, cũ nhất bị drop trước
const maxChangelogEntries = 100

// Recorder sở hữu changelog append-only có giới hạn của các mutation
// Thứ tự theo thời gian, newest-last; presentation layer tự reverse nếu cần
type Recorder struct {
	mu      sync.Mutex
	entries []models.ChangelogEntry
	persist storage.Store
	version string
	now     func() time.Time
}

// NewRecorder tạo Recorder và load changelog đã persist (nếu có)
func NewRecorder(persist storage.Store, version string) (*Recorder, error) {
	r := &Recorder{
		persist: persist,
		version: version,
		now:     time.Now,
	}

	if err := persist.Load(storage.DocChangelog, &r.entries); err != nil {
		return nil, err
	}

	// Document cũ có thể vượt cap (producer version trước), truncate khi load
	if len(r.entries) > maxChangelogEntries {
		r.entries = r.entries[len(r.entries)-maxChangelogEntries:]
	}

	return r, nil
}

// Record append một entry với thời điểm hiện tại và schema version tag cố định,
// truncate về 100 entry gần nhất rồi persist
//
// Persist thất bại chỉ được log - changelog mang tính advisory, mất một entry
// trên đĩa không được phép làm fail một dispatch
func (r *Recorder) Record(action string, name string, details any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := models.ChangelogEntry{
		Timestamp:   r.now().UTC().Format(time.RFC3339),
		Action:      action,
		WebhookName: name,
		Details:     details,
		Version:     r.version,
	}

	r.entries = append(r.entries, entry)
	if len(r.entries) > maxChangelogEntries {
		r.entries = r.entries[len(r.entries)-maxChangelogEntries:]
	}

	if err := r.persist.Save(storage.DocChangelog, r.entries); err != nil {
		logger.WithError(err).WithFields(map[string]interface{}{
			"action": action,
			"name":   name,
		}).Error("🗂 [CHANGELOG] Không persist được changelog")
	}
}

// List trả về snapshot toàn bộ changelog, newest-last
func (r *Recorder) List() []models.ChangelogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ChangelogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len trả về số entry hiện tại
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
