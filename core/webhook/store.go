package webhook

import (
	"fmt"
	"sync"
	"time"

	"github.com/eojodrabmol/goto-sms-webhook/core/api/models"
	"github.com/eojodrabmol/goto-sms-webhook/core/common"
	"github.com/eojodrabmol/goto-sms-webhook/core/logger"
	"github.com/eojodrabmol/goto-sms-webhook/core/storage"
)

// Store sở hữu toàn bộ NotificationConfig trong hai map rời nhau active/archived
// Invariant: một tên chỉ nằm trong MỘT trong hai map tại mọi thời điểm.
// Map thô không bao giờ lộ ra ngoài - mọi truy cập qua operation set bên dưới,
// snapshot được clone. Một mutex duy nhất serialize các mutation để update
// đồng thời không mất ghi.
//
// Persistence theo kỷ luật commit-then-apply: document JSON được ghi xuống
// collaborator TRƯỚC, chỉ khi ghi thành công mới mutate state trong bộ nhớ.
// Ghi thất bại → operation fail, memory giữ nguyên, không có divergence ngầm.
type Store struct {
	mu       sync.Mutex
	active   map[string]models.NotificationConfig
	archived map[string]models.NotificationConfig

	persist      storage.Store
	changelog    *Recorder
	strictCreate bool
	now          func() time.Time
}

// NewStore tạo Store và load state đã persist (nếu có)
func NewStore(persist storage.Store, changelog *Recorder, strictCreate bool) (*Store, error) {
	s := &Store{
		active:       make(map[string]models.NotificationConfig),
		archived:     make(map[string]models.NotificationConfig),
		persist:      persist,
		changelog:    changelog,
		strictCreate: strictCreate,
		now:          time.Now,
	}

	if err := persist.Load(storage.DocWebhooks, &s.active); err != nil {
		return nil, fmt.Errorf("failed to load webhooks: %w", err)
	}
	if err := persist.Load(storage.DocArchived, &s.archived); err != nil {
		return nil, fmt.Errorf("failed to load archived webhooks: %w", err)
	}

	return s, nil
}

// Create thêm config vào active
// Mặc định overwrite entry cùng tên (hành vi lịch sử); strictCreate bật thì
// tên đã tồn tại trong active trả về conflict error thay vì ghi đè
func (s *Store) Create(name string, cfg models.NotificationConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.active[name]
	if exists && s.strictCreate {
		return common.NewError(common.ErrCodeConfigConflict,
			fmt.Sprintf("Cấu hình '%s' đã tồn tại", name), common.StatusConflict, nil)
	}

	cfg = cfg.Clone()
	cfg.ArchivedAt = ""

	proposed := cloneMap(s.active)
	proposed[name] = cfg

	if err := s.persist.Save(storage.DocWebhooks, proposed); err != nil {
		logger.WithModule("webhook").WithError(err).Error("🗂 [STORE] Không persist được webhooks khi create")
		return common.NewError(common.ErrCodeStorage, "Không ghi được cấu hình xuống đĩa", common.StatusInternalServerError, err)
	}
	s.active = proposed

	s.changelog.Record(models.ActionConfigCreated, name, map[string]any{
		"config":      cfg,
		"overwritten": exists,
	})

	return nil
}

// Update merge partial config lên entry active hiện có
// Trả về snapshot cũ và mới cho changelog/response
func (s *Store) Update(name string, patch models.NotificationConfigPatch) (models.NotificationConfig, models.NotificationConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.active[name]
	if !ok {
		return models.NotificationConfig{}, models.NotificationConfig{}, common.NewError(common.ErrCodeConfigNotFound,
			fmt.Sprintf("Không tìm thấy cấu hình '%s'", name), common.StatusNotFound, nil)
	}

	updated := patch.Apply(old)

	proposed := cloneMap(s.active)
	proposed[name] = updated

	if err := s.persist.Save(storage.DocWebhooks, proposed); err != nil {
		logger.WithModule("webhook").WithError(err).Error("🗂 [STORE] Không persist được webhooks khi update")
		return models.NotificationConfig{}, models.NotificationConfig{}, common.NewError(common.ErrCodeStorage,
			"Không ghi được cấu hình xuống đĩa", common.StatusInternalServerError, err)
	}
	s.active = proposed

	oldSnapshot := old.Clone()
	newSnapshot := updated.Clone()

	s.changelog.Record(models.ActionConfigUpdated, name, map[string]any{
		"old": oldSnapshot,
		"new": newSnapshot,
	})

	return oldSnapshot, newSnapshot, nil
}

// Archive chuyển entry từ active sang archived, đóng dấu archivedAt
func (s *Store) Archive(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.active[name]
	if !ok {
		return common.NewError(common.ErrCodeConfigNotFound,
			fmt.Sprintf("Không tìm thấy cấu hình '%s'", name), common.StatusNotFound, nil)
	}

	archivedCfg := cfg.Clone()
	archivedCfg.ArchivedAt = s.now().UTC().Format(time.RFC3339)

	proposedActive := cloneMap(s.active)
	delete(proposedActive, name)
	proposedArchived := cloneMap(s.archived)
	proposedArchived[name] = archivedCfg

	if err := s.saveBoth(proposedActive, proposedArchived); err != nil {
		return err
	}
	s.active = proposedActive
	s.archived = proposedArchived

	s.changelog.Record(models.ActionConfigArchived, name, map[string]any{
		"archivedAt": archivedCfg.ArchivedAt,
	})

	return nil
}

// Restore chuyển entry từ archived về active, xoá archivedAt
func (s *Store) Restore(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.archived[name]
	if !ok {
		return common.NewError(common.ErrCodeConfigNotFound,
			fmt.Sprintf("Không tìm thấy cấu hình '%s' trong archived", name), common.StatusNotFound, nil)
	}

	restoredCfg := cfg.Clone()
	restoredCfg.ArchivedAt = ""

	proposedActive := cloneMap(s.active)
	proposedActive[name] = restoredCfg
	proposedArchived := cloneMap(s.archived)
	delete(proposedArchived, name)

	if err := s.saveBoth(proposedActive, proposedArchived); err != nil {
		return err
	}
	s.active = proposedActive
	s.archived = proposedArchived

	s.changelog.Record(models.ActionConfigRestored, name, nil)

	return nil
}

// Get trả về snapshot của một config trong active
func (s *Store) Get(name string) (models.NotificationConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.active[name]
	if !ok {
		return models.NotificationConfig{}, false
	}
	return cfg.Clone(), true
}

// List trả về snapshot của cả hai map, không side effect
func (s *Store) List() (map[string]models.NotificationConfig, map[string]models.NotificationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneMap(s.active), cloneMap(s.archived)
}

// Stats trả về số lượng config active/archived
func (s *Store) Stats() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active), len(s.archived)
}

// Import shallow-merge các map từ export dump vào state hiện tại
// Entry trùng tên bị ghi đè; entry khác giữ nguyên
func (s *Store) Import(webhooks map[string]models.NotificationConfig, archived map[string]models.NotificationConfig) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposedActive := cloneMap(s.active)
	for name, cfg := range webhooks {
		c := cfg.Clone()
		c.ArchivedAt = ""
		proposedActive[name] = c
	}

	// Giữ disjointness: tên import vào cả hai map thì active thắng;
	// tên import vào archived đang nằm trong active (không import) thì chuyển đi
	proposedArchived := cloneMap(s.archived)
	for name, cfg := range archived {
		if _, imported := webhooks[name]; imported {
			continue
		}
		delete(proposedActive, name)
		proposedArchived[name] = cfg.Clone()
	}
	for name := range webhooks {
		delete(proposedArchived, name)
	}

	if err := s.saveBoth(proposedActive, proposedArchived); err != nil {
		return 0, err
	}
	s.active = proposedActive
	s.archived = proposedArchived

	count := len(webhooks) + len(archived)
	s.changelog.Record(models.ActionDataImported, models.SystemName, map[string]any{
		"importedWebhooks": len(webhooks),
		"importedArchived": len(archived),
	})

	return count, nil
}

// saveBoth ghi cả hai document; document đầu đã ghi mà document sau fail thì
// ghi lại bản cũ của document đầu (best effort) để đĩa không lệch khỏi memory
func (s *Store) saveBoth(active, archived map[string]models.NotificationConfig) error {
	if err := s.persist.Save(storage.DocWebhooks, active); err != nil {
		logger.WithModule("webhook").WithError(err).Error("🗂 [STORE] Không persist được webhooks")
		return common.NewError(common.ErrCodeStorage, "Không ghi được cấu hình xuống đĩa", common.StatusInternalServerError, err)
	}
	if err := s.persist.Save(storage.DocArchived, archived); err != nil {
		logger.WithModule("webhook").WithError(err).Error("🗂 [STORE] Không persist được archived, rollback webhooks")
		if rbErr := s.persist.Save(storage.DocWebhooks, s.active); rbErr != nil {
			logger.WithModule("webhook").WithError(rbErr).Error("🗂 [STORE] Rollback webhooks cũng thất bại")
		}
		return common.NewError(common.ErrCodeStorage, "Không ghi được archived xuống đĩa", common.StatusInternalServerError, err)
	}
	return nil
}

// Changelog trả về Recorder gắn với store (cho handler ghi webhook_triggered)
func (s *Store) Changelog() *Recorder {
	return s.changelog
}

// cloneMap copy map config với snapshot từng entry
func cloneMap(in map[string]models.NotificationConfig) map[string]models.NotificationConfig {
	out := make(map[string]models.NotificationConfig, len(in))
	for k, v := range in {
		out[k] = v.Clone()
	}
	return out
}
