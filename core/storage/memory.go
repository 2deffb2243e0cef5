package storage

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore giữ các document trong bộ nhớ, dùng cho tests
// Round-trip qua JSON để giữ đúng semantics của FileStore
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string][]byte

	// FailSaves > 0 làm Save trả về lỗi (giả lập disk fault trong tests)
	// SkipSaves > 0 cho chừng đó Save đi qua trước khi FailSaves có hiệu lực
	FailSaves int
	SkipSaves int
}

// NewMemoryStore tạo MemoryStore rỗng
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Load đọc document từ bộ nhớ
func (s *MemoryStore) Load(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.docs[name]
	if !ok {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Save ghi document vào bộ nhớ
func (s *MemoryStore) Save(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SkipSaves > 0 {
		s.SkipSaves--
	} else if s.FailSaves > 0 {
		s.FailSaves--
		return fmt.Errorf("simulated write failure for %s", name)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.docs[name] = data
	return nil
}
