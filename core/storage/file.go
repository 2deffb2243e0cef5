package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore lưu các JSON document dưới dạng flat file trong một thư mục data
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore tạo FileStore, tạo thư mục data nếu chưa tồn tại
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Load đọc document từ file <dir>/<name>.json
// File chưa tồn tại không phải là lỗi (trạng thái rỗng ban đầu)
func (s *FileStore) Load(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// Save ghi document xuống file, atomic qua temp file + rename
// để một lần ghi dở không phá hỏng document cũ
func (s *FileStore) Save(name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		// Dọn temp file nếu rename thất bại
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to commit %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}
