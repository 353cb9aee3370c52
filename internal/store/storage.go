package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage is the persistence boundary: one serialized JSON document per
// collection key. Load returns nil without error when the key has never
// been saved.
type Storage interface {
	Load(key string) ([]byte, error)
	Save(key string, data []byte) error
}

// FileStorage keeps each collection in <dir>/<key>.json.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStorage) Load(key string) ([]byte, error) {
	path := f.path(key)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("❌ Failed to check JSON file: %w", err)
	}

	jsonBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to read JSON file: %w", err)
	}
	return jsonBytes, nil
}

func (f *FileStorage) Save(key string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("❌ Failed to create data directory: %w", err)
	}

	err := os.WriteFile(f.path(key), data, 0644)
	if err != nil {
		return fmt.Errorf("❌ Failed to write JSON file: %w", err)
	}
	return nil
}
