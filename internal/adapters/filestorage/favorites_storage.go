// Package filestorage хранит значения избранного в одном JSON-файле на диске.
// Подходит для одиночного инстанса без PostgreSQL.
package filestorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"real-estate-marketplace/internal/core/domain"
)

// FavoritesStorage - key-value хранилище поверх файла вида {"<key>": <value>}.
// Значения хранятся как json.RawMessage, поэтому документ избранного остается читаемым в файле.
type FavoritesStorage struct {
	path string

	mu   sync.Mutex
	data map[string]json.RawMessage
}

// NewFavoritesStorage открывает файл по пути path. Отсутствующий файл - пустое хранилище.
func NewFavoritesStorage(path string) (*FavoritesStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("favorites file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	s := &FavoritesStorage{path: path, data: map[string]json.RawMessage{}}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &s.data); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *FavoritesStorage) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok := s.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Save записывает значение и атомарно переписывает файл (временный файл + rename).
// Значение должно быть валидным JSON.
func (s *FavoritesStorage) Save(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for key %s is not valid JSON", key)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make(json.RawMessage, len(value))
	copy(stored, value)

	previous, existed := s.data[key]
	s.data[key] = stored
	if err := s.writeFile(); err != nil {
		if existed {
			s.data[key] = previous
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

func (s *FavoritesStorage) writeFile() error {
	body, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode favorites file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}
