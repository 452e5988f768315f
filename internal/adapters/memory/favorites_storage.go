package memory

import (
	"context"
	"sync"

	"real-estate-marketplace/internal/core/domain"
)

// FavoritesStorage - key-value хранилище в памяти процесса.
// Используется в тестах и при FAVORITES_BACKEND=memory.
type FavoritesStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewFavoritesStorage() *FavoritesStorage {
	return &FavoritesStorage{data: make(map[string][]byte)}
}

func (s *FavoritesStorage) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (s *FavoritesStorage) Save(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}
