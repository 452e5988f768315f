package port

import (
	"context"
	"real-estate-marketplace/internal/core/domain"
)

// FavoritesStoragePort - key-value хранилище, переживающее перезапуск процесса.
type FavoritesStoragePort interface {
	// Load возвращает domain.ErrKeyNotFound, если ключ еще не записывался.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// StorageChangeHandler вызывается при изменении значения в хранилище.
type StorageChangeHandler func(change domain.StorageChange)

// StorageChangeNotifierPort - канал уведомлений об изменениях хранилища.
type StorageChangeNotifierPort interface {
	Publish(ctx context.Context, change domain.StorageChange) error
	// Subscribe регистрирует обработчик и возвращает функцию отписки.
	Subscribe(handler StorageChangeHandler) (unsubscribe func(), err error)
}
