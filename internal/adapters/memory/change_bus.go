package memory

import (
	"context"
	"sync"

	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
)

// ChangeBus доставляет уведомления об изменениях подписчикам внутри процесса.
// Доставка синхронная: Publish возвращается после вызова всех обработчиков.
type ChangeBus struct {
	mu       sync.RWMutex
	handlers map[uint64]port.StorageChangeHandler
	nextID   uint64
}

func NewChangeBus() *ChangeBus {
	return &ChangeBus{handlers: make(map[uint64]port.StorageChangeHandler)}
}

func (b *ChangeBus) Publish(ctx context.Context, change domain.StorageChange) error {
	b.mu.RLock()
	handlers := make([]port.StorageChangeHandler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(change)
	}
	return nil
}

func (b *ChangeBus) Subscribe(handler port.StorageChangeHandler) (func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.handlers, id)
			b.mu.Unlock()
		})
	}, nil
}

// Subscribers возвращает число активных подписчиков.
func (b *ChangeBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
