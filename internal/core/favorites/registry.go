package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
)

const (
	defaultIdleTTL         = 30 * time.Minute
	defaultCleanupInterval = time.Minute
)

// Key строит ключ хранилища для владельца: "<namespace>:favorites:<owner>".
func Key(namespace, ownerID string) string {
	return fmt.Sprintf("%s:favorites:%s", namespace, ownerID)
}

// ErrRegistryClosed возвращается StoreFor после Close.
var ErrRegistryClosed = errors.New("favorites registry is closed")

// RegistryOption настраивает Registry.
type RegistryOption func(*Registry)

// WithIdleEviction включает фоновое закрытие наборов, к которым не обращались дольше idleTTL.
// Нулевые значения заменяются значениями по умолчанию.
func WithIdleEviction(idleTTL, cleanupInterval time.Duration) RegistryOption {
	return func(r *Registry) {
		if idleTTL <= 0 {
			idleTTL = defaultIdleTTL
		}
		if cleanupInterval <= 0 {
			cleanupInterval = defaultCleanupInterval
		}
		r.idleTTL = idleTTL
		r.cleanupInterval = cleanupInterval
	}
}

type registryEntry struct {
	store    *Store
	lastUsed time.Time
}

// Registry держит по одному Store на владельца и создает их по требованию.
// На уведомления подписан сам реестр и раздает их наборам по ключу.
type Registry struct {
	namespace string
	template  StoreConfig

	storage  port.FavoritesStoragePort
	notifier port.StorageChangeNotifierPort
	logger   port.LoggerPort
	metrics  port.MetricsPort

	idleTTL         time.Duration
	cleanupInterval time.Duration

	mu          sync.Mutex
	stores      map[string]*registryEntry
	closing     map[string]chan struct{}
	closed      bool
	unsubscribe func()

	stopCh      chan struct{}
	cleanerDone chan struct{}
}

// NewRegistry создает реестр. Поле Key в template игнорируется.
func NewRegistry(
	namespace string,
	template StoreConfig,
	storage port.FavoritesStoragePort,
	notifier port.StorageChangeNotifierPort,
	logger port.LoggerPort,
	metrics port.MetricsPort,
	opts ...RegistryOption,
) *Registry {
	if logger == nil {
		logger = contextkeys.NoopLogger()
	}
	template.ExternalSync = true

	r := &Registry{
		namespace: namespace,
		template:  template,
		storage:   storage,
		notifier:  notifier,
		logger:    logger,
		metrics:   metrics,
		stores:    make(map[string]*registryEntry),
		closing:   make(map[string]chan struct{}),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if notifier != nil {
		unsubscribe, err := notifier.Subscribe(r.dispatchChange)
		if err != nil {
			logger.Warn("Failed to subscribe to storage changes, cross-session sync disabled", port.Fields{
				"component": "FavoritesRegistry",
				"error":     err.Error(),
			})
		} else {
			r.unsubscribe = unsubscribe
		}
	}

	if r.idleTTL > 0 {
		r.cleanerDone = make(chan struct{})
		go r.cleanupLoop()
	}
	return r
}

// StoreFor возвращает набор владельца, при первом обращении загружая его из хранилища.
func (r *Registry) StoreFor(ctx context.Context, ownerID string) (port.FavoritesSetPort, error) {
	return r.Store(ctx, ownerID)
}

// Store - то же, что StoreFor, но возвращает конкретный тип.
func (r *Registry) Store(ctx context.Context, ownerID string) (*Store, error) {
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}
	key := Key(r.namespace, ownerID)

	r.mu.Lock()
	for {
		if r.closed {
			r.mu.Unlock()
			return nil, ErrRegistryClosed
		}
		if entry, ok := r.stores[key]; ok {
			entry.lastUsed = time.Now()
			r.mu.Unlock()
			return entry.store, nil
		}
		done, closing := r.closing[key]
		if !closing {
			break
		}
		// старый набор владельца еще дописывает состояние
		r.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		r.mu.Lock()
	}
	defer r.mu.Unlock()

	cfg := r.template
	cfg.Key = key
	store, err := NewStore(ctx, cfg, r.storage, r.notifier, r.logger, r.metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create favorites store for owner %s: %w", ownerID, err)
	}
	r.stores[key] = &registryEntry{store: store, lastUsed: time.Now()}
	return store, nil
}

// Len возвращает число открытых наборов.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// EvictIdle закрывает и убирает наборы, к которым не обращались с момента before.
// Пока набор дописывает состояние, StoreFor для того же владельца ждет.
func (r *Registry) EvictIdle(ctx context.Context, before time.Time) int {
	r.mu.Lock()
	idle := make(map[string]*Store)
	for key, entry := range r.stores {
		if entry.lastUsed.After(before) {
			continue
		}
		idle[key] = entry.store
		delete(r.stores, key)
	}
	done := make(chan struct{})
	for key := range idle {
		r.closing[key] = done
	}
	remaining := len(r.stores)
	r.mu.Unlock()

	if len(idle) == 0 {
		return 0
	}

	for key, store := range idle {
		if err := store.Close(ctx); err != nil {
			r.logger.Error("Failed to flush idle favorites store", err, port.Fields{"favorites_key": key})
		}
	}

	r.mu.Lock()
	for key := range idle {
		delete(r.closing, key)
	}
	r.mu.Unlock()
	close(done)

	r.logger.Debug("Idle favorites stores evicted", port.Fields{"evicted": len(idle), "remaining": remaining})
	return len(idle)
}

func (r *Registry) cleanupLoop() {
	defer close(r.cleanerDone)
	ticker := time.NewTicker(r.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case now := <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), r.template.persistTimeout())
			r.EvictIdle(ctx, now.Add(-r.idleTTL))
			cancel()
		}
	}
}

func (r *Registry) dispatchChange(change domain.StorageChange) {
	r.mu.Lock()
	entry, ok := r.stores[change.Key]
	r.mu.Unlock()
	if !ok {
		return
	}
	entry.store.handleChange(change)
}

// Close закрывает все созданные наборы, дописывая незаписанные изменения.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
	stores := make([]*Store, 0, len(r.stores))
	for _, entry := range r.stores {
		stores = append(stores, entry.store)
	}
	r.mu.Unlock()

	close(r.stopCh)
	if r.cleanerDone != nil {
		<-r.cleanerDone
	}

	var errs []error
	for _, store := range stores {
		if err := store.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", store.Key(), err))
		}
	}
	return errors.Join(errs...)
}
