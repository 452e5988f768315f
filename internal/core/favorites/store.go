// Package favorites реализует набор избранных объявлений пользователя:
// состояние в памяти, асинхронную запись в хранилище и пересинхронизацию
// по уведомлениям об изменениях от других экземпляров.
package favorites

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"

	"github.com/google/uuid"
)

const (
	defaultPersistTimeout = 5 * time.Second
	defaultPersistBackoff = 100 * time.Millisecond
)

// StoreConfig - настройки одного набора избранного.
type StoreConfig struct {
	Key string
	// PersistRetries - число повторов записи после первой неудачной попытки.
	PersistRetries int
	PersistBackoff time.Duration
	PersistTimeout time.Duration
	// ExternalSync - уведомления доставляет владелец набора (Registry),
	// сам Store на notifier не подписывается, а только публикует в него.
	ExternalSync bool
}

func (c StoreConfig) persistTimeout() time.Duration {
	if c.PersistTimeout <= 0 {
		return defaultPersistTimeout
	}
	return c.PersistTimeout
}

// Store - набор избранного одного владельца.
// Чтения всегда видят последнюю локальную запись, хранилище догоняет асинхронно.
type Store struct {
	cfg    StoreConfig
	origin string

	storage  port.FavoritesStoragePort
	notifier port.StorageChangeNotifierPort
	logger   port.LoggerPort
	metrics  port.MetricsPort

	mu        sync.RWMutex
	ids       map[string]struct{}
	revision  uint64 // растет при каждой локальной мутации
	persisted uint64 // последняя ревизия, записанная в хранилище

	// syncPaused - пересинхронизация пропущена из-за незаписанных изменений,
	// предупреждение уже выведено. Сбрасывается успешной записью.
	syncPaused bool

	persistMu sync.Mutex
	closed    atomic.Bool

	writeCh     chan struct{}
	stopCh      chan struct{}
	writerDone  chan struct{}
	unsubscribe func()
	closeOnce   sync.Once
	closeErr    error
}

// NewStore загружает набор из хранилища и подписывается на изменения.
// Ошибки загрузки и подписки не фатальны: набор стартует пустым
// и работает без синхронизации.
func NewStore(
	ctx context.Context,
	cfg StoreConfig,
	storage port.FavoritesStoragePort,
	notifier port.StorageChangeNotifierPort,
	logger port.LoggerPort,
	metrics port.MetricsPort,
) (*Store, error) {
	if cfg.Key == "" {
		return nil, errors.New("favorites store key is required")
	}
	if storage == nil {
		return nil, errors.New("favorites storage is required")
	}
	if cfg.PersistBackoff <= 0 {
		cfg.PersistBackoff = defaultPersistBackoff
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = defaultPersistTimeout
	}
	if cfg.PersistRetries < 0 {
		cfg.PersistRetries = 0
	}
	if metrics == nil {
		metrics = port.NoopMetrics{}
	}
	if logger == nil {
		logger = contextkeys.LoggerFromContext(ctx)
	}

	s := &Store{
		cfg:        cfg,
		origin:     uuid.NewString(),
		storage:    storage,
		notifier:   notifier,
		metrics:    metrics,
		ids:        make(map[string]struct{}),
		writeCh:    make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		writerDone: make(chan struct{}),
	}
	s.logger = logger.WithFields(port.Fields{
		"component":     "FavoritesStore",
		"favorites_key": cfg.Key,
		"origin":        s.origin,
	})

	if ids, err := s.load(ctx); err != nil {
		s.logger.Warn("Failed to load favorites, starting with an empty set", port.Fields{"error": err.Error()})
	} else {
		s.ids = ids
	}

	if notifier != nil && !cfg.ExternalSync {
		unsubscribe, err := notifier.Subscribe(s.handleChange)
		if err != nil {
			s.logger.Warn("Failed to subscribe to storage changes, cross-session sync disabled", port.Fields{"error": err.Error()})
		} else {
			s.unsubscribe = unsubscribe
		}
	}

	go s.writerLoop()

	s.logger.Debug("Favorites store initialized", port.Fields{"count": len(s.ids)})
	return s, nil
}

// Key возвращает ключ хранилища набора.
func (s *Store) Key() string { return s.cfg.Key }

// Origin возвращает идентификатор экземпляра, которым помечаются его записи.
func (s *Store) Origin() string { return s.origin }

func (s *Store) Add(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	if _, ok := s.ids[id]; ok {
		s.mu.Unlock()
		return
	}
	s.ids[id] = struct{}{}
	s.revision++
	s.mu.Unlock()

	s.metrics.RecordFavoriteMutation("add")
	s.schedulePersist()
}

func (s *Store) Remove(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	if _, ok := s.ids[id]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.ids, id)
	s.revision++
	s.mu.Unlock()

	s.metrics.RecordFavoriteMutation("remove")
	s.schedulePersist()
}

// Toggle переключает членство и возвращает новое состояние.
func (s *Store) Toggle(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	_, present := s.ids[id]
	if present {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
	s.revision++
	s.mu.Unlock()

	s.metrics.RecordFavoriteMutation("toggle")
	s.schedulePersist()
	return !present
}

func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// IDs возвращает отсортированную копию набора.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.ids)
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

func (s *Store) Clear() {
	s.mu.Lock()
	if len(s.ids) == 0 {
		s.mu.Unlock()
		return
	}
	s.ids = make(map[string]struct{})
	s.revision++
	s.mu.Unlock()

	s.metrics.RecordFavoriteMutation("clear")
	s.schedulePersist()
}

// FavoriteListings возвращает объявления из all, входящие в набор, в порядке all.
// ID, которых нет в каталоге, пропускаются.
func (s *Store) FavoriteListings(all []domain.Listing) []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Listing, 0, min(len(s.ids), len(all)))
	for i := range all {
		if _, ok := s.ids[all[i].ID]; ok {
			result = append(result, all[i])
		}
	}
	return result
}

// Flush синхронно записывает последнее состояние, если оно еще не записано.
func (s *Store) Flush(ctx context.Context) error {
	return s.persistLatest(ctx)
}

// Close отписывается от уведомлений, останавливает фоновую запись
// и сохраняет последнее состояние. Повторные вызовы возвращают результат первого.
func (s *Store) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		close(s.stopCh)
		<-s.writerDone
		s.closeErr = s.persistLatest(ctx)
		s.logger.Debug("Favorites store closed", nil)
	})
	return s.closeErr
}

func (s *Store) schedulePersist() {
	if s.closed.Load() {
		// фоновой записи уже нет: пишем сразу
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
		_ = s.persistLatest(ctx)
		cancel()
		return
	}
	select {
	case s.writeCh <- struct{}{}:
	default:
		// запись уже запланирована и возьмет самый свежий снимок
	}
}

func (s *Store) writerLoop() {
	defer close(s.writerDone)
	for {
		select {
		case <-s.stopCh:
			return
		case <-s.writeCh:
			ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
			_ = s.persistLatest(ctx) // ошибка уже залогирована и учтена в метриках
			cancel()
		}
	}
}

func (s *Store) persistLatest(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.RLock()
	revision := s.revision
	if revision == s.persisted {
		s.mu.RUnlock()
		return nil
	}
	body, err := EncodeDocument(s.ids, time.Now())
	s.mu.RUnlock()
	if err != nil {
		s.logger.Error("Failed to encode favorites", err, nil)
		s.metrics.RecordFavoritesPersist(false)
		return err
	}

	if err := s.saveWithRetry(ctx, body); err != nil {
		s.logger.Error("Failed to persist favorites, in-memory state kept", err, port.Fields{"revision": revision})
		s.metrics.RecordFavoritesPersist(false)
		return err
	}

	s.mu.Lock()
	if revision > s.persisted {
		s.persisted = revision
	}
	s.syncPaused = false
	s.mu.Unlock()
	s.metrics.RecordFavoritesPersist(true)

	if s.notifier != nil {
		change := domain.StorageChange{Key: s.cfg.Key, Origin: s.origin, ChangedAt: time.Now().UTC()}
		if err := s.notifier.Publish(ctx, change); err != nil {
			s.logger.Warn("Failed to publish favorites change", port.Fields{"error": err.Error()})
		}
	}
	return nil
}

func (s *Store) saveWithRetry(ctx context.Context, body []byte) error {
	attempts := s.cfg.PersistRetries + 1
	delay := s.cfg.PersistBackoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = s.storage.Save(ctx, s.cfg.Key, body); lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		s.logger.Warn("Favorites save attempt failed, retrying", port.Fields{
			"attempt": attempt,
			"delay":   delay.String(),
			"error":   lastErr.Error(),
		})

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("favorites save aborted after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
		delay *= 2
	}
	return fmt.Errorf("favorites save failed after %d attempts: %w", attempts, lastErr)
}

func (s *Store) load(ctx context.Context) (map[string]struct{}, error) {
	raw, err := s.storage.Load(ctx, s.cfg.Key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return make(map[string]struct{}), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return DecodeDocument(raw)
}

func (s *Store) handleChange(change domain.StorageChange) {
	if change.Key != s.cfg.Key || change.Origin == s.origin {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()
	s.resync(ctx)
}

// resync перечитывает набор из хранилища. Если за время чтения появились
// локальные незаписанные изменения, они остаются: их запись победит.
func (s *Store) resync(ctx context.Context) {
	s.mu.RLock()
	before := s.revision
	s.mu.RUnlock()

	ids, err := s.load(ctx)
	if err != nil {
		s.logger.Warn("Failed to resync favorites, keeping last known state", port.Fields{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revision != before {
		s.logger.Debug("Skipping resync, local change arrived during reload", port.Fields{"revision": s.revision})
		return
	}
	if s.revision != s.persisted {
		if !s.syncPaused {
			s.syncPaused = true
			s.logger.Warn("Skipping resync, local changes are not persisted yet; cross-session sync paused until the next successful save", port.Fields{
				"revision":  s.revision,
				"persisted": s.persisted,
			})
		}
		return
	}
	s.ids = ids
	s.metrics.RecordFavoritesResync()
	s.logger.Debug("Favorites resynced from storage", port.Fields{"count": len(ids)})
}
