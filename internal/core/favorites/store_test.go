package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"real-estate-marketplace/internal/adapters/memory"
	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test:favorites:user-1"

type metricsSpy struct {
	mu            sync.Mutex
	mutations     []string
	persistOK     int
	persistFailed int
	resyncs       int
}

func (m *metricsSpy) RecordFavoriteMutation(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations = append(m.mutations, op)
}

func (m *metricsSpy) RecordFavoritesPersist(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if success {
		m.persistOK++
	} else {
		m.persistFailed++
	}
}

func (m *metricsSpy) RecordFavoritesResync() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resyncs++
}

func (m *metricsSpy) RecordListingQuery(time.Duration, int) {}

func (m *metricsSpy) snapshot() (persistOK, persistFailed, resyncs int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistOK, m.persistFailed, m.resyncs
}

// failingStorage отказывает на запись и, опционально, на чтение.
type failingStorage struct {
	failLoad bool
	saves    atomic.Int32
}

func (f *failingStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if f.failLoad {
		return nil, errors.New("storage unavailable")
	}
	return nil, domain.ErrKeyNotFound
}

func (f *failingStorage) Save(ctx context.Context, key string, value []byte) error {
	f.saves.Add(1)
	return errors.New("quota exceeded")
}

// gatedStorage блокирует Save до закрытия gate.
type gatedStorage struct {
	*memory.FavoritesStorage
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (g *gatedStorage) Save(ctx context.Context, key string, value []byte) error {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.gate:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.FavoritesStorage.Save(ctx, key, value)
}

type brokenNotifier struct{}

func (brokenNotifier) Publish(context.Context, domain.StorageChange) error {
	return errors.New("broker down")
}

func (brokenNotifier) Subscribe(port.StorageChangeHandler) (func(), error) {
	return nil, errors.New("broker down")
}

func newTestStore(t *testing.T, key string, storage port.FavoritesStoragePort, notifier port.StorageChangeNotifierPort, metrics port.MetricsPort) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), StoreConfig{
		Key:            key,
		PersistRetries: 2,
		PersistBackoff: time.Millisecond,
		PersistTimeout: time.Second,
	}, storage, notifier, contextkeys.NoopLogger(), metrics)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(context.Background(), StoreConfig{}, memory.NewFavoritesStorage(), nil, contextkeys.NoopLogger(), nil)
	assert.Error(t, err)

	_, err = NewStore(context.Background(), StoreConfig{Key: testKey}, nil, nil, contextkeys.NoopLogger(), nil)
	assert.Error(t, err)
}

func TestStore_ToggleTwiceReturnsToEmpty(t *testing.T) {
	store := newTestStore(t, testKey, memory.NewFavoritesStorage(), nil, nil)

	assert.True(t, store.Toggle("5"))
	assert.Equal(t, []string{"5"}, store.IDs())
	assert.True(t, store.Contains("5"))

	assert.False(t, store.Toggle("5"))
	assert.Empty(t, store.IDs())
	assert.False(t, store.Contains("5"))
}

func TestStore_MembershipIsIdempotent(t *testing.T) {
	metrics := &metricsSpy{}
	store := newTestStore(t, testKey, memory.NewFavoritesStorage(), nil, metrics)

	store.Remove("1")
	store.Clear()
	assert.Equal(t, 0, store.Count())

	store.Add("1")
	store.Add("1")
	assert.Equal(t, []string{"1"}, store.IDs())

	store.Clear()
	store.Clear()
	assert.Equal(t, 0, store.Count())

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.Equal(t, []string{"add", "clear"}, metrics.mutations)
}

func TestStore_IgnoresEmptyID(t *testing.T) {
	metrics := &metricsSpy{}
	store := newTestStore(t, testKey, memory.NewFavoritesStorage(), nil, metrics)

	store.Add("")
	assert.False(t, store.Toggle(""))
	store.Remove("")
	assert.Equal(t, 0, store.Count())

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.Empty(t, metrics.mutations)
}

func TestStore_FavoriteListingsJoinsInCatalogOrder(t *testing.T) {
	store := newTestStore(t, testKey, memory.NewFavoritesStorage(), nil, nil)
	catalog := []domain.Listing{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}

	store.Add("3")
	store.Add("99")
	store.Add("1")

	got := store.FavoriteListings(catalog)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)

	assert.Empty(t, store.FavoriteListings(nil))
}

func TestStore_UnknownIDYieldsEmptyJoin(t *testing.T) {
	store := newTestStore(t, testKey, memory.NewFavoritesStorage(), nil, nil)
	store.Add("99")

	got := store.FavoriteListings([]domain.Listing{{ID: "1"}, {ID: "2"}})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestStore_PersistsAndReloads(t *testing.T) {
	storage := memory.NewFavoritesStorage()
	first := newTestStore(t, testKey, storage, nil, nil)

	first.Add("b")
	first.Add("a")
	require.NoError(t, first.Flush(context.Background()))

	raw, err := storage.Load(context.Background(), testKey)
	require.NoError(t, err)

	var doc domain.FavoritesDocument
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, domain.FavoritesDocumentVersion, doc.Version)
	assert.Equal(t, []string{"a", "b"}, doc.Favorites)
	assert.False(t, doc.UpdatedAt.IsZero())

	second := newTestStore(t, testKey, storage, nil, nil)
	assert.Equal(t, []string{"a", "b"}, second.IDs())
}

func TestStore_ReadsLegacyArray(t *testing.T) {
	storage := memory.NewFavoritesStorage()
	require.NoError(t, storage.Save(context.Background(), testKey, []byte(`["2", "1", "2"]`)))

	store := newTestStore(t, testKey, storage, nil, nil)
	assert.Equal(t, []string{"1", "2"}, store.IDs())
}

func TestStore_CorruptedValueStartsEmpty(t *testing.T) {
	storage := memory.NewFavoritesStorage()
	require.NoError(t, storage.Save(context.Background(), testKey, []byte(`{"favorites": 42}`)))

	store := newTestStore(t, testKey, storage, nil, nil)
	assert.Equal(t, 0, store.Count())

	store.Add("1")
	require.NoError(t, store.Flush(context.Background()))

	reloaded := newTestStore(t, testKey, storage, nil, nil)
	assert.Equal(t, []string{"1"}, reloaded.IDs())
}

func TestStore_LoadFailureDegradesToEmptySet(t *testing.T) {
	store := newTestStore(t, testKey, &failingStorage{failLoad: true}, nil, nil)
	assert.Equal(t, 0, store.Count())

	store.Add("1")
	assert.True(t, store.Contains("1"))
}

func TestStore_SaveFailureKeepsInMemoryState(t *testing.T) {
	storage := &failingStorage{}
	metrics := &metricsSpy{}
	store := newTestStore(t, testKey, storage, nil, metrics)

	store.Add("1")
	assert.True(t, store.Contains("1"))

	err := store.Flush(context.Background())
	require.Error(t, err)
	assert.GreaterOrEqual(t, storage.saves.Load(), int32(3))
	assert.True(t, store.Contains("1"))

	_, failed, _ := metrics.snapshot()
	assert.GreaterOrEqual(t, failed, 1)
}

func TestStore_BrokenNotifierDisablesSyncOnly(t *testing.T) {
	storage := memory.NewFavoritesStorage()
	store := newTestStore(t, testKey, storage, brokenNotifier{}, nil)

	store.Add("1")
	require.NoError(t, store.Flush(context.Background()))

	raw, err := storage.Load(context.Background(), testKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"1"`)
}

func TestStore_PropagatesChangesBetweenInstances(t *testing.T) {
	storage := memory.NewFavoritesStorage()
	bus := memory.NewChangeBus()
	metrics := &metricsSpy{}

	tabA := newTestStore(t, testKey, storage, bus, nil)
	tabB := newTestStore(t, testKey, storage, bus, metrics)
	other := newTestStore(t, "test:favorites:user-2", storage, bus, nil)

	tabA.Add("7")
	require.NoError(t, tabA.Flush(context.Background()))

	assert.True(t, tabB.Contains("7"))
	assert.False(t, other.Contains("7"))

	tabB.Remove("7")
	require.NoError(t, tabB.Flush(context.Background()))
	assert.False(t, tabA.Contains("7"))

	_, _, resyncs := metrics.snapshot()
	assert.GreaterOrEqual(t, resyncs, 1)
}

func TestStore_IgnoresOwnChanges(t *testing.T) {
	storage := memory.NewFavoritesStorage()
	metrics := &metricsSpy{}
	store := newTestStore(t, testKey, storage, nil, metrics)

	store.Add("1")
	require.NoError(t, store.Flush(context.Background()))

	store.handleChange(domain.StorageChange{Key: testKey, Origin: store.Origin()})
	store.handleChange(domain.StorageChange{Key: "another-key", Origin: "someone"})

	_, _, resyncs := metrics.snapshot()
	assert.Equal(t, 0, resyncs)
}

func TestStore_PendingLocalChangesWinOverResync(t *testing.T) {
	inner := memory.NewFavoritesStorage()
	require.NoError(t, inner.Save(context.Background(), testKey, []byte(`["remote"]`)))

	storage := &gatedStorage{FavoritesStorage: inner, gate: make(chan struct{}), entered: make(chan struct{})}
	store := newTestStore(t, testKey, storage, nil, nil)
	require.Equal(t, []string{"remote"}, store.IDs())

	store.Add("local")
	select {
	case <-storage.entered:
	case <-time.After(time.Second):
		t.Fatal("writer did not start persisting")
	}

	store.handleChange(domain.StorageChange{Key: testKey, Origin: "another-tab"})
	assert.True(t, store.Contains("local"))

	close(storage.gate)
	require.NoError(t, store.Flush(context.Background()))

	raw, err := inner.Load(context.Background(), testKey)
	require.NoError(t, err)
	decoded, err := DecodeDocument(raw)
	require.NoError(t, err)
	assert.Contains(t, decoded, "local")
	assert.Contains(t, decoded, "remote")
}

func TestStore_CloseFlushesAndUnsubscribes(t *testing.T) {
	storage := memory.NewFavoritesStorage()
	bus := memory.NewChangeBus()

	store, err := NewStore(context.Background(), StoreConfig{Key: testKey}, storage, bus, contextkeys.NoopLogger(), nil)
	require.NoError(t, err)
	require.Equal(t, 1, bus.Subscribers())

	store.Add("1")
	require.NoError(t, store.Close(context.Background()))
	require.NoError(t, store.Close(context.Background()))
	assert.Equal(t, 0, bus.Subscribers())

	raw, err := storage.Load(context.Background(), testKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"1"`)
}

func TestStore_ConcurrentMutations(t *testing.T) {
	storage := memory.NewFavoritesStorage()
	store := newTestStore(t, testKey, storage, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Add(fmt.Sprintf("id-%d", i))
			_ = store.Contains("id-0")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Count())
	require.NoError(t, store.Flush(context.Background()))

	reloaded := newTestStore(t, testKey, storage, nil, nil)
	assert.Equal(t, 50, reloaded.Count())
}

func TestDecodeDocument(t *testing.T) {
	testCases := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{name: "current format", raw: `{"version":1,"favorites":["a","b"],"updated_at":"2026-01-02T03:04:05Z"}`, want: []string{"a", "b"}},
		{name: "legacy array", raw: `["x"]`, want: []string{"x"}},
		{name: "empty value", raw: `  `, want: []string{}},
		{name: "future version", raw: `{"version":2,"favorites":[]}`, wantErr: true},
		{name: "missing favorites", raw: `{"version":1}`, wantErr: true},
		{name: "not json", raw: `favorites`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeDocument([]byte(tc.raw))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, sortedIDs(got))
		})
	}
}

// warnRecorder считает предупреждения по тексту сообщения.
type warnRecorder struct {
	mu    sync.Mutex
	warns map[string]int
}

func (w *warnRecorder) Info(string, port.Fields)         {}
func (w *warnRecorder) Debug(string, port.Fields)        {}
func (w *warnRecorder) Error(string, error, port.Fields) {}
func (w *warnRecorder) Warn(msg string, _ port.Fields) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.warns[msg]++
}
func (w *warnRecorder) WithFields(port.Fields) port.LoggerPort { return w }

func (w *warnRecorder) count(substr string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for msg, c := range w.warns {
		if strings.Contains(msg, substr) {
			n += c
		}
	}
	return n
}

func TestStore_SaveFailurePausesResyncWithOneWarning(t *testing.T) {
	logger := &warnRecorder{warns: map[string]int{}}
	metrics := &metricsSpy{}
	store, err := NewStore(context.Background(), StoreConfig{
		Key:            testKey,
		PersistBackoff: time.Millisecond,
		PersistTimeout: time.Second,
	}, &failingStorage{}, nil, logger, metrics)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	store.Add("1")
	require.Error(t, store.Flush(context.Background()))

	for range 3 {
		store.handleChange(domain.StorageChange{Key: testKey, Origin: "another-instance"})
	}

	assert.True(t, store.Contains("1"))
	assert.Equal(t, 1, logger.count("sync paused"))
	_, _, resyncs := metrics.snapshot()
	assert.Equal(t, 0, resyncs)
}

func TestStore_MutationAfterClosePersistsImmediately(t *testing.T) {
	storage := memory.NewFavoritesStorage()
	store, err := NewStore(context.Background(), StoreConfig{Key: testKey}, storage, nil, contextkeys.NoopLogger(), nil)
	require.NoError(t, err)
	require.NoError(t, store.Close(context.Background()))

	store.Add("late")

	raw, err := storage.Load(context.Background(), testKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"late"`)
}

func TestStore_ExternalSyncDoesNotSubscribe(t *testing.T) {
	bus := memory.NewChangeBus()
	store, err := NewStore(context.Background(), StoreConfig{Key: testKey, ExternalSync: true},
		memory.NewFavoritesStorage(), bus, contextkeys.NoopLogger(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	assert.Equal(t, 0, bus.Subscribers())
}
