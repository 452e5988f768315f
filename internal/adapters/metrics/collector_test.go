package metrics_adapter

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"real-estate-marketplace/internal/core/port"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ port.MetricsPort = (*Collector)(nil)

func TestCollector_FavoritesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordFavoriteMutation("add")
	c.RecordFavoriteMutation("add")
	c.RecordFavoriteMutation("toggle")
	c.RecordFavoritesPersist(true)
	c.RecordFavoritesPersist(false)
	c.RecordFavoritesPersist(false)
	c.RecordFavoritesResync()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.favoriteMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.favoriteMutations.WithLabelValues("toggle")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.persistSuccess))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.persistFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.resyncs))
}

func TestCollector_QueryAndHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordListingQuery(3*time.Millisecond, 42)
	c.RecordHTTPRequest(http.MethodGet, "/api/v1/listings", http.StatusOK, 10*time.Millisecond)
	c.RecordHTTPRequest(http.MethodGet, "/api/v1/listings", http.StatusOK, 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/v1/listings", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.queryDuration))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordFavoritesPersist(false)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "marketplace_favorites_persist_failures_total 1")
}
