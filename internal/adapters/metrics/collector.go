package metrics_adapter

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector - реализация port.MetricsPort поверх Prometheus.
type Collector struct {
	favoriteMutations *prometheus.CounterVec
	persistSuccess    prometheus.Counter
	persistFailures   prometheus.Counter
	resyncs           prometheus.Counter
	queryDuration     prometheus.Histogram
	queryResults      prometheus.Histogram
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewCollector создает Collector и регистрирует метрики в reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		favoriteMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_favorite_mutations_total",
			Help: "Number of favorites mutations by operation",
		}, []string{"operation"}),
		persistSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_favorites_persist_success_total",
			Help: "Number of successful favorites writes to storage",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_favorites_persist_failures_total",
			Help: "Number of favorites writes that failed after all retries",
		}),
		resyncs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_favorites_resyncs_total",
			Help: "Number of favorites reloads triggered by foreign changes",
		}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketplace_listing_query_duration_seconds",
			Help:    "Duration of the filter, sort and paginate pipeline",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		queryResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "marketplace_listing_query_results",
			Help:    "Number of listings matched by a query before pagination",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "marketplace_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		c.favoriteMutations,
		c.persistSuccess,
		c.persistFailures,
		c.resyncs,
		c.queryDuration,
		c.queryResults,
		c.httpRequests,
		c.httpDuration,
	)
	return c
}

func (c *Collector) RecordFavoriteMutation(operation string) {
	c.favoriteMutations.WithLabelValues(operation).Inc()
}

func (c *Collector) RecordFavoritesPersist(success bool) {
	if success {
		c.persistSuccess.Inc()
		return
	}
	c.persistFailures.Inc()
}

func (c *Collector) RecordFavoritesResync() {
	c.resyncs.Inc()
}

func (c *Collector) RecordListingQuery(duration time.Duration, totalFound int) {
	c.queryDuration.Observe(duration.Seconds())
	c.queryResults.Observe(float64(totalFound))
}

// RecordHTTPRequest записывает один обработанный запрос. route - шаблон маршрута chi, а не сырой путь.
func (c *Collector) RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler возвращает обработчик для скрейпа Prometheus.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
