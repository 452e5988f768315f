package port

import "time"

// MetricsPort - контракт для сбора метрик сервиса.
type MetricsPort interface {
	RecordFavoriteMutation(operation string)
	RecordFavoritesPersist(success bool)
	RecordFavoritesResync()
	RecordListingQuery(duration time.Duration, totalFound int)
}

// NoopMetrics ничего не записывает. Используется, когда метрики выключены.
type NoopMetrics struct{}

func (NoopMetrics) RecordFavoriteMutation(string)         {}
func (NoopMetrics) RecordFavoritesPersist(bool)           {}
func (NoopMetrics) RecordFavoritesResync()                {}
func (NoopMetrics) RecordListingQuery(time.Duration, int) {}
