package constants

// Топология уведомлений об изменениях избранного.
const (
	DefaultFavoritesExchange = "favorites_changes"
	FavoritesExchangeType    = "fanout"

	// Заголовки, по которым получатель выбирает JSON-схему.
	EventTypeHeader    = "event-type"
	EventVersionHeader = "event-version"
	TraceIDHeader      = "x-trace-id"
)
