package contracts

// Имена и версии схем, зарегистрированных в пакете.
const (
	StorageChangedEvent  = "StorageChangedEvent"
	FavoritesSetDocument = "FavoritesSetDocument"
	CurrentSchemaVersion = "1.0.0"
)
