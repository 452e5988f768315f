package domain

import "time"

// FavoritesDocumentVersion - текущая версия сохраненного набора избранного.
const FavoritesDocumentVersion = 1

// FavoritesDocument - то, что лежит в хранилище под ключом избранного.
type FavoritesDocument struct {
	Version   int       `json:"version"`
	Favorites []string  `json:"favorites"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StorageChange - уведомление о том, что значение под ключом изменилось.
// Origin - идентификатор хранилища-источника, чтобы оно не реагировало на свои же записи.
type StorageChange struct {
	Key       string    `json:"key"`
	Origin    string    `json:"origin"`
	ChangedAt time.Time `json:"changed_at"`
}
