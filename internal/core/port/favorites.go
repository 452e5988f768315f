package port

import (
	"context"
	"real-estate-marketplace/internal/core/domain"
)

// FavoritesSetPort - набор избранного одного владельца.
type FavoritesSetPort interface {
	Add(id string)
	Remove(id string)
	Toggle(id string) bool
	Contains(id string) bool
	IDs() []string
	Count() int
	Clear()
	FavoriteListings(all []domain.Listing) []domain.Listing
}

// FavoritesRegistryPort выдает набор избранного по владельцу.
type FavoritesRegistryPort interface {
	StoreFor(ctx context.Context, ownerID string) (FavoritesSetPort, error)
}
