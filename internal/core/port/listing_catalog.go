package port

import (
	"context"
	"real-estate-marketplace/internal/core/domain"
)

// ListingCatalogPort - источник каталога объявлений (БД или сгенерированные данные).
type ListingCatalogPort interface {
	ListByStatus(ctx context.Context, status domain.ListingStatus) ([]domain.Listing, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	// UpdateStatus меняет статус, только если текущий статус равен from.
	UpdateStatus(ctx context.Context, id string, from, to domain.ListingStatus) error
}
