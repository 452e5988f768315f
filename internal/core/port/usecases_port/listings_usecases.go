package usecases_port

import (
	"context"

	"real-estate-marketplace/internal/core/domain"
)

type FindListingsUseCasePort interface {
	Execute(ctx context.Context, spec domain.FilterSpecification, sortKey domain.SortKey, pageSize, page int) (*domain.PaginatedListings, error)
}

type GetListingDetailsUseCasePort interface {
	Execute(ctx context.Context, listingID string) (*domain.Listing, error)
}

type GetFilterOptionsUseCasePort interface {
	Execute(ctx context.Context) (*domain.FilterOptionsResult, error)
}
