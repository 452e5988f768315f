package usecases_port

import (
	"context"

	"real-estate-marketplace/internal/core/domain"

	"github.com/google/uuid"
)

type AddToFavoritesUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, listingID string) error
}

type RemoveFromFavoritesUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, listingID string) error
}

type ToggleFavoriteUseCasePort interface {
	// Возвращает новое состояние: true - объявление теперь в избранном
	Execute(ctx context.Context, userID uuid.UUID, listingID string) (bool, error)
}

type ClearFavoritesUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) error
}

type GetFavoriteIDsUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type IsFavoriteUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, listingID string) (bool, error)
}

type GetUserFavoritesUseCasePort interface {
	Execute(ctx context.Context, userID uuid.UUID, pageSize, page int) (*domain.PaginatedListings, error)
}
