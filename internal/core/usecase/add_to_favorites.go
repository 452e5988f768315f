package usecase

import (
	"context"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"

	"github.com/google/uuid"
)

type AddToFavoritesUseCase struct {
	registry port.FavoritesRegistryPort
}

func NewAddToFavoritesUseCase(registry port.FavoritesRegistryPort) *AddToFavoritesUseCase {
	return &AddToFavoritesUseCase{registry: registry}
}

// Execute добавляет объявление в избранное. Существование объявления не проверяется:
// отсутствующие в каталоге ID просто не попадут в выборку избранного.
func (uc *AddToFavoritesUseCase) Execute(ctx context.Context, userID uuid.UUID, listingID string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "AddToFavorites",
		"user_id":    userID,
		"listing_id": listingID,
	})

	ucLogger.Info("Use case started", nil)

	if listingID == "" {
		return domain.ErrInvalidListingID
	}

	store, err := storeFor(ctx, uc.registry, userID)
	if err != nil {
		ucLogger.Error("Failed to open favorites store", err, nil)
		return err
	}
	store.Add(listingID)

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
