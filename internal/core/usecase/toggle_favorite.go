package usecase

import (
	"context"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"

	"github.com/google/uuid"
)

type ToggleFavoriteUseCase struct {
	registry port.FavoritesRegistryPort
}

func NewToggleFavoriteUseCase(registry port.FavoritesRegistryPort) *ToggleFavoriteUseCase {
	return &ToggleFavoriteUseCase{registry: registry}
}

// Execute переключает объявление и возвращает, находится ли оно теперь в избранном.
func (uc *ToggleFavoriteUseCase) Execute(ctx context.Context, userID uuid.UUID, listingID string) (bool, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "ToggleFavorite",
		"user_id":    userID,
		"listing_id": listingID,
	})

	ucLogger.Info("Use case started", nil)

	if listingID == "" {
		return false, domain.ErrInvalidListingID
	}

	store, err := storeFor(ctx, uc.registry, userID)
	if err != nil {
		ucLogger.Error("Failed to open favorites store", err, nil)
		return false, err
	}
	isFavorite := store.Toggle(listingID)

	ucLogger.Info("Use case finished successfully", port.Fields{"is_favorite": isFavorite})
	return isFavorite, nil
}
