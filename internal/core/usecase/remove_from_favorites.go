package usecase

import (
	"context"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"

	"github.com/google/uuid"
)

type RemoveFromFavoritesUseCase struct {
	registry port.FavoritesRegistryPort
}

func NewRemoveFromFavoritesUseCase(registry port.FavoritesRegistryPort) *RemoveFromFavoritesUseCase {
	return &RemoveFromFavoritesUseCase{registry: registry}
}

func (uc *RemoveFromFavoritesUseCase) Execute(ctx context.Context, userID uuid.UUID, listingID string) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "RemoveFromFavorites",
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
	store.Remove(listingID)

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
