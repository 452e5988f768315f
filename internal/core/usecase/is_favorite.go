package usecase

import (
	"context"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/port"

	"github.com/google/uuid"
)

type IsFavoriteUseCase struct {
	registry port.FavoritesRegistryPort
}

func NewIsFavoriteUseCase(registry port.FavoritesRegistryPort) *IsFavoriteUseCase {
	return &IsFavoriteUseCase{registry: registry}
}

func (uc *IsFavoriteUseCase) Execute(ctx context.Context, userID uuid.UUID, listingID string) (bool, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "IsFavorite",
		"user_id":    userID,
		"listing_id": listingID,
	})

	ucLogger.Debug("Use case started", nil)

	store, err := storeFor(ctx, uc.registry, userID)
	if err != nil {
		ucLogger.Error("Failed to open favorites store", err, nil)
		return false, err
	}
	return store.Contains(listingID), nil
}
