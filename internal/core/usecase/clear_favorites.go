package usecase

import (
	"context"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/port"

	"github.com/google/uuid"
)

type ClearFavoritesUseCase struct {
	registry port.FavoritesRegistryPort
}

func NewClearFavoritesUseCase(registry port.FavoritesRegistryPort) *ClearFavoritesUseCase {
	return &ClearFavoritesUseCase{registry: registry}
}

func (uc *ClearFavoritesUseCase) Execute(ctx context.Context, userID uuid.UUID) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "ClearFavorites",
		"user_id":  userID,
	})

	ucLogger.Info("Use case started", nil)

	store, err := storeFor(ctx, uc.registry, userID)
	if err != nil {
		ucLogger.Error("Failed to open favorites store", err, nil)
		return err
	}
	store.Clear()

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
