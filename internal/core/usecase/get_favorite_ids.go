package usecase

import (
	"context"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/port"

	"github.com/google/uuid"
)

type GetFavoriteIDsUseCase struct {
	registry port.FavoritesRegistryPort
}

func NewGetFavoriteIDsUseCase(registry port.FavoritesRegistryPort) *GetFavoriteIDsUseCase {
	return &GetFavoriteIDsUseCase{registry: registry}
}

// Execute возвращает отсортированный список ID избранного.
func (uc *GetFavoriteIDsUseCase) Execute(ctx context.Context, userID uuid.UUID) ([]string, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetFavoriteIDs",
		"user_id":  userID,
	})

	ucLogger.Info("Use case started", nil)

	store, err := storeFor(ctx, uc.registry, userID)
	if err != nil {
		ucLogger.Error("Failed to open favorites store", err, nil)
		return nil, err
	}
	ids := store.IDs()

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(ids)})
	return ids, nil
}
