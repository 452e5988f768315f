package usecase

import (
	"context"
	"fmt"

	"real-estate-marketplace/internal/core/port"

	"github.com/google/uuid"
)

// storeFor достает набор избранного пользователя из реестра.
func storeFor(ctx context.Context, registry port.FavoritesRegistryPort, userID uuid.UUID) (port.FavoritesSetPort, error) {
	store, err := registry.StoreFor(ctx, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to open favorites for user %s: %w", userID, err)
	}
	return store, nil
}
