package usecase

import (
	"context"
	"fmt"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
	"real-estate-marketplace/internal/core/query"

	"github.com/google/uuid"
)

type GetUserFavoritesUseCase struct {
	registry port.FavoritesRegistryPort
	catalog  port.ListingCatalogPort
}

func NewGetUserFavoritesUseCase(registry port.FavoritesRegistryPort, catalog port.ListingCatalogPort) *GetUserFavoritesUseCase {
	return &GetUserFavoritesUseCase{
		registry: registry,
		catalog:  catalog,
	}
}

// Execute возвращает страницу избранных объявлений в порядке каталога.
func (uc *GetUserFavoritesUseCase) Execute(ctx context.Context, userID uuid.UUID, pageSize, page int) (*domain.PaginatedListings, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "GetUserFavorites",
		"user_id":   userID,
		"page_size": pageSize,
		"page":      page,
	})

	ucLogger.Info("Use case started", nil)

	// Шаг 1: набор избранного пользователя
	store, err := storeFor(ctx, uc.registry, userID)
	if err != nil {
		ucLogger.Error("Failed to open favorites store", err, nil)
		return nil, err
	}

	// Шаг 2: каталог, по которому делаем выборку
	listings, err := uc.catalog.ListByStatus(ctx, domain.ListingStatusApproved)
	if err != nil {
		ucLogger.Error("Catalog returned an error", err, nil)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	// Шаг 3: соединяем и режем на страницы
	favorites := store.FavoriteListings(listings)
	result := query.PageOf(favorites, pageSize, page)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_favorites": result.TotalCount,
		"items_on_page":   len(result.Listings),
	})
	return &result, nil
}
