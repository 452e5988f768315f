package usecase

import (
	"context"
	"fmt"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
	"real-estate-marketplace/internal/core/query"
)

type GetPendingListingsUseCase struct {
	catalog port.ListingCatalogPort
}

func NewGetPendingListingsUseCase(catalog port.ListingCatalogPort) *GetPendingListingsUseCase {
	return &GetPendingListingsUseCase{catalog: catalog}
}

// Execute возвращает очередь модерации, новые объявления первыми.
func (uc *GetPendingListingsUseCase) Execute(ctx context.Context) ([]domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetPendingListings",
	})

	ucLogger.Info("Use case started", nil)

	listings, err := uc.catalog.ListByStatus(ctx, domain.ListingStatusPending)
	if err != nil {
		ucLogger.Error("Catalog returned an error", err, nil)
		return nil, fmt.Errorf("failed to load pending listings: %w", err)
	}

	sorted := query.SortListings(listings, domain.SortNewest)

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(sorted)})
	return sorted, nil
}
