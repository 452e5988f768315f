package usecase

import (
	"context"
	"errors"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
)

type GetListingDetailsUseCase struct {
	catalog port.ListingCatalogPort
}

func NewGetListingDetailsUseCase(catalog port.ListingCatalogPort) *GetListingDetailsUseCase {
	return &GetListingDetailsUseCase{catalog: catalog}
}

// Execute возвращает одобренное объявление. Неодобренные для публики не существуют.
func (uc *GetListingDetailsUseCase) Execute(ctx context.Context, listingID string) (*domain.Listing, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "GetListingDetails",
		"listing_id": listingID,
	})

	ucLogger.Info("Use case started", nil)

	listing, err := uc.catalog.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			ucLogger.Warn("Listing not found", nil)
		} else {
			ucLogger.Error("Catalog returned an error", err, nil)
		}
		return nil, err
	}
	if listing.Status != domain.ListingStatusApproved {
		ucLogger.Warn("Listing is not approved", port.Fields{"status": listing.Status})
		return nil, domain.ErrListingNotFound
	}

	ucLogger.Info("Use case finished successfully", nil)
	return listing, nil
}
