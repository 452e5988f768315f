package usecase

import (
	"context"
	"errors"
	"fmt"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
)

type ModerateListingUseCase struct {
	catalog port.ListingCatalogPort
}

func NewModerateListingUseCase(catalog port.ListingCatalogPort) *ModerateListingUseCase {
	return &ModerateListingUseCase{catalog: catalog}
}

// Execute переводит объявление из pending в approved или rejected.
// Любой другой переход возвращает domain.ErrInvalidStatusTransition.
func (uc *ModerateListingUseCase) Execute(ctx context.Context, listingID string, decision domain.ListingStatus) error {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "ModerateListing",
		"listing_id": listingID,
		"decision":   decision,
	})

	ucLogger.Info("Use case started", nil)

	if decision != domain.ListingStatusApproved && decision != domain.ListingStatusRejected {
		ucLogger.Warn("Unsupported moderation decision", nil)
		return fmt.Errorf("%w: decision %q", domain.ErrInvalidStatusTransition, decision)
	}

	err := uc.catalog.UpdateStatus(ctx, listingID, domain.ListingStatusPending, decision)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) || errors.Is(err, domain.ErrInvalidStatusTransition) {
			ucLogger.Warn("Listing cannot be moderated", port.Fields{"reason": err.Error()})
		} else {
			ucLogger.Error("Catalog returned an error", err, nil)
		}
		return err
	}

	ucLogger.Info("Use case finished successfully", nil)
	return nil
}
