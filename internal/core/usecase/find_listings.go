package usecase

import (
	"context"
	"fmt"
	"time"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
	"real-estate-marketplace/internal/core/query"
)

type FindListingsUseCase struct {
	catalog port.ListingCatalogPort
	metrics port.MetricsPort
}

func NewFindListingsUseCase(catalog port.ListingCatalogPort, metrics port.MetricsPort) *FindListingsUseCase {
	if metrics == nil {
		metrics = port.NoopMetrics{}
	}
	return &FindListingsUseCase{catalog: catalog, metrics: metrics}
}

// Execute ищет среди одобренных объявлений и возвращает запрошенную страницу.
func (uc *FindListingsUseCase) Execute(ctx context.Context, spec domain.FilterSpecification, sortKey domain.SortKey, pageSize, page int) (*domain.PaginatedListings, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "FindListings",
		"filters":   spec,
		"sort":      sortKey,
		"page_size": pageSize,
		"page":      page,
	})

	ucLogger.Info("Use case started", nil)
	started := time.Now()

	listings, err := uc.catalog.ListByStatus(ctx, domain.ListingStatusApproved)
	if err != nil {
		ucLogger.Error("Catalog returned an error", err, nil)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	result := query.Run(listings, spec, sortKey, pageSize, page)
	uc.metrics.RecordListingQuery(time.Since(started), result.TotalCount)

	ucLogger.Info("Use case finished successfully", port.Fields{
		"total_found":   result.TotalCount,
		"items_on_page": len(result.Listings),
	})
	return &result, nil
}
