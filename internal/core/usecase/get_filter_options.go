package usecase

import (
	"context"
	"fmt"
	"slices"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
)

type GetFilterOptionsUseCase struct {
	catalog port.ListingCatalogPort
}

func NewGetFilterOptionsUseCase(catalog port.ListingCatalogPort) *GetFilterOptionsUseCase {
	return &GetFilterOptionsUseCase{catalog: catalog}
}

// Execute собирает значения для формы фильтров по одобренному каталогу.
func (uc *GetFilterOptionsUseCase) Execute(ctx context.Context) (*domain.FilterOptionsResult, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "GetFilterOptions",
	})

	ucLogger.Info("Use case started", nil)

	listings, err := uc.catalog.ListByStatus(ctx, domain.ListingStatusApproved)
	if err != nil {
		ucLogger.Error("Catalog returned an error", err, nil)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	result := buildFilterOptions(listings)

	ucLogger.Info("Use case finished successfully", port.Fields{"count": result.Count})
	return result, nil
}

func buildFilterOptions(listings []domain.Listing) *domain.FilterOptionsResult {
	areas := make(map[string]map[string]struct{})
	propertyTypes := make(map[string]struct{})
	amenities := make(map[string]struct{})
	bedrooms := make(map[int]struct{})

	var price, area *domain.RangeResult

	for i := range listings {
		l := &listings[i]

		if _, ok := areas[l.Governorate]; !ok {
			areas[l.Governorate] = make(map[string]struct{})
		}
		if l.Area != "" {
			areas[l.Governorate][l.Area] = struct{}{}
		}
		propertyTypes[l.PropertyType] = struct{}{}
		for _, a := range l.Amenities {
			amenities[a] = struct{}{}
		}
		bedrooms[l.Bedrooms] = struct{}{}

		price = extendRange(price, l.Price)
		area = extendRange(area, l.AreaSqm)
	}

	governorates := make(map[string][]string, len(areas))
	for governorate, set := range areas {
		governorates[governorate] = sortedKeys(set)
	}

	beds := make([]int, 0, len(bedrooms))
	for b := range bedrooms {
		beds = append(beds, b)
	}
	slices.Sort(beds)

	return &domain.FilterOptionsResult{
		Governorates:  governorates,
		PropertyTypes: sortedKeys(propertyTypes),
		Amenities:     sortedKeys(amenities),
		Bedrooms:      beds,
		Price:         price,
		AreaSqm:       area,
		Count:         len(listings),
	}
}

func extendRange(r *domain.RangeResult, v float64) *domain.RangeResult {
	if r == nil {
		return &domain.RangeResult{Min: v, Max: v}
	}
	r.Min = min(r.Min, v)
	r.Max = max(r.Max, v)
	return r
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
