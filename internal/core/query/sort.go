package query

import (
	"cmp"
	"real-estate-marketplace/internal/core/domain"
	"slices"
)

// SortListings возвращает новый срез, упорядоченный по ключу key.
// Сортировка стабильная: при равных ключах сохраняется исходный порядок.
func SortListings(listings []domain.Listing, key domain.SortKey) []domain.Listing {
	sorted := make([]domain.Listing, len(listings))
	copy(sorted, listings)

	slices.SortStableFunc(sorted, comparatorFor(key))
	return sorted
}

func comparatorFor(key domain.SortKey) func(a, b domain.Listing) int {
	switch key {
	case domain.SortPriceLowHigh:
		return func(a, b domain.Listing) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortPriceHighLow:
		return func(a, b domain.Listing) int { return cmp.Compare(b.Price, a.Price) }
	case domain.SortNewest:
		return func(a, b domain.Listing) int { return cmp.Compare(a.DaysListed, b.DaysListed) }
	case domain.SortMostViewed:
		return func(a, b domain.Listing) int { return cmp.Compare(b.Views, a.Views) }
	case domain.SortAreaLargest:
		return func(a, b domain.Listing) int { return cmp.Compare(b.AreaSqm, a.AreaSqm) }
	default:
		// recommended: сначала featured, внутри группы - по просмотрам по убыванию
		return func(a, b domain.Listing) int {
			return cmp.Or(
				cmp.Compare(boolRank(b.Featured), boolRank(a.Featured)),
				cmp.Compare(b.Views, a.Views),
			)
		}
	}
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}
