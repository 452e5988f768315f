package domain

import "strings"

// ListingTypeAll - значение фильтра "любой тип сделки".
const ListingTypeAll = "all"

// PriceRange - включительные границы цены.
type PriceRange struct {
	Min float64
	Max float64
}

// FilterSpecification - набор ограничений, выбранных пользователем.
// Нулевое значение ничего не ограничивает и пропускает все объявления.
type FilterSpecification struct {
	Search        string
	Governorates  []string
	PropertyTypes []string
	PriceRange    *PriceRange
	Bedrooms      *int     // не меньше N спален
	Bathrooms     *int     // не меньше N санузлов
	Amenities     []string // объявление должно содержать ВСЕ перечисленные удобства
	ListingType   string   // "sale", "rent", "all" или пусто
}

// ListingTypeRestricted возвращает тип сделки, если фильтр по нему активен.
func (s FilterSpecification) ListingTypeRestricted() (ListingType, bool) {
	lt := strings.ToLower(strings.TrimSpace(s.ListingType))
	if lt == "" || lt == ListingTypeAll {
		return "", false
	}
	return ListingType(lt), true
}

// SortKey - ключ сортировки списка объявлений.
type SortKey string

const (
	SortRecommended  SortKey = "recommended"
	SortPriceLowHigh SortKey = "price-low-high"
	SortPriceHighLow SortKey = "price-high-low"
	SortNewest       SortKey = "newest"
	SortMostViewed   SortKey = "most-viewed"
	SortAreaLargest  SortKey = "area-largest"
)

// ParseSortKey разбирает ключ сортировки. Неизвестные значения дают SortRecommended.
func ParseSortKey(raw string) SortKey {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(raw))); key {
	case SortPriceLowHigh, SortPriceHighLow, SortNewest, SortMostViewed, SortAreaLargest:
		return key
	default:
		return SortRecommended
	}
}

// RangeResult - минимум и максимум числового поля каталога.
type RangeResult struct {
	Min float64
	Max float64
}

// FilterOptionsResult - значения, доступные для построения формы фильтров.
type FilterOptionsResult struct {
	Governorates  map[string][]string // область -> районы
	PropertyTypes []string
	Amenities     []string
	Bedrooms      []int
	Price         *RangeResult
	AreaSqm       *RangeResult
	Count         int
}
