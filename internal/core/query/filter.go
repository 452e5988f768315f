// Package query содержит чистые функции поиска по каталогу объявлений:
// фильтрацию, сортировку и пагинацию. Состояния и ввода-вывода здесь нет.
package query

import (
	"real-estate-marketplace/internal/core/domain"
	"strings"

	"golang.org/x/text/cases"
)

// FilterListings возвращает объявления, удовлетворяющие всем активным условиям spec.
// Порядок входного среза сохраняется, входной срез не изменяется.
func FilterListings(all []domain.Listing, spec domain.FilterSpecification) []domain.Listing {
	m := newMatcher(spec)

	result := make([]domain.Listing, 0, len(all))
	for i := range all {
		if m.match(&all[i]) {
			result = append(result, all[i])
		}
	}
	return result
}

// matcher хранит заранее подготовленные условия, чтобы не пересчитывать их на каждом объявлении.
type matcher struct {
	spec          domain.FilterSpecification
	folder        cases.Caser
	search        string
	governorates  map[string]struct{}
	propertyTypes map[string]struct{}
	listingType   domain.ListingType
	byListingType bool
}

func newMatcher(spec domain.FilterSpecification) *matcher {
	m := &matcher{
		spec:          spec,
		folder:        cases.Fold(),
		governorates:  toSet(spec.Governorates),
		propertyTypes: toSet(spec.PropertyTypes),
	}
	if search := strings.TrimSpace(spec.Search); search != "" {
		m.search = m.folder.String(search)
	}
	m.listingType, m.byListingType = spec.ListingTypeRestricted()
	return m
}

func (m *matcher) match(l *domain.Listing) bool {
	if m.search != "" && !m.matchSearch(l) {
		return false
	}

	if len(m.governorates) > 0 {
		if _, ok := m.governorates[l.Governorate]; !ok {
			return false
		}
	}

	if len(m.propertyTypes) > 0 {
		if _, ok := m.propertyTypes[l.PropertyType]; !ok {
			return false
		}
	}

	// Перевернутый диапазон (Min > Max) не пропускает ни одного объявления
	if pr := m.spec.PriceRange; pr != nil {
		if l.Price < pr.Min || l.Price > pr.Max {
			return false
		}
	}

	if m.spec.Bedrooms != nil && l.Bedrooms < *m.spec.Bedrooms {
		return false
	}
	if m.spec.Bathrooms != nil && l.Bathrooms < *m.spec.Bathrooms {
		return false
	}

	for _, amenity := range m.spec.Amenities {
		if !l.HasAmenity(amenity) {
			return false
		}
	}

	if m.byListingType && l.ListingType != m.listingType {
		return false
	}

	return true
}

// matchSearch - поиск подстроки без учета регистра по заголовку, району и описанию (ИЛИ).
func (m *matcher) matchSearch(l *domain.Listing) bool {
	for _, field := range [...]string{l.Title, l.Area, l.Description} {
		if strings.Contains(m.folder.String(field), m.search) {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
