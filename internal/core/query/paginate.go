package query

import "real-estate-marketplace/internal/core/domain"

// DefaultPageSize - размер страницы каталога по умолчанию.
const DefaultPageSize = 12

// Paginate возвращает страницу pageNumber (нумерация с 1) размером pageSize.
// Страница за пределами результата - пустой срез, а не ошибка.
// pageNumber < 1 приводится к 1, pageSize < 1 - к DefaultPageSize.
func Paginate(listings []domain.Listing, pageSize, pageNumber int) []domain.Listing {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	if pageNumber > TotalPages(len(listings), pageSize) {
		return []domain.Listing{}
	}

	// pageNumber <= TotalPages, поэтому start < len(listings) и не переполняется
	start := (pageNumber - 1) * pageSize
	end := start + min(pageSize, len(listings)-start)

	page := make([]domain.Listing, end-start)
	copy(page, listings[start:end])
	return page
}

// TotalPages - количество непустых страниц для total элементов.
func TotalPages(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := total / pageSize
	if total%pageSize != 0 {
		pages++
	}
	return pages
}

// Run выполняет полный конвейер: фильтрация, сортировка, пагинация.
func Run(all []domain.Listing, spec domain.FilterSpecification, key domain.SortKey, pageSize, pageNumber int) domain.PaginatedListings {
	filtered := FilterListings(all, spec)
	return PageOf(SortListings(filtered, key), pageSize, pageNumber)
}

// PageOf оборачивает страницу уже упорядоченного результата вместе с итогами.
func PageOf(ordered []domain.Listing, pageSize, pageNumber int) domain.PaginatedListings {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageNumber < 1 {
		pageNumber = 1
	}

	return domain.PaginatedListings{
		Listings:     Paginate(ordered, pageSize, pageNumber),
		TotalCount:   len(ordered),
		CurrentPage:  pageNumber,
		ItemsPerPage: pageSize,
		TotalPages:   TotalPages(len(ordered), pageSize),
	}
}
