package rest

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
	"real-estate-marketplace/internal/core/query"
)

const maxPerPage = 100

// WriteJSONError отправляет JSON-ответ с полем "error" и заданным статусом
func WriteJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// RespondWithJSON отправляет JSON-ответ
func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to marshal JSON response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	w.Write(response)
}

// writeUseCaseError переводит доменные ошибки в HTTP-статусы. Остальное - 500 с fallback-сообщением.
func writeUseCaseError(w http.ResponseWriter, logger port.LoggerPort, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrListingNotFound):
		WriteJSONError(w, http.StatusNotFound, "Listing not found")
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		WriteJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidInquiry), errors.Is(err, domain.ErrInvalidListingID):
		WriteJSONError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("Use case failed", err, nil)
		WriteJSONError(w, http.StatusInternalServerError, fallback)
	}
}

// parsePagination читает page и perPage. perPage вне 1..100 заменяется на размер по умолчанию.
func parsePagination(q url.Values) (page, perPage int) {
	page, _ = strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(q.Get("perPage"))
	if perPage < 1 || perPage > maxPerPage {
		perPage = query.DefaultPageSize
	}
	return page, perPage
}

// parseListingFilters собирает FilterSpecification из query-параметров.
// Некорректные числа игнорируются, как будто параметр не передан.
func parseListingFilters(q url.Values) domain.FilterSpecification {
	spec := domain.FilterSpecification{
		Search:        strings.TrimSpace(q.Get("search")),
		Governorates:  parseStringSlice(q, "governorates"),
		PropertyTypes: parseStringSlice(q, "propertyTypes"),
		Bedrooms:      parseInt(q, "bedrooms"),
		Bathrooms:     parseInt(q, "bathrooms"),
		Amenities:     parseStringSlice(q, "amenities"),
		ListingType:   strings.TrimSpace(q.Get("listingType")),
	}

	priceMin := parseFloat(q, "priceMin")
	priceMax := parseFloat(q, "priceMax")
	if priceMin != nil || priceMax != nil {
		pr := domain.PriceRange{Min: 0, Max: math.MaxFloat64}
		if priceMin != nil {
			pr.Min = *priceMin
		}
		if priceMax != nil {
			pr.Max = *priceMax
		}
		spec.PriceRange = &pr
	}
	return spec
}

// parseStringSlice принимает как повторяющиеся параметры, так и список через запятую.
func parseStringSlice(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseInt(q url.Values, key string) *int {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func parseFloat(q url.Values, key string) *float64 {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
