package rest

import (
	"net/http"
	"strings"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
	"real-estate-marketplace/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

type ListingsHandler struct {
	findListingsUC     usecases_port.FindListingsUseCasePort
	getDetailsUC       usecases_port.GetListingDetailsUseCasePort
	getFilterOptionsUC usecases_port.GetFilterOptionsUseCasePort
}

func NewListingsHandler(findListingsUC usecases_port.FindListingsUseCasePort,
	getDetailsUC usecases_port.GetListingDetailsUseCasePort,
	getFilterOptionsUC usecases_port.GetFilterOptionsUseCasePort) *ListingsHandler {
	return &ListingsHandler{
		findListingsUC:     findListingsUC,
		getDetailsUC:       getDetailsUC,
		getFilterOptionsUC: getFilterOptionsUC,
	}
}

// FindListings обрабатывает GET /api/v1/listings
func (h *ListingsHandler) FindListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	q := r.URL.Query()
	page, perPage := parsePagination(q)
	spec := parseListingFilters(q)
	sortKey := domain.ParseSortKey(q.Get("sort"))

	handlerLogger := logger.WithFields(port.Fields{
		"handler":  "FindListings",
		"page":     page,
		"per_page": perPage,
		"sort":     sortKey,
	})
	handlerLogger.Debug("Processing request to find listings", port.Fields{"filters": spec})

	result, err := h.findListingsUC.Execute(r.Context(), spec, sortKey, perPage, page)
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to retrieve listings")
		return
	}

	handlerLogger.Info("Successfully found listings", port.Fields{
		"total_found":   result.TotalCount,
		"items_on_page": len(result.Listings),
	})
	RespondWithJSON(w, http.StatusOK, toPaginatedResponse(result))
}

// GetListingDetails обрабатывает GET /api/v1/listings/{listingID}
func (h *ListingsHandler) GetListingDetails(w http.ResponseWriter, r *http.Request) {
	listingID := strings.TrimSpace(chi.URLParam(r, "listingID"))
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    "GetListingDetails",
		"listing_id": listingID,
	})

	listing, err := h.getDetailsUC.Execute(r.Context(), listingID)
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to retrieve listing")
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingDetails(*listing))
}

// GetFilterOptions обрабатывает GET /api/v1/filters/options
func (h *ListingsHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	handlerLogger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetFilterOptions"})

	options, err := h.getFilterOptionsUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, handlerLogger, err, "Failed to get filter options")
		return
	}

	response := FilterOptionsResponse{
		Governorates:  options.Governorates,
		PropertyTypes: options.PropertyTypes,
		Amenities:     options.Amenities,
		Bedrooms:      options.Bedrooms,
		Count:         options.Count,
	}
	if options.Price != nil {
		response.Price = &RangeResponse{Min: options.Price.Min, Max: options.Price.Max}
	}
	if options.AreaSqm != nil {
		response.AreaSqm = &RangeResponse{Min: options.AreaSqm.Min, Max: options.AreaSqm.Max}
	}
	RespondWithJSON(w, http.StatusOK, response)
}
