package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/port"
	"real-estate-marketplace/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type FavoritesHandler struct {
	addUC        usecases_port.AddToFavoritesUseCasePort
	removeUC     usecases_port.RemoveFromFavoritesUseCasePort
	toggleUC     usecases_port.ToggleFavoriteUseCasePort
	clearUC      usecases_port.ClearFavoritesUseCasePort
	getIDsUC     usecases_port.GetFavoriteIDsUseCasePort
	isFavoriteUC usecases_port.IsFavoriteUseCasePort
	getListingUC usecases_port.GetUserFavoritesUseCasePort
}

func NewFavoritesHandler(addUC usecases_port.AddToFavoritesUseCasePort,
	removeUC usecases_port.RemoveFromFavoritesUseCasePort,
	toggleUC usecases_port.ToggleFavoriteUseCasePort,
	clearUC usecases_port.ClearFavoritesUseCasePort,
	getIDsUC usecases_port.GetFavoriteIDsUseCasePort,
	isFavoriteUC usecases_port.IsFavoriteUseCasePort,
	getListingUC usecases_port.GetUserFavoritesUseCasePort) *FavoritesHandler {
	return &FavoritesHandler{
		addUC:        addUC,
		removeUC:     removeUC,
		toggleUC:     toggleUC,
		clearUC:      clearUC,
		getIDsUC:     getIDsUC,
		isFavoriteUC: isFavoriteUC,
		getListingUC: getListingUC,
	}
}

// requestUser достает пользователя, положенного AuthMiddleware, и готовит логгер обработчика.
func requestUser(w http.ResponseWriter, r *http.Request, handler string) (uuid.UUID, port.LoggerPort, bool) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": handler})

	userID, ok := userIDFromContext(r.Context())
	if !ok {
		logger.Error("Invalid or missing user ID in context", nil, nil)
		WriteJSONError(w, http.StatusUnauthorized, "Invalid user ID in context")
		return uuid.Nil, nil, false
	}
	return userID, logger.WithFields(port.Fields{"user_id": userID}), true
}

// GetUserFavorites обрабатывает GET /api/v1/favorites
func (h *FavoritesHandler) GetUserFavorites(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r, "GetUserFavorites")
	if !ok {
		return
	}
	page, perPage := parsePagination(r.URL.Query())

	result, err := h.getListingUC.Execute(r.Context(), userID, perPage, page)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve favorites")
		return
	}

	logger.Info("Successfully retrieved user favorites", port.Fields{
		"total_found":   result.TotalCount,
		"items_on_page": len(result.Listings),
	})
	RespondWithJSON(w, http.StatusOK, toPaginatedResponse(result))
}

// GetFavoriteIDs обрабатывает GET /api/v1/favorites/ids
func (h *FavoritesHandler) GetFavoriteIDs(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r, "GetFavoriteIDs")
	if !ok {
		return
	}

	ids, err := h.getIDsUC.Execute(r.Context(), userID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve favorites")
		return
	}
	RespondWithJSON(w, http.StatusOK, FavoriteIDsResponse{IDs: ids, Count: len(ids)})
}

// AddToFavorites обрабатывает POST /api/v1/favorites
func (h *FavoritesHandler) AddToFavorites(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r, "AddToFavorites")
	if !ok {
		return
	}

	var reqDTO AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		logger.Warn("Failed to decode request body for add favorite", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	listingID := strings.TrimSpace(reqDTO.ListingID)

	if err := h.addUC.Execute(r.Context(), userID, listingID); err != nil {
		writeUseCaseError(w, logger, err, "Failed to add to favorites")
		return
	}

	logger.Info("Successfully added listing to favorites", port.Fields{"listing_id": listingID})
	RespondWithJSON(w, http.StatusCreated, FavoriteStatusResponse{ListingID: listingID, IsFavorite: true})
}

// IsFavorite обрабатывает GET /api/v1/favorites/{listingID}
func (h *FavoritesHandler) IsFavorite(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r, "IsFavorite")
	if !ok {
		return
	}
	listingID := strings.TrimSpace(chi.URLParam(r, "listingID"))

	isFavorite, err := h.isFavoriteUC.Execute(r.Context(), userID, listingID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to check favorite")
		return
	}
	RespondWithJSON(w, http.StatusOK, FavoriteStatusResponse{ListingID: listingID, IsFavorite: isFavorite})
}

// ToggleFavorite обрабатывает POST /api/v1/favorites/{listingID}/toggle
func (h *FavoritesHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r, "ToggleFavorite")
	if !ok {
		return
	}
	listingID := strings.TrimSpace(chi.URLParam(r, "listingID"))

	isFavorite, err := h.toggleUC.Execute(r.Context(), userID, listingID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to toggle favorite")
		return
	}

	logger.Info("Favorite toggled", port.Fields{"listing_id": listingID, "is_favorite": isFavorite})
	RespondWithJSON(w, http.StatusOK, FavoriteStatusResponse{ListingID: listingID, IsFavorite: isFavorite})
}

// RemoveFromFavorites обрабатывает DELETE /api/v1/favorites/{listingID}
func (h *FavoritesHandler) RemoveFromFavorites(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r, "RemoveFromFavorites")
	if !ok {
		return
	}
	listingID := strings.TrimSpace(chi.URLParam(r, "listingID"))

	if err := h.removeUC.Execute(r.Context(), userID, listingID); err != nil {
		writeUseCaseError(w, logger, err, "Failed to remove from favorites")
		return
	}

	logger.Info("Successfully removed listing from favorites", port.Fields{"listing_id": listingID})
	w.WriteHeader(http.StatusNoContent)
}

// ClearFavorites обрабатывает DELETE /api/v1/favorites
func (h *FavoritesHandler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	userID, logger, ok := requestUser(w, r, "ClearFavorites")
	if !ok {
		return
	}

	if err := h.clearUC.Execute(r.Context(), userID); err != nil {
		writeUseCaseError(w, logger, err, "Failed to clear favorites")
		return
	}

	logger.Info("Favorites cleared", nil)
	w.WriteHeader(http.StatusNoContent)
}
