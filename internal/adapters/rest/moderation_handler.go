package rest

import (
	"encoding/json"
	"net/http"
	"strings"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"
	"real-estate-marketplace/internal/core/port/usecases_port"

	"github.com/go-chi/chi/v5"
)

// ModerationHandler - админка модерации и заявки покупателей.
type ModerationHandler struct {
	moderateUC      usecases_port.ModerateListingUseCasePort
	getPendingUC    usecases_port.GetPendingListingsUseCasePort
	submitInquiryUC usecases_port.SubmitInquiryUseCasePort
	getInquiriesUC  usecases_port.GetSellerInquiriesUseCasePort
}

func NewModerationHandler(moderateUC usecases_port.ModerateListingUseCasePort,
	getPendingUC usecases_port.GetPendingListingsUseCasePort,
	submitInquiryUC usecases_port.SubmitInquiryUseCasePort,
	getInquiriesUC usecases_port.GetSellerInquiriesUseCasePort) *ModerationHandler {
	return &ModerationHandler{
		moderateUC:      moderateUC,
		getPendingUC:    getPendingUC,
		submitInquiryUC: submitInquiryUC,
		getInquiriesUC:  getInquiriesUC,
	}
}

// GetPendingListings обрабатывает GET /api/v1/admin/listings/pending
func (h *ModerationHandler) GetPendingListings(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "GetPendingListings"})

	listings, err := h.getPendingUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve pending listings")
		return
	}

	response := make([]ListingDetailsResponse, len(listings))
	for i, l := range listings {
		response[i] = toListingDetails(l)
	}
	RespondWithJSON(w, http.StatusOK, response)
}

// ModerateListing обрабатывает POST /api/v1/admin/listings/{listingID}/moderate
func (h *ModerationHandler) ModerateListing(w http.ResponseWriter, r *http.Request) {
	listingID := strings.TrimSpace(chi.URLParam(r, "listingID"))
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    "ModerateListing",
		"listing_id": listingID,
	})

	var reqDTO ModerateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		logger.Warn("Failed to decode moderation request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	decision := domain.ListingStatus(strings.ToLower(strings.TrimSpace(reqDTO.Decision)))

	if err := h.moderateUC.Execute(r.Context(), listingID, decision); err != nil {
		writeUseCaseError(w, logger, err, "Failed to moderate listing")
		return
	}

	logger.Info("Listing moderated", port.Fields{"decision": decision})
	w.WriteHeader(http.StatusNoContent)
}

// SubmitInquiry обрабатывает POST /api/v1/listings/{listingID}/inquiries
func (h *ModerationHandler) SubmitInquiry(w http.ResponseWriter, r *http.Request) {
	listingID := strings.TrimSpace(chi.URLParam(r, "listingID"))
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{
		"handler":    "SubmitInquiry",
		"listing_id": listingID,
	})

	var reqDTO SubmitInquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		logger.Warn("Failed to decode inquiry request", port.Fields{"error": err.Error()})
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	inquiry, err := h.submitInquiryUC.Execute(r.Context(), listingID, domain.InquiryInput{
		Name:    reqDTO.Name,
		Email:   reqDTO.Email,
		Phone:   reqDTO.Phone,
		Message: reqDTO.Message,
	})
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to submit inquiry")
		return
	}

	RespondWithJSON(w, http.StatusCreated, toInquiryResponse(*inquiry))
}

// GetSellerInquiries обрабатывает GET /api/v1/seller/inquiries
func (h *ModerationHandler) GetSellerInquiries(w http.ResponseWriter, r *http.Request) {
	sellerID, logger, ok := requestUser(w, r, "GetSellerInquiries")
	if !ok {
		return
	}

	inquiries, err := h.getInquiriesUC.Execute(r.Context(), sellerID)
	if err != nil {
		writeUseCaseError(w, logger, err, "Failed to retrieve inquiries")
		return
	}

	response := make([]InquiryResponse, len(inquiries))
	for i, inq := range inquiries {
		response[i] = toInquiryResponse(inq)
	}
	RespondWithJSON(w, http.StatusOK, response)
}
