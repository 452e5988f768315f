package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"

	"github.com/google/uuid"
)

const maxInquiryMessageLength = 2000

type SubmitInquiryUseCase struct {
	catalog   port.ListingCatalogPort
	inquiries port.InquiryRepositoryPort
	now       func() time.Time
}

func NewSubmitInquiryUseCase(catalog port.ListingCatalogPort, inquiries port.InquiryRepositoryPort) *SubmitInquiryUseCase {
	return &SubmitInquiryUseCase{
		catalog:   catalog,
		inquiries: inquiries,
		now:       time.Now,
	}
}

// Execute сохраняет заявку по одобренному объявлению и адресует ее продавцу.
func (uc *SubmitInquiryUseCase) Execute(ctx context.Context, listingID string, input domain.InquiryInput) (*domain.Inquiry, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":   "SubmitInquiry",
		"listing_id": listingID,
	})

	ucLogger.Info("Use case started", nil)

	input, err := normalizeInquiry(input)
	if err != nil {
		ucLogger.Warn("Inquiry rejected", port.Fields{"reason": err.Error()})
		return nil, err
	}

	listing, err := uc.catalog.GetByID(ctx, listingID)
	if err != nil {
		ucLogger.Warn("Listing lookup failed", port.Fields{"error": err.Error()})
		return nil, err
	}
	if listing.Status != domain.ListingStatusApproved {
		return nil, domain.ErrListingNotFound
	}

	inquiry := domain.Inquiry{
		ID:        uuid.New(),
		ListingID: listing.ID,
		SellerID:  listing.SellerID,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Message:   input.Message,
		CreatedAt: uc.now().UTC(),
	}

	if err := uc.inquiries.Create(ctx, inquiry); err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, fmt.Errorf("failed to save inquiry: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"inquiry_id": inquiry.ID})
	return &inquiry, nil
}

func normalizeInquiry(in domain.InquiryInput) (domain.InquiryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)

	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", domain.ErrInvalidInquiry)
	}
	if in.Message == "" {
		return in, fmt.Errorf("%w: message is required", domain.ErrInvalidInquiry)
	}
	if utf8.RuneCountInString(in.Message) > maxInquiryMessageLength {
		return in, fmt.Errorf("%w: message is longer than %d characters", domain.ErrInvalidInquiry, maxInquiryMessageLength)
	}
	if in.Email == "" && in.Phone == "" {
		return in, fmt.Errorf("%w: email or phone is required", domain.ErrInvalidInquiry)
	}
	if in.Email != "" {
		addr, err := mail.ParseAddress(in.Email)
		if err != nil {
			return in, fmt.Errorf("%w: invalid email", domain.ErrInvalidInquiry)
		}
		in.Email = addr.Address
	}
	return in, nil
}
