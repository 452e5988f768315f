package usecases_port

import (
	"context"

	"real-estate-marketplace/internal/core/domain"

	"github.com/google/uuid"
)

type ModerateListingUseCasePort interface {
	Execute(ctx context.Context, listingID string, decision domain.ListingStatus) error
}

type GetPendingListingsUseCasePort interface {
	Execute(ctx context.Context) ([]domain.Listing, error)
}

type SubmitInquiryUseCasePort interface {
	Execute(ctx context.Context, listingID string, input domain.InquiryInput) (*domain.Inquiry, error)
}

type GetSellerInquiriesUseCasePort interface {
	Execute(ctx context.Context, sellerID uuid.UUID) ([]domain.Inquiry, error)
}
