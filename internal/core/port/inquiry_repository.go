package port

import (
	"context"
	"real-estate-marketplace/internal/core/domain"
)

type InquiryRepositoryPort interface {
	Create(ctx context.Context, inquiry domain.Inquiry) error
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Inquiry, error)
}
