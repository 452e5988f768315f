package memory

import (
	"context"
	"sync"

	"real-estate-marketplace/internal/core/domain"
)

type InquiryRepository struct {
	mu        sync.RWMutex
	inquiries []domain.Inquiry
}

func NewInquiryRepository() *InquiryRepository {
	return &InquiryRepository{}
}

func (r *InquiryRepository) Create(ctx context.Context, inquiry domain.Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inquiries = append(r.inquiries, inquiry)
	return nil
}

// ListBySeller возвращает заявки продавца, новые первыми.
func (r *InquiryRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Inquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Inquiry, 0)
	for i := len(r.inquiries) - 1; i >= 0; i-- {
		if r.inquiries[i].SellerID == sellerID {
			result = append(result, r.inquiries[i])
		}
	}
	return result, nil
}
