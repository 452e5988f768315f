package usecase

import (
	"context"
	"fmt"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"

	"github.com/google/uuid"
)

type GetSellerInquiriesUseCase struct {
	inquiries port.InquiryRepositoryPort
}

func NewGetSellerInquiriesUseCase(inquiries port.InquiryRepositoryPort) *GetSellerInquiriesUseCase {
	return &GetSellerInquiriesUseCase{inquiries: inquiries}
}

func (uc *GetSellerInquiriesUseCase) Execute(ctx context.Context, sellerID uuid.UUID) ([]domain.Inquiry, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case":  "GetSellerInquiries",
		"seller_id": sellerID,
	})

	ucLogger.Info("Use case started", nil)

	inquiries, err := uc.inquiries.ListBySeller(ctx, sellerID.String())
	if err != nil {
		ucLogger.Error("Repository returned an error", err, nil)
		return nil, fmt.Errorf("failed to list inquiries: %w", err)
	}

	ucLogger.Info("Use case finished successfully", port.Fields{"count": len(inquiries)})
	return inquiries, nil
}
