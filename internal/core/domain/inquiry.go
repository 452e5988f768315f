package domain

import (
	"time"

	"github.com/google/uuid"
)

// Inquiry - заявка покупателя по объявлению, отправленная через форму.
type Inquiry struct {
	ID        uuid.UUID
	ListingID string
	SellerID  string
	Name      string
	Email     string
	Phone     string
	Message   string
	CreatedAt time.Time
}

// InquiryInput - данные формы заявки до проверки.
type InquiryInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}
