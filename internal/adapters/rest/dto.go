package rest

import (
	"time"

	"real-estate-marketplace/internal/core/domain"

	"github.com/mmcloughlin/geohash"
)

// geohashPrecision - 7 символов, ячейка примерно 150x150 м. Достаточно для кластеризации на карте.
const geohashPrecision = 7

// ErrorResponse - стандартная структура для ответа с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListingCardResponse - карточка объявления в списке.
type ListingCardResponse struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	PropertyType string   `json:"property_type"`
	ListingType  string   `json:"listing_type"`
	Governorate  string   `json:"governorate"`
	Area         string   `json:"area"`
	Price        float64  `json:"price"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	AreaSqm      float64  `json:"area_sqm"`
	Views        int      `json:"views"`
	DaysListed   int      `json:"days_listed"`
	Featured     bool     `json:"featured"`
	Verified     bool     `json:"verified"`
	Prime        bool     `json:"prime"`
	IsNew        bool     `json:"is_new"`
	NoCommission bool     `json:"no_commission"`
	Amenities    []string `json:"amenities"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Geohash      string   `json:"geohash"`
}

// ListingDetailsResponse - полная информация об объявлении.
type ListingDetailsResponse struct {
	ListingCardResponse
	Description string    `json:"description"`
	Status      string    `json:"status"`
	SellerID    string    `json:"seller_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type PaginatedListingsResponse struct {
	Data       []ListingCardResponse `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	PerPage    int                   `json:"per_page"`
	TotalPages int                   `json:"total_pages"`
}

type RangeResponse struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type FilterOptionsResponse struct {
	Governorates  map[string][]string `json:"governorates"`
	PropertyTypes []string            `json:"property_types"`
	Amenities     []string            `json:"amenities"`
	Bedrooms      []int               `json:"bedrooms"`
	Price         *RangeResponse      `json:"price,omitempty"`
	AreaSqm       *RangeResponse      `json:"area_sqm,omitempty"`
	Count         int                 `json:"count"`
}

// AddFavoriteRequest - тело запроса для добавления в избранное.
type AddFavoriteRequest struct {
	ListingID string `json:"listing_id"`
}

type FavoriteStatusResponse struct {
	ListingID  string `json:"listing_id"`
	IsFavorite bool   `json:"is_favorite"`
}

type FavoriteIDsResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

// ModerateListingRequest - решение модератора: "approved" или "rejected".
type ModerateListingRequest struct {
	Decision string `json:"decision"`
}

type SubmitInquiryRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type InquiryResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func toListingCard(l domain.Listing) ListingCardResponse {
	amenities := l.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return ListingCardResponse{
		ID:           l.ID,
		Title:        l.Title,
		PropertyType: l.PropertyType,
		ListingType:  string(l.ListingType),
		Governorate:  l.Governorate,
		Area:         l.Area,
		Price:        l.Price,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		AreaSqm:      l.AreaSqm,
		Views:        l.Views,
		DaysListed:   l.DaysListed,
		Featured:     l.Featured,
		Verified:     l.Verified,
		Prime:        l.Prime,
		IsNew:        l.IsNew,
		NoCommission: l.NoCommission,
		Amenities:    amenities,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		Geohash:      geohash.EncodeWithPrecision(l.Latitude, l.Longitude, geohashPrecision),
	}
}

func toListingDetails(l domain.Listing) ListingDetailsResponse {
	return ListingDetailsResponse{
		ListingCardResponse: toListingCard(l),
		Description:         l.Description,
		Status:              string(l.Status),
		SellerID:            l.SellerID,
		CreatedAt:           l.CreatedAt,
	}
}

func toPaginatedResponse(p *domain.PaginatedListings) PaginatedListingsResponse {
	response := PaginatedListingsResponse{
		Data:       make([]ListingCardResponse, len(p.Listings)),
		Total:      p.TotalCount,
		Page:       p.CurrentPage,
		PerPage:    p.ItemsPerPage,
		TotalPages: p.TotalPages,
	}
	for i, l := range p.Listings {
		response.Data[i] = toListingCard(l)
	}
	return response
}

func toInquiryResponse(inq domain.Inquiry) InquiryResponse {
	return InquiryResponse{
		ID:        inq.ID.String(),
		ListingID: inq.ListingID,
		Name:      inq.Name,
		Email:     inq.Email,
		Phone:     inq.Phone,
		Message:   inq.Message,
		CreatedAt: inq.CreatedAt,
	}
}
