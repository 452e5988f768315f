package domain

import "time"

// ListingType - тип сделки по объявлению.
type ListingType string

const (
	ListingTypeSale ListingType = "sale"
	ListingTypeRent ListingType = "rent"
)

// ListingStatus - статус модерации объявления.
type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "pending"
	ListingStatusApproved ListingStatus = "approved"
	ListingStatusRejected ListingStatus = "rejected"
)

// Listing - объявление о продаже или аренде недвижимости.
// Для движка поиска объявление доступно только на чтение.
type Listing struct {
	ID           string
	PropertyType string
	ListingType  ListingType

	Governorate string
	Area        string // зависит от Governorate
	Latitude    float64
	Longitude   float64

	Price     float64
	Bedrooms  int
	Bathrooms int
	AreaSqm   float64

	Views      int
	DaysListed int // чем меньше, тем свежее объявление

	Featured     bool
	Verified     bool
	Prime        bool
	IsNew        bool
	NoCommission bool

	Amenities []string

	Title       string
	Description string

	Status    ListingStatus
	SellerID  string
	CreatedAt time.Time
}

// HasAmenity проверяет наличие удобства у объявления.
func (l *Listing) HasAmenity(amenity string) bool {
	for _, a := range l.Amenities {
		if a == amenity {
			return true
		}
	}
	return false
}

// PaginatedListings - страница результатов поиска.
type PaginatedListings struct {
	Listings     []Listing
	TotalCount   int
	CurrentPage  int
	ItemsPerPage int
	TotalPages   int
}
