// Package mockdata генерирует воспроизводимый каталог объявлений для
// локального запуска и тестов. Один и тот же seed всегда дает один и тот же каталог.
package mockdata

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"real-estate-marketplace/internal/core/domain"

	"github.com/google/uuid"
)

type location struct {
	area string
	lat  float64
	lon  float64
}

// Governorates - области и районы с примерными координатами центра района.
var Governorates = map[string][]location{
	"Cairo": {
		{"New Cairo", 30.0300, 31.4700},
		{"Maadi", 29.9602, 31.2569},
		{"Heliopolis", 30.0911, 31.3425},
		{"Nasr City", 30.0561, 31.3300},
		{"Zamalek", 30.0609, 31.2197},
	},
	"Giza": {
		{"Sheikh Zayed", 30.0444, 30.9833},
		{"6th of October", 29.9285, 30.9188},
		{"Dokki", 30.0385, 31.2118},
		{"Mohandessin", 30.0566, 31.2003},
	},
	"Alexandria": {
		{"Smouha", 31.2156, 29.9553},
		{"Stanley", 31.2353, 29.9489},
		{"Miami", 31.2667, 30.0000},
	},
	"Red Sea": {
		{"Hurghada", 27.2579, 33.8116},
		{"El Gouna", 27.3949, 33.6782},
	},
	"South Sinai": {
		{"Sharm El Sheikh", 27.9158, 34.3300},
		{"Dahab", 28.5091, 34.5136},
	},
	"Matrouh": {
		{"North Coast", 30.9500, 28.8000},
	},
}

// governorateOrder фиксирует порядок обхода карты, иначе генерация не детерминирована.
var governorateOrder = []string{"Cairo", "Giza", "Alexandria", "Red Sea", "South Sinai", "Matrouh"}

type propertyProfile struct {
	name      string
	minSqm    float64
	maxSqm    float64
	minBeds   int
	maxBeds   int
	salePerM2 float64
}

var propertyProfiles = []propertyProfile{
	{"apartment", 80, 220, 1, 4, 35000},
	{"villa", 250, 650, 3, 7, 55000},
	{"townhouse", 180, 320, 3, 5, 45000},
	{"duplex", 200, 380, 3, 5, 42000},
	{"penthouse", 160, 350, 2, 5, 60000},
	{"studio", 35, 70, 0, 0, 30000},
	{"chalet", 70, 160, 1, 3, 40000},
}

// Amenities - все удобства, которые может получить объявление.
var Amenities = []string{
	"parking", "elevator", "security", "pool", "garden", "gym",
	"balcony", "central-ac", "furnished", "sea-view", "pets-allowed", "maid-room",
}

var titleAdjectives = []string{"Spacious", "Modern", "Cozy", "Luxury", "Bright", "Renovated", "Quiet"}

// ReferenceTime - момент, от которого отсчитывается возраст объявлений.
var ReferenceTime = time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)

const sellerPoolSize = 25

// SellerID возвращает детерминированный идентификатор продавца с номером n.
func SellerID(n int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("marketplace-seller-"+strconv.Itoa(n))).String()
}

// Generate строит каталог из size объявлений.
func Generate(seed uint64, size int) []domain.Listing {
	if size <= 0 {
		return []domain.Listing{}
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	listings := make([]domain.Listing, 0, size)
	for i := 1; i <= size; i++ {
		listings = append(listings, generateListing(rng, i))
	}
	return listings
}

func generateListing(rng *rand.Rand, n int) domain.Listing {
	governorate := governorateOrder[rng.IntN(len(governorateOrder))]
	areas := Governorates[governorate]
	loc := areas[rng.IntN(len(areas))]
	profile := propertyProfiles[rng.IntN(len(propertyProfiles))]

	listingType := domain.ListingTypeSale
	if rng.IntN(100) < 35 {
		listingType = domain.ListingTypeRent
	}

	sqm := profile.minSqm + rng.Float64()*(profile.maxSqm-profile.minSqm)
	sqm = float64(int(sqm))

	bedrooms := profile.minBeds
	if profile.maxBeds > profile.minBeds {
		bedrooms += rng.IntN(profile.maxBeds - profile.minBeds + 1)
	}
	bathrooms := max(1, bedrooms-rng.IntN(2))

	// цена за метр колеблется в пределах +-25%
	price := sqm * profile.salePerM2 * (0.75 + rng.Float64()*0.5)
	if listingType == domain.ListingTypeRent {
		price = price / 250
	}
	price = roundTo(price, 1000)
	if price <= 0 {
		price = 1000
	}

	daysListed := rng.IntN(120)

	listing := domain.Listing{
		ID:           strconv.Itoa(n),
		PropertyType: profile.name,
		ListingType:  listingType,
		Governorate:  governorate,
		Area:         loc.area,
		Latitude:     loc.lat + (rng.Float64()-0.5)*0.02,
		Longitude:    loc.lon + (rng.Float64()-0.5)*0.02,
		Price:        price,
		Bedrooms:     bedrooms,
		Bathrooms:    bathrooms,
		AreaSqm:      sqm,
		Views:        rng.IntN(2000),
		DaysListed:   daysListed,
		Featured:     rng.IntN(100) < 15,
		Verified:     rng.IntN(100) < 60,
		Prime:        rng.IntN(100) < 10,
		IsNew:        daysListed < 7,
		NoCommission: rng.IntN(100) < 30,
		Amenities:    pickAmenities(rng),
		Status:       pickStatus(rng),
		SellerID:     SellerID(rng.IntN(sellerPoolSize)),
		CreatedAt:    ReferenceTime.AddDate(0, 0, -daysListed),
	}
	listing.Title = fmt.Sprintf("%s %s in %s", titleAdjectives[rng.IntN(len(titleAdjectives))], profile.name, loc.area)
	listing.Description = describe(listing)
	return listing
}

func pickAmenities(rng *rand.Rand) []string {
	count := 1 + rng.IntN(5)
	perm := rng.Perm(len(Amenities))[:count]
	amenities := make([]string, 0, count)
	for _, idx := range perm {
		amenities = append(amenities, Amenities[idx])
	}
	return amenities
}

func pickStatus(rng *rand.Rand) domain.ListingStatus {
	switch roll := rng.IntN(100); {
	case roll < 8:
		return domain.ListingStatusPending
	case roll < 11:
		return domain.ListingStatusRejected
	default:
		return domain.ListingStatusApproved
	}
}

func describe(l domain.Listing) string {
	deal := "for sale"
	if l.ListingType == domain.ListingTypeRent {
		deal = "for rent"
	}
	return fmt.Sprintf("%s %s, %.0f sqm with %d bedrooms and %d bathrooms in %s, %s.",
		l.PropertyType, deal, l.AreaSqm, l.Bedrooms, l.Bathrooms, l.Area, l.Governorate)
}

func roundTo(v, step float64) float64 {
	return float64(int64(v/step+0.5)) * step
}
