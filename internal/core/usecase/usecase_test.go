package usecase

import (
	"context"
	"testing"
	"time"

	"real-estate-marketplace/internal/adapters/memory"
	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/favorites"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sellerID = uuid.MustParse("6f1c2a8e-1b7d-4c55-9d0e-2f1a3b4c5d6e")

func testCatalog() *memory.ListingCatalog {
	return memory.NewListingCatalog([]domain.Listing{
		{ID: "1", Title: "Sea view chalet", Governorate: "Matrouh", Area: "North Coast", PropertyType: "chalet",
			ListingType: domain.ListingTypeSale, Price: 3_000_000, Bedrooms: 2, AreaSqm: 110, Views: 50, DaysListed: 10,
			Amenities: []string{"pool"}, Status: domain.ListingStatusApproved, SellerID: sellerID.String()},
		{ID: "2", Title: "Family villa", Governorate: "Giza", Area: "Sheikh Zayed", PropertyType: "villa",
			ListingType: domain.ListingTypeSale, Price: 12_000_000, Bedrooms: 5, AreaSqm: 450, Views: 500, DaysListed: 2,
			Amenities: []string{"pool", "garden"}, Status: domain.ListingStatusApproved, SellerID: "other"},
		{ID: "3", Title: "Flat waiting review", Governorate: "Cairo", Area: "Maadi", PropertyType: "apartment",
			ListingType: domain.ListingTypeRent, Price: 20_000, Bedrooms: 2, AreaSqm: 120, DaysListed: 1,
			Status: domain.ListingStatusPending, SellerID: sellerID.String()},
		{ID: "4", Title: "Older flat waiting review", Governorate: "Cairo", Area: "Zamalek", PropertyType: "apartment",
			ListingType: domain.ListingTypeRent, Price: 30_000, Bedrooms: 3, AreaSqm: 140, DaysListed: 5,
			Status: domain.ListingStatusPending},
		{ID: "5", Title: "Rejected studio", Governorate: "Cairo", Area: "Maadi", PropertyType: "studio",
			ListingType: domain.ListingTypeRent, Price: 9_000, AreaSqm: 40, Status: domain.ListingStatusRejected},
	})
}

func testRegistry(t *testing.T) *favorites.Registry {
	t.Helper()
	registry := favorites.NewRegistry("test", favorites.StoreConfig{PersistBackoff: time.Millisecond},
		memory.NewFavoritesStorage(), memory.NewChangeBus(), contextkeys.NoopLogger(), nil)
	t.Cleanup(func() { _ = registry.Close(context.Background()) })
	return registry
}

func listingIDs(listings []domain.Listing) []string {
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestFindListings_OnlyApprovedListings(t *testing.T) {
	uc := NewFindListingsUseCase(testCatalog(), nil)

	result, err := uc.Execute(context.Background(), domain.FilterSpecification{}, domain.SortPriceLowHigh, 12, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, listingIDs(result.Listings))
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 1, result.TotalPages)

	result, err = uc.Execute(context.Background(), domain.FilterSpecification{Governorates: []string{"Cairo"}}, domain.SortRecommended, 12, 1)
	require.NoError(t, err)
	assert.Empty(t, result.Listings)
	assert.Equal(t, 0, result.TotalPages)
}

func TestGetListingDetails(t *testing.T) {
	uc := NewGetListingDetailsUseCase(testCatalog())
	ctx := context.Background()

	listing, err := uc.Execute(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Family villa", listing.Title)

	_, err = uc.Execute(ctx, "3")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	_, err = uc.Execute(ctx, "404")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestGetFilterOptions(t *testing.T) {
	uc := NewGetFilterOptionsUseCase(testCatalog())

	options, err := uc.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, options.Count)
	assert.Equal(t, map[string][]string{
		"Matrouh": {"North Coast"},
		"Giza":    {"Sheikh Zayed"},
	}, options.Governorates)
	assert.Equal(t, []string{"chalet", "villa"}, options.PropertyTypes)
	assert.Equal(t, []string{"garden", "pool"}, options.Amenities)
	assert.Equal(t, []int{2, 5}, options.Bedrooms)
	require.NotNil(t, options.Price)
	assert.Equal(t, domain.RangeResult{Min: 3_000_000, Max: 12_000_000}, *options.Price)
	assert.Equal(t, domain.RangeResult{Min: 110, Max: 450}, *options.AreaSqm)
}

func TestGetFilterOptions_EmptyCatalog(t *testing.T) {
	uc := NewGetFilterOptionsUseCase(memory.NewListingCatalog(nil))

	options, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, options.Count)
	assert.Nil(t, options.Price)
	assert.Empty(t, options.Governorates)
}

func TestFavoritesFlow(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()
	registry := testRegistry(t)
	userID := uuid.New()

	add := NewAddToFavoritesUseCase(registry)
	remove := NewRemoveFromFavoritesUseCase(registry)
	toggle := NewToggleFavoriteUseCase(registry)
	clearAll := NewClearFavoritesUseCase(registry)
	getIDs := NewGetFavoriteIDsUseCase(registry)
	isFavorite := NewIsFavoriteUseCase(registry)
	getFavorites := NewGetUserFavoritesUseCase(registry, catalog)

	require.NoError(t, add.Execute(ctx, userID, "2"))
	require.NoError(t, add.Execute(ctx, userID, "2"))
	require.NoError(t, add.Execute(ctx, userID, "3"))
	require.NoError(t, add.Execute(ctx, userID, "99"))

	on, err := toggle.Execute(ctx, userID, "1")
	require.NoError(t, err)
	assert.True(t, on)

	ids, err := getIDs.Execute(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "99"}, ids)

	// неодобренные и отсутствующие в каталоге ID не попадают в выборку
	page, err := getFavorites.Execute(ctx, userID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, listingIDs(page.Listings))
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)

	require.NoError(t, remove.Execute(ctx, userID, "2"))
	fav, err := isFavorite.Execute(ctx, userID, "2")
	require.NoError(t, err)
	assert.False(t, fav)

	other, err := getIDs.Execute(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, clearAll.Execute(ctx, userID))
	ids, err = getIDs.Execute(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFavorites_RejectEmptyListingID(t *testing.T) {
	registry := testRegistry(t)
	ctx := context.Background()

	assert.ErrorIs(t, NewAddToFavoritesUseCase(registry).Execute(ctx, uuid.New(), ""), domain.ErrInvalidListingID)
	assert.ErrorIs(t, NewRemoveFromFavoritesUseCase(registry).Execute(ctx, uuid.New(), ""), domain.ErrInvalidListingID)
	_, err := NewToggleFavoriteUseCase(registry).Execute(ctx, uuid.New(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidListingID)
}

func TestModerateListing(t *testing.T) {
	catalog := testCatalog()
	uc := NewModerateListingUseCase(catalog)
	ctx := context.Background()

	require.NoError(t, uc.Execute(ctx, "3", domain.ListingStatusApproved))
	listing, err := catalog.GetByID(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusApproved, listing.Status)

	assert.ErrorIs(t, uc.Execute(ctx, "3", domain.ListingStatusRejected), domain.ErrInvalidStatusTransition)
	assert.ErrorIs(t, uc.Execute(ctx, "4", domain.ListingStatusPending), domain.ErrInvalidStatusTransition)
	assert.ErrorIs(t, uc.Execute(ctx, "404", domain.ListingStatusApproved), domain.ErrListingNotFound)

	require.NoError(t, uc.Execute(ctx, "4", domain.ListingStatusRejected))
}

func TestGetPendingListings_NewestFirst(t *testing.T) {
	uc := NewGetPendingListingsUseCase(testCatalog())

	listings, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4"}, listingIDs(listings))
}

func TestSubmitInquiry(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()
	repo := memory.NewInquiryRepository()
	uc := NewSubmitInquiryUseCase(catalog, repo)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	inquiry, err := uc.Execute(ctx, "1", domain.InquiryInput{
		Name:    "  Mona  ",
		Email:   "Mona <mona@example.com>",
		Message: "Is the price negotiable?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Mona", inquiry.Name)
	assert.Equal(t, "mona@example.com", inquiry.Email)
	assert.Equal(t, sellerID.String(), inquiry.SellerID)
	assert.Equal(t, fixed, inquiry.CreatedAt)
	assert.NotEqual(t, uuid.Nil, inquiry.ID)

	inquiries, err := NewGetSellerInquiriesUseCase(repo).Execute(ctx, sellerID)
	require.NoError(t, err)
	require.Len(t, inquiries, 1)
	assert.Equal(t, inquiry.ID, inquiries[0].ID)
}

func TestSubmitInquiry_Validation(t *testing.T) {
	uc := NewSubmitInquiryUseCase(testCatalog(), memory.NewInquiryRepository())
	ctx := context.Background()
	valid := domain.InquiryInput{Name: "Omar", Phone: "+201000000000", Message: "Hello"}

	testCases := []struct {
		name      string
		listingID string
		mutate    func(in *domain.InquiryInput)
		wantErr   error
	}{
		{name: "missing name", listingID: "1", mutate: func(in *domain.InquiryInput) { in.Name = " " }, wantErr: domain.ErrInvalidInquiry},
		{name: "missing message", listingID: "1", mutate: func(in *domain.InquiryInput) { in.Message = "" }, wantErr: domain.ErrInvalidInquiry},
		{name: "no contact", listingID: "1", mutate: func(in *domain.InquiryInput) { in.Phone = "" }, wantErr: domain.ErrInvalidInquiry},
		{name: "bad email", listingID: "1", mutate: func(in *domain.InquiryInput) { in.Email = "not-an-email" }, wantErr: domain.ErrInvalidInquiry},
		{name: "pending listing", listingID: "3", mutate: func(in *domain.InquiryInput) {}, wantErr: domain.ErrListingNotFound},
		{name: "unknown listing", listingID: "404", mutate: func(in *domain.InquiryInput) {}, wantErr: domain.ErrListingNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			_, err := uc.Execute(ctx, tc.listingID, input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
