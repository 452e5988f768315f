package postgres_adapter

import (
	"context"
	"os"
	"testing"
	"time"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/mockdata"
	"real-estate-marketplace/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", "pgx5://u:p@localhost:5432/db?sslmode=disable"},
		{"postgresql://u@db/market", "pgx5://u@db/market"},
		{"pgx5://u@db/market", "pgx5://u@db/market"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, migrationURL(tt.in))
	}
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 6)
}

func TestConstructorsRejectNilPool(t *testing.T) {
	_, err := NewPostgresListingCatalog(nil)
	assert.Error(t, err)
	_, err = NewPostgresFavoritesStorage(nil)
	assert.Error(t, err)
	_, err = NewPostgresInquiryRepository(nil)
	assert.Error(t, err)
}

// testPool поднимает схему в базе из TEST_DATABASE_URL и очищает таблицы.
// Без переменной окружения тест пропускается.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	require.NoError(t, RunMigrations(url, contextkeys.NoopLogger()))

	ctx := context.Background()
	pool, err := postgres.NewClient(ctx, postgres.Config{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE inquiries, listings, favorites_storage`)
	require.NoError(t, err)
	return pool
}

func TestPostgresFavoritesStorage(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	storage, err := NewPostgresFavoritesStorage(pool)
	require.NoError(t, err)

	_, err = storage.Load(ctx, "ns:favorites:missing")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, storage.Save(ctx, "ns:favorites:u1", []byte(`["1"]`)))
	require.NoError(t, storage.Save(ctx, "ns:favorites:u1", []byte(`["1","2"]`)))

	value, err := storage.Load(ctx, "ns:favorites:u1")
	require.NoError(t, err)
	assert.Equal(t, `["1","2"]`, string(value))
}

func TestPostgresListingCatalog(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	catalog, err := NewPostgresListingCatalog(pool)
	require.NoError(t, err)

	listings := mockdata.Generate(7, 40)
	copied, err := catalog.SeedIfEmpty(ctx, listings)
	require.NoError(t, err)
	assert.EqualValues(t, 40, copied)

	again, err := catalog.SeedIfEmpty(ctx, listings)
	require.NoError(t, err)
	assert.Zero(t, again)

	approved, err := catalog.ListByStatus(ctx, domain.ListingStatusApproved)
	require.NoError(t, err)
	var expected []string
	for _, l := range listings {
		if l.Status == domain.ListingStatusApproved {
			expected = append(expected, l.ID)
		}
	}
	got := make([]string, len(approved))
	for i, l := range approved {
		got[i] = l.ID
	}
	assert.Equal(t, expected, got)

	first := listings[0]
	loaded, err := catalog.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Title, loaded.Title)
	assert.Equal(t, first.ListingType, loaded.ListingType)
	assert.ElementsMatch(t, first.Amenities, loaded.Amenities)

	_, err = catalog.GetByID(ctx, "does-not-exist")
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	err = catalog.UpdateStatus(ctx, "does-not-exist", domain.ListingStatusPending, domain.ListingStatusApproved)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	err = catalog.UpdateStatus(ctx, first.ID, "no-such-status", domain.ListingStatusApproved)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	require.NoError(t, catalog.UpdateStatus(ctx, first.ID, first.Status, domain.ListingStatusRejected))
	loaded, err = catalog.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusRejected, loaded.Status)
}

func TestPostgresInquiryRepository(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	catalog, err := NewPostgresListingCatalog(pool)
	require.NoError(t, err)
	listings := mockdata.Generate(3, 5)
	_, err = catalog.SeedIfEmpty(ctx, listings)
	require.NoError(t, err)

	repo, err := NewPostgresInquiryRepository(pool)
	require.NoError(t, err)

	seller := listings[0].SellerID
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := range 2 {
		require.NoError(t, repo.Create(ctx, domain.Inquiry{
			ID:        uuid.New(),
			ListingID: listings[0].ID,
			SellerID:  seller,
			Name:      "Buyer",
			Email:     "buyer@example.com",
			Message:   "Is it still available?",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	err = repo.Create(ctx, domain.Inquiry{ID: uuid.New(), ListingID: "missing", SellerID: seller, Name: "x", Message: "y", CreatedAt: base})
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	got, err := repo.ListBySeller(ctx, seller)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))
}
