package postgres_adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var listingColumns = []string{
	"id", "property_type", "listing_type", "governorate", "area", "latitude", "longitude",
	"price", "bedrooms", "bathrooms", "area_sqm", "views", "days_listed",
	"featured", "verified", "prime", "is_new", "no_commission", "amenities",
	"title", "description", "status", "seller_id", "created_at",
}

const selectListings = `SELECT id, property_type, listing_type, governorate, area, latitude, longitude,
	price, bedrooms, bathrooms, area_sqm, views, days_listed,
	featured, verified, prime, is_new, no_commission, amenities,
	title, description, status, seller_id, created_at
	FROM listings`

// PostgresListingCatalog - каталог объявлений в таблице listings.
// Порядок выдачи - порядок вставки (колонка position).
type PostgresListingCatalog struct {
	pool *pgxpool.Pool
}

func NewPostgresListingCatalog(pool *pgxpool.Pool) (*PostgresListingCatalog, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresListingCatalog{pool: pool}, nil
}

func (r *PostgresListingCatalog) ListByStatus(ctx context.Context, status domain.ListingStatus) ([]domain.Listing, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresListingCatalog",
		"method":    "ListByStatus",
		"status":    status,
	})

	query := selectListings + ` WHERE status = $1 ORDER BY position`
	rows, err := r.pool.Query(ctx, query, string(status))
	if err != nil {
		repoLogger.Error("Failed to query listings", err, port.Fields{"query": query})
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			repoLogger.Error("Failed to scan listing row", err, nil)
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}
	if err := rows.Err(); err != nil {
		repoLogger.Error("Error during listings iteration", err, nil)
		return nil, fmt.Errorf("error during listings iteration: %w", err)
	}

	repoLogger.Debug("Listings loaded", port.Fields{"count": len(listings)})
	return listings, nil
}

func (r *PostgresListingCatalog) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.pool.QueryRow(ctx, selectListings+` WHERE id = $1`, id)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		contextkeys.LoggerFromContext(ctx).Error("Failed to get listing", err, port.Fields{
			"component":  "PostgresListingCatalog",
			"listing_id": id,
		})
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return &listing, nil
}

// UpdateStatus меняет статус атомарно: строка обновляется, только если текущий статус равен from.
func (r *PostgresListingCatalog) UpdateStatus(ctx context.Context, id string, from, to domain.ListingStatus) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PostgresListingCatalog",
		"method":     "UpdateStatus",
		"listing_id": id,
	})

	cmdTag, err := r.pool.Exec(ctx, `UPDATE listings SET status = $3 WHERE id = $1 AND status = $2`, id, string(from), string(to))
	if err != nil {
		repoLogger.Error("Failed to update listing status", err, nil)
		return fmt.Errorf("failed to update listing status: %w", err)
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	var current string
	err = r.pool.QueryRow(ctx, `SELECT status FROM listings WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrListingNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read listing status: %w", err)
	}
	return fmt.Errorf("%w: listing %s is %s, expected %s", domain.ErrInvalidStatusTransition, id, current, from)
}

// SeedIfEmpty заливает каталог через COPY, если таблица пуста. Возвращает число вставленных строк.
func (r *PostgresListingCatalog) SeedIfEmpty(ctx context.Context, listings []domain.Listing) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	if count > 0 || len(listings) == 0 {
		return 0, nil
	}

	copied, err := r.pool.CopyFrom(ctx, pgx.Identifier{"listings"}, listingColumns,
		pgx.CopyFromSlice(len(listings), func(i int) ([]any, error) {
			l := listings[i]
			return []any{
				l.ID, l.PropertyType, string(l.ListingType), l.Governorate, l.Area, l.Latitude, l.Longitude,
				l.Price, l.Bedrooms, l.Bathrooms, l.AreaSqm, l.Views, l.DaysListed,
				l.Featured, l.Verified, l.Prime, l.IsNew, l.NoCommission, nonNil(l.Amenities),
				l.Title, l.Description, string(l.Status), l.SellerID, l.CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy listings: %w", err)
	}
	return copied, nil
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var (
		l           domain.Listing
		listingType string
		status      string
		createdAt   time.Time
	)
	err := row.Scan(
		&l.ID, &l.PropertyType, &listingType, &l.Governorate, &l.Area, &l.Latitude, &l.Longitude,
		&l.Price, &l.Bedrooms, &l.Bathrooms, &l.AreaSqm, &l.Views, &l.DaysListed,
		&l.Featured, &l.Verified, &l.Prime, &l.IsNew, &l.NoCommission, &l.Amenities,
		&l.Title, &l.Description, &status, &l.SellerID, &createdAt,
	)
	if err != nil {
		return domain.Listing{}, err
	}
	l.ListingType = domain.ListingType(listingType)
	l.Status = domain.ListingStatus(status)
	l.CreatedAt = createdAt.UTC()
	return l, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
