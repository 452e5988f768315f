package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresInquiryRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresInquiryRepository(pool *pgxpool.Pool) (*PostgresInquiryRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresInquiryRepository{pool: pool}, nil
}

func (r *PostgresInquiryRepository) Create(ctx context.Context, inquiry domain.Inquiry) error {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component":  "PostgresInquiryRepository",
		"method":     "Create",
		"listing_id": inquiry.ListingID,
	})

	query := `INSERT INTO inquiries (id, listing_id, seller_id, name, email, phone, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		inquiry.ID, inquiry.ListingID, inquiry.SellerID, inquiry.Name,
		inquiry.Email, inquiry.Phone, inquiry.Message, inquiry.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // 23503 - foreign_key_violation
			repoLogger.Warn("Inquiry references a missing listing", nil)
			return domain.ErrListingNotFound
		}
		repoLogger.Error("Failed to insert inquiry", err, nil)
		return fmt.Errorf("failed to insert inquiry: %w", err)
	}
	return nil
}

// ListBySeller возвращает заявки продавца, новые первыми.
func (r *PostgresInquiryRepository) ListBySeller(ctx context.Context, sellerID string) ([]domain.Inquiry, error) {
	repoLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "PostgresInquiryRepository",
		"method":    "ListBySeller",
		"seller_id": sellerID,
	})

	query := `SELECT id, listing_id, seller_id, name, email, phone, message, created_at
		FROM inquiries WHERE seller_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		repoLogger.Error("Failed to query inquiries", err, nil)
		return nil, fmt.Errorf("failed to query inquiries: %w", err)
	}
	defer rows.Close()

	inquiries := make([]domain.Inquiry, 0)
	for rows.Next() {
		var inq domain.Inquiry
		if err := rows.Scan(&inq.ID, &inq.ListingID, &inq.SellerID, &inq.Name, &inq.Email, &inq.Phone, &inq.Message, &inq.CreatedAt); err != nil {
			repoLogger.Error("Failed to scan inquiry row", err, nil)
			return nil, fmt.Errorf("failed to scan inquiry: %w", err)
		}
		inquiries = append(inquiries, inq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during inquiries iteration: %w", err)
	}
	return inquiries, nil
}
