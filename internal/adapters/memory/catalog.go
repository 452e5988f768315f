package memory

import (
	"context"
	"fmt"
	"sync"

	"real-estate-marketplace/internal/core/domain"
)

// ListingCatalog - каталог объявлений в памяти. Порядок вставки сохраняется.
type ListingCatalog struct {
	mu       sync.RWMutex
	listings []domain.Listing
	index    map[string]int
}

func NewListingCatalog(listings []domain.Listing) *ListingCatalog {
	c := &ListingCatalog{
		listings: make([]domain.Listing, len(listings)),
		index:    make(map[string]int, len(listings)),
	}
	copy(c.listings, listings)
	for i := range c.listings {
		c.index[c.listings[i].ID] = i
	}
	return c
}

func (c *ListingCatalog) ListByStatus(ctx context.Context, status domain.ListingStatus) ([]domain.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]domain.Listing, 0, len(c.listings))
	for i := range c.listings {
		if c.listings[i].Status == status {
			result = append(result, c.listings[i])
		}
	}
	return result, nil
}

func (c *ListingCatalog) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	listing := c.listings[i]
	return &listing, nil
}

func (c *ListingCatalog) UpdateStatus(ctx context.Context, id string, from, to domain.ListingStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[id]
	if !ok {
		return domain.ErrListingNotFound
	}
	if c.listings[i].Status != from {
		return fmt.Errorf("%w: listing %s is %s, expected %s", domain.ErrInvalidStatusTransition, id, c.listings[i].Status, from)
	}
	c.listings[i].Status = to
	return nil
}
