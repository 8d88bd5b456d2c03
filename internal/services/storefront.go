package services

import (
	"context"

	"kingdavid/internal/catalog"
	"kingdavid/internal/domain"
	"kingdavid/internal/store"
)

// Listing is what the public shop shows for one category.
type Listing struct {
	Items      []domain.Item
	Categories []string
	// FromSeed is set when the store failed or had nothing available.
	FromSeed bool
}

type Storefront struct {
	Store store.Store
	Seed  []domain.Item
}

func NewStorefront(st store.Store, seed []domain.Item) *Storefront {
	return &Storefront{Store: st, Seed: seed}
}

// Available returns in-stock items, falling back to the seed catalog.
// The error is the store failure, if any; the returned items are usable
// either way.
func (s *Storefront) Available(ctx context.Context) ([]domain.Item, bool, error) {
	items, err := s.Store.QueryAvailable(ctx)
	if err != nil {
		return s.seed(), true, err
	}
	if len(items) == 0 {
		return s.seed(), true, nil
	}
	return items, false, nil
}

// seed applies the same rule as Store.QueryAvailable.
func (s *Storefront) seed() []domain.Item {
	var out []domain.Item
	for _, it := range catalog.Filter(s.Seed, domain.Query{Status: domain.StatusAvailable}) {
		if it.Quantity > 0 {
			out = append(out, it)
		}
	}
	return out
}

// Products lists the available items in category ("" or "all" for every
// category).
func (s *Storefront) Products(ctx context.Context, category string) (Listing, error) {
	items, fromSeed, err := s.Available(ctx)
	return Listing{
		Items:      catalog.ByCategory(items, category),
		Categories: catalog.Categories(items),
		FromSeed:   fromSeed,
	}, err
}
