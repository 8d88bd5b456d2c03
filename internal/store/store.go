// Package store defines the external object store the catalog is persisted
// in. Drivers live in internal/parse (hosted Parse server) and internal/repos
// (local SQLite).
package store

import (
	"context"
	"errors"

	"kingdavid/internal/domain"
)

// MaxQuery is the most records a full reload fetches.
const MaxQuery = 1000

var ErrNotFound = errors.New("record not found")

type Store interface {
	// Insert creates a record and returns it with ID and CreatedAt assigned.
	Insert(ctx context.Context, it domain.Item) (domain.Item, error)
	// Update replaces the fields of an existing record. An empty Image keeps
	// the stored image.
	Update(ctx context.Context, id string, it domain.Item) (domain.Item, error)
	Get(ctx context.Context, id string) (domain.Item, error)
	// QueryAll returns up to limit records, newest first.
	QueryAll(ctx context.Context, limit int) ([]domain.Item, error)
	// QueryAvailable returns in-stock available records, newest first.
	QueryAvailable(ctx context.Context) ([]domain.Item, error)
	// Delete removes a record permanently.
	Delete(ctx context.Context, id string) error
}
