package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"kingdavid/internal/catalog"
	"kingdavid/internal/domain"
	applog "kingdavid/internal/log"
	"kingdavid/internal/store"
)

// SaveOp is either Insert or Update.
type SaveOp interface{ saveOp() }

type Insert struct {
	Item domain.Item
}

// Update replaces the record ID with Item. An empty Item.Image keeps the
// stored image.
type Update struct {
	ID   string
	Item domain.Item
}

func (Insert) saveOp() {}
func (Update) saveOp() {}

// View is one render of the admin page.
type View struct {
	Query      domain.Query
	Grid       catalog.Grid
	Stats      domain.Stats
	Categories []string
}

// AdminCatalog is the state behind one admin session: the last fetched
// catalog and the operations that mutate it. Every mutation is followed by a
// full reload under the same lock.
type AdminCatalog struct {
	store store.Store

	mu    sync.Mutex
	items []domain.Item
}

func NewAdminCatalog(st store.Store) *AdminCatalog {
	return &AdminCatalog{store: st}
}

func (a *AdminCatalog) Reload(ctx context.Context) ([]domain.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	return a.snapshot(), nil
}

func (a *AdminCatalog) reload(ctx context.Context) error {
	items, err := a.store.QueryAll(ctx, store.MaxQuery)
	if err != nil {
		a.items = nil
		return &LoadError{Err: err}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	a.items = items
	applog.Info(nil, "admin.catalog.reload", map[string]any{"count": len(items)})
	return nil
}

func (a *AdminCatalog) snapshot() []domain.Item {
	out := make([]domain.Item, len(a.items))
	copy(out, a.items)
	return out
}

// Items returns a copy of the in-memory catalog.
func (a *AdminCatalog) Items() []domain.Item {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

// Item looks up one record in the in-memory catalog.
func (a *AdminCatalog) Item(id string) (domain.Item, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.find(id)
}

func (a *AdminCatalog) find(id string) (domain.Item, bool) {
	for _, it := range a.items {
		if it.ID == id {
			return it, true
		}
	}
	return domain.Item{}, false
}

// View filters the in-memory catalog. It never touches the store.
func (a *AdminCatalog) View(q domain.Query) View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return View{
		Query:      q,
		Grid:       catalog.Cards(catalog.Filter(a.items, q)),
		Stats:      catalog.ComputeStats(a.items),
		Categories: catalog.Categories(a.items),
	}
}

// Save performs one remote Insert or Update, then reloads. A failed reload
// after a successful write is reported as *LoadError with the saved item.
func (a *AdminCatalog) Save(ctx context.Context, op SaveOp) (domain.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.save(ctx, op, "")
}

func (a *AdminCatalog) save(ctx context.Context, op SaveOp, toggle Toggle) (domain.Item, error) {
	var (
		saved domain.Item
		err   error
	)
	switch op := op.(type) {
	case Insert:
		if op.Item.Image == "" {
			return domain.Item{}, ErrImageRequired
		}
		op.Item.ID = ""
		saved, err = a.store.Insert(ctx, op.Item)
		if err != nil {
			err = &SaveError{Toggle: toggle, Err: err}
		}
	case Update:
		if op.ID == "" {
			return domain.Item{}, &SaveError{Toggle: toggle, Err: errors.New("missing id")}
		}
		op.Item.ID = op.ID
		saved, err = a.store.Update(ctx, op.ID, op.Item)
		if err != nil {
			err = &SaveError{ID: op.ID, Toggle: toggle, Err: err}
		}
	default:
		return domain.Item{}, fmt.Errorf("unknown save op %T", op)
	}

	if rerr := a.reload(ctx); err == nil {
		err = rerr
	}
	return saved, err
}

// Delete removes a record permanently, then reloads.
func (a *AdminCatalog) Delete(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if derr := a.store.Delete(ctx, id); derr != nil {
		err = &DeleteError{ID: id, Err: derr}
	}
	if rerr := a.reload(ctx); err == nil {
		err = rerr
	}
	return err
}

// SetStatus re-saves the in-memory copy of id with a new status.
func (a *AdminCatalog) SetStatus(ctx context.Context, id, status string) (domain.Item, error) {
	if status != domain.StatusAvailable && status != domain.StatusSold {
		return domain.Item{}, &SaveError{ID: id, Toggle: ToggleStatus, Err: fmt.Errorf("invalid status %q", status)}
	}
	return a.toggle(ctx, id, ToggleStatus, func(it *domain.Item) { it.Status = status })
}

// ToggleNew flips the new-stock flag. Status is left alone.
func (a *AdminCatalog) ToggleNew(ctx context.Context, id string) (domain.Item, error) {
	return a.toggle(ctx, id, ToggleNew, func(it *domain.Item) { it.IsNew = !it.IsNew })
}

func (a *AdminCatalog) toggle(ctx context.Context, id string, kind Toggle, change func(*domain.Item)) (domain.Item, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	it, ok := a.find(id)
	if !ok {
		return domain.Item{}, &SaveError{ID: id, Toggle: kind, Err: store.ErrNotFound}
	}
	change(&it)
	it.Image = "" // keep the stored image
	return a.save(ctx, Update{ID: id, Item: it}, kind)
}
