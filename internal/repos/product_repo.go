package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"kingdavid/internal/domain"
	"kingdavid/internal/store"
)

// Fixed width so created_at sorts lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

type productRow struct {
	ID          string         `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Price       string         `db:"price"`
	Category    string         `db:"category"`
	Quantity    int            `db:"quantity"`
	Status      string         `db:"status"`
	IsNew       bool           `db:"is_new"`
	Image       string         `db:"image"`
	CreatedAt   string         `db:"created_at"`
	UpdatedAt   sql.NullString `db:"updated_at"`
}

func (r productRow) item() domain.Item {
	ts, _ := time.Parse(tsLayout, r.CreatedAt)
	return domain.Item{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Quantity:    r.Quantity,
		Status:      r.Status,
		IsNew:       r.IsNew,
		Image:       r.Image,
		CreatedAt:   ts,
	}
}

const productCols = `id, title, description, price, category, quantity, status, is_new, image, created_at, updated_at`

// ProductRepo is the SQLite implementation of store.Store.
type ProductRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ store.Store = (*ProductRepo)(nil)

func NewProductRepo(db *sqlx.DB) *ProductRepo {
	return &ProductRepo{db: db, now: time.Now}
}

func (r *ProductRepo) stamp() string { return r.now().UTC().Format(tsLayout) }

func (r *ProductRepo) Insert(ctx context.Context, it domain.Item) (domain.Item, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products(id, title, description, price, category, quantity, status, is_new, image, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, it.Title, it.Description, it.Price, it.Category, it.Quantity, it.Status, it.IsNew, it.Image, r.stamp())
	if err != nil {
		return domain.Item{}, err
	}
	return r.Get(ctx, id)
}

func (r *ProductRepo) Update(ctx context.Context, id string, it domain.Item) (domain.Item, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET title = ?, description = ?, price = ?, category = ?, quantity = ?, status = ?, is_new = ?,
		    image = CASE WHEN ? = '' THEN image ELSE ? END,
		    updated_at = ?
		WHERE id = ?
	`, it.Title, it.Description, it.Price, it.Category, it.Quantity, it.Status, it.IsNew, it.Image, it.Image, r.stamp(), id)
	if err != nil {
		return domain.Item{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Item{}, store.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Item, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Item{}, err
	}
	return row.item(), nil
}

func (r *ProductRepo) QueryAll(ctx context.Context, limit int) ([]domain.Item, error) {
	if limit <= 0 || limit > store.MaxQuery {
		limit = store.MaxQuery
	}
	return r.list(ctx, `
		SELECT `+productCols+`
		FROM products
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
}

func (r *ProductRepo) QueryAvailable(ctx context.Context) ([]domain.Item, error) {
	return r.list(ctx, `
		SELECT `+productCols+`
		FROM products
		WHERE status = ? AND quantity > 0
		ORDER BY created_at DESC, rowid DESC
	`, domain.StatusAvailable)
}

func (r *ProductRepo) list(ctx context.Context, q string, args ...any) ([]domain.Item, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.item())
	}
	return out, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}
