package services_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"kingdavid/internal/domain"
	"kingdavid/internal/repos"
	"kingdavid/internal/services"
	"kingdavid/internal/store"
)

func memStore(t *testing.T) *repos.ProductRepo {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewProductRepo(db)
}

// flakyStore fails the selected operations on demand.
type flakyStore struct {
	store.Store
	failQuery  atomic.Bool
	failWrite  atomic.Bool
	failDelete atomic.Bool
}

var errDown = errors.New("backend unavailable")

func (f *flakyStore) QueryAll(ctx context.Context, limit int) ([]domain.Item, error) {
	if f.failQuery.Load() {
		return nil, errDown
	}
	return f.Store.QueryAll(ctx, limit)
}

func (f *flakyStore) Insert(ctx context.Context, it domain.Item) (domain.Item, error) {
	if f.failWrite.Load() {
		return domain.Item{}, errDown
	}
	return f.Store.Insert(ctx, it)
}

func (f *flakyStore) Update(ctx context.Context, id string, it domain.Item) (domain.Item, error) {
	if f.failWrite.Load() {
		return domain.Item{}, errDown
	}
	return f.Store.Update(ctx, id, it)
}

func (f *flakyStore) Delete(ctx context.Context, id string) error {
	if f.failDelete.Load() {
		return errDown
	}
	return f.Store.Delete(ctx, id)
}

func smallJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for x := 0; x < 40; x++ {
		for y := 0; y < 30; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 6), G: 120, B: uint8(y * 8), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func kettle(image string) domain.Item {
	return domain.Item{
		Title: "Kettle", Price: "599", Category: "kitchen", Quantity: 3,
		Status: domain.StatusAvailable, IsNew: true, Image: image,
	}
}

func titles(items []domain.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

func TestAdminCatalog_KettleLifecycle(t *testing.T) {
	ctx := context.Background()
	ac := services.NewAdminCatalog(memStore(t))

	img, err := services.NewUploads(nil).Prepare(ctx, "kettle.jpg", smallJPEG(t))
	require.NoError(t, err)

	saved, err := ac.Save(ctx, services.Insert{Item: kettle(img)})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	items, err := ac.Reload(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	newView := ac.View(domain.Query{Status: domain.FilterNew})
	require.Len(t, newView.Grid.Cards, 1)
	assert.Equal(t, "Kettle", newView.Grid.Cards[0].Title)
	assert.Equal(t, "R599", newView.Grid.Cards[0].Price)

	soldView := ac.View(domain.Query{Status: domain.StatusSold})
	assert.True(t, soldView.Grid.Empty)

	require.NoError(t, ac.Delete(ctx, saved.ID))
	_, err = ac.Reload(ctx)
	require.NoError(t, err)
	for _, q := range []domain.Query{
		{}, {Status: domain.FilterAll}, {Status: domain.FilterNew},
		{Status: domain.StatusAvailable}, {Status: domain.StatusSold},
		{Category: "kitchen"}, {Text: "kettle"},
	} {
		assert.True(t, ac.View(q).Grid.Empty, "%+v", q)
	}
}

func TestAdminCatalog_InsertRequiresImage(t *testing.T) {
	ac := services.NewAdminCatalog(memStore(t))
	_, err := ac.Save(context.Background(), services.Insert{Item: kettle("")})
	require.ErrorIs(t, err, services.ErrImageRequired)
	assert.Equal(t, "Please upload a product image.", services.Notice(err))
	assert.Empty(t, ac.Items())
}

func TestAdminCatalog_ReloadFailureResetsToEmpty(t *testing.T) {
	ctx := context.Background()
	fs := &flakyStore{Store: memStore(t)}
	ac := services.NewAdminCatalog(fs)

	_, err := ac.Save(ctx, services.Insert{Item: kettle("data:image/jpeg;base64,AAAA")})
	require.NoError(t, err)
	require.Len(t, ac.Items(), 1)

	fs.failQuery.Store(true)
	_, err = ac.Reload(ctx)
	var loadErr *services.LoadError
	require.ErrorAs(t, err, &loadErr)
	require.ErrorIs(t, err, errDown)
	assert.Equal(t, "Error loading products. Please try again.", services.Notice(err))
	assert.Empty(t, ac.Items())
	assert.True(t, ac.View(domain.Query{}).Grid.Empty)
}

func TestAdminCatalog_SaveAndDeleteErrors(t *testing.T) {
	ctx := context.Background()
	fs := &flakyStore{Store: memStore(t)}
	ac := services.NewAdminCatalog(fs)
	saved, err := ac.Save(ctx, services.Insert{Item: kettle("data:image/jpeg;base64,AAAA")})
	require.NoError(t, err)

	fs.failWrite.Store(true)
	_, err = ac.Save(ctx, services.Insert{Item: kettle("data:image/jpeg;base64,BBBB")})
	var saveErr *services.SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Empty(t, saveErr.Toggle)
	assert.Equal(t, "Error saving product. Please try again.", services.Notice(err))
	assert.Len(t, ac.Items(), 1)

	_, err = ac.SetStatus(ctx, saved.ID, domain.StatusSold)
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, services.ToggleStatus, saveErr.Toggle)
	assert.Equal(t, "Error updating status. Please try again.", services.Notice(err))

	_, err = ac.ToggleNew(ctx, saved.ID)
	assert.Equal(t, "Error updating product. Please try again.", services.Notice(err))
	fs.failWrite.Store(false)

	fs.failDelete.Store(true)
	err = ac.Delete(ctx, saved.ID)
	var delErr *services.DeleteError
	require.ErrorAs(t, err, &delErr)
	assert.Equal(t, saved.ID, delErr.ID)
	assert.Equal(t, "Error deleting product. Please try again.", services.Notice(err))
	assert.Len(t, ac.Items(), 1)

	_, err = ac.Save(ctx, services.Update{ID: "missing", Item: kettle("")})
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = ac.ToggleNew(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAdminCatalog_TogglesKeepImageAndAreOrthogonal(t *testing.T) {
	ctx := context.Background()
	ac := services.NewAdminCatalog(memStore(t))
	saved, err := ac.Save(ctx, services.Insert{Item: kettle("data:image/jpeg;base64,AAAA")})
	require.NoError(t, err)

	got, err := ac.SetStatus(ctx, saved.ID, domain.StatusSold)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, got.Status)
	assert.True(t, got.IsNew)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", got.Image)

	got, err = ac.ToggleNew(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, got.IsNew)
	assert.Equal(t, domain.StatusSold, got.Status)

	it, ok := ac.Item(saved.ID)
	require.True(t, ok)
	assert.Equal(t, got, it)

	_, err = ac.SetStatus(ctx, saved.ID, "archived")
	require.Error(t, err)

	stats := ac.View(domain.Query{}).Stats
	assert.Equal(t, domain.Stats{Total: 1, Sold: 1}, stats)
}

func TestAdminCatalog_UpdateWithEmptyImageKeepsStored(t *testing.T) {
	ctx := context.Background()
	ac := services.NewAdminCatalog(memStore(t))
	saved, err := ac.Save(ctx, services.Insert{Item: kettle("https://cdn.example/k.jpg")})
	require.NoError(t, err)

	edit := saved
	edit.Title = "Kettle 2L"
	edit.Image = ""
	got, err := ac.Save(ctx, services.Update{ID: saved.ID, Item: edit})
	require.NoError(t, err)
	assert.Equal(t, "Kettle 2L", got.Title)
	assert.Equal(t, "https://cdn.example/k.jpg", got.Image)
	assert.Equal(t, []string{"Kettle 2L"}, titles(ac.Items()))
}

// One session never interleaves its own read-modify-write cycles.
func TestAdminCatalog_SessionSerializesToggles(t *testing.T) {
	ctx := context.Background()
	ac := services.NewAdminCatalog(memStore(t))
	saved, err := ac.Save(ctx, services.Insert{Item: kettle("data:image/jpeg;base64,AAAA")})
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := ac.ToggleNew(ctx, saved.ID)
			return err
		})
	}
	require.NoError(t, g.Wait())

	it, ok := ac.Item(saved.ID)
	require.True(t, ok)
	assert.True(t, it.IsNew, "ten toggles must cancel out")
}

// Two sessions writing the same record: the later write wins wholesale and
// silently discards the earlier one. Known limitation, no version check.
func TestAdminCatalog_ConcurrentSessionsLastWriteWins(t *testing.T) {
	ctx := context.Background()
	st := memStore(t)
	alice := services.NewAdminCatalog(st)
	bob := services.NewAdminCatalog(st)

	saved, err := alice.Save(ctx, services.Insert{Item: kettle("data:image/jpeg;base64,AAAA")})
	require.NoError(t, err)
	_, err = bob.Reload(ctx)
	require.NoError(t, err)

	_, err = alice.SetStatus(ctx, saved.ID, domain.StatusSold)
	require.NoError(t, err)

	// bob still holds the pre-sale copy
	_, err = bob.ToggleNew(ctx, saved.ID)
	require.NoError(t, err)

	final, err := st.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, final.IsNew)
	assert.Equal(t, domain.StatusAvailable, final.Status, "alice's sale was overwritten")
}
