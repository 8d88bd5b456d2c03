package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"kingdavid/internal/domain"
	applog "kingdavid/internal/log"
	"kingdavid/internal/services"
	"kingdavid/internal/validate"
)

const sessionCookie = "sid"

type AdminHandler struct {
	Sessions *services.Registry
	Uploads  *services.Uploads
}

// flash messages shown after a redirect, keyed by the ok query value.
var flash = map[string]string{
	"added":     "Product added successfully!",
	"updated":   "Product updated successfully!",
	"deleted":   "Product deleted successfully!",
	"sold":      "Product marked as sold!",
	"available": "Product marked as available!",
	"new":       "Product marked as new stock!",
	"unnew":     "Product unmarked as new stock!",
}

// Session binds the request to its admin catalog, issuing a sid cookie on
// first visit.
func (h *AdminHandler) Session(c *fiber.Ctx) error {
	sid := c.Cookies(sessionCookie)
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     sessionCookie,
			Value:    sid,
			Path:     "/admin",
			HTTPOnly: true,
			SameSite: "Lax",
		})
	}
	c.Locals("catalog", h.Sessions.Session(sid))
	return c.Next()
}

func catalogOf(c *fiber.Ctx) *services.AdminCatalog {
	return c.Locals("catalog").(*services.AdminCatalog)
}

// productForm mirrors the modal form fields.
type productForm struct {
	ID          string
	Title       string
	Description string
	Price       string
	Category    string
	Quantity    string
	Status      string
	IsNew       bool
	Image       string
}

func formFromItem(it domain.Item) *productForm {
	return &productForm{
		ID:          it.ID,
		Title:       it.Title,
		Description: it.Description,
		Price:       it.Price,
		Category:    it.Category,
		Quantity:    strconv.Itoa(it.Quantity),
		Status:      it.Status,
		IsNew:       it.IsNew,
		Image:       it.Image,
	}
}

func readForm(c *fiber.Ctx) *productForm {
	return &productForm{
		ID:          strings.TrimSpace(c.FormValue("id")),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Category:    c.FormValue("category"),
		Quantity:    c.FormValue("quantity"),
		Status:      c.FormValue("status"),
		IsNew:       c.FormValue("isNew") != "",
	}
}

// item validates the form. The second return lists the offending fields.
func (f *productForm) item() (domain.Item, []string) {
	var bad []string
	it := domain.Item{IsNew: f.IsNew}
	var ok bool
	if f.ID != "" {
		if it.ID, ok = validate.ID(f.ID); !ok {
			bad = append(bad, "id")
		}
	}
	if it.Title, ok = validate.Title(f.Title); !ok {
		bad = append(bad, "title")
	}
	if it.Description, ok = validate.Description(f.Description); !ok {
		bad = append(bad, "description")
	}
	if it.Price, ok = validate.Price(f.Price); !ok {
		bad = append(bad, "price")
	}
	if it.Category, ok = validate.Category(f.Category); !ok || it.Category == domain.FilterAll {
		bad = append(bad, "category")
	}
	if it.Quantity, ok = validate.Quantity(f.Quantity); !ok {
		bad = append(bad, "quantity")
	}
	if it.Status, ok = validate.ItemStatus(f.Status); !ok {
		bad = append(bad, "status")
	}
	return it, bad
}

// pageState is everything the admin page needs beyond the catalog view.
type pageState struct {
	Query   domain.Query
	Notice  string
	IsError bool
	Form    *productForm
}

func (h *AdminHandler) renderPage(c *fiber.Ctx, status int, st pageState) error {
	ac := catalogOf(c)
	if f := st.Form; f != nil && f.ID != "" && f.Image == "" {
		if it, ok := ac.Item(f.ID); ok {
			f.Image = it.Image
		}
	}
	v := ac.View(st.Query)
	return renderStatus(c, status, "admin", fiber.Map{
		"View":       v,
		"Query":      st.Query,
		"Notice":     st.Notice,
		"IsError":    st.IsError,
		"Form":       st.Form,
		"FormOpen":   st.Form != nil,
		"Categories": v.Categories,
	})
}

func queryOf(c *fiber.Ctx) domain.Query {
	text, okQ := validate.Q(c.Query("q"))
	status, okS := validate.Status(c.Query("status"))
	category, okC := validate.Category(c.Query("category"))
	if !okQ || !okS || !okC {
		applog.Security(c, "validation.fail", map[string]any{
			"q": c.Query("q"), "status": c.Query("status"), "category": c.Query("category"),
		})
	}
	// an overlong search is cut, never dropped
	q := domain.Query{Text: text, Status: status, Category: category}
	if !okS {
		q.Status = domain.FilterAll
	}
	if !okC {
		q.Category = domain.FilterAll
	}
	return q
}

// GET /admin
func (h *AdminHandler) Page(c *fiber.Ctx) error {
	st := pageState{Query: queryOf(c)}
	if _, err := catalogOf(c).Reload(c.UserContext()); err != nil {
		c.Status(fiber.StatusBadGateway)
		applog.Error(c, "admin.catalog.load.fail", err, nil)
		st.Notice, st.IsError = services.Notice(err), true
		return h.renderPage(c, fiber.StatusBadGateway, st)
	}
	st.Notice = flash[c.Query("ok")]
	return h.renderPage(c, fiber.StatusOK, st)
}

// GET /admin/products renders just the grid for the current filters from the
// already loaded catalog.
func (h *AdminHandler) Products(c *fiber.Ctx) error {
	v := catalogOf(c).View(queryOf(c))
	return render(c, "partials/grid", fiber.Map{"View": v})
}

// GET /admin/products/new
func (h *AdminHandler) NewForm(c *fiber.Ctx) error {
	return h.renderPage(c, fiber.StatusOK, pageState{
		Form: &productForm{Status: domain.StatusAvailable, Quantity: "1"},
	})
}

// GET /admin/products/:id/edit
func (h *AdminHandler) EditForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"id": c.Params("id")})
		return fail(c, fiber.StatusBadRequest, "Invalid product")
	}
	it, ok := catalogOf(c).Item(id)
	if !ok {
		return fail(c, fiber.StatusNotFound, "This product is no longer available")
	}
	return h.renderPage(c, fiber.StatusOK, pageState{Form: formFromItem(it)})
}

// POST /admin/products handles both add and edit; a non-empty id selects edit.
func (h *AdminHandler) Save(c *fiber.Ctx) error {
	form := readForm(c)
	it, bad := form.item()
	if len(bad) > 0 {
		applog.Security(c, "validation.fail", map[string]any{"fields": bad})
		return h.renderPage(c, fiber.StatusBadRequest, pageState{
			Form: form, IsError: true, Notice: "Please check: " + strings.Join(bad, ", ") + ".",
		})
	}

	if fh, err := c.FormFile("image"); err == nil && fh.Size > 0 {
		img, err := h.upload(c, fh)
		if err != nil {
			status := fiber.StatusBadRequest
			if errors.Is(err, errTooLarge) {
				status = fiber.StatusRequestEntityTooLarge
			}
			return h.renderPage(c, status, pageState{Form: form, IsError: true, Notice: services.Notice(err)})
		}
		it.Image = img
	}

	var op services.SaveOp = services.Insert{Item: it}
	action, ok := "insert", "added"
	if it.ID != "" {
		op = services.Update{ID: it.ID, Item: it}
		action, ok = "update", "updated"
	}

	saved, err := catalogOf(c).Save(c.UserContext(), op)
	if err != nil {
		status := fiber.StatusBadGateway
		if errors.Is(err, services.ErrImageRequired) {
			status = fiber.StatusBadRequest
		}
		c.Status(status)
		applog.Error(c, "admin.catalog.save.fail", err, map[string]any{"op": action, "id": it.ID, "title": it.Title})
		st := pageState{IsError: true, Notice: services.Notice(err)}
		var loadErr *services.LoadError
		if !errors.As(err, &loadErr) {
			st.Form = form
		}
		return h.renderPage(c, status, st)
	}
	applog.Audit(c, "admin.catalog.save", map[string]any{"op": action, "id": saved.ID, "title": saved.Title})
	return c.Redirect("/admin?ok=" + ok)
}

var errTooLarge = errors.New("upload too large")

func (h *AdminHandler) upload(c *fiber.Ctx, fh *multipart.FileHeader) (string, error) {
	if err := h.Uploads.CheckSize(fh.Size); err != nil {
		applog.Security(c, "upload.reject", map[string]any{"file": fh.Filename, "bytes": fh.Size})
		return "", errors.Join(errTooLarge, err)
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return h.Uploads.Prepare(c.UserContext(), fh.Filename, raw)
}

// POST /admin/products/:id/delete
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"id": c.Params("id")})
		return fail(c, fiber.StatusBadRequest, "Invalid product")
	}
	if err := catalogOf(c).Delete(c.UserContext(), id); err != nil {
		c.Status(fiber.StatusBadGateway)
		applog.Error(c, "admin.catalog.delete.fail", err, map[string]any{"id": id})
		return h.renderPage(c, fiber.StatusBadGateway, pageState{IsError: true, Notice: services.Notice(err)})
	}
	applog.Audit(c, "admin.catalog.delete", map[string]any{"id": id})
	return c.Redirect("/admin?ok=deleted")
}

// POST /admin/products/:id/status
func (h *AdminHandler) Status(c *fiber.Ctx) error {
	id, okID := validate.ID(c.Params("id"))
	status, okS := validate.ItemStatus(c.FormValue("status"))
	if !okID || !okS {
		applog.Security(c, "validation.fail", map[string]any{"id": c.Params("id"), "status": c.FormValue("status")})
		return fail(c, fiber.StatusBadRequest, "Invalid status change")
	}
	if _, err := catalogOf(c).SetStatus(c.UserContext(), id, status); err != nil {
		c.Status(fiber.StatusBadGateway)
		applog.Error(c, "admin.catalog.status.fail", err, map[string]any{"id": id, "status": status})
		return h.renderPage(c, fiber.StatusBadGateway, pageState{IsError: true, Notice: services.Notice(err)})
	}
	applog.Audit(c, "admin.catalog.status", map[string]any{"id": id, "status": status})
	return c.Redirect("/admin?ok=" + status)
}

// POST /admin/products/:id/new
func (h *AdminHandler) ToggleNew(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"id": c.Params("id")})
		return fail(c, fiber.StatusBadRequest, "Invalid product")
	}
	it, err := catalogOf(c).ToggleNew(c.UserContext(), id)
	if err != nil {
		c.Status(fiber.StatusBadGateway)
		applog.Error(c, "admin.catalog.new.fail", err, map[string]any{"id": id})
		return h.renderPage(c, fiber.StatusBadGateway, pageState{IsError: true, Notice: services.Notice(err)})
	}
	applog.Audit(c, "admin.catalog.new", map[string]any{"id": id, "isNew": it.IsNew})
	if it.IsNew {
		return c.Redirect("/admin?ok=new")
	}
	return c.Redirect("/admin?ok=unnew")
}
