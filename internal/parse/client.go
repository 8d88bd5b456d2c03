// Package parse is the store.Store driver for a hosted Parse Server
// (Back4App). It speaks the Parse REST API through Fiber's HTTP client.
package parse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"kingdavid/internal/domain"
	"kingdavid/internal/store"
)

const (
	DefaultServerURL = "https://parseapi.back4app.com"
	DefaultClass     = "Product"

	codeObjectNotFound = 101
)

type Config struct {
	ServerURL string
	AppID     string
	RESTKey   string
	Class     string
	Timeout   time.Duration
}

// Client implements store.Store against /classes/<Class>.
type Client struct {
	cfg  Config
	http *fiber.Client
}

var _ store.Store = (*Client)(nil)

func New(cfg Config) *Client {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.Class == "" {
		cfg.Class = DefaultClass
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{cfg: cfg, http: &fiber.Client{UserAgent: "kingdavid-admin"}}
}

// APIError is the {code, error} body Parse returns on failure.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("parse: status %d code %d: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == store.ErrNotFound && e.Code == codeObjectNotFound
}

// text accepts a JSON string or number; older rows stored price as a number.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	if string(b) == "null" {
		*t = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = text(n.String())
	return nil
}

type fileRef struct {
	URL string `json:"url"`
}

type object struct {
	ObjectID    string   `json:"objectId"`
	Title       string   `json:"title"`
	Price       text     `json:"price"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Quantity    int      `json:"quantity"`
	Status      string   `json:"status"`
	IsNew       bool     `json:"isNew"`
	ImageURL    string   `json:"imageUrl"`
	Image       *fileRef `json:"image"`
	CreatedAt   string   `json:"createdAt"`
}

func (o object) item() domain.Item {
	it := domain.Item{
		ID:          o.ObjectID,
		Title:       o.Title,
		Price:       string(o.Price),
		Description: o.Description,
		Category:    o.Category,
		Quantity:    o.Quantity,
		Status:      o.Status,
		IsNew:       o.IsNew,
		Image:       o.ImageURL,
	}
	if it.Image == "" && o.Image != nil {
		it.Image = o.Image.URL
	}
	it.CreatedAt, _ = time.Parse(time.RFC3339, o.CreatedAt)
	return it
}

// fields is the writable part of a Product object.
type fields struct {
	Title       string `json:"title"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
	Status      string `json:"status"`
	IsNew       bool   `json:"isNew"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

func fieldsOf(it domain.Item) fields {
	return fields{
		Title:       it.Title,
		Price:       it.Price,
		Description: it.Description,
		Category:    it.Category,
		Quantity:    it.Quantity,
		Status:      it.Status,
		IsNew:       it.IsNew,
		ImageURL:    it.Image,
	}
}

func (c *Client) classPath() string { return "/classes/" + url.PathEscape(c.cfg.Class) }

func (c *Client) objectPath(id string) string { return c.classPath() + "/" + url.PathEscape(id) }

func (c *Client) Insert(ctx context.Context, it domain.Item) (domain.Item, error) {
	var created struct {
		ObjectID  string `json:"objectId"`
		CreatedAt string `json:"createdAt"`
	}
	if err := c.send(ctx, fiber.MethodPost, c.classPath(), nil, fieldsOf(it), &created); err != nil {
		return domain.Item{}, err
	}
	it.ID = created.ObjectID
	it.CreatedAt, _ = time.Parse(time.RFC3339, created.CreatedAt)
	return it, nil
}

func (c *Client) Update(ctx context.Context, id string, it domain.Item) (domain.Item, error) {
	if err := c.send(ctx, fiber.MethodPut, c.objectPath(id), nil, fieldsOf(it), nil); err != nil {
		return domain.Item{}, err
	}
	return c.Get(ctx, id)
}

func (c *Client) Get(ctx context.Context, id string) (domain.Item, error) {
	var o object
	if err := c.send(ctx, fiber.MethodGet, c.objectPath(id), nil, nil, &o); err != nil {
		return domain.Item{}, err
	}
	return o.item(), nil
}

func (c *Client) QueryAll(ctx context.Context, limit int) ([]domain.Item, error) {
	if limit <= 0 || limit > store.MaxQuery {
		limit = store.MaxQuery
	}
	q := url.Values{}
	q.Set("order", "-createdAt")
	q.Set("limit", strconv.Itoa(limit))
	return c.query(ctx, q)
}

func (c *Client) QueryAvailable(ctx context.Context) ([]domain.Item, error) {
	where, err := json.Marshal(map[string]any{
		"status":   domain.StatusAvailable,
		"quantity": map[string]int{"$gt": 0},
	})
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("where", string(where))
	q.Set("order", "-createdAt")
	q.Set("limit", strconv.Itoa(store.MaxQuery))
	return c.query(ctx, q)
}

func (c *Client) query(ctx context.Context, q url.Values) ([]domain.Item, error) {
	var res struct {
		Results []object `json:"results"`
	}
	if err := c.send(ctx, fiber.MethodGet, c.classPath(), q, nil, &res); err != nil {
		return nil, err
	}
	out := make([]domain.Item, 0, len(res.Results))
	for _, o := range res.Results {
		out = append(out, o.item())
	}
	return out, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.send(ctx, fiber.MethodDelete, c.objectPath(id), nil, nil, nil)
}

func (c *Client) send(ctx context.Context, method, path string, q url.Values, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := c.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}

	u := c.cfg.ServerURL + path
	var a *fiber.Agent
	switch method {
	case fiber.MethodPost:
		a = c.http.Post(u)
	case fiber.MethodPut:
		a = c.http.Put(u)
	case fiber.MethodDelete:
		a = c.http.Delete(u)
	default:
		a = c.http.Get(u)
	}
	a.Set("X-Parse-Application-Id", c.cfg.AppID).
		Set("X-Parse-REST-API-Key", c.cfg.RESTKey).
		Timeout(timeout)
	if len(q) > 0 {
		a.QueryString(q.Encode())
	}
	if body != nil {
		a.JSON(body)
	}

	code, resp, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("parse %s %s: %w", method, path, errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		apiErr := &APIError{Status: code}
		if err := json.Unmarshal(resp, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(resp))
		}
		return apiErr
	}
	if out == nil || len(resp) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp, out); err != nil {
		return fmt.Errorf("parse %s %s: decode response: %w", method, path, err)
	}
	return nil
}
