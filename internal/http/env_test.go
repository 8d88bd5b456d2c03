package handlers_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"kingdavid/internal/config"
	"kingdavid/internal/http/handlers"
	"kingdavid/internal/repos"
	"kingdavid/internal/store"
)

const templates = "../../web/templates"

func testConfig() config.Config {
	return config.Config{
		RateLimit: 1000,
		Shop: config.Shop{
			Name:     "King David & Sons Appliances",
			WhatsApp: "+27657244664",
			Phone:    "+27 65 724 4664",
		},
	}
}

// env is a running app plus the cookies of one admin browser session.
type env struct {
	app   *fiber.App
	store store.Store
	csrf  string
	sid   string
}

func newEnv(t *testing.T) (*env, *repos.ProductRepo) {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := repos.NewProductRepo(db)
	return newEnvWith(t, repo, testConfig()), repo
}

func newEnvWith(t *testing.T, st store.Store, cfg config.Config) *env {
	t.Helper()
	seed, err := config.LoadSeed("../../seed/catalog.yaml")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	deps := handlers.NewDeps(st, cfg, seed, nil)
	return &env{app: handlers.NewApp(cfg, deps, templates), store: st}
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (e *env) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	if e.csrf != "" {
		req.AddCookie(&http.Cookie{Name: "csrf_", Value: e.csrf})
	}
	if e.sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: e.sid})
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	if tok := extractCookie(resp, "csrf_"); tok != "" {
		e.csrf = tok
	}
	if sid := extractCookie(resp, "sid"); sid != "" {
		e.sid = sid
	}
	return resp
}

func (e *env) get(t *testing.T, path string) *http.Response {
	t.Helper()
	return e.do(t, httptest.NewRequest("GET", path, nil))
}

// open loads the admin page once so the session has its cookies.
func (e *env) open(t *testing.T) *http.Response {
	t.Helper()
	resp := e.get(t, "/admin")
	if e.csrf == "" || e.sid == "" {
		t.Fatalf("admin page did not issue cookies (csrf=%q sid=%q)", e.csrf, e.sid)
	}
	return resp
}

func (e *env) postForm(t *testing.T, path string, vals url.Values) *http.Response {
	t.Helper()
	if vals == nil {
		vals = url.Values{}
	}
	vals.Set("csrf", e.csrf)
	req := httptest.NewRequest("POST", path, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req)
}

func (e *env) postProduct(t *testing.T, fields map[string]string, filename string, file []byte) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("csrf", e.csrf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if file != nil {
		fw, err := mw.CreateFormFile("image", filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = fw.Write(file)
	}
	_ = mw.Close()
	req := httptest.NewRequest("POST", "/admin/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, G: 30, B: 30, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func kettleFields() map[string]string {
	return map[string]string{
		"title":       "Kettle",
		"description": "1.7L rapid boil",
		"price":       "599",
		"category":    "kitchen",
		"quantity":    "3",
		"status":      "available",
		"isNew":       "true",
	}
}
