package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"kingdavid/internal/domain"
)

// reject malformed inputs early
func TestValidationBadInputs(t *testing.T) {
	e, _ := newEnv(t)
	e.open(t)

	resp := e.get(t, "/admin/products/bad$id/edit")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id expected 400, got %d", resp.StatusCode)
	}

	resp = e.get(t, "/admin/products/nope-123/edit")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown id expected 404, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "This product is no longer available") {
		t.Fatalf("missing not-available message; body=%s", body)
	}

	resp = e.postForm(t, "/admin/products/nope-123/status", url.Values{"status": {"archived"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad status expected 400, got %d", resp.StatusCode)
	}

	// Bad filters fall back to defaults instead of failing the page
	resp = e.get(t, "/admin/products?status=archived&category=%3Cb%3E")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bad filters expected 200, got %d", resp.StatusCode)
	}
}

func TestCSRFRequiredOnAdminPost(t *testing.T) {
	e, repo := newEnv(t)
	e.open(t)

	vals := url.Values{"title": {"Kettle"}, "csrf": {"forged"}}
	req := httptest.NewRequest("POST", "/admin/products", strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := e.do(t, req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("forged token expected 403, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Security check failed") {
		t.Fatalf("missing csrf message; body=%s", body)
	}

	items, _ := repo.QueryAll(context.Background(), 10)
	if len(items) != 0 {
		t.Fatalf("forged post stored %d items", len(items))
	}
}

// templates auto-escape untrusted text
func TestTemplateAutoEscape(t *testing.T) {
	e, repo := newEnv(t)
	_, err := repo.Insert(context.Background(), domain.Item{
		Title:       "<script>alert(1)</script>",
		Description: "<b>desc</b>",
		Price:       "99",
		Category:    "kitchen",
		Quantity:    1,
		Status:      domain.StatusAvailable,
		Image:       "javascript:alert(2)",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	for _, path := range []string{"/", "/admin"} {
		s := readBody(t, e.get(t, path))
		if strings.Contains(s, "<script>alert(1)</script>") {
			t.Fatalf("%s: found unescaped script tag in output", path)
		}
		if !strings.Contains(s, "&lt;script&gt;alert(1)&lt;/script&gt;") {
			t.Fatalf("%s: escaped script not found; output=%s", path, s)
		}
		if strings.Contains(s, "javascript:alert(2)") {
			t.Fatalf("%s: unsafe image source rendered", path)
		}
	}
}
