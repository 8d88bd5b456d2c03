package handlers

import (
	"html/template"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"kingdavid/internal/config"
	"kingdavid/internal/imaging"
	applog "kingdavid/internal/log"
)

// BodyLimit leaves room for a multipart form around an image just under the
// upload ceiling, so oversized images reach the handler and get a notice.
const BodyLimit = imaging.MaxUploadBytes + 1<<20

// NewApp builds the web app. views is the template directory; static assets
// are served from its sibling "static".
func NewApp(cfg config.Config, d *Deps, views string) *fiber.App {
	engine := html.New(views, ".html")
	engine.AddFunc("imgsrc", imageSrc)

	app := fiber.New(fiber.Config{
		Views:        engine,
		BodyLimit:    BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{CrossOriginEmbedderPolicy: "unsafe-none"}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return strings.HasPrefix(p, "/static/") || p == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.hit", nil)
			return fail(c, fiber.StatusTooManyRequests, "Too many requests. Please slow down.")
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     csrfLocal,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			return fail(c, fiber.StatusForbidden, "Security check failed. Please refresh and try again.")
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("shop", cfg.Shop)
		return c.Next()
	})

	app.Static("/static", filepath.Join(filepath.Dir(views), "static"))

	// Public
	app.Get("/", d.Storefront.Home)
	api := app.Group("/api/v1", cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,HEAD,OPTIONS"}))
	api.Get("/products", d.API.Products)

	// Admin
	admin := app.Group("/admin", RequireAdmin(cfg), d.Admin.Session)
	admin.Get("/", d.Admin.Page)
	admin.Get("/products", d.Admin.Products)
	admin.Post("/products", d.Admin.Save)
	admin.Get("/products/new", d.Admin.NewForm)
	admin.Get("/products/:id/edit", d.Admin.EditForm)
	admin.Post("/products/:id/delete", d.Admin.Delete)
	admin.Post("/products/:id/status", d.Admin.Status)
	admin.Post("/products/:id/new", d.Admin.ToggleNew)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return fail(c, fiber.StatusNotFound, "Page not found")
	})
	return app
}

// ErrorHandler logs the failure and shows a friendly page without internals.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok && fe.Code < 500 {
		code = fe.Code
	}
	c.Status(code)
	applog.Error(c, "server.error", err, map[string]any{"code": code})
	msg := "Something went wrong. Please try again."
	if code == fiber.StatusNotFound {
		msg = "Page not found"
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}

// imageSrc lets inline JPEG data URIs and http(s) URLs through html/template,
// which would otherwise rewrite data: URLs as unsafe.
func imageSrc(s string) template.URL {
	switch {
	case imaging.IsDataURI(s), strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		return template.URL(s)
	}
	return ""
}
