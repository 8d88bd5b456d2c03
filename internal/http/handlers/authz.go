package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"kingdavid/internal/config"
	applog "kingdavid/internal/log"
)

// RequireAdmin gates /admin behind HTTP basic auth when a password is
// configured. With no password it lets everything through.
func RequireAdmin(cfg config.Config) fiber.Handler {
	if cfg.AdminPassword == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return basicauth.New(basicauth.Config{
		Users: map[string]string{cfg.AdminUser: cfg.AdminPassword},
		Realm: "Admin",
		Unauthorized: func(c *fiber.Ctx) error {
			applog.Security(c, "access.denied.admin", nil)
			c.Set(fiber.HeaderWWWAuthenticate, `basic realm="Admin"`)
			return fail(c, fiber.StatusUnauthorized, "Access denied")
		},
	})
}
