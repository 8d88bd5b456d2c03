package handlers

import (
	"github.com/gofiber/fiber/v2"

	"kingdavid/internal/catalog"
	"kingdavid/internal/config"
	applog "kingdavid/internal/log"
	"kingdavid/internal/services"
	"kingdavid/internal/validate"
)

type StorefrontHandler struct {
	Shop   *services.Storefront
	Config config.Shop
}

func categoryOf(c *fiber.Ctx) string {
	cat, ok := validate.Category(c.Query("category"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"category": c.Query("category")})
		return "all"
	}
	return cat
}

// GET /
func (h *StorefrontHandler) Home(c *fiber.Ctx) error {
	cat := categoryOf(c)
	l, err := h.Shop.Products(c.UserContext(), cat)
	if err != nil {
		applog.Error(c, "storefront.load.fail", err, nil)
	}
	return render(c, "storefront", fiber.Map{
		"Grid":       catalog.ShopCards(l.Items, h.Config.WhatsApp),
		"Categories": l.Categories,
		"Category":   cat,
		"Contact":    catalog.ContactLink(h.Config.WhatsApp, "your products"),
	})
}
