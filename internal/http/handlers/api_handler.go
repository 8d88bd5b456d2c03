package handlers

import (
	"github.com/gofiber/fiber/v2"

	"kingdavid/internal/domain"
	applog "kingdavid/internal/log"
	"kingdavid/internal/services"
)

// APIHandler serves the catalog to the static storefront variants.
type APIHandler struct {
	Shop *services.Storefront
}

type productsResponse struct {
	Products []domain.Item `json:"products"`
	Source   string        `json:"source"`
}

// GET /api/v1/products?category=
func (h *APIHandler) Products(c *fiber.Ctx) error {
	l, err := h.Shop.Products(c.UserContext(), categoryOf(c))
	if err != nil {
		applog.Error(c, "api.products.fail", err, nil)
	}
	resp := productsResponse{Products: l.Items, Source: "store"}
	if l.FromSeed {
		resp.Source = "seed"
	}
	if resp.Products == nil {
		resp.Products = []domain.Item{}
	}
	return c.JSON(resp)
}
