package handlers

import (
	"time"

	"kingdavid/internal/config"
	"kingdavid/internal/domain"
	"kingdavid/internal/services"
	"kingdavid/internal/store"
)

type Deps struct {
	Admin      *AdminHandler
	Storefront *StorefrontHandler
	API        *APIHandler
}

// NewDeps wires the handlers. pub may be nil to keep images inline.
func NewDeps(st store.Store, cfg config.Config, seed []domain.Item, pub services.Publisher) *Deps {
	shop := services.NewStorefront(st, seed)
	return &Deps{
		Admin: &AdminHandler{
			Sessions: services.NewRegistry(st, 64, 30*time.Minute),
			Uploads:  services.NewUploads(pub),
		},
		Storefront: &StorefrontHandler{Shop: shop, Config: cfg.Shop},
		API:        &APIHandler{Shop: shop},
	}
}
