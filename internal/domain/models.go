package domain

import "time"

const (
	StatusAvailable = "available"
	StatusSold      = "sold"

	// Filter-only values; never stored on an item.
	FilterAll = "all"
	FilterNew = "new"
)

// Item is one product in the catalog.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"` // decimal-as-text, never parsed
	Category    string    `json:"category"`
	Quantity    int       `json:"quantity"`
	Status      string    `json:"status"` // available | sold
	IsNew       bool      `json:"isNew"`
	Image       string    `json:"image"` // data URI or remote URL
	CreatedAt   time.Time `json:"createdAt"`
}

// Query selects a subset of the catalog. Empty Status/Category behave like "all".
type Query struct {
	Text     string
	Status   string // all | new | available | sold
	Category string // all | <category>
}

type Stats struct {
	Total     int
	Available int
	New       int
	Sold      int
}
