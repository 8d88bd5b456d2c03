package catalog

import (
	"net/url"
	"strings"

	"kingdavid/internal/domain"
)

// CurrencyMarker prefixes every displayed price.
const CurrencyMarker = "R"

// Card is the admin view of one item, including its action controls.
type Card struct {
	ID          string
	Image       string
	Title       string
	Category    string
	Description string
	Price       string
	Quantity    int
	IsNew       bool
	Status      string
	StatusBadge string

	// Status toggle control: target status and button label.
	NextStatus      string
	NextStatusLabel string
	NewToggleLabel  string
}

// Grid is a rendered list of cards. Empty is set when there is nothing to
// show so templates render the empty-state block instead of a bare container.
type Grid struct {
	Cards []Card
	Empty bool
}

func Cards(items []domain.Item) Grid {
	g := Grid{Cards: make([]Card, 0, len(items)), Empty: len(items) == 0}
	for _, it := range items {
		g.Cards = append(g.Cards, CardFor(it))
	}
	return g
}

func CardFor(it domain.Item) Card {
	c := Card{
		ID:          it.ID,
		Image:       it.Image,
		Title:       it.Title,
		Category:    it.Category,
		Description: it.Description,
		Price:       FormatPrice(it.Price),
		Quantity:    it.Quantity,
		IsNew:       it.IsNew,
		Status:      it.Status,
	}
	if it.Status == domain.StatusSold {
		c.StatusBadge = "SOLD"
		c.NextStatus = domain.StatusAvailable
		c.NextStatusLabel = "Mark Available"
	} else {
		c.StatusBadge = "AVAILABLE"
		c.NextStatus = domain.StatusSold
		c.NextStatusLabel = "Mark Sold"
	}
	if it.IsNew {
		c.NewToggleLabel = "Unmark New"
	} else {
		c.NewToggleLabel = "Mark New"
	}
	return c
}

func FormatPrice(price string) string { return CurrencyMarker + price }

// ShopCard is the public storefront view of one item.
type ShopCard struct {
	Image       string
	Title       string
	Category    string
	Description string
	Price       string
	IsNew       bool
	ContactURL  string
}

type ShopGrid struct {
	Cards []ShopCard
	Empty bool
}

func ShopCards(items []domain.Item, whatsapp string) ShopGrid {
	g := ShopGrid{Cards: make([]ShopCard, 0, len(items)), Empty: len(items) == 0}
	for _, it := range items {
		g.Cards = append(g.Cards, ShopCard{
			Image:       it.Image,
			Title:       it.Title,
			Category:    it.Category,
			Description: it.Description,
			Price:       FormatPrice(it.Price),
			IsNew:       it.IsNew,
			ContactURL:  ContactLink(whatsapp, it.Title),
		})
	}
	return g
}

// ContactLink builds the WhatsApp deep link used by "Contact to Purchase".
func ContactLink(number, title string) string {
	msg := "Hi! I'm interested in the " + title + ". Can you provide more details?"
	digits := strings.TrimPrefix(strings.ReplaceAll(number, " ", ""), "+")
	return "https://wa.me/" + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
}
