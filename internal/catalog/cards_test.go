package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kingdavid/internal/catalog"
	"kingdavid/internal/domain"
)

func TestCardsMapping(t *testing.T) {
	g := catalog.Cards(fixture())
	require.False(t, g.Empty)
	require.Len(t, g.Cards, 5)

	fridge := g.Cards[0]
	assert.Equal(t, "a", fridge.ID)
	assert.Equal(t, "R", fridge.Price[:1])
	assert.Equal(t, "AVAILABLE", fridge.StatusBadge)
	assert.Equal(t, "sold", fridge.NextStatus)
	assert.Equal(t, "Mark Sold", fridge.NextStatusLabel)
	assert.Equal(t, "Mark New", fridge.NewToggleLabel)
	assert.False(t, fridge.IsNew)

	dryer := g.Cards[2]
	assert.Equal(t, "SOLD", dryer.StatusBadge)
	assert.Equal(t, "available", dryer.NextStatus)
	assert.Equal(t, "Mark Available", dryer.NextStatusLabel)
	assert.Equal(t, "Unmark New", dryer.NewToggleLabel)
	assert.True(t, dryer.IsNew)
}

func TestCardPrice(t *testing.T) {
	c := catalog.CardFor(domain.Item{Price: "16,499", Quantity: 4, Status: "available"})
	assert.Equal(t, "R16,499", c.Price)
	assert.Equal(t, 4, c.Quantity)
}

func TestCardsEmptyState(t *testing.T) {
	g := catalog.Cards(nil)
	assert.True(t, g.Empty)
	assert.Empty(t, g.Cards)

	g = catalog.Cards(catalog.Filter(fixture(), domain.Query{Text: "nothing matches"}))
	assert.True(t, g.Empty)
}

func TestShopCardsContactLink(t *testing.T) {
	g := catalog.ShopCards(fixture()[1:2], "+27 65 724 4664")
	require.Len(t, g.Cards, 1)
	assert.Equal(t,
		"https://wa.me/27657244664?text=Hi%21%20I%27m%20interested%20in%20the%20Russell%20Hobbs%20Kettle.%20Can%20you%20provide%20more%20details%3F",
		g.Cards[0].ContactURL)
	assert.True(t, g.Cards[0].IsNew)
	assert.True(t, catalog.ShopCards(nil, "1").Empty)
}
