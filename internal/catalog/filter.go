// Package catalog holds the pure catalog logic: filtering, counters and the
// card view model shared by the admin panel and the storefront.
package catalog

import (
	"strings"

	"kingdavid/internal/domain"
)

// Filter returns the items matching q, in source order. items is not modified.
func Filter(items []domain.Item, q domain.Query) []domain.Item {
	text := strings.ToLower(q.Text)
	out := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if matchText(it, text) && matchStatus(it, q.Status) && matchCategory(it, q.Category) {
			out = append(out, it)
		}
	}
	return out
}

func matchText(it domain.Item, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Title), lowered) ||
		strings.Contains(strings.ToLower(it.Description), lowered)
}

func matchStatus(it domain.Item, status string) bool {
	switch status {
	case "", domain.FilterAll:
		return true
	case domain.FilterNew:
		return it.IsNew
	default:
		return it.Status == status
	}
}

func matchCategory(it domain.Item, category string) bool {
	return category == "" || category == domain.FilterAll || it.Category == category
}

// ByCategory is the storefront's single-predicate filter.
func ByCategory(items []domain.Item, category string) []domain.Item {
	return Filter(items, domain.Query{Category: category})
}

// ComputeStats counts the dashboard totals.
func ComputeStats(items []domain.Item) domain.Stats {
	s := domain.Stats{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case domain.StatusAvailable:
			s.Available++
		case domain.StatusSold:
			s.Sold++
		}
		if it.IsNew {
			s.New++
		}
	}
	return s
}

// Categories lists the distinct categories in first-seen order.
func Categories(items []domain.Item) []string {
	seen := map[string]bool{}
	var out []string
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}
