package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kingdavid/internal/domain"
)

type seedFile struct {
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Category    string `yaml:"category"`
	Quantity    *int   `yaml:"quantity"`
	Status      string `yaml:"status"`
	IsNew       bool   `yaml:"isNew"`
	Image       string `yaml:"image"`
}

// LoadSeed reads the default catalog shown when the store is empty or down.
// Quantity defaults to 1 and status to available.
func LoadSeed(path string) ([]domain.Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseSeed(raw)
}

func ParseSeed(raw []byte) ([]domain.Item, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	out := make([]domain.Item, 0, len(f.Products))
	for i, p := range f.Products {
		if p.Title == "" {
			return nil, fmt.Errorf("parse seed: product %d has no title", i)
		}
		it := domain.Item{
			ID:          fmt.Sprintf("seed-%d", i+1),
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Category:    p.Category,
			Quantity:    1,
			Status:      domain.StatusAvailable,
			IsNew:       p.IsNew,
			Image:       p.Image,
		}
		if p.Quantity != nil {
			if *p.Quantity < 0 {
				return nil, fmt.Errorf("parse seed: %q has negative quantity", p.Title)
			}
			it.Quantity = *p.Quantity
		}
		switch p.Status {
		case "":
		case domain.StatusAvailable, domain.StatusSold:
			it.Status = p.Status
		default:
			return nil, fmt.Errorf("parse seed: %q has unknown status %q", p.Title, p.Status)
		}
		out = append(out, it)
	}
	return out, nil
}
