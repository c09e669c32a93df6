package memory

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"infinito/internal/core/entity"
	"infinito/internal/core/id"
	"infinito/internal/domain/contribution"
	"infinito/internal/domain/product"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// LoadContributions decodes the embedded contribution fixtures.
// Rows are taken as-is: data-quality problems stay visible to the filter engine.
func LoadContributions() ([]*contribution.Contribution, error) {
	var out []*contribution.Contribution
	if err := decodeFixture("fixtures/contributions.json", &out); err != nil {
		return nil, err
	}
	for _, c := range out {
		ensureIdentity(c.Base())
	}
	return out, nil
}

// LoadProducts decodes the embedded product fixtures.
func LoadProducts() ([]*product.Product, error) {
	var out []*product.Product
	if err := decodeFixture("fixtures/products.json", &out); err != nil {
		return nil, err
	}
	for _, p := range out {
		ensureIdentity(p.Base())
	}
	return out, nil
}

func decodeFixture(name string, v any) error {
	data, err := fixtureFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode fixture %s: %w", name, err)
	}
	return nil
}

func ensureIdentity(b *entity.BaseEntity) {
	if id.IsNil(b.ID) {
		b.ID = id.New()
	}
	if b.Version == 0 {
		b.Version = 1
	}
}

// Store bundles the in-memory repositories.
type Store struct {
	Contributions *Repo[*contribution.Contribution]
	Products      *Repo[*product.Product]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		Contributions: NewContributionRepo(),
		Products:      NewProductRepo(),
	}
}

// NewSeededStore creates a store preloaded with the embedded fixtures.
func NewSeededStore(ctx context.Context) (*Store, error) {
	s := NewStore()
	contribs, err := LoadContributions()
	if err != nil {
		return nil, err
	}
	for _, c := range contribs {
		if err := s.Contributions.Create(ctx, c); err != nil {
			return nil, fmt.Errorf("seed contribution %s: %w", c.TrackingCode, err)
		}
	}

	products, err := LoadProducts()
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if err := s.Products.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("seed product %s: %w", p.SKU, err)
		}
	}
	return s, nil
}
