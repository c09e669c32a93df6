package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"infinito/internal/core/id"
	"infinito/internal/core/types"
	"infinito/internal/domain/product"
)

// CreateProductRequest creates a standalone listing.
type CreateProductRequest struct {
	Name      string           `json:"name" binding:"required"`
	Seller    string           `json:"seller" binding:"required"`
	Type      string           `json:"type"`
	Material  string           `json:"material"`
	Color     string           `json:"color"`
	Size      string           `json:"size"`
	Condition string           `json:"condition"`
	Country   string           `json:"country"`
	Price     *decimal.Decimal `json:"price"`
}

// ToEntity builds an available product. The SKU is assigned by the service.
func (r CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(strings.TrimSpace(r.Name), strings.TrimSpace(r.Seller))
	p.Type = strings.TrimSpace(r.Type)
	p.Material = strings.TrimSpace(r.Material)
	p.Color = strings.TrimSpace(r.Color)
	p.Size = strings.TrimSpace(r.Size)
	p.Condition = product.Condition(r.Condition)
	p.Country = strings.TrimSpace(r.Country)
	if r.Price != nil {
		p.Price = types.NewAmount(*r.Price)
	}
	return p
}

// PublishRequest lists a verified contribution on the marketplace.
type PublishRequest struct {
	ContributionID id.ID            `json:"contributionId" binding:"required"`
	Name           string           `json:"name" binding:"required"`
	Seller         string           `json:"seller" binding:"required"`
	Condition      string           `json:"condition"`
	Country        string           `json:"country"`
	Price          *decimal.Decimal `json:"price"`
}

// ToDraft converts the request into a product.Draft.
func (r PublishRequest) ToDraft() product.Draft {
	d := product.Draft{
		Name:      strings.TrimSpace(r.Name),
		Seller:    strings.TrimSpace(r.Seller),
		Condition: product.Condition(r.Condition),
		Country:   strings.TrimSpace(r.Country),
	}
	if r.Price != nil {
		d.Price = types.NewAmount(*r.Price)
	}
	return d
}
