// Package product manages marketplace listings, including those published from verified contributions.
package product

import (
	"context"
	"strings"

	"infinito/internal/core/apperror"
	"infinito/internal/core/entity"
	"infinito/internal/core/id"
	"infinito/internal/core/types"
	"infinito/internal/domain/filter"
)

// Status is the listing state of a product.
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSold      Status = "sold"
	StatusWithdrawn Status = "withdrawn"
)

// Condition grades the wear of a listed item.
type Condition string

const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like_new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
)

// Statuses lists valid product statuses.
func Statuses() []string {
	return []string{string(StatusAvailable), string(StatusReserved), string(StatusSold), string(StatusWithdrawn)}
}

// Conditions lists valid conditions.
func Conditions() []string {
	return []string{string(ConditionNew), string(ConditionLikeNew), string(ConditionGood), string(ConditionFair)}
}

// Product is a marketplace listing.
type Product struct {
	entity.BaseEntity

	SKU  string `db:"sku" json:"sku"`
	Name string `db:"name" json:"name"`

	Type   string `db:"type" json:"type"`
	Status Status `db:"status" json:"status"`

	Seller    string    `db:"seller" json:"seller"`
	Material  string    `db:"material" json:"material"`
	Color     string    `db:"color" json:"color"`
	Size      string    `db:"size" json:"size"`
	Condition Condition `db:"condition" json:"condition"`
	Country   string    `db:"country" json:"country"`

	Price types.Amount `db:"price" json:"price"`

	Verified      types.Flag `db:"verified" json:"verified"`
	CertificateID *string    `db:"certificate_id" json:"certificateId"`

	// ContributionID links listings created from a contribution
	ContributionID *id.ID `db:"contribution_id" json:"contributionId"`

	PublishedAt types.Timestamp `db:"published_at" json:"publishedAt"`
	CreatedAt   types.Timestamp `db:"created_at" json:"createdAt"`
}

// HasCertificate reports whether the listing carries a certificate.
func (p *Product) HasCertificate() bool {
	return p.CertificateID != nil && strings.TrimSpace(*p.CertificateID) != ""
}

// FilterFields implements filter.Record.
func (p *Product) FilterFields() filter.Fields {
	return filter.Fields{
		SearchTargets: []string{
			p.SKU,
			p.Name,
			p.Type,
			p.Seller,
			p.Material,
			p.Color,
			p.Size,
		},
		Type:           p.Type,
		Status:         string(p.Status),
		Seller:         p.Seller,
		Material:       p.Material,
		Color:          p.Color,
		Size:           p.Size,
		Condition:      string(p.Condition),
		Country:        p.Country,
		Verified:       p.Verified.Bool(),
		HasCertificate: p.HasCertificate(),
		Date:           types.FirstPresent(p.PublishedAt, p.CreatedAt),
		Price:          p.Price,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(_ context.Context) error {
	if strings.TrimSpace(p.SKU) == "" {
		return apperror.NewValidation("sku is required").WithDetail("field", "sku")
	}
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if strings.TrimSpace(p.Seller) == "" {
		return apperror.NewValidation("seller is required").WithDetail("field", "seller")
	}
	if !isOneOf(string(p.Status), Statuses()) {
		return invalidValue("status", string(p.Status))
	}
	if p.Condition != "" && !isOneOf(string(p.Condition), Conditions()) {
		return invalidValue("condition", string(p.Condition))
	}
	if p.Price.Invalid {
		return apperror.NewValidation("price is not a number").WithDetail("field", "price")
	}
	if price, ok := p.Price.Get(); ok && price.IsNegative() {
		return apperror.NewValidation("price must not be negative").WithDetail("field", "price")
	}
	return nil
}

func invalidValue(field, value string) error {
	return apperror.NewValidation("invalid "+field).
		WithDetail("field", field).
		WithDetail("value", value)
}

func isOneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
