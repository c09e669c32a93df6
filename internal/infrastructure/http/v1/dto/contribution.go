package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"infinito/internal/core/types"
	"infinito/internal/domain/contribution"
)

// CreateContributionRequest registers a new contribution.
type CreateContributionRequest struct {
	DonorName  string           `json:"donorName" binding:"required"`
	Type       string           `json:"type" binding:"required"`
	Material   string           `json:"material"`
	Color      string           `json:"color"`
	Size       string           `json:"size"`
	TotalItems *int64           `json:"totalItems"`
	WeightKg   *decimal.Decimal `json:"weightKg"`
	EventDate  string           `json:"eventDate"`
	Notes      string           `json:"notes"`
}

// ToEntity builds a pending contribution. Code and impact are filled by the service.
func (r CreateContributionRequest) ToEntity() *contribution.Contribution {
	c := contribution.NewContribution(strings.TrimSpace(r.DonorName), contribution.Type(r.Type))
	c.Material = strings.TrimSpace(r.Material)
	c.Color = strings.TrimSpace(r.Color)
	c.Size = strings.TrimSpace(r.Size)
	c.Notes = r.Notes
	if r.TotalItems != nil {
		c.TotalItems = types.NewCount(*r.TotalItems)
	}
	if r.WeightKg != nil {
		c.WeightKg = types.NewAmount(*r.WeightKg)
	}
	if v := strings.TrimSpace(r.EventDate); v != "" {
		c.EventDate = types.ParseTimestamp(v)
	}
	return c
}

// ClassifyRequest sets the admin assessment of a contribution.
type ClassifyRequest struct {
	Classification string `json:"classification" binding:"required"`
	Destination    string `json:"destination" binding:"required"`
	Decision       string `json:"decision"`
}

// TransitionRequest moves a contribution to another tracking state.
type TransitionRequest struct {
	To            string `json:"to" binding:"required"`
	CertificateID string `json:"certificateId"`
}
