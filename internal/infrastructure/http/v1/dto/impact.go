package dto

import "github.com/shopspring/decimal"

// ImpactRequest asks for the savings of reusing weightKg of material.
type ImpactRequest struct {
	Material string          `json:"material"`
	WeightKg decimal.Decimal `json:"weightKg"`
}
