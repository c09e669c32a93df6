// Package contribution manages user-submitted clothing batches from intake to certification.
package contribution

import (
	"context"
	"strings"

	"infinito/internal/core/apperror"
	"infinito/internal/core/entity"
	"infinito/internal/core/types"
	"infinito/internal/domain/filter"
)

// Type is the kind of goods in a contribution.
type Type string

const (
	TypeClothing    Type = "clothing"
	TypeArt         Type = "art"
	TypeTextile     Type = "textile"
	TypeFootwear    Type = "footwear"
	TypeAccessories Type = "accessories"
)

// Classification is the admin's assessment of the goods.
type Classification string

const (
	ClassReusable   Classification = "reusable"
	ClassRepairable Classification = "repairable"
	ClassRecyclable Classification = "recyclable"
	ClassWaste      Classification = "waste"
)

// Destination is where the goods go after classification.
type Destination string

const (
	DestDonation  Destination = "donation"
	DestSale      Destination = "sale"
	DestRecycling Destination = "recycling"
)

// Decision is the admin's verdict on the contribution.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Types lists valid contribution types.
func Types() []string {
	return []string{string(TypeClothing), string(TypeArt), string(TypeTextile), string(TypeFootwear), string(TypeAccessories)}
}

// Classifications lists valid classifications.
func Classifications() []string {
	return []string{string(ClassReusable), string(ClassRepairable), string(ClassRecyclable), string(ClassWaste)}
}

// Destinations lists valid destinations.
func Destinations() []string {
	return []string{string(DestDonation), string(DestSale), string(DestRecycling)}
}

// Decisions lists valid decisions.
func Decisions() []string {
	return []string{string(DecisionPending), string(DecisionApproved), string(DecisionRejected)}
}

// Contribution is a batch of items handed in by a donor.
type Contribution struct {
	entity.BaseEntity

	// TrackingCode is the public code, e.g. INF-2026-00042
	TrackingCode string `db:"tracking_code" json:"trackingCode"`
	DonorName    string `db:"donor_name" json:"donorName"`

	Type   Type  `db:"type" json:"type"`
	Status State `db:"status" json:"status"`

	// Set by Classify; empty until the batch has been assessed
	Classification Classification `db:"classification" json:"classification"`
	Destination    Destination    `db:"destination" json:"destination"`
	Decision       Decision       `db:"decision" json:"decision"`

	Material string `db:"material" json:"material"`
	Color    string `db:"color" json:"color"`
	Size     string `db:"size" json:"size"`

	TotalItems types.Count  `db:"total_items" json:"totalItems"`
	WeightKg   types.Amount `db:"weight_kg" json:"weightKg"`

	// Estimated savings, see package impact
	CO2   types.Amount `db:"co2_kg" json:"co2"`
	Water types.Amount `db:"water_litres" json:"water"`

	Verified      types.Flag `db:"verified" json:"verified"`
	CertificateID *string    `db:"certificate_id" json:"certificateId"`

	EventDate   types.Timestamp `db:"event_date" json:"eventDate"`
	DeliveredAt types.Timestamp `db:"delivered_at" json:"deliveredAt"`
	CreatedAt   types.Timestamp `db:"created_at" json:"createdAt"`

	Notes string `db:"notes" json:"notes"`
}

// HasCertificate reports whether a certificate has been issued.
func (c *Contribution) HasCertificate() bool {
	return c.CertificateID != nil && strings.TrimSpace(*c.CertificateID) != ""
}

// FilterFields implements filter.Record.
func (c *Contribution) FilterFields() filter.Fields {
	return filter.Fields{
		SearchTargets: []string{
			c.TrackingCode,
			c.DonorName,
			string(c.Type),
			c.Material,
			c.Color,
			c.Size,
		},
		Type:           string(c.Type),
		Status:         string(c.Status),
		Classification: string(c.Classification),
		Destination:    string(c.Destination),
		Decision:       string(c.Decision),
		Material:       c.Material,
		Color:          c.Color,
		Size:           c.Size,
		Verified:       c.Verified.Bool(),
		HasCertificate: c.HasCertificate(),
		Date:           types.FirstPresent(c.EventDate, c.DeliveredAt, c.CreatedAt),
		TotalItems:     c.TotalItems,
		CO2:            c.CO2,
		Water:          c.Water,
	}
}

// Validate implements entity.Validatable.
func (c *Contribution) Validate(_ context.Context) error {
	if strings.TrimSpace(c.TrackingCode) == "" {
		return apperror.NewValidation("tracking code is required").WithDetail("field", "trackingCode")
	}
	if strings.TrimSpace(c.DonorName) == "" {
		return apperror.NewValidation("donor name is required").WithDetail("field", "donorName")
	}
	if !isOneOf(string(c.Type), Types()) {
		return invalidValue("type", string(c.Type))
	}
	if !c.Status.IsValid() {
		return invalidValue("status", string(c.Status))
	}
	if c.Classification != "" && !isOneOf(string(c.Classification), Classifications()) {
		return invalidValue("classification", string(c.Classification))
	}
	if c.Destination != "" && !isOneOf(string(c.Destination), Destinations()) {
		return invalidValue("destination", string(c.Destination))
	}
	if c.Decision != "" && !isOneOf(string(c.Decision), Decisions()) {
		return invalidValue("decision", string(c.Decision))
	}
	if n, ok := c.TotalItems.Get(); ok && n <= 0 {
		return apperror.NewValidation("total items must be positive").WithDetail("field", "totalItems")
	}
	if w, ok := c.WeightKg.Get(); ok && w.IsNegative() {
		return apperror.NewValidation("weight must not be negative").WithDetail("field", "weightKg")
	}
	if c.Status == StateCertificateAvailable && !c.HasCertificate() {
		return apperror.NewValidation("certificate id is required once the certificate is available").
			WithDetail("field", "certificateId")
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
