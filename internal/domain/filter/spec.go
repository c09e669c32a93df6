package filter

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"infinito/internal/core/apperror"
)

// Spec describes the active constraints of a collection view.
// Every field is always present; unset fields impose no constraint.
// A Spec is a value: callers build a new one per interaction and the
// engine never mutates it.
type Spec struct {
	// Search is a case-insensitive substring matched against the record's search targets.
	Search Opt[string] `json:"search"`

	Type   Opt[string] `json:"type"`
	Status Opt[string] `json:"status"`

	// Contribution only
	Classification Opt[string] `json:"classification"`
	Destination    Opt[string] `json:"destination"`
	Decision       Opt[string] `json:"decision"`

	// Product only. Seller is a substring match, the rest are exact.
	Seller    Opt[string] `json:"seller"`
	Material  Opt[string] `json:"material"`
	Color     Opt[string] `json:"color"`
	Size      Opt[string] `json:"size"`
	Condition Opt[string] `json:"condition"`
	Country   Opt[string] `json:"country"`

	Verified       Opt[bool] `json:"verified"`
	HasCertificate Opt[bool] `json:"hasCertificate"`

	Date       Range[time.Time]       `json:"date"`
	Price      Range[decimal.Decimal] `json:"price"`      // product only
	TotalItems Range[int64]           `json:"totalItems"` // contribution only
	CO2        Range[decimal.Decimal] `json:"co2"`        // contribution only
	Water      Range[decimal.Decimal] `json:"water"`      // contribution only

	// Expression is a CEL boolean expression evaluated after every other predicate.
	Expression Opt[string] `json:"expression"`
}

// textConstraints returns the string-valued fields keyed by their JSON name.
func (s Spec) textConstraints() map[string]Opt[string] {
	return map[string]Opt[string]{
		"search":         s.Search,
		"type":           s.Type,
		"status":         s.Status,
		"classification": s.Classification,
		"destination":    s.Destination,
		"decision":       s.Decision,
		"seller":         s.Seller,
		"material":       s.Material,
		"color":          s.Color,
		"size":           s.Size,
		"condition":      s.Condition,
		"country":        s.Country,
		"expression":     s.Expression,
	}
}

// ActiveCount returns the number of fields not in the unset state.
// A range counts once if either side is set. Fields that do not apply
// to the current record kind are still counted.
func (s Spec) ActiveCount() int {
	n := 0
	for _, o := range s.textConstraints() {
		if o.IsSet() {
			n++
		}
	}
	for _, set := range []bool{
		s.Verified.IsSet(),
		s.HasCertificate.IsSet(),
		s.Date.IsSet(),
		s.Price.IsSet(),
		s.TotalItems.IsSet(),
		s.CO2.IsSet(),
		s.Water.IsSet(),
	} {
		if set {
			n++
		}
	}
	return n
}

// Validate rejects specs that can only come from a caller bug:
// a text constraint that is set but blank. Input parsers map blank input to unset.
func (s Spec) Validate() error {
	for name, o := range s.textConstraints() {
		if v, ok := o.Get(); ok && strings.TrimSpace(v) == "" {
			return apperror.NewContractViolation("filter constraint is set but blank").
				WithDetail("field", name)
		}
	}
	return nil
}
