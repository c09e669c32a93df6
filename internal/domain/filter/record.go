package filter

import (
	"infinito/internal/core/types"
)

// Record is implemented by the record variants the engine can filter.
type Record interface {
	// FilterFields returns the engine's read-only view of the record.
	FilterFields() Fields
}

// Fields is the set of values the engine reads. Each variant fills in what it has;
// the engine only reads the fields that apply to the kind being filtered.
type Fields struct {
	// SearchTargets are matched in order by the free-text search.
	// Empty strings stand in for absent values.
	SearchTargets []string

	Type   string
	Status string

	Classification string
	Destination    string
	Decision       string

	Seller    string
	Material  string
	Color     string
	Size      string
	Condition string
	Country   string

	Verified       bool
	HasCertificate bool

	// Date is the first non-null of the variant's candidate date fields.
	Date types.Timestamp

	Price      types.Amount
	TotalItems types.Count
	CO2        types.Amount
	Water      types.Amount
}
