// Package export renders filtered records as CSV, PDF and zstd-compressed CSV.
// It consumes the kept records of a filter pass and knows nothing about filtering.
package export

import (
	"strconv"
	"time"

	"infinito/internal/core/types"
	"infinito/internal/domain/contribution"
	"infinito/internal/domain/product"
)

// Table is a rectangular, already-formatted view of records.
type Table struct {
	Name    string // used for file names: "contributions", "products"
	Columns []string
	Rows    [][]string
}

// ContributionTable formats contributions for export.
func ContributionTable(rows []*contribution.Contribution) Table {
	t := Table{
		Name: "contributions",
		Columns: []string{
			"Tracking code", "Donor", "Type", "Status", "Classification", "Destination",
			"Decision", "Material", "Items", "Weight kg", "CO2 kg", "Water L", "Verified", "Certificate", "Date",
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, c := range rows {
		f := c.FilterFields()
		t.Rows = append(t.Rows, []string{
			c.TrackingCode,
			c.DonorName,
			string(c.Type),
			string(c.Status),
			string(c.Classification),
			string(c.Destination),
			string(c.Decision),
			c.Material,
			formatCount(c.TotalItems),
			c.WeightKg.String(),
			c.CO2.String(),
			c.Water.String(),
			yesNo(c.Verified.Bool()),
			deref(c.CertificateID),
			formatDate(f.Date),
		})
	}
	return t
}

// ProductTable formats products for export.
func ProductTable(rows []*product.Product) Table {
	t := Table{
		Name: "products",
		Columns: []string{
			"SKU", "Name", "Type", "Status", "Seller", "Material", "Color", "Size",
			"Condition", "Country", "Price", "Verified", "Certificate", "Date",
		},
		Rows: make([][]string, 0, len(rows)),
	}
	for _, p := range rows {
		f := p.FilterFields()
		t.Rows = append(t.Rows, []string{
			p.SKU,
			p.Name,
			p.Type,
			string(p.Status),
			p.Seller,
			p.Material,
			p.Color,
			p.Size,
			string(p.Condition),
			p.Country,
			p.Price.String(),
			yesNo(p.Verified.Bool()),
			deref(p.CertificateID),
			formatDate(f.Date),
		})
	}
	return t
}

func formatCount(c types.Count) string {
	if n, ok := c.Get(); ok {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

// formatDate prints valid dates as YYYY-MM-DD and unparseable ones verbatim.
func formatDate(ts types.Timestamp) string {
	if t, ok := ts.Get(); ok {
		return t.UTC().Format(time.DateOnly)
	}
	return ts.Raw
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
