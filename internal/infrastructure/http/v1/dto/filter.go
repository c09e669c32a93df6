// Package dto maps HTTP requests onto domain inputs and filter specs.
package dto

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"infinito/internal/core/apperror"
	"infinito/internal/domain/filter"
)

// Query parameter names accepted by list and export endpoints.
const (
	ParamSearch         = "search"
	ParamType           = "type"
	ParamStatus         = "status"
	ParamClassification = "classification"
	ParamDestination    = "destination"
	ParamDecision       = "decision"
	ParamSeller         = "seller"
	ParamMaterial       = "material"
	ParamColor          = "color"
	ParamSize           = "size"
	ParamCondition      = "condition"
	ParamCountry        = "country"
	ParamVerified       = "verified"
	ParamHasCertificate = "hasCertificate"
	ParamDateFrom       = "dateFrom"
	ParamDateTo         = "dateTo"
	ParamPriceMin       = "priceMin"
	ParamPriceMax       = "priceMax"
	ParamItemsMin       = "itemsMin"
	ParamItemsMax       = "itemsMax"
	ParamCO2Min         = "co2Min"
	ParamCO2Max         = "co2Max"
	ParamWaterMin       = "waterMin"
	ParamWaterMax       = "waterMax"
	ParamExpr           = "expr"
)

// specParser reads one parameter at a time and keeps the first error.
type specParser struct {
	q   url.Values
	err error
}

// ParseFilterSpec maps query parameters to a filter.Spec.
// Blank or whitespace-only values leave the constraint unset.
// Malformed numbers, dates and booleans are validation errors.
func ParseFilterSpec(q url.Values) (filter.Spec, error) {
	p := &specParser{q: q}

	spec := filter.Spec{
		Search:         p.text(ParamSearch),
		Type:           p.text(ParamType),
		Status:         p.text(ParamStatus),
		Classification: p.text(ParamClassification),
		Destination:    p.text(ParamDestination),
		Decision:       p.text(ParamDecision),
		Seller:         p.text(ParamSeller),
		Material:       p.text(ParamMaterial),
		Color:          p.text(ParamColor),
		Size:           p.text(ParamSize),
		Condition:      p.text(ParamCondition),
		Country:        p.text(ParamCountry),
		Verified:       p.boolean(ParamVerified),
		HasCertificate: p.boolean(ParamHasCertificate),
		Date: filter.Range[time.Time]{
			Min: p.date(ParamDateFrom, false),
			Max: p.date(ParamDateTo, true),
		},
		Price:      p.decimalRange(ParamPriceMin, ParamPriceMax),
		TotalItems: filter.Range[int64]{Min: p.integer(ParamItemsMin), Max: p.integer(ParamItemsMax)},
		CO2:        p.decimalRange(ParamCO2Min, ParamCO2Max),
		Water:      p.decimalRange(ParamWaterMin, ParamWaterMax),
		Expression: p.text(ParamExpr),
	}
	if p.err != nil {
		return filter.Spec{}, p.err
	}
	return spec, nil
}

func (p *specParser) raw(name string) (string, bool) {
	v := strings.TrimSpace(p.q.Get(name))
	return v, v != ""
}

func (p *specParser) fail(name, value, expected string) {
	if p.err != nil {
		return
	}
	p.err = apperror.NewValidation("invalid filter parameter").
		WithDetail("param", name).
		WithDetail("value", value).
		WithDetail("expected", expected)
}

func (p *specParser) text(name string) filter.Opt[string] {
	if v, ok := p.raw(name); ok {
		return filter.Some(v)
	}
	return filter.None[string]()
}

func (p *specParser) boolean(name string) filter.Opt[bool] {
	v, ok := p.raw(name)
	if !ok {
		return filter.None[bool]()
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return filter.Some(true)
	case "false", "0", "no":
		return filter.Some(false)
	}
	p.fail(name, v, "boolean")
	return filter.None[bool]()
}

// date accepts YYYY-MM-DD or RFC 3339. A date-only upper bound covers the whole day.
func (p *specParser) date(name string, endOfDay bool) filter.Opt[time.Time] {
	v, ok := p.raw(name)
	if !ok {
		return filter.None[time.Time]()
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return filter.Some(t)
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		p.fail(name, v, "date (YYYY-MM-DD or RFC 3339)")
		return filter.None[time.Time]()
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return filter.Some(t)
}

func (p *specParser) decimal(name string) filter.Opt[decimal.Decimal] {
	v, ok := p.raw(name)
	if !ok {
		return filter.None[decimal.Decimal]()
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(name, v, "number")
		return filter.None[decimal.Decimal]()
	}
	return filter.Some(d)
}

func (p *specParser) decimalRange(minName, maxName string) filter.Range[decimal.Decimal] {
	return filter.Range[decimal.Decimal]{Min: p.decimal(minName), Max: p.decimal(maxName)}
}

func (p *specParser) integer(name string) filter.Opt[int64] {
	v, ok := p.raw(name)
	if !ok {
		return filter.None[int64]()
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(name, v, "integer")
		return filter.None[int64]()
	}
	return filter.Some(n)
}
