// Package types provides the value types records are decoded into.
// They absorb data-quality problems at the boundary so that the filter engine
// only ever sees a value or an explicit "absent/invalid" state.
package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Amount is a nullable decimal that remembers whether a present value was parseable.
// Used for price, CO2 and water figures.
type Amount struct {
	decimal.NullDecimal
	// Invalid is true when a value was present but could not be parsed.
	Invalid bool
}

// NewAmount returns a valid Amount.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{NullDecimal: decimal.NullDecimal{Decimal: d, Valid: true}}
}

// AmountFromFloat returns a valid Amount from a float literal.
func AmountFromFloat(f float64) Amount {
	return NewAmount(decimal.NewFromFloat(f))
}

// Get returns the value and whether it is usable.
func (a Amount) Get() (decimal.Decimal, bool) {
	return a.Decimal, a.Valid && !a.Invalid
}

// MarshalJSON encodes a usable value as a JSON number and anything else as null.
func (a Amount) MarshalJSON() ([]byte, error) {
	if d, ok := a.Get(); ok {
		return []byte(d.String()), nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		a.Invalid = true
		return nil
	}
	a.NullDecimal = decimal.NullDecimal{Decimal: d, Valid: true}
	return nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(value any) error {
	*a = Amount{}
	if value == nil {
		return nil
	}
	if err := a.NullDecimal.Scan(value); err != nil {
		a.Invalid = true
	}
	return nil
}

// Value implements driver.Valuer.
func (a Amount) Value() (driver.Value, error) {
	if d, ok := a.Get(); ok {
		return d.String(), nil
	}
	return nil, nil
}

// String returns the decimal text or "" when absent.
func (a Amount) String() string {
	if d, ok := a.Get(); ok {
		return d.StringFixed(2)
	}
	return ""
}

// Count is a nullable non-fractional count (items in a contribution).
type Count struct {
	N       int64
	Valid   bool
	Invalid bool
}

// NewCount returns a valid Count.
func NewCount(n int64) Count { return Count{N: n, Valid: true} }

// Get returns the value and whether it is usable.
func (c Count) Get() (int64, bool) { return c.N, c.Valid && !c.Invalid }

// MarshalJSON encodes a usable count as a number, otherwise null.
func (c Count) MarshalJSON() ([]byte, error) {
	if n, ok := c.Get(); ok {
		return []byte(fmt.Sprintf("%d", n)), nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts an integral number, an integral numeric string or null.
func (c *Count) UnmarshalJSON(data []byte) error {
	var a Amount
	if err := a.UnmarshalJSON(data); err != nil {
		return err
	}
	*c = countFromAmount(a)
	return nil
}

// Scan implements sql.Scanner.
func (c *Count) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*c = Count{}
	case int64:
		*c = NewCount(v)
	case int32:
		*c = NewCount(int64(v))
	default:
		var a Amount
		_ = a.Scan(value)
		*c = countFromAmount(a)
	}
	return nil
}

// Value implements driver.Valuer.
func (c Count) Value() (driver.Value, error) {
	if n, ok := c.Get(); ok {
		return n, nil
	}
	return nil, nil
}

func countFromAmount(a Amount) Count {
	if a.Invalid {
		return Count{Invalid: true}
	}
	if !a.Valid {
		return Count{}
	}
	if !a.Decimal.Equal(a.Decimal.Truncate(0)) {
		return Count{Invalid: true}
	}
	return NewCount(a.Decimal.IntPart())
}
