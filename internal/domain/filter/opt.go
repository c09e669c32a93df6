package filter

import (
	"bytes"
	"encoding/json"
)

// Opt holds either "unset" or a concrete constraint value.
// The zero value is unset, so a Spec literal only names what it constrains.
// A set empty string is distinct from unset; Spec.Validate rejects it.
type Opt[T any] struct {
	value T
	set   bool
}

// Some returns a set Opt.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// None returns an unset Opt.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is set.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a constraint value is present.
func (o Opt[T]) IsSet() bool {
	return o.set
}

// MarshalJSON encodes unset as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as unset.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Range is a two-sided constraint whose bounds are independently optional.
// Both bounds are inclusive.
type Range[T any] struct {
	Min Opt[T] `json:"min"`
	Max Opt[T] `json:"max"`
}

// Between returns a range with both bounds set.
func Between[T any](lo, hi T) Range[T] {
	return Range[T]{Min: Some(lo), Max: Some(hi)}
}

// AtLeast returns a range open on the upper side.
func AtLeast[T any](lo T) Range[T] {
	return Range[T]{Min: Some(lo)}
}

// AtMost returns a range open on the lower side.
func AtMost[T any](hi T) Range[T] {
	return Range[T]{Max: Some(hi)}
}

// IsSet reports whether either side is constrained.
func (r Range[T]) IsSet() bool {
	return r.Min.IsSet() || r.Max.IsSet()
}

// contains checks v against the set bounds using cmp (negative, zero, positive like strings.Compare).
func (r Range[T]) contains(v T, cmp func(a, b T) int) bool {
	if lo, ok := r.Min.Get(); ok && cmp(v, lo) < 0 {
		return false
	}
	if hi, ok := r.Max.Get(); ok && cmp(v, hi) > 0 {
		return false
	}
	return true
}
