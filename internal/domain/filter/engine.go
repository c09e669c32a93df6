package filter

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Stats summarizes a filter pass for the "N of M" counter and filter chips.
type Stats struct {
	Total             int `json:"total"`
	Kept              int `json:"kept"`
	ActiveConstraints int `json:"activeConstraints"`
}

// Result is the outcome of Apply. Kept is a subsequence of the input.
type Result[R any] struct {
	Kept  []R   `json:"items"`
	Stats Stats `json:"stats"`
}

// predicate reports whether a record's fields satisfy one constraint.
type predicate func(f *Fields) bool

// Apply returns the records that satisfy every set constraint of spec, in input order.
//
// Predicates that do not apply to kind are never evaluated. A record whose field
// is missing or unparsable fails any active predicate on that field; it never
// aborts the pass. Apply fails only on caller bugs: an unknown kind or an
// invalid spec. It does not mutate records or spec, and the caller must not
// mutate records while it runs.
func Apply[R Record](records []R, spec Spec, kind Kind) (Result[R], error) {
	if err := kind.Validate(); err != nil {
		return Result[R]{}, err
	}
	if err := spec.Validate(); err != nil {
		return Result[R]{}, err
	}

	preds, err := compile(spec, kind)
	if err != nil {
		return Result[R]{}, err
	}

	kept := make([]R, 0, len(records))
	for _, rec := range records {
		f := rec.FilterFields()
		if matchAll(preds, &f) {
			kept = append(kept, rec)
		}
	}

	return Result[R]{
		Kept: kept,
		Stats: Stats{
			Total:             len(records),
			Kept:              len(kept),
			ActiveConstraints: spec.ActiveCount(),
		},
	}, nil
}

func matchAll(preds []predicate, f *Fields) bool {
	for _, p := range preds {
		if !p(f) {
			return false
		}
	}
	return true
}

// compile turns the set, applicable constraints into predicates in evaluation order:
// search, categorical, boolean, range, expression.
func compile(spec Spec, kind Kind) ([]predicate, error) {
	var preds []predicate
	isContribution := kind == KindContribution
	isProduct := kind == KindProduct

	// 1. Free-text search
	if needle, ok := spec.Search.Get(); ok {
		needle = strings.ToLower(needle)
		preds = append(preds, func(f *Fields) bool {
			for _, target := range f.SearchTargets {
				if strings.Contains(strings.ToLower(target), needle) {
					return true
				}
			}
			return false
		})
	}

	// 2. Categorical
	preds = appendEqual(preds, spec.Type, func(f *Fields) string { return f.Type })
	preds = appendEqual(preds, spec.Status, func(f *Fields) string { return f.Status })
	if isContribution {
		preds = appendEqual(preds, spec.Classification, func(f *Fields) string { return f.Classification })
		preds = appendEqual(preds, spec.Destination, func(f *Fields) string { return f.Destination })
		preds = appendEqual(preds, spec.Decision, func(f *Fields) string { return f.Decision })
	}
	if isProduct {
		preds = appendEqual(preds, spec.Material, func(f *Fields) string { return f.Material })
		preds = appendEqual(preds, spec.Color, func(f *Fields) string { return f.Color })
		preds = appendEqual(preds, spec.Size, func(f *Fields) string { return f.Size })
		preds = appendEqual(preds, spec.Condition, func(f *Fields) string { return f.Condition })
		preds = appendEqual(preds, spec.Country, func(f *Fields) string { return f.Country })
		if seller, ok := spec.Seller.Get(); ok {
			seller = strings.ToLower(seller)
			preds = append(preds, func(f *Fields) bool {
				return strings.Contains(strings.ToLower(f.Seller), seller)
			})
		}
	}

	// 3. Boolean. Records are coerced to bool when decoded (types.Flag).
	if want, ok := spec.Verified.Get(); ok {
		preds = append(preds, func(f *Fields) bool { return f.Verified == want })
	}
	if want, ok := spec.HasCertificate.Get(); ok {
		preds = append(preds, func(f *Fields) bool { return f.HasCertificate == want })
	}

	// 4. Ranges
	if spec.Date.IsSet() {
		r := spec.Date
		preds = append(preds, func(f *Fields) bool {
			t, ok := f.Date.Get()
			return ok && r.contains(t, compareTime)
		})
	}
	if isProduct {
		preds = appendDecimalRange(preds, spec.Price, func(f *Fields) (decimal.Decimal, bool) { return f.Price.Get() })
	}
	if isContribution {
		if spec.TotalItems.IsSet() {
			r := spec.TotalItems
			preds = append(preds, func(f *Fields) bool {
				n, ok := f.TotalItems.Get()
				return ok && r.contains(n, compareInt)
			})
		}
		preds = appendDecimalRange(preds, spec.CO2, func(f *Fields) (decimal.Decimal, bool) { return f.CO2.Get() })
		preds = appendDecimalRange(preds, spec.Water, func(f *Fields) (decimal.Decimal, bool) { return f.Water.Get() })
	}

	// 5. Expression
	if src, ok := spec.Expression.Get(); ok {
		expr, err := CompileExpression(src)
		if err != nil {
			return nil, err
		}
		preds = append(preds, expr.Eval)
	}

	return preds, nil
}

func appendEqual(preds []predicate, o Opt[string], get func(f *Fields) string) []predicate {
	want, ok := o.Get()
	if !ok {
		return preds
	}
	return append(preds, func(f *Fields) bool { return get(f) == want })
}

func appendDecimalRange(preds []predicate, r Range[decimal.Decimal], get func(f *Fields) (decimal.Decimal, bool)) []predicate {
	if !r.IsSet() {
		return preds
	}
	return append(preds, func(f *Fields) bool {
		v, ok := get(f)
		return ok && r.contains(v, compareDecimal)
	})
}

func compareTime(a, b time.Time) int { return a.Compare(b) }

func compareDecimal(a, b decimal.Decimal) int { return a.Cmp(b) }

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
