// Package filter implements the admin filter engine: a pure, order-preserving
// selection of contributions or products by a structured Spec.
package filter

import (
	"infinito/internal/core/apperror"
)

// Kind discriminates the two record variants. Some predicates apply to only one of them.
type Kind string

const (
	KindContribution Kind = "contribution"
	KindProduct      Kind = "product"
)

// Kinds lists every recognized record kind.
func Kinds() []Kind {
	return []Kind{KindContribution, KindProduct}
}

// ParseKind converts text to a Kind, rejecting unknown values.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// Validate returns a contract violation for unrecognized kinds.
func (k Kind) Validate() error {
	switch k {
	case KindContribution, KindProduct:
		return nil
	default:
		return apperror.NewContractViolation("unknown record kind").WithDetail("kind", string(k))
	}
}
