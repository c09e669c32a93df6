package contribution

import (
	"strings"
	"time"

	"infinito/internal/core/apperror"
	"infinito/internal/core/types"
)

// State is the tracking state of a contribution.
type State string

const (
	StatePending              State = "pending"
	StateDelivered            State = "delivered"
	StateVerified             State = "verified"
	StateCertificateAvailable State = "certificate_available"
	StateRejected             State = "rejected"
)

// transitions is the full transition table. Terminal states have no entry.
var transitions = map[State][]State{
	StatePending:   {StateDelivered, StateRejected},
	StateDelivered: {StateVerified, StateRejected},
	StateVerified:  {StateCertificateAvailable},
}

// States lists every tracking state in lifecycle order.
func States() []string {
	return []string{
		string(StatePending),
		string(StateDelivered),
		string(StateVerified),
		string(StateCertificateAvailable),
		string(StateRejected),
	}
}

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	return isOneOf(string(s), States())
}

// IsTerminal reports whether no transition leaves s.
func (s State) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition moves the contribution to state to and applies the side effects of entering it.
// certID is required when entering certificate_available and ignored otherwise.
func (c *Contribution) Transition(to State, certID string, now time.Time) error {
	if !to.IsValid() {
		return invalidValue("status", string(to))
	}
	if !CanTransition(c.Status, to) {
		return apperror.NewInvalidTransition(string(c.Status), string(to))
	}

	switch to {
	case StateDelivered:
		if c.DeliveredAt.IsNull() {
			c.DeliveredAt = types.NewTimestamp(now)
		}
	case StateVerified:
		c.Verified = true
		if c.Decision == "" || c.Decision == DecisionPending {
			c.Decision = DecisionApproved
		}
	case StateCertificateAvailable:
		certID = strings.TrimSpace(certID)
		if certID == "" {
			return apperror.NewValidation("certificate id is required").WithDetail("field", "certificateId")
		}
		c.CertificateID = &certID
	case StateRejected:
		c.Decision = DecisionRejected
	}

	c.Status = to
	return nil
}

// Classify records the admin's assessment. Rejected contributions cannot be reclassified.
func (c *Contribution) Classify(class Classification, dest Destination, decision Decision) error {
	if c.Status == StateRejected {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "rejected contributions cannot be classified").
			WithDetail("status", string(c.Status))
	}
	if !isOneOf(string(class), Classifications()) {
		return invalidValue("classification", string(class))
	}
	if !isOneOf(string(dest), Destinations()) {
		return invalidValue("destination", string(dest))
	}
	if decision == "" {
		decision = DecisionPending
	}
	if !isOneOf(string(decision), Decisions()) {
		return invalidValue("decision", string(decision))
	}
	if class == ClassWaste && dest == DestSale {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "waste cannot be sold").
			WithDetail("classification", string(class)).
			WithDetail("destination", string(dest))
	}

	c.Classification = class
	c.Destination = dest
	c.Decision = decision
	return nil
}
