// Package entity holds the fields and contracts shared by contributions and products.
package entity

import (
	"context"
	"time"

	"infinito/internal/core/id"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// BaseEntity contains common fields for all records.
type BaseEntity struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Version for optimistic locking (incremented on each update)
	Version int `db:"version" json:"version"`

	// UpdatedAt is set by the service on every write
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity creates a new BaseEntity with generated ID.
func NewBaseEntity() BaseEntity {
	return BaseEntity{
		ID:        id.New(),
		Version:   1,
		UpdatedAt: time.Now().UTC(),
	}
}

// Touch increments version and refreshes UpdatedAt.
func (b *BaseEntity) Touch() {
	b.Version++
	b.UpdatedAt = time.Now().UTC()
}

// Base returns the embedded BaseEntity. Lets generic stores reach ID and Version.
func (b *BaseEntity) Base() *BaseEntity {
	return b
}

// Versioned is implemented by every record that embeds BaseEntity (via pointer receiver).
type Versioned interface {
	Base() *BaseEntity
}
