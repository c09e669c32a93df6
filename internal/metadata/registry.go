// Package metadata describes record kinds and their filterable fields so the
// admin UI can build filter forms and active-filter chips.
package metadata

import (
	"sort"
	"sync"
)

// FieldType defines the data type of a field.
type FieldType string

const (
	TypeString     FieldType = "string"
	TypeInteger    FieldType = "integer"
	TypeNumber     FieldType = "number" // decimal
	TypeBoolean    FieldType = "boolean"
	TypeDate       FieldType = "date"
	TypeReference  FieldType = "reference"
	TypeEnum       FieldType = "enum"
	TypeMoney      FieldType = "money"
	TypeExpression FieldType = "expression"
)

// Match describes how a filter compares against the record.
type Match string

const (
	MatchExact     Match = "exact"
	MatchSubstring Match = "substring"
	MatchRange     Match = "range"
	MatchCEL       Match = "cel"
)

// EntityDef describes a record kind.
type EntityDef struct {
	Name    string      `json:"name"`
	Label   string      `json:"label,omitempty"`
	Fields  []FieldDef  `json:"fields"`
	Filters []FilterDef `json:"filters"`
}

// FieldDef describes a stored field.
type FieldDef struct {
	Name          string    `json:"name"`
	Label         string    `json:"label,omitempty"`
	Type          FieldType `json:"type"`
	ReferenceType string    `json:"referenceType,omitempty"` // e.g. "contribution"
	ReadOnly      bool      `json:"readOnly,omitempty"`
	Scale         int       `json:"scale,omitempty"` // For numbers
	Options       []string  `json:"options,omitempty"`
}

// FilterDef describes one constraint of the filter form.
type FilterDef struct {
	Name  string    `json:"name"`
	Label string    `json:"label,omitempty"`
	Type  FieldType `json:"type"`
	Match Match     `json:"match"`
	// Params are the query parameters that carry the constraint, e.g. priceMin/priceMax.
	Params  []string `json:"params"`
	Options []string `json:"options,omitempty"`
}

// Registry stores entity definitions. Safe for concurrent reads after setup.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]EntityDef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]EntityDef),
	}
}

// Register adds or replaces def.
func (r *Registry) Register(def EntityDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities[def.Name] = def
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (EntityDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.entities[name]
	return d, ok
}

// List returns all definitions sorted by name.
func (r *Registry) List() []EntityDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]EntityDef, 0, len(r.entities))
	for _, def := range r.entities {
		list = append(list, def)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
