// Package memory provides mutex-guarded in-memory repositories and the
// fixture data set used when no database is configured.
package memory

import (
	"context"
	"sync"

	"infinito/internal/core/apperror"
	"infinito/internal/core/entity"
	"infinito/internal/core/id"
	"infinito/internal/domain/contribution"
	"infinito/internal/domain/product"
)

// record is what Repo can store.
type record interface {
	entity.Versioned
}

// Repo keeps records in insertion order. Callers get copies, so mutations
// only become visible through Update.
type Repo[T record] struct {
	mu     sync.RWMutex
	items  []T
	byID   map[id.ID]int
	entity string
	codeOf func(T) string
	clone  func(T) T
}

func newRepo[T record](entityName string, codeOf func(T) string, clone func(T) T) *Repo[T] {
	return &Repo[T]{
		byID:   make(map[id.ID]int),
		entity: entityName,
		codeOf: codeOf,
		clone:  clone,
	}
}

// Create implements domain.Repository.
func (r *Repo[T]) Create(_ context.Context, rec T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := rec.Base()
	if _, ok := r.byID[base.ID]; ok {
		return apperror.NewDuplicate(r.entity, "id", base.ID.String())
	}
	code := r.codeOf(rec)
	for _, existing := range r.items {
		if r.codeOf(existing) == code {
			return apperror.NewDuplicate(r.entity, "code", code)
		}
	}

	r.byID[base.ID] = len(r.items)
	r.items = append(r.items, r.clone(rec))
	return nil
}

// GetByID implements domain.Repository.
func (r *Repo[T]) GetByID(_ context.Context, recID id.ID) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[recID]
	if !ok {
		var zero T
		return zero, apperror.NewNotFound(r.entity, recID.String())
	}
	return r.clone(r.items[idx]), nil
}

// GetByCode implements domain.Repository.
func (r *Repo[T]) GetByCode(_ context.Context, code string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.items {
		if r.codeOf(rec) == code {
			return r.clone(rec), nil
		}
	}
	var zero T
	return zero, apperror.NewNotFound(r.entity, code)
}

// Update implements domain.Repository with optimistic locking on Version.
func (r *Repo[T]) Update(_ context.Context, rec T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := rec.Base()
	idx, ok := r.byID[base.ID]
	if !ok {
		return apperror.NewNotFound(r.entity, base.ID.String())
	}
	if stored := r.items[idx].Base(); stored.Version != base.Version {
		return apperror.NewConflict(r.entity + " was modified concurrently").
			WithDetail("id", base.ID.String()).
			WithDetail("version", base.Version)
	}

	base.Version++
	r.items[idx] = r.clone(rec)
	return nil
}

// List implements domain.Repository.
func (r *Repo[T]) List(_ context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, len(r.items))
	for i, rec := range r.items {
		out[i] = r.clone(rec)
	}
	return out, nil
}

// Len returns the number of stored records.
func (r *Repo[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// NewContributionRepo creates an empty contribution repository.
func NewContributionRepo() *Repo[*contribution.Contribution] {
	return newRepo("contribution",
		func(c *contribution.Contribution) string { return c.TrackingCode },
		cloneContribution,
	)
}

// NewProductRepo creates an empty product repository.
func NewProductRepo() *Repo[*product.Product] {
	return newRepo("product",
		func(p *product.Product) string { return p.SKU },
		cloneProduct,
	)
}

func cloneContribution(c *contribution.Contribution) *contribution.Contribution {
	cp := *c
	cp.CertificateID = cloneString(c.CertificateID)
	return &cp
}

func cloneProduct(p *product.Product) *product.Product {
	cp := *p
	cp.CertificateID = cloneString(p.CertificateID)
	if p.ContributionID != nil {
		cid := *p.ContributionID
		cp.ContributionID = &cid
	}
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
