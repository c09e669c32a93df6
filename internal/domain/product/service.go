package product

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"infinito/internal/core/apperror"
	"infinito/internal/core/entity"
	"infinito/internal/core/id"
	"infinito/internal/core/tx"
	"infinito/internal/core/types"
	"infinito/internal/domain"
	"infinito/internal/domain/contribution"
	"infinito/internal/domain/filter"
	"infinito/pkg/logger"
	"infinito/pkg/numerator"
)

// DefaultSKUPrefix is used when no prefix is configured.
const DefaultSKUPrefix = "PRD"

// Repository persists products.
type Repository interface {
	domain.Repository[*Product]
}

// ContributionReader is the part of the contribution service publishing needs.
type ContributionReader interface {
	GetByID(ctx context.Context, id id.ID) (*contribution.Contribution, error)
}

// Draft carries the listing details an admin supplies when publishing.
type Draft struct {
	Name      string
	Seller    string
	Condition Condition
	Country   string
	Price     types.Amount
}

// Service provides business logic for products.
type Service struct {
	*domain.RecordService[*Product]
	repo          Repository
	contributions ContributionReader
	numerator     *numerator.Service
	prefix        string
	now           func() time.Time

	// publishMu serializes the listing lookup and insert of PublishFromContribution.
	publishMu sync.Mutex
}

// Config wires a product service.
type Config struct {
	Repo          Repository
	TxManager     tx.Manager
	Numerator     *numerator.Service
	Contributions ContributionReader
	SKUPrefix     string
}

// NewService creates a new product service.
func NewService(cfg Config) *Service {
	base := domain.NewRecordService(domain.RecordServiceConfig[*Product]{
		Repo:       cfg.Repo,
		TxManager:  cfg.TxManager,
		Kind:       filter.KindProduct,
		EntityName: "product",
	})

	prefix := cfg.SKUPrefix
	if prefix == "" {
		prefix = DefaultSKUPrefix
	}

	svc := &Service{
		RecordService: base,
		repo:          cfg.Repo,
		contributions: cfg.Contributions,
		numerator:     cfg.Numerator,
		prefix:        prefix,
		now:           func() time.Time { return time.Now().UTC() },
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(func(_ context.Context, p *Product) error {
		p.UpdatedAt = svc.now()
		return nil
	})

	return svc
}

// NewProduct creates an available listing with a fresh ID.
func NewProduct(name, seller string) *Product {
	return &Product{
		BaseEntity: entity.NewBaseEntity(),
		Name:       name,
		Seller:     seller,
		Status:     StatusAvailable,
	}
}

func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if id.IsNil(p.ID) {
		p.BaseEntity = entity.NewBaseEntity()
	}
	if strings.TrimSpace(p.SKU) == "" {
		if s.numerator == nil {
			return apperror.NewInternal(errors.New("numerator is not configured"))
		}
		sku, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(s.prefix), nil, s.now())
		if err != nil {
			return apperror.NewInternal(err).WithDetail("step", "sku")
		}
		p.SKU = sku
	}
	if p.Status == "" {
		p.Status = StatusAvailable
	}
	if p.CreatedAt.IsNull() {
		p.CreatedAt = types.NewTimestamp(s.now())
	}
	return nil
}

// PublishFromContribution creates a listing from a verified contribution destined for sale.
// The listing inherits type, material, color, size and the certificate.
// A contribution is published at most once.
func (s *Service) PublishFromContribution(ctx context.Context, contribID id.ID, draft Draft) (*Product, error) {
	if s.contributions == nil {
		return nil, apperror.NewInternal(errors.New("contribution reader is not configured"))
	}
	c, err := s.contributions.GetByID(ctx, contribID)
	if err != nil {
		return nil, err
	}

	if !c.Verified.Bool() {
		return nil, apperror.NewBusinessRule(apperror.CodeNotPublishable, "contribution is not verified").
			WithDetail("trackingCode", c.TrackingCode)
	}
	if c.Destination != contribution.DestSale {
		return nil, apperror.NewBusinessRule(apperror.CodeNotPublishable, "contribution is not destined for sale").
			WithDetail("trackingCode", c.TrackingCode).
			WithDetail("destination", string(c.Destination))
	}

	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	if existing, err := s.listingFor(ctx, c.ID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperror.NewDuplicate("product", "contributionId", c.ID.String()).
			WithDetail("trackingCode", c.TrackingCode).
			WithDetail("sku", existing.SKU)
	}

	p := NewProduct(draft.Name, draft.Seller)
	p.Type = string(c.Type)
	p.Material = c.Material
	p.Color = c.Color
	p.Size = c.Size
	p.Condition = draft.Condition
	p.Country = draft.Country
	p.Price = draft.Price
	p.Verified = c.Verified
	p.PublishedAt = types.NewTimestamp(s.now())
	if c.HasCertificate() {
		cert := *c.CertificateID
		p.CertificateID = &cert
	}
	cid := c.ID
	p.ContributionID = &cid

	if err := s.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info(ctx, "product published",
		"sku", p.SKU,
		"tracking_code", c.TrackingCode,
	)
	return p, nil
}

// listingFor returns the product published from contribID, or nil.
func (s *Service) listingFor(ctx context.Context, contribID id.ID) (*Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("step", "listing lookup")
	}
	for _, p := range products {
		if p.ContributionID != nil && *p.ContributionID == contribID {
			return p, nil
		}
	}
	return nil, nil
}
