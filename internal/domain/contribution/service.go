package contribution

import (
	"context"
	"errors"
	"strings"
	"time"

	"infinito/internal/core/apperror"
	"infinito/internal/core/entity"
	"infinito/internal/core/id"
	"infinito/internal/core/tx"
	"infinito/internal/core/types"
	"infinito/internal/domain"
	"infinito/internal/domain/filter"
	"infinito/internal/domain/impact"
	"infinito/pkg/logger"
	"infinito/pkg/numerator"
)

// DefaultTrackingPrefix is used when no prefix is configured.
const DefaultTrackingPrefix = "INF"

// Repository persists contributions.
type Repository interface {
	domain.Repository[*Contribution]
}

// NewContribution creates a pending contribution with a fresh ID.
func NewContribution(donorName string, typ Type) *Contribution {
	return &Contribution{
		BaseEntity: entity.NewBaseEntity(),
		DonorName:  donorName,
		Type:       typ,
		Status:     StatePending,
		Decision:   DecisionPending,
	}
}

// Service provides business logic for contributions.
// Uses composition with domain.RecordService for the common flow.
type Service struct {
	*domain.RecordService[*Contribution]
	numerator *numerator.Service
	calc      *impact.Calculator
	prefix    string
	now       func() time.Time
}

// Config wires a contribution service.
type Config struct {
	Repo           Repository
	TxManager      tx.Manager
	Numerator      *numerator.Service
	Calculator     *impact.Calculator
	TrackingPrefix string
}

// NewService creates a new contribution service.
func NewService(cfg Config) *Service {
	base := domain.NewRecordService(domain.RecordServiceConfig[*Contribution]{
		Repo:       cfg.Repo,
		TxManager:  cfg.TxManager,
		Kind:       filter.KindContribution,
		EntityName: "contribution",
	})

	prefix := cfg.TrackingPrefix
	if prefix == "" {
		prefix = DefaultTrackingPrefix
	}
	calc := cfg.Calculator
	if calc == nil {
		calc = impact.NewCalculator()
	}

	svc := &Service{
		RecordService: base,
		numerator:     cfg.Numerator,
		calc:          calc,
		prefix:        prefix,
		now:           func() time.Time { return time.Now().UTC() },
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate assigns the tracking code, defaults and the impact estimate.
func (s *Service) prepareForCreate(ctx context.Context, c *Contribution) error {
	if id.IsNil(c.ID) {
		c.BaseEntity = entity.NewBaseEntity()
	}
	if strings.TrimSpace(c.TrackingCode) == "" {
		if s.numerator == nil {
			return apperror.NewInternal(errors.New("numerator is not configured"))
		}
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(s.prefix), nil, s.now())
		if err != nil {
			return apperror.NewInternal(err).WithDetail("step", "tracking_code")
		}
		c.TrackingCode = code
	}
	if c.Status == "" {
		c.Status = StatePending
	}
	if c.Decision == "" {
		c.Decision = DecisionPending
	}
	if c.CreatedAt.IsNull() {
		c.CreatedAt = types.NewTimestamp(s.now())
	}
	return s.estimateImpact(c)
}

func (s *Service) prepareForUpdate(_ context.Context, c *Contribution) error {
	c.UpdatedAt = s.now()
	return nil
}

// estimateImpact fills CO2 and water from weight and material unless already present.
func (s *Service) estimateImpact(c *Contribution) error {
	w, ok := c.WeightKg.Get()
	if !ok {
		return nil
	}
	if _, has := c.CO2.Get(); has {
		return nil
	}
	est, err := s.calc.Calculate(c.Material, w)
	if err != nil {
		return err
	}
	c.CO2 = types.NewAmount(est.CO2Kg)
	c.Water = types.NewAmount(est.WaterLitres)
	return nil
}

// Classify sets classification, destination and decision.
func (s *Service) Classify(ctx context.Context, contribID id.ID, class Classification, dest Destination, decision Decision) (*Contribution, error) {
	c, err := s.GetByID(ctx, contribID)
	if err != nil {
		return nil, err
	}
	if err := c.Classify(class, dest, decision); err != nil {
		return nil, err
	}
	if err := s.Update(ctx, c); err != nil {
		return nil, err
	}

	logger.Info(ctx, "contribution classified",
		"tracking_code", c.TrackingCode,
		"classification", c.Classification,
		"destination", c.Destination,
	)
	return c, nil
}

// Transition moves a contribution through the tracking state machine.
func (s *Service) Transition(ctx context.Context, contribID id.ID, to State, certID string) (*Contribution, error) {
	c, err := s.GetByID(ctx, contribID)
	if err != nil {
		return nil, err
	}
	from := c.Status
	if err := c.Transition(to, certID, s.now()); err != nil {
		return nil, err
	}
	if err := s.Update(ctx, c); err != nil {
		return nil, err
	}

	logger.Info(ctx, "contribution state changed",
		"tracking_code", c.TrackingCode,
		"from", from,
		"to", c.Status,
	)
	return c, nil
}
