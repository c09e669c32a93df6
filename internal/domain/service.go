package domain

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"infinito/internal/core/apperror"
	"infinito/internal/core/entity"
	"infinito/internal/core/id"
	"infinito/internal/core/tx"
	"infinito/internal/domain/filter"
	"infinito/pkg/logger"
)

var tracer = otel.Tracer("infinito/domain")

// Record is what RecordService manages: a self-validating, filterable entity.
type Record interface {
	entity.Validatable
	filter.Record
}

// RecordService provides the CRUD and list flow shared by contributions and products.
type RecordService[T Record] struct {
	repo      Repository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]
	kind      filter.Kind

	// entityName for error messages and log fields
	entityName string
}

// RecordServiceConfig configures the record service.
type RecordServiceConfig[T Record] struct {
	Repo       Repository[T]
	TxManager  tx.Manager // nil means no transaction
	Kind       filter.Kind
	EntityName string
}

// NewRecordService creates a new record service.
func NewRecordService[T Record](cfg RecordServiceConfig[T]) *RecordService[T] {
	txm := cfg.TxManager
	if txm == nil {
		txm = tx.Noop{}
	}
	return &RecordService[T]{
		repo:       cfg.Repo,
		txManager:  txm,
		hooks:      NewHookRegistry[T](),
		kind:       cfg.Kind,
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *RecordService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// TxManager exposes the transaction manager for multi-step operations.
func (s *RecordService[T]) TxManager() tx.Manager {
	return s.txManager
}

func (s *RecordService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

func (s *RecordService[T]) normalizeGetErr(err error, idOrCode any) error {
	if err == nil {
		return nil
	}
	// Keep the repository's AppError but make sure not-found names this entity.
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, idOrCode)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", idOrCode)
}

// List loads the collection and runs the filter engine over it.
func (s *RecordService[T]) List(ctx context.Context, spec filter.Spec) (filter.Result[T], error) {
	ctx, span := tracer.Start(ctx, s.entityName+".list")
	defer span.End()

	records, err := s.repo.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return filter.Result[T]{}, s.normalizeGetErr(err, "*")
	}

	res, err := filter.Apply(records, spec, s.kind)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "filter rejected")
		return filter.Result[T]{}, err
	}

	span.SetAttributes(
		attribute.Int("filter.total", res.Stats.Total),
		attribute.Int("filter.kept", res.Stats.Kept),
		attribute.Int("filter.active", res.Stats.ActiveConstraints),
	)
	logger.Debug(ctx, "filter pass",
		"entity", s.entityName,
		"total", res.Stats.Total,
		"kept", res.Stats.Kept,
		"active", res.Stats.ActiveConstraints,
	)
	return res, nil
}

// Create validates and stores a new record.
func (s *RecordService[T]) Create(ctx context.Context, rec T) error {
	// 1. Run before-create hooks (codes, derived values)
	if err := s.hooks.Run(ctx, BeforeCreate, rec); err != nil {
		return err
	}

	// 2. Validate record invariants
	if err := rec.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	// 3. Create in transaction
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, rec); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 4. After-create hooks run outside the transaction; the record exists either way.
	if err := s.hooks.Run(ctx, AfterCreate, rec); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}

// GetByID retrieves a record by ID.
func (s *RecordService[T]) GetByID(ctx context.Context, recID id.ID) (T, error) {
	rec, err := s.repo.GetByID(ctx, recID)
	if err != nil {
		return rec, s.normalizeGetErr(err, recID.String())
	}
	return rec, nil
}

// GetByCode retrieves a record by tracking code or SKU.
func (s *RecordService[T]) GetByCode(ctx context.Context, code string) (T, error) {
	rec, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return rec, s.normalizeGetErr(err, code)
	}
	return rec, nil
}

// Update validates and stores a modified record.
func (s *RecordService[T]) Update(ctx context.Context, rec T) error {
	if err := s.hooks.Run(ctx, BeforeUpdate, rec); err != nil {
		return err
	}

	if err := rec.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, rec); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterUpdate, rec); err != nil {
		logger.Warn(ctx, "after-update hook failed", "entity", s.entityName, "error", err)
	}

	return nil
}
