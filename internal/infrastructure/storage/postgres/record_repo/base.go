// Package record_repo provides PostgreSQL repositories for contributions and products.
package record_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"infinito/internal/core/apperror"
	"infinito/internal/core/entity"
	"infinito/internal/core/id"
	"infinito/internal/infrastructure/storage/postgres"
)

const uniqueViolation = "23505"

// BaseRecordRepo implements domain.Repository over one table.
// T is a pointer to a struct embedding entity.BaseEntity.
type BaseRecordRepo[T entity.Versioned] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	codeColumn string
	selectCols []string
	newFn      func() T

	// uniqueIndexes maps secondary unique constraint names to their column.
	uniqueIndexes map[string]string
}

// NewBaseRecordRepo creates a repository for tableName. codeColumn holds the
// human-facing unique code (tracking_code, sku).
func NewBaseRecordRepo[T entity.Versioned](
	txm *postgres.TxManager,
	tableName, entityName, codeColumn string,
	selectCols []string,
	newFn func() T,
) *BaseRecordRepo[T] {
	return &BaseRecordRepo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		codeColumn: codeColumn,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

// WithUniqueIndex names the column behind a secondary unique constraint so
// violations report the offending field.
func (r *BaseRecordRepo[T]) WithUniqueIndex(constraint, column string) *BaseRecordRepo[T] {
	if r.uniqueIndexes == nil {
		r.uniqueIndexes = make(map[string]string)
	}
	r.uniqueIndexes[constraint] = column
	return r
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *BaseRecordRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// columns keeps only the values whose column is selected.
func (r *BaseRecordRepo[T]) columns(rec T, skip ...string) (map[string]any, error) {
	data := postgres.StructToMap(rec)
	if len(data) == 0 {
		return nil, fmt.Errorf("no db tags found in %s", r.entityName)
	}
	out := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if contains(skip, col) {
			continue
		}
		if v, ok := data[col]; ok {
			out[col] = v
		}
	}
	return out, nil
}

func (r *BaseRecordRepo[T]) insertQuery(rec T) (string, []any, error) {
	data, err := r.columns(rec)
	if err != nil {
		return "", nil, err
	}
	return r.Builder().Insert(r.tableName).SetMap(data).ToSql()
}

func (r *BaseRecordRepo[T]) updateQuery(rec T) (string, []any, error) {
	base := rec.Base()
	data, err := r.columns(rec, "id", "version")
	if err != nil {
		return "", nil, err
	}
	return r.Builder().
		Update(r.tableName).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": base.ID}).
		Where(squirrel.Eq{"version": base.Version}).
		ToSql()
}

func (r *BaseRecordRepo[T]) selectQuery(where squirrel.Sqlizer) (string, []any, error) {
	q := r.Builder().Select(r.selectCols...).From(r.tableName)
	if where != nil {
		q = q.Where(where).Limit(1)
	} else {
		// UUIDv7 ids are time-ordered, so this is insertion order.
		q = q.OrderBy("id")
	}
	return q.ToSql()
}

// Create inserts a record.
func (r *BaseRecordRepo[T]) Create(ctx context.Context, rec T) error {
	sql, args, err := r.insertQuery(rec)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return r.mapWriteError(err, rec)
	}
	return nil
}

// Update writes a record with optimistic locking and bumps its version on success.
func (r *BaseRecordRepo[T]) Update(ctx context.Context, rec T) error {
	base := rec.Base()
	base.UpdatedAt = time.Now().UTC()

	sql, args, err := r.updateQuery(rec)
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteError(err, rec)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConflict(r.entityName+" was modified concurrently").
			WithDetail("id", base.ID.String()).
			WithDetail("version", base.Version)
	}

	base.Version++
	return nil
}

// GetByID retrieves a record by ID.
func (r *BaseRecordRepo[T]) GetByID(ctx context.Context, recID id.ID) (T, error) {
	return r.getOne(ctx, squirrel.Eq{"id": recID}, recID.String())
}

// GetByCode retrieves a record by its unique code.
func (r *BaseRecordRepo[T]) GetByCode(ctx context.Context, code string) (T, error) {
	return r.getOne(ctx, squirrel.Eq{r.codeColumn: code}, code)
}

func (r *BaseRecordRepo[T]) getOne(ctx context.Context, where squirrel.Sqlizer, key string) (T, error) {
	rec := r.newFn()

	sql, args, err := r.selectQuery(where)
	if err != nil {
		return rec, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), rec, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			var zero T
			return zero, apperror.NewNotFound(r.entityName, key)
		}
		return rec, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return rec, nil
}

// List returns all records, oldest first.
func (r *BaseRecordRepo[T]) List(ctx context.Context) ([]T, error) {
	sql, args, err := r.selectQuery(nil)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := make([]T, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return items, nil
}

func (r *BaseRecordRepo[T]) mapWriteError(err error, rec T) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return fmt.Errorf("write %s: %w", r.tableName, err)
	}

	if pgErr.ConstraintName == r.tableName+"_pkey" {
		return apperror.NewDuplicate(r.entityName, "id", rec.Base().ID.String()).WithCause(err)
	}
	column := r.codeColumn
	if c, ok := r.uniqueIndexes[pgErr.ConstraintName]; ok {
		column = c
	}
	return apperror.NewDuplicate(r.entityName, column, displayValue(postgres.StructToMap(rec)[column])).
		WithCause(err)
}

func displayValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *id.ID:
		if x == nil {
			return ""
		}
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
