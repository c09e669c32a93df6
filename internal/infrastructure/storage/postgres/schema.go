package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"infinito/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// EnsureSchema creates the tables if they do not exist. Idempotent.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info(ctx, "database schema ensured")
	return nil
}
