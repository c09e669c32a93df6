package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"infinito/pkg/logger"
)

var dbTracer = otel.Tracer("infinito/postgres")

// queryTracer implements pgx.QueryTracer: one client span per statement,
// plus a warning for statements slower than slow.
type queryTracer struct {
	slow time.Duration
}

var _ pgx.QueryTracer = (*queryTracer)(nil)

type queryStartKey struct{}

type queryStart struct {
	at        time.Time
	operation string
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := operationOf(data.SQL)
	ctx, _ = dbTracer.Start(ctx, "db."+strings.ToLower(op),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", op),
		))
	return context.WithValue(ctx, queryStartKey{}, queryStart{at: time.Now(), operation: op})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, "query failed")
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))

	start, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok || t.slow <= 0 {
		return
	}
	if elapsed := time.Since(start.at); elapsed >= t.slow {
		logger.Warn(ctx, "slow query",
			"operation", start.operation,
			"elapsed_ms", elapsed.Milliseconds(),
			"rows", data.CommandTag.RowsAffected(),
		)
	}
}

// operationOf returns the leading SQL keyword, upper-cased ("SELECT", "INSERT").
func operationOf(sql string) string {
	sql = strings.TrimSpace(sql)
	for strings.HasPrefix(sql, "--") {
		nl := strings.IndexByte(sql, '\n')
		if nl < 0 {
			return "UNKNOWN"
		}
		sql = strings.TrimSpace(sql[nl+1:])
	}
	end := strings.IndexFunc(sql, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '(' || r == ';'
	})
	if end < 0 {
		end = len(sql)
	}
	if end == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(sql[:end])
}
