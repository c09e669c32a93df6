package filter

import (
	"sync"

	"github.com/google/cel-go/cel"
	"golang.org/x/sync/singleflight"

	"infinito/internal/core/apperror"
)

// expressionCostLimit bounds the work of a single evaluation.
const expressionCostLimit = 10_000

// expressionCacheSize caps the compiled-program cache. The cache is dropped
// wholesale when full.
const expressionCacheSize = 256

var (
	celEnvOnce sync.Once
	celEnv     *cel.Env
	celEnvErr  error
)

// expressionEnv declares the variables an expression may reference.
// Numeric and date variables are left out of the activation when the record's
// value is missing or unparsable, so any reference to them fails the record.
func expressionEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("type", cel.StringType),
			cel.Variable("status", cel.StringType),
			cel.Variable("classification", cel.StringType),
			cel.Variable("destination", cel.StringType),
			cel.Variable("decision", cel.StringType),
			cel.Variable("seller", cel.StringType),
			cel.Variable("material", cel.StringType),
			cel.Variable("color", cel.StringType),
			cel.Variable("size", cel.StringType),
			cel.Variable("condition", cel.StringType),
			cel.Variable("country", cel.StringType),
			cel.Variable("verified", cel.BoolType),
			cel.Variable("has_certificate", cel.BoolType),
			cel.Variable("price", cel.DoubleType),
			cel.Variable("total_items", cel.IntType),
			cel.Variable("co2", cel.DoubleType),
			cel.Variable("water", cel.DoubleType),
			cel.Variable("date", cel.TimestampType),
			cel.CrossTypeNumericComparisons(true),
		)
	})
	return celEnv, celEnvErr
}

// Expression is a compiled boolean CEL predicate.
type Expression struct {
	src string
	prg cel.Program
}

// expressionCache holds compiled programs keyed by source text. Concurrent
// requests for the same source share one compilation.
type expressionCache struct {
	mu    sync.RWMutex
	items map[string]*Expression
	group singleflight.Group
}

var compiled = &expressionCache{items: make(map[string]*Expression)}

func (c *expressionCache) get(src string) (*Expression, error) {
	c.mu.RLock()
	e, ok := c.items[src]
	c.mu.RUnlock()
	if ok {
		return e, nil
	}

	v, err, _ := c.group.Do(src, func() (any, error) {
		e, err := compileExpression(src)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if len(c.items) >= expressionCacheSize {
			c.items = make(map[string]*Expression, expressionCacheSize)
		}
		c.items[src] = e
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Expression), nil
}

func (c *expressionCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// CompileExpression parses and type-checks src. Syntax errors and non-boolean
// results are contract violations. Compiled programs are cached; failures are not.
func CompileExpression(src string) (*Expression, error) {
	return compiled.get(src)
}

func compileExpression(src string) (*Expression, error) {
	env, err := expressionEnv()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewContractViolation("invalid filter expression").
			WithDetail("expression", src).
			WithDetail("reason", issues.Err().Error())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, apperror.NewContractViolation("filter expression must be boolean").
			WithDetail("expression", src).
			WithDetail("type", ast.OutputType().String())
	}

	prg, err := env.Program(ast, cel.CostLimit(expressionCostLimit))
	if err != nil {
		return nil, apperror.NewContractViolation("invalid filter expression").
			WithDetail("expression", src).
			WithCause(err)
	}
	return &Expression{src: src, prg: prg}, nil
}

// String returns the source text.
func (e *Expression) String() string { return e.src }

// Eval reports whether f satisfies the expression. Evaluation errors count as no match.
func (e *Expression) Eval(f *Fields) bool {
	out, _, err := e.prg.Eval(activation(f))
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

func activation(f *Fields) map[string]any {
	vars := map[string]any{
		"type":            f.Type,
		"status":          f.Status,
		"classification":  f.Classification,
		"destination":     f.Destination,
		"decision":        f.Decision,
		"seller":          f.Seller,
		"material":        f.Material,
		"color":           f.Color,
		"size":            f.Size,
		"condition":       f.Condition,
		"country":         f.Country,
		"verified":        f.Verified,
		"has_certificate": f.HasCertificate,
	}
	if v, ok := f.Price.Get(); ok {
		vars["price"] = v.InexactFloat64()
	}
	if n, ok := f.TotalItems.Get(); ok {
		vars["total_items"] = n
	}
	if v, ok := f.CO2.Get(); ok {
		vars["co2"] = v.InexactFloat64()
	}
	if v, ok := f.Water.Get(); ok {
		vars["water"] = v.InexactFloat64()
	}
	if t, ok := f.Date.Get(); ok {
		vars["date"] = t
	}
	return vars
}
