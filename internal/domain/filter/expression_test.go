package filter

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infinito/internal/core/apperror"
	"infinito/internal/core/types"
)

func TestCompileExpression_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "co2 >"},
		{"unknown variable", "weight > 2.0"},
		{"not boolean", "co2 + 1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileExpression(tt.src)
			require.Error(t, err)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeContractViolation, appErr.Code)
		})
	}
}

func TestExpression_Eval(t *testing.T) {
	fields := &Fields{
		Type:     "clothing",
		Verified: true,
		CO2:      types.NewAmount(decimal.RequireFromString("24.5")),
		Date:     types.NewTimestamp(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
	}

	tests := []struct {
		src  string
		want bool
	}{
		{`type == "clothing" && verified`, true},
		{"co2 > 20", true},
		{"co2 > 30.0", false},
		{`date > timestamp("2024-01-01T00:00:00Z")`, true},
		// water is absent from the activation
		{"water > 0.0", false},
		{"water > 0.0 || verified", true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expr, err := CompileExpression(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.Eval(fields))
		})
	}
}

func TestCompileExpression_Cached(t *testing.T) {
	const src = `status == "delivered"`

	var wg sync.WaitGroup
	results := make([]*Expression, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := CompileExpression(src)
			assert.NoError(t, err)
			results[i] = e
		}(i)
	}
	wg.Wait()

	for _, e := range results[1:] {
		assert.Same(t, results[0], e)
	}

	before := compiled.len()
	_, err := CompileExpression("status ==")
	require.Error(t, err)
	assert.Equal(t, before, compiled.len())
}
