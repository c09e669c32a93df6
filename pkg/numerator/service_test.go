package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore wraps MemoryStore and records how often the store is hit.
type countingStore struct {
	*MemoryStore
	mu       sync.Mutex
	reserves int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: NewMemoryStore()}
}

func (s *countingStore) Reserve(ctx context.Context, key string, n int64) (int64, error) {
	s.mu.Lock()
	s.reserves++
	s.mu.Unlock()
	return s.MemoryStore.Reserve(ctx, key, n)
}

func TestGetNextNumber_Strict(t *testing.T) {
	store := newCountingStore()
	svc := New(store)
	ctx := context.Background()
	cfg := DefaultConfig("INF")
	now := time.Now()
	year := now.Format("2006")

	num, err := svc.GetNextNumber(ctx, cfg, nil, now)
	require.NoError(t, err)
	assert.Equal(t, "INF-"+year+"-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, now)
	require.NoError(t, err)
	assert.Equal(t, "INF-"+year+"-00002", num)
	assert.Equal(t, 2, store.reserves)
}

func TestGetNextNumber_Cached(t *testing.T) {
	store := newCountingStore()
	svc := New(store)
	ctx := context.Background()
	cfg := DefaultConfig("PRD")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}
	now := time.Now()
	year := now.Format("2006")

	num, err := svc.GetNextNumber(ctx, cfg, opts, now)
	require.NoError(t, err)
	assert.Equal(t, "PRD-"+year+"-00001", num)
	assert.Equal(t, 1, store.reserves)

	for i := 0; i < 9; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, now)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, store.reserves, "the first block should serve ten numbers")

	num, err = svc.GetNextNumber(ctx, cfg, opts, now)
	require.NoError(t, err)
	assert.Equal(t, "PRD-"+year+"-00011", num)
	assert.Equal(t, 2, store.reserves)
}

func TestGetNextNumber_ResetsPerYear(t *testing.T) {
	svc := New(NewMemoryStore())
	ctx := context.Background()
	cfg := DefaultConfig("INF")

	a, err := svc.GetNextNumber(ctx, cfg, nil, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	b, err := svc.GetNextNumber(ctx, cfg, nil, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "INF-2024-00001", a)
	assert.Equal(t, "INF-2025-00001", b)
}

func TestSetNextNumber_InvalidatesCache(t *testing.T) {
	svc := New(NewMemoryStore())
	ctx := context.Background()
	cfg := DefaultConfig("INF")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}
	now := time.Now()

	_, err := svc.GetNextNumber(ctx, cfg, opts, now)
	require.NoError(t, err)

	require.NoError(t, svc.SetNextNumber(ctx, cfg, now, 100))

	num, err := svc.GetNextNumber(ctx, cfg, opts, now)
	require.NoError(t, err)
	assert.Equal(t, int64(101), ParseNumber(num))
}

func TestGetNextNumber_Concurrent(t *testing.T) {
	svc := New(NewMemoryStore())
	ctx := context.Background()
	cfg := DefaultConfig("INF")
	opts := &Options{Strategy: StrategyCached, RangeSize: 7}
	now := time.Now()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{})
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				num, err := svc.GetNextNumber(ctx, cfg, opts, now)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				seen[num] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 200)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"INF-2026-00042", 42},
		{"PRD-00007", 7},
		{"INF-2026-", -1},
		{"garbage", -1},
		{"INF-2026-abc", -1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.in))
		})
	}
}

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if p, ok := dest[0].(*int64); ok {
		*p = m.val
	}
	return nil
}

type mockQuerier struct {
	args []any
	row  *mockRow
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.args = args
	return m.row
}

func TestPGStore(t *testing.T) {
	q := &mockQuerier{row: &mockRow{val: 60}}
	store := NewPGStore(q)

	v, err := store.Reserve(context.Background(), "INF_2026", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(60), v)
	assert.Equal(t, []any{"INF_2026", int64(10)}, q.args)

	q.row = &mockRow{err: errors.New("connection reset")}
	svc := New(store)
	_, err = svc.Next(context.Background(), "INF")
	assert.ErrorContains(t, err, "connection reset")
}

func TestSync(t *testing.T) {
	svc := New(NewMemoryStore())
	ctx := context.Background()
	cfg := DefaultConfig("INF")

	err := svc.Sync(ctx, cfg, []string{
		"INF-2024-00003",
		"INF-2024-00007",
		"INF-2025-00002",
		"PRD-2024-00099", // other prefix
		"INF-pending",    // malformed
	})
	require.NoError(t, err)

	y2024 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	y2025 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	num, err := svc.GetNextNumber(ctx, cfg, nil, y2024)
	require.NoError(t, err)
	assert.Equal(t, "INF-2024-00008", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, y2025)
	require.NoError(t, err)
	assert.Equal(t, "INF-2025-00003", num)

	// Counters never move backwards.
	require.NoError(t, svc.Sync(ctx, cfg, []string{"INF-2024-00001"}))
	num, err = svc.GetNextNumber(ctx, cfg, nil, y2024)
	require.NoError(t, err)
	assert.Equal(t, "INF-2024-00009", num)
}
