package numerator

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Querier is the subset of pgx used by PGStore. Satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore keeps counters in the sys_sequences table.
type PGStore struct {
	q Querier
}

// NewPGStore creates a store backed by sys_sequences.
func NewPGStore(q Querier) *PGStore {
	return &PGStore{q: q}
}

// Reserve implements Store with an UPSERT ... RETURNING.
func (s *PGStore) Reserve(ctx context.Context, key string, n int64) (int64, error) {
	var val int64
	err := s.q.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
		RETURNING current_val
	`, key, n).Scan(&val)
	return val, err
}

// Set implements Store.
func (s *PGStore) Set(ctx context.Context, key string, value int64) error {
	var val int64
	return s.q.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&val)
}

// MemoryStore keeps counters in process memory.
type MemoryStore struct {
	mu   sync.Mutex
	vals map[string]int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vals: make(map[string]int64)}
}

// Reserve implements Store.
func (s *MemoryStore) Reserve(_ context.Context, key string, n int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] += n
	return s.vals[key], nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals[key] = value
	return nil
}
