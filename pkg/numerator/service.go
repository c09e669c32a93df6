// Package numerator issues human-readable sequential codes such as
// tracking codes (INF-2026-00042) and product SKUs (PRD-2026-00007).
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Strategy defines the number generation strategy.
type Strategy int

const (
	// StrategyStrict reserves one number per call in the store.
	// Sequential without gaps; one round trip per number.
	StrategyStrict Strategy = iota

	// StrategyCached reserves ranges and hands them out from memory.
	// Numbers left in a range are lost on restart.
	StrategyCached
)

// defaultRangeSize is used by StrategyCached when Options.RangeSize is not set.
const defaultRangeSize = 50

// Options configures number generation.
type Options struct {
	Strategy Strategy
	// RangeSize is the number of values reserved at once by StrategyCached.
	RangeSize int64
}

// DefaultOptions returns strict options.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Store persists sequence counters.
type Store interface {
	// Reserve advances the counter for key by n and returns the new value,
	// i.e. the last number of the reserved block. Missing keys start at 0.
	Reserve(ctx context.Context, key string, n int64) (int64, error)
	// Set overwrites the counter so the next Reserve(key, 1) returns value+1.
	Set(ctx context.Context, key string, value int64) error
}

type cachedRange struct {
	current int64
	max     int64
}

// Service issues numbers. Safe for concurrent use.
type Service struct {
	store Store

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

// New creates a numerator over store.
func New(store Store) *Service {
	return &Service{
		store:  store,
		ranges: make(map[string]*cachedRange),
	}
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "INF", "PRD")
	Prefix string

	// IncludeYear adds the period year to the number
	IncludeYear bool

	// PadWidth is the minimum width of the numeric part (default 5)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns PREFIX-YEAR-NNNNN numbering reset every year.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// GetNextNumber generates the next number for cfg in the given period.
func (s *Service) GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	if s == nil || s.store == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	key := buildKey(cfg, period)

	var (
		num int64
		err error
	)
	switch opts.Strategy {
	case StrategyCached:
		num, err = s.nextCached(ctx, key, opts.RangeSize)
	default:
		num, err = s.store.Reserve(ctx, key, 1)
		if err != nil {
			err = fmt.Errorf("strict next %s: %w", key, err)
		}
	}
	if err != nil {
		return "", err
	}

	return formatNumber(cfg, period, num), nil
}

// nextCached hands out the next number from memory, reserving a new block when empty.
func (s *Service) nextCached(ctx context.Context, key string, size int64) (int64, error) {
	if size <= 0 {
		size = defaultRangeSize
	}

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, ok := s.ranges[key]
	if !ok {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		newMax, err := s.store.Reserve(ctx, key, size)
		if err != nil {
			return 0, fmt.Errorf("reserve range %s: %w", key, err)
		}
		// The block is (newMax-size, newMax].
		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNextNumber moves the counter so the next number issued is value+1.
// Used when importing records that already carry codes.
func (s *Service) SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error {
	key := buildKey(cfg, period)
	if err := s.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("set sequence %s: %w", key, err)
	}

	s.cacheMu.Lock()
	delete(s.ranges, key)
	s.cacheMu.Unlock()
	return nil
}

// Sync raises the counters so numbers already present in codes are never issued again.
// Codes that do not match cfg are ignored. Counters are never lowered.
func (s *Service) Sync(ctx context.Context, cfg Config, codes []string) error {
	highest := make(map[string]int64)
	periods := make(map[string]time.Time)
	for _, code := range codes {
		period, num, ok := parseCode(cfg, code)
		if !ok {
			continue
		}
		key := buildKey(cfg, period)
		if num > highest[key] {
			highest[key] = num
			periods[key] = period
		}
	}

	for key, num := range highest {
		current, err := s.store.Reserve(ctx, key, 0)
		if err != nil {
			return fmt.Errorf("read sequence %s: %w", key, err)
		}
		if current >= num {
			continue
		}
		if err := s.SetNextNumber(ctx, cfg, periods[key], num); err != nil {
			return err
		}
	}
	return nil
}

// parseCode splits PREFIX[-YEAR]-NNNNN into its period and number.
func parseCode(cfg Config, code string) (time.Time, int64, bool) {
	rest, ok := strings.CutPrefix(code, cfg.Prefix+"-")
	if !ok {
		return time.Time{}, 0, false
	}
	num := ParseNumber(code)
	if num < 0 {
		return time.Time{}, 0, false
	}
	if !cfg.IncludeYear {
		return time.Time{}, num, true
	}
	year, _, ok := strings.Cut(rest, "-")
	if !ok {
		return time.Time{}, 0, false
	}
	period, err := time.Parse("2006", year)
	if err != nil {
		return time.Time{}, 0, false
	}
	return period, num, true
}

// Next generates the next number for prefix with the default config and the current year.
func (s *Service) Next(ctx context.Context, prefix string) (string, error) {
	return s.GetNextNumber(ctx, DefaultConfig(prefix), nil, time.Now())
}

func buildKey(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

func formatNumber(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 5
	}

	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts the numeric part of a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	i := strings.LastIndexByte(formatted, '-')
	if i < 0 || i == len(formatted)-1 {
		return -1
	}
	n, err := strconv.ParseInt(formatted[i+1:], 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}
