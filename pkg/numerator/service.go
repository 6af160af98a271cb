// Package numerator provides document auto-numbering.
// Inward requests get their unique reference numbers from here.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
)

// Strategy selects how numbers are drawn from the sequence table.
type Strategy int

const (
	// StrategyStrict goes to the database for every number and never
	// leaves gaps. Used for audited documents such as inward requests.
	StrategyStrict Strategy = iota

	// StrategyCached reserves a block of numbers per round-trip. Faster,
	// but numbers reserved before a restart are lost.
	StrategyCached
)

// Options tunes number generation per call.
type Options struct {
	Strategy Strategy
	// RangeSize is the block size reserved by StrategyCached. Zero means 50.
	RangeSize int64
}

// DefaultOptions returns the strict strategy.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Config describes the shape of generated numbers.
type Config struct {
	// Prefix, e.g. "SIR" or "MAT".
	Prefix string
	// IncludeYear puts the four-digit year between prefix and counter.
	IncludeYear bool
	// PadWidth is the zero-padded counter width. Zero means 5.
	PadWidth int
	// ResetPeriod restarts the counter: "year", "month" or "never".
	ResetPeriod string
}

// DefaultConfig numbers documents as PREFIX-YEAR-XXXXX with a yearly reset.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Querier is the single database capability the numerator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// numberRange is a reserved block; current is the last value handed out.
type numberRange struct {
	current int64
	max     int64
}

// Service hands out document numbers backed by the sys_sequences table.
type Service struct {
	querier Querier

	mu     sync.Mutex
	ranges map[string]*numberRange
}

func New(querier Querier) *Service {
	return &Service{
		querier: querier,
		ranges:  make(map[string]*numberRange),
	}
}

// GetNextNumber returns the next formatted number for the sequence that cfg
// and period identify, e.g. SIR-2026-00001. A nil opts means strict.
func (s *Service) GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	key := s.sequenceKey(cfg, period)

	var (
		n   int64
		err error
	)
	if opts.Strategy == StrategyCached {
		n, err = s.nextFromRange(ctx, key, opts.RangeSize)
	} else {
		n, err = s.nextStrict(ctx, key)
	}
	if err != nil {
		return "", err
	}

	return s.format(cfg, period, n), nil
}

// SetNextNumber forces the sequence to a value, for data migrations. Any
// cached range for the key is discarded.
func (s *Service) SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error {
	key := s.sequenceKey(cfg, period)

	var v int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&v)

	s.mu.Lock()
	delete(s.ranges, key)
	s.mu.Unlock()

	return err
}

func (s *Service) nextStrict(ctx context.Context, key string) (int64, error) {
	var n int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, key).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("strict next: %w", err)
	}
	return n, nil
}

func (s *Service) nextFromRange(ctx context.Context, key string, size int64) (int64, error) {
	if size <= 0 {
		size = 50
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rng := s.ranges[key]
	if rng == nil {
		rng = &numberRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		// current_val holds the last reserved value, so bumping it by
		// size claims (old+1 .. new) for this process.
		var reservedMax int64
		err := s.querier.QueryRow(ctx, `
            INSERT INTO sys_sequences (key, current_val)
            VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
            RETURNING current_val
		`, key, size).Scan(&reservedMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range: %w", err)
		}
		rng.current = reservedMax - size
		rng.max = reservedMax
	}

	rng.current++
	return rng.current, nil
}

func (s *Service) sequenceKey(cfg Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

func (s *Service) format(cfg Config, period time.Time, n int64) string {
	width := cfg.PadWidth
	if width == 0 {
		width = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), width, n)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, width, n)
}
