package numerator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	val int64
	err error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*int64); ok {
			*p = r.val
		}
	}
	return nil
}

// fakeSequencer emulates the sys_sequences upsert: every call advances the
// stored value by the requested increment and returns the new value.
type fakeSequencer struct {
	mu  sync.Mutex
	val int64
}

func (q *fakeSequencer) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.mu.Lock()
	defer q.mu.Unlock()

	// strict passes (key); cached passes (key, increment)
	inc := int64(1)
	if len(args) == 2 {
		if v, ok := args[1].(int64); ok {
			inc = v
		}
	}
	q.val += inc
	return &fakeRow{val: q.val}
}

func TestGetNextNumber_Strict(t *testing.T) {
	svc := New(&fakeSequencer{})
	cfg := DefaultConfig("SIR")
	year := time.Now().Format("2006")

	for i := 1; i <= 3; i++ {
		num, err := svc.GetNextNumber(context.Background(), cfg, nil, time.Now())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("SIR-%s-%05d", year, i), num)
	}
}

func TestGetNextNumber_Cached(t *testing.T) {
	seq := &fakeSequencer{}
	svc := New(seq)
	cfg := DefaultConfig("ADJ")
	year := time.Now().Format("2006")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	// first call reserves 1..10 in one round-trip
	num, err := svc.GetNextNumber(context.Background(), cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ADJ-%s-00001", year), num)
	assert.EqualValues(t, 10, seq.val)

	// second call is served from memory
	num, err = svc.GetNextNumber(context.Background(), cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ADJ-%s-00002", year), num)
	assert.EqualValues(t, 10, seq.val)

	// exhausting the block triggers the next reservation, 11..20
	for i := 0; i < 8; i++ {
		_, err = svc.GetNextNumber(context.Background(), cfg, opts, time.Now())
		require.NoError(t, err)
	}
	num, err = svc.GetNextNumber(context.Background(), cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("ADJ-%s-00011", year), num)
	assert.EqualValues(t, 20, seq.val)
}

func TestSequenceKey_ResetPeriods(t *testing.T) {
	svc := New(&fakeSequencer{})
	period := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		reset string
		want  string
	}{
		{"year", "SIR_2026"},
		{"month", "SIR_2026_03"},
		{"never", "SIR"},
	}
	for _, tt := range tests {
		cfg := DefaultConfig("SIR")
		cfg.ResetPeriod = tt.reset
		assert.Equal(t, tt.want, svc.sequenceKey(cfg, period), "reset period %q", tt.reset)
	}
}

func TestFormat_NoYear(t *testing.T) {
	svc := New(&fakeSequencer{})
	cfg := Config{Prefix: "LOC", PadWidth: 3}

	assert.Equal(t, "LOC-007", svc.format(cfg, time.Now(), 7))
}
