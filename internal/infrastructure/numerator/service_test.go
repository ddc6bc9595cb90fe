package numerator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "showroom/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates the sys_sequences counter: each call bumps the
// stored value by the increment argument (1 for strict upserts).
type mockQuerier struct {
	mu           sync.Mutex
	currentValue int64
	calls        int
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	var increment int64 = 1
	if len(args) == 2 {
		if val, ok := args[1].(int64); ok {
			increment = val
		}
	}

	m.currentValue += increment
	m.calls++

	return &mockRow{val: m.currentValue}
}

var testPeriod = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("ALT")

	num, err := svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, "ALT-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, "ALT-2026-00002", num)

	// nil opts defaults to strict: one DB round trip per number
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_Cached(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("WL")

	opts := &core.Options{
		Strategy:  core.StrategyCached,
		RangeSize: 10,
	}

	// First call reserves 1..10 in one round trip
	num, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, "WL-2026-00001", num)
	assert.EqualValues(t, 10, q.currentValue)

	// Second call served from memory
	num, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, "WL-2026-00002", num)
	assert.EqualValues(t, 10, q.currentValue)
	assert.Equal(t, 1, q.calls)

	// Exhaust the range; the next call reserves 11..20
	for i := 0; i < 8; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
		require.NoError(t, err)
	}

	num, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, "WL-2026-00011", num)
	assert.EqualValues(t, 20, q.currentValue)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_YearReset(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("ALT")
	opts := &core.Options{Strategy: core.StrategyCached, RangeSize: 10}

	// Different years use different keys, so each starts its own range
	num, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, "ALT-2026-00001", num)

	nextYear := testPeriod.AddDate(1, 0, 0)
	num, err = svc.GetNextNumber(ctx, cfg, opts, nextYear)
	require.NoError(t, err)
	assert.Contains(t, num, "ALT-2027-")
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_NoYear(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	cfg := core.Config{Prefix: "X", IncludeYear: false, PadWidth: 3, ResetPeriod: "never"}

	num, err := svc.GetNextNumber(context.Background(), cfg, nil, testPeriod)
	require.NoError(t, err)
	assert.Equal(t, "X-001", num)
}

func TestSetNextNumber_InvalidatesCache(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()
	cfg := core.DefaultConfig("WL")
	opts := &core.Options{Strategy: core.StrategyCached, RangeSize: 10}

	_, err := svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	require.NoError(t, err)
	callsBefore := q.calls

	require.NoError(t, svc.SetNextNumber(ctx, cfg, testPeriod, 100))

	// Cached range was dropped, so the next number hits the DB again
	_, err = svc.GetNextNumber(ctx, cfg, opts, testPeriod)
	require.NoError(t, err)
	assert.Greater(t, q.calls, callsBefore+1)
}

func TestParseNumber(t *testing.T) {
	assert.EqualValues(t, 42, ParseNumber("ALT-2026-00042"))
	assert.EqualValues(t, 7, ParseNumber("X-007"))
	assert.EqualValues(t, -1, ParseNumber("garbage"))
}
