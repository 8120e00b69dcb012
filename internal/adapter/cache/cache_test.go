package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunwolf-labs/supt-monitor/internal/adapter/ingv"
	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

type countingCatalog struct {
	calls int
	table domain.Table
	err   error
}

func (c *countingCatalog) FetchCatalog(_ context.Context, _ ingv.Query) (domain.Table, error) {
	c.calls++
	return c.table, c.err
}

type countingKp struct {
	calls int
	kp    float64
	err   error
}

func (c *countingKp) FetchKp(_ context.Context) (float64, error) {
	c.calls++
	return c.kp, c.err
}

func testQuery(end time.Time) ingv.Query {
	return ingv.Query{
		MinLat: 40.79, MaxLat: 40.84,
		MinLon: 14.10, MaxLon: 14.15,
		Start: end.Add(-168 * time.Hour),
		End:   end,
	}
}

func TestCatalogCache_HitInsideTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	inner := &countingCatalog{table: domain.Table{Columns: []string{"time"}, Rows: [][]string{{"x"}}}}
	c := NewCatalogCache(inner, 10*time.Minute, clock)
	q := testQuery(clock.Now())

	first, err := c.FetchCatalog(context.Background(), q)
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	second, err := c.FetchCatalog(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first, second)
}

func TestCatalogCache_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	inner := &countingCatalog{table: domain.Table{Columns: []string{"time"}}}
	c := NewCatalogCache(inner, 10*time.Minute, clock)
	q := testQuery(clock.Now())

	_, err := c.FetchCatalog(context.Background(), q)
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	_, err = c.FetchCatalog(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCatalogCache_DistinctQueriesDistinctEntries(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	inner := &countingCatalog{table: domain.Table{Columns: []string{"time"}}}
	c := NewCatalogCache(inner, 10*time.Minute, clock)

	_, err := c.FetchCatalog(context.Background(), testQuery(clock.Now()))
	require.NoError(t, err)
	_, err = c.FetchCatalog(context.Background(), testQuery(clock.Now().Add(time.Hour)))
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCatalogCache_FailuresNotCached(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	inner := &countingCatalog{err: &domain.TransportError{Source: "ingv", Err: errors.New("boom")}}
	c := NewCatalogCache(inner, 10*time.Minute, clock)
	q := testQuery(clock.Now())

	_, err := c.FetchCatalog(context.Background(), q)
	require.Error(t, err)

	// The source recovers; the next fetch must reach it.
	inner.err = nil
	inner.table = domain.Table{Columns: []string{"time"}}
	_, err = c.FetchCatalog(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCatalogCache_Invalidate(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	inner := &countingCatalog{table: domain.Table{Columns: []string{"time"}}}
	c := NewCatalogCache(inner, 10*time.Minute, clock)
	q := testQuery(clock.Now())

	_, _ = c.FetchCatalog(context.Background(), q)
	c.Invalidate()
	_, _ = c.FetchCatalog(context.Background(), q)

	assert.Equal(t, 2, inner.calls)
}

func TestCatalogCache_HitMissCounters(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	inner := &countingCatalog{table: domain.Table{Columns: []string{"time"}}}
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_hits"})
	misses := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_misses"})
	c := NewCatalogCache(inner, 10*time.Minute, clock).Instrument(hits, misses)
	q := testQuery(clock.Now())

	_, _ = c.FetchCatalog(context.Background(), q)
	_, _ = c.FetchCatalog(context.Background(), q)
	clock.Advance(11 * time.Minute)
	_, _ = c.FetchCatalog(context.Background(), q)

	assert.Equal(t, 1.0, testutil.ToFloat64(hits))
	assert.Equal(t, 2.0, testutil.ToFloat64(misses))
}

func TestKpCache_HitAndExpiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	inner := &countingKp{kp: 4.67}
	c := NewKpCache(inner, 10*time.Second, clock)

	kp, err := c.FetchKp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4.67, kp)

	clock.Advance(9 * time.Second)
	_, err = c.FetchKp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	clock.Advance(time.Second)
	_, err = c.FetchKp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestKpCache_FailuresNotCached(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	inner := &countingKp{err: &domain.TransportError{Source: "noaa", Err: errors.New("boom")}}
	c := NewKpCache(inner, 10*time.Second, clock)

	_, err := c.FetchKp(context.Background())
	require.Error(t, err)

	inner.err = nil
	inner.kp = 2.33
	kp, err := c.FetchKp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.33, kp)
	assert.Equal(t, 2, inner.calls)
}

func TestKpCache_Invalidate(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 9, 0, 0, 0, time.UTC))
	inner := &countingKp{kp: 3}
	c := NewKpCache(inner, 10*time.Second, clock)

	_, _ = c.FetchKp(context.Background())
	c.Invalidate()
	_, _ = c.FetchKp(context.Background())

	assert.Equal(t, 2, inner.calls)
}
