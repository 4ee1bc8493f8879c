package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tiered-cache/cache"
	"github.com/goliatone/go-tiered-cache/tiered"
)

func TestPrometheus_Events(t *testing.T) {
	p, err := NewPrometheus("test", nil)
	require.NoError(t, err)

	p.LocalHit("emp")
	p.LocalHit("emp")
	p.SharedHit("dept")
	p.Miss("emp")
	p.ComputeError("emp")
	p.Invalidated("emp", 4)
	p.Merged(3, 1)
	p.SessionOpened()
	p.SessionOpened()
	p.SessionEnded(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.lookups.WithLabelValues("emp", "local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.lookups.WithLabelValues("dept", "shared")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.lookups.WithLabelValues("emp", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.computeErrors.WithLabelValues("emp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.invalidations.WithLabelValues("emp")))
	assert.Equal(t, 4.0, testutil.ToFloat64(p.evicted.WithLabelValues("emp")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.merged.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.merged.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.openSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.sessions.WithLabelValues("true")))
}

func TestNewPrometheus_Registers(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus("app", reg)
	require.NoError(t, err)

	p.SessionOpened()
	expected := `
# HELP app_cache_open_sessions Sessions currently open.
# TYPE app_cache_open_sessions gauge
app_cache_open_sessions 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "app_cache_open_sessions"))

	_, err = NewPrometheus("app", reg)
	assert.Error(t, err, "duplicate registration must fail")
}

func TestPrometheus_WithCache(t *testing.T) {
	p, err := NewPrometheus("tiered", nil)
	require.NoError(t, err)

	c, err := tiered.New(cache.DefaultConfig(), tiered.WithMetrics(p))
	require.NoError(t, err)

	ctx := context.Background()
	key := cache.NewKey("emp", "getEmpById", 1)
	compute := func(context.Context) (string, error) { return "Tom", nil }

	s1 := c.OpenSession()
	_, err = tiered.Lookup(ctx, s1, key, compute)
	require.NoError(t, err)
	_, err = tiered.Lookup(ctx, s1, key, compute)
	require.NoError(t, err)
	require.NoError(t, s1.End(true))

	s2 := c.OpenSession()
	_, err = tiered.Lookup(ctx, s2, key, compute)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.lookups.WithLabelValues("emp", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.lookups.WithLabelValues("emp", "local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.lookups.WithLabelValues("emp", "shared")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.merged.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.openSessions))
}
