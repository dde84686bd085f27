package metric

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTAMetrics(t *testing.T) {
	m := New()
	m.RegisterAllMetrics()

	m.ObserveNormalize("builds")
	m.ObserveNormalize("builds")
	m.ObserveNormalize("unknown")
	m.ObserveFetch(time.Now(), nil)
	m.ObserveFetch(time.Now(), errors.New("boom"))
	m.ObserveSnapshot(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.normalizeTotal.WithLabelValues("builds")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.normalizeTotal.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchTotal.WithLabelValues(ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshotTotal.WithLabelValues(ResultSuccess)))

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["kota_normalize_total"])
	assert.True(t, names["kota_fetch_duration_seconds"])
}
