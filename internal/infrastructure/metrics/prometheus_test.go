package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsManagerRegistersRuntimeCollectors(t *testing.T) {
	m := NewMetricsManager("campusfinder_test")

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["go_goroutines"])
}

func TestMetricsManagerCounters(t *testing.T) {
	m := NewMetricsManager("campusfinder_test")

	m.ReportCreated("lost")
	m.ReportCreated("lost")
	m.ImageUploaded(true)
	m.ImageUploaded(false)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ReportsCreatedTotal.WithLabelValues("lost")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ImageUploadsTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ImageUploadsTotal.WithLabelValues("error")))
}
