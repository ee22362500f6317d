package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistration(t *testing.T) {
	metrics := []prometheus.Collector{
		GraphBuildsTotal,
		GraphBuildDuration,
		GraphNodes,
		GraphEdges,
		EigenvectorComponents,
		StoredSnapshots,
		QueueMessagesTotal,
	}

	for _, metric := range metrics {
		desc := make(chan *prometheus.Desc, 8)
		metric.Describe(desc)
		close(desc)

		require.NotNil(t, <-desc, "metric should have a valid descriptor")
	}
}

func TestCounterMetrics(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
	}{
		{name: "ok build", labels: []string{"http", "ok"}},
		{name: "partial build", labels: []string{"queue", "partial"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := GraphBuildsTotal.WithLabelValues(tt.labels...)
			before := testutil.ToFloat64(counter)
			counter.Inc()
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}
