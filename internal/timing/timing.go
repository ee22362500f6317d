package timing

import (
	"time"

	"github.com/OFFIS-RIT/eventgraph/backend/internal/metrics"
)

// Pipeline stages reported to the stage duration histogram.
const (
	StageLoad       = "load"
	StageBuild      = "build"
	StageCentrality = "centrality"
	StageExport     = "export"
)

// Track starts timing a pipeline stage. The returned function records the
// elapsed time under stage and returns it.
//
//	done := timing.Track(timing.StageBuild)
//	g := client.BuildGraph(events, taxonomy)
//	elapsed := done()
func Track(stage string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		elapsed := time.Since(start)
		metrics.GraphBuildDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
		return elapsed
	}
}
