package pipeline

import (
	"github.com/OFFIS-RIT/eventgraph/backend/internal/util"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
)

// NewGraphClientFromEnv configures the graph client from GRAPH_* variables.
func NewGraphClientFromEnv() (*graph.GraphClient, error) {
	return graph.NewGraphClient(graph.NewGraphClientParams{
		ExampleLimit:    util.GetEnvInt("GRAPH_EXAMPLE_LIMIT", graph.DefaultExampleLimit),
		BetweennessCost: graph.CostMode(util.GetEnvString("GRAPH_BETWEENNESS_COST", string(graph.CostWeight))),
		EigenMaxIter:    util.GetEnvInt("GRAPH_EIGEN_MAX_ITER", graph.DefaultEigenMaxIter),
		EigenTolerance:  util.GetEnvNumeric("GRAPH_EIGEN_TOLERANCE", graph.DefaultEigenTolerance),
	})
}
