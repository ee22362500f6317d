package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"
)

func TestNewGraphClientFromEnv(t *testing.T) {
	t.Setenv("GRAPH_BETWEENNESS_COST", "inverse")
	t.Setenv("GRAPH_EIGEN_MAX_ITER", "50")
	t.Setenv("GRAPH_EIGEN_TOLERANCE", "1e-9")

	client, err := NewGraphClientFromEnv()
	require.NoError(t, err)

	opts := client.CentralityOptions()
	assert.Equal(t, graph.CostInverseWeight, opts.CostMode)
	assert.Equal(t, 50, opts.EigenMaxIter)
	assert.Equal(t, 1e-9, opts.EigenTolerance)
}

func TestNewGraphClientFromEnvDefaults(t *testing.T) {
	t.Setenv("GRAPH_BETWEENNESS_COST", "")

	client, err := NewGraphClientFromEnv()
	require.NoError(t, err)
	assert.Equal(t, graph.CostWeight, client.CentralityOptions().CostMode)
}

func TestNewGraphClientFromEnvRejectsUnknownCost(t *testing.T) {
	t.Setenv("GRAPH_BETWEENNESS_COST", "shortest")

	_, err := NewGraphClientFromEnv()
	assert.Error(t, err)
}
