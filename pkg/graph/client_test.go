package graph_test

import (
	"testing"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func TestGraphClientEndToEnd(t *testing.T) {
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{})
	require.NoError(t, err)
	assert.Equal(t, graph.DefaultCentralityOptions(), client.CentralityOptions())

	taxonomy := common.Taxonomy{Categories: []common.TaxonomyCategory{{
		Name: "Relations",
		Labels: []common.TaxonomyLabel{
			{Name: "Cooperation", Sentiment: float(5)},
			{Name: "Conflict", Sentiment: float(-7)},
		},
	}}}
	events := []common.Event{
		common.NewEvent("Trade deal", []string{"France", "Germany"}, []string{"Cooperation"}),
		common.NewEvent("Joint exercise", []string{"France", "Germany", "Italy"}, []string{"Cooperation"}),
		common.NewEvent("Border dispute", []string{"Italy", "Austria"}, []string{"Conflict"}),
		common.NewEvent("Solo", []string{"Spain"}, []string{"Conflict"}),
	}

	g := client.BuildGraph(events, taxonomy)
	assert.Equal(t, 4, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())
	_, ok := g.Node("Spain")
	assert.False(t, ok)

	fg, _ := g.Edge("Germany", "France")
	assert.Equal(t, 2, fg.Weight)
	assert.Equal(t, 5.0, fg.Sentiment)
	assert.Equal(t, "Trade deal | Joint exercise", fg.ExamplesText())

	scored, err := client.ComputeCentrality(g)
	require.NoError(t, err)
	assert.False(t, g.HasCentrality())

	// Italy bridges Austria to the rest
	assert.Greater(t, scored.Scores("Italy").Betweenness, 0.0)
	assert.InDelta(t, 1, sumSquares(scored), 1e-9)

	positive := client.FilterGraph(scored, 1, 0, 10)
	assert.Equal(t, 3, positive.NodeCount())
	_, ok = positive.Node("Austria")
	assert.False(t, ok)
	assert.Equal(t, scored.Scores("Italy"), positive.Scores("Italy"))
}

func sumSquares(g *graph.Graph) float64 {
	sum := 0.0
	for _, n := range g.Nodes() {
		sum += n.Eigenvector * n.Eigenvector
	}
	return sum
}

func TestGraphClientEmptyInput(t *testing.T) {
	client, err := graph.NewGraphClient(graph.NewGraphClientParams{})
	require.NoError(t, err)

	g := client.BuildGraph(nil, common.Taxonomy{})
	assert.Zero(t, g.NodeCount())

	scored, err := client.ComputeCentrality(g)
	require.NoError(t, err)
	assert.Zero(t, scored.NodeCount())
}

func TestNewGraphClientRejectsUnknownCost(t *testing.T) {
	_, err := graph.NewGraphClient(graph.NewGraphClientParams{BetweennessCost: "hops"})
	assert.Error(t, err)
}
