package graph

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conflictCoopTaxonomy() common.Taxonomy {
	return common.Taxonomy{Categories: []common.TaxonomyCategory{{
		Name: "Tone",
		Labels: []common.TaxonomyLabel{
			{Name: "conflict", Sentiment: sentiment(-5)},
			{Name: "coop", Sentiment: sentiment(5)},
		},
	}}}
}

func TestBuildScenarioMixedSentiment(t *testing.T) {
	events := []common.Event{
		common.NewEvent("E1", []string{"A", "B", "C"}, []string{"conflict"}),
		common.NewEvent("E2", []string{"A", "B"}, []string{"coop"}),
	}
	g := Assemble(Aggregate(events, NewSentimentLookup(conflictCoopTaxonomy()), 0))

	require.Equal(t, 3, g.NodeCount())
	require.Equal(t, 3, g.EdgeCount())

	ab, _ := g.Edge("A", "B")
	assert.Equal(t, 2, ab.Weight)
	assert.InDelta(t, 0, ab.Sentiment, 1e-12)
	assert.Equal(t, "E1 | E2", ab.ExamplesText())

	for _, pair := range [][2]string{{"A", "C"}, {"B", "C"}} {
		e, ok := g.Edge(pair[0], pair[1])
		require.True(t, ok)
		assert.Equal(t, 1, e.Weight)
		assert.Equal(t, -5.0, e.Sentiment)
	}

	out, err := ComputeCentrality(g, DefaultCentralityOptions())
	require.NoError(t, err)
	assert.Equal(t, 3.0, out.Scores("A").Degree)
	assert.Equal(t, 3.0, out.Scores("B").Degree)
	assert.Equal(t, 2.0, out.Scores("C").Degree)
}

func TestBuildScenarioSingleEntity(t *testing.T) {
	g := Assemble(Aggregate([]common.Event{common.NewEvent("Solo", []string{"A"}, []string{"coop"})}, nil, 0))
	assert.Zero(t, g.NodeCount())
	assert.Zero(t, g.EdgeCount())
}

// randomEvents draws events over a small entity pool so that pairs repeat.
func randomEvents(r *rand.Rand, n int) []common.Event {
	labels := []string{"conflict", "coop", "unknown"}
	events := make([]common.Event, 0, n)
	for i := 0; i < n; i++ {
		k := r.Intn(5)
		names := make([]string, k)
		for j := range names {
			names[j] = fmt.Sprintf("N%d", r.Intn(12))
		}
		events = append(events, common.NewEvent(fmt.Sprintf("E%d", i), names, []string{labels[r.Intn(len(labels))]}))
	}
	return events
}

func TestPairIncrementsPerEvent(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	events := randomEvents(r, 200)

	want := 0
	for _, ev := range events {
		k := len(ev.Entities)
		want += k * (k - 1) / 2
	}

	got := 0
	for _, s := range Aggregate(events, NewSentimentLookup(conflictCoopTaxonomy()), 0).Stats() {
		assert.Equal(t, s.Count, len(s.Sentiments))
		assert.Less(t, s.Source, s.Target)
		got += s.Count
	}
	assert.Equal(t, want, got)
}

func TestFilterMonotonicity(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	g := Assemble(Aggregate(randomEvents(r, 300), NewSentimentLookup(conflictCoopTaxonomy()), 0))

	prev := g.EdgeCount() + 1
	for w := 1; w <= 6; w++ {
		n := Filter(g, FilterParams{MinWeight: w, SentimentLow: -10, SentimentHigh: 10}).EdgeCount()
		assert.LessOrEqual(t, n, prev, "min weight %d", w)
		prev = n
	}

	prev = g.EdgeCount() + 1
	for _, bound := range []float64{10, 5, 2.5, 1, 0} {
		n := Filter(g, FilterParams{MinWeight: 1, SentimentLow: -bound, SentimentHigh: bound}).EdgeCount()
		assert.LessOrEqual(t, n, prev, "bound %v", bound)
		prev = n
	}
}

func TestFilterRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	g := Assemble(Aggregate(randomEvents(r, 150), NewSentimentLookup(conflictCoopTaxonomy()), 0))

	out := Filter(g, DefaultFilterParams())
	assert.Equal(t, g.Edges(), out.Edges())
	assert.Equal(t, g.NodeCount(), out.NodeCount())
}

func TestComponentSizeRule(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	g := Assemble(Aggregate(randomEvents(r, 20), nil, 0))
	g.AddNode("Isolated")

	out, err := ComputeCentrality(g, DefaultCentralityOptions())
	require.NoError(t, err)

	for _, c := range out.Components() {
		if c.Size() > 2 {
			continue
		}
		for _, name := range c.Nodes {
			assert.Equal(t, 1.0, out.Scores(name).Eigenvector, name)
		}
	}
}
