package graph

import (
	"fmt"
	"testing"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateCountsEachEventOncePerPair(t *testing.T) {
	lookup := NewSentimentLookup(testTaxonomy())
	events := []common.Event{
		common.NewEvent("Summit", []string{"A", "B", "C"}, []string{"Agreement", "Meeting", "Meeting"}),
		common.NewEvent("Border incident", []string{"B", "A"}, []string{"Clash"}),
	}

	co := Aggregate(events, lookup, 0)
	require.Equal(t, 3, co.Len())

	ab, ok := co.Stat("B", "A")
	require.True(t, ok)
	assert.Equal(t, "A", ab.Source)
	assert.Equal(t, "B", ab.Target)
	assert.Equal(t, 2, ab.Count)
	assert.Len(t, ab.Sentiments, ab.Count)
	assert.InDelta(t, 10.0/3, ab.Sentiments[0], 1e-12)
	assert.Equal(t, -5.0, ab.Sentiments[1])
	assert.Equal(t, []string{"Summit", "Border incident"}, ab.Examples)

	ac, ok := co.Stat("A", "C")
	require.True(t, ok)
	assert.Equal(t, 1, ac.Count)
}

func TestAggregateSkipsEventsWithoutPairs(t *testing.T) {
	events := []common.Event{
		common.NewEvent("Alone", []string{"A"}, []string{"Clash"}),
		common.NewEvent("Same twice", []string{"A", " A "}, []string{"Clash"}),
		common.NewEvent("Nobody", nil, nil),
	}

	co := Aggregate(events, NewSentimentLookup(testTaxonomy()), 0)
	assert.Equal(t, 0, co.Len())
	assert.Empty(t, co.Stats())
}

func TestAggregateUnresolvedSentimentIsZeroSample(t *testing.T) {
	lookup := NewSentimentLookup(testTaxonomy())
	events := []common.Event{
		common.NewEvent("Talks", []string{"A", "B"}, []string{"Agreement"}),
		common.NewEvent("Unclassified", []string{"A", "B"}, []string{"Statement"}),
	}

	ab, ok := Aggregate(events, lookup, 0).Stat("A", "B")
	require.True(t, ok)
	assert.Equal(t, []float64{6, 0}, ab.Sentiments)
	assert.Equal(t, 3.0, ab.MeanSentiment())
}

func TestAggregateExampleLimit(t *testing.T) {
	var events []common.Event
	for i := 0; i < 5; i++ {
		events = append(events, common.NewEvent(fmt.Sprintf("Event %d", i), []string{"A", "B"}, nil))
	}
	events = append(events, common.NewEvent("  ", []string{"C", "D"}, nil))

	co := Aggregate(events, SentimentLookup{}, 0)
	ab, _ := co.Stat("A", "B")
	assert.Equal(t, 5, ab.Count)
	assert.Equal(t, []string{"Event 0", "Event 1", "Event 2"}, ab.Examples)

	cd, _ := co.Stat("C", "D")
	assert.Empty(t, cd.Examples)

	co = Aggregate(events, SentimentLookup{}, 1)
	ab, _ = co.Stat("A", "B")
	assert.Equal(t, []string{"Event 0"}, ab.Examples)
}

func TestAggregateWarnsOnDenseEvents(t *testing.T) {
	rec := memory.NewMemoryLogger()
	logger.Init(rec)
	t.Cleanup(func() { logger.Init() })

	names := make([]string, denseEventEntities+1)
	for i := range names {
		names[i] = fmt.Sprintf("E%02d", i)
	}
	co := Aggregate([]common.Event{common.NewEvent("Crowd", names, nil)}, nil, 0)

	n := len(names)
	assert.Equal(t, n*(n-1)/2, co.Len())

	warnings := rec.Find("warn", "Dense event")
	require.Len(t, warnings, 1)
	entities, _ := warnings[0].Value("entities")
	assert.Equal(t, n, entities)
}

func TestStatsAreCopies(t *testing.T) {
	co := Aggregate([]common.Event{common.NewEvent("x", []string{"A", "B"}, nil)}, nil, 0)
	stats := co.Stats()
	stats[0].Examples[0] = "changed"

	ab, _ := co.Stat("A", "B")
	assert.Equal(t, "x", ab.Examples[0])
}
