package graph

import (
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"
)

// GraphClient is the main entry point for building entity co-occurrence
// graphs from classified events and scoring them.
//
// A GraphClient should be created using NewGraphClient. It holds no mutable
// state and can be shared between goroutines.
type GraphClient struct {
	exampleLimit int
	centrality   CentralityOptions
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// ExampleLimit caps the event titles stored per edge (default 3).
// BetweennessCost selects how edge weights become path costs.
// EigenMaxIter and EigenTolerance configure the power iteration fallback.
type NewGraphClientParams struct {
	ExampleLimit    int
	BetweennessCost CostMode
	EigenMaxIter    int
	EigenTolerance  float64
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		BetweennessCost: graph.CostInverseWeight,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	g := client.BuildGraph(events, taxonomy)
//	scored, err := client.ComputeCentrality(g)
//
// Returns a pointer to GraphClient and an error if the cost mode is unknown.
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	mode, err := ParseCostMode(string(params.BetweennessCost))
	if err != nil {
		return nil, err
	}

	exampleLimit := params.ExampleLimit
	if exampleLimit <= 0 {
		exampleLimit = DefaultExampleLimit
	}

	g := &GraphClient{
		exampleLimit: exampleLimit,
		centrality: CentralityOptions{
			CostMode:       mode,
			EigenMaxIter:   params.EigenMaxIter,
			EigenTolerance: params.EigenTolerance,
		}.withDefaults(),
	}

	return g, nil
}

// CentralityOptions returns the options the client passes to
// ComputeCentrality.
func (c *GraphClient) CentralityOptions() CentralityOptions {
	return c.centrality
}

// BuildGraph resolves event sentiments against the taxonomy, aggregates
// entity pairs and assembles the co-occurrence graph. Events with fewer than
// two distinct entities contribute nothing; empty input yields an empty
// graph.
func (c *GraphClient) BuildGraph(events []common.Event, taxonomy common.Taxonomy) *Graph {
	lookup := NewSentimentLookup(taxonomy)
	co := Aggregate(events, lookup, c.exampleLimit)
	g := Assemble(co)

	logger.Info(
		"[Graph] Built co-occurrence graph",
		"events", len(events),
		"labels", len(lookup),
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
	)

	return g
}

// ComputeCentrality scores a copy of g with the client's options. See
// ComputeCentrality for the error contract.
func (c *GraphClient) ComputeCentrality(g *Graph) (*Graph, error) {
	out, err := ComputeCentrality(g, c.centrality)
	if err != nil {
		logger.Warn("[Graph] Centrality computed with failed components", "err", err)
	} else {
		logger.Debug(
			"[Graph] Centrality computed",
			"nodes", out.NodeCount(),
			"components", len(out.components),
		)
	}
	return out, err
}

// FilterGraph returns the view of g restricted to edges with
// weight >= minWeight and sentiment within [low, high].
func (c *GraphClient) FilterGraph(g *Graph, minWeight int, low, high float64) *Graph {
	return Filter(g, FilterParams{
		MinWeight:     minWeight,
		SentimentLow:  low,
		SentimentHigh: high,
	})
}
