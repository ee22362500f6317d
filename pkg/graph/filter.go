package graph

// FilterParams selects the edges kept by Filter. Both sentiment bounds are
// inclusive.
type FilterParams struct {
	MinWeight     int     `json:"min_weight" query:"min_weight"`
	SentimentLow  float64 `json:"sentiment_low" query:"sentiment_low"`
	SentimentHigh float64 `json:"sentiment_high" query:"sentiment_high"`
}

// DefaultFilterParams keeps every edge of an assembled graph.
func DefaultFilterParams() FilterParams {
	return FilterParams{MinWeight: 1, SentimentLow: -10, SentimentHigh: 10}
}

// Match reports whether e passes the filter.
func (p FilterParams) Match(e Edge) bool {
	return e.Weight >= p.MinWeight &&
		e.Sentiment >= p.SentimentLow &&
		e.Sentiment <= p.SentimentHigh
}

// Filter returns a new graph holding the edges of g that pass p together with
// their endpoints. Nodes without a qualifying edge are dropped. Node scores
// are copied unchanged and never recomputed; an inverted sentiment range
// yields an empty graph.
func Filter(g *Graph, p FilterParams) *Graph {
	out := NewGraph()
	if g == nil {
		return out
	}
	out.computed = g.computed

	for _, key := range g.edgeOrder {
		e := g.edges[key]
		if !p.Match(*e) {
			continue
		}
		out.setEdge(*e)
	}
	for name, n := range out.nodes {
		*n = *g.nodes[name]
	}
	return out
}
