package graph

// Assemble materialises aggregated pair statistics into a Graph: one edge
// per pair with weight = count, sentiment = mean of the samples and the
// stored example titles. Only entities that are part of an edge become
// nodes.
func Assemble(c *Cooccurrence) *Graph {
	g := NewGraph()
	if c == nil {
		return g
	}
	for _, key := range c.order {
		stat := c.stats[key]
		g.setEdge(Edge{
			Source:    stat.Source,
			Target:    stat.Target,
			Weight:    stat.Count,
			Sentiment: stat.MeanSentiment(),
			Examples:  stat.Examples,
		})
	}
	return g
}
