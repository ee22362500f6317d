package graph

import (
	"encoding/json"
	"strings"
)

// Scores holds the centrality measures of a single node. Every value reads
// as 0 until ComputeCentrality has run.
type Scores struct {
	Degree      float64 `json:"degree"`
	Betweenness float64 `json:"betweenness"`
	Eigenvector float64 `json:"eigenvector"`
}

// Node is an entity in the co-occurrence graph.
//
// EigenvectorFailed is set when the eigenvector computation of the node's
// connected component did not converge; Eigenvector is then 0 but must not
// be read as a low score.
type Node struct {
	Name              string `json:"name"`
	Scores            `json:"scores"`
	EigenvectorFailed bool `json:"eigenvector_failed,omitempty"`
}

// Edge connects two entities that appeared together in at least one event.
// Source < Target lexicographically.
//
// Weight is the number of shared events, Sentiment the mean sentiment of
// those events and Examples up to DefaultExampleLimit event titles in the
// order they were seen.
type Edge struct {
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Weight    int      `json:"weight"`
	Sentiment float64  `json:"sentiment"`
	Examples  []string `json:"-"`
}

// ExamplesText joins the example titles for display.
func (e Edge) ExamplesText() string {
	return strings.Join(e.Examples, ExampleSeparator)
}

func (e Edge) MarshalJSON() ([]byte, error) {
	type edgeJSON struct {
		Source    string  `json:"source"`
		Target    string  `json:"target"`
		Weight    int     `json:"weight"`
		Sentiment float64 `json:"sentiment"`
		Examples  string  `json:"examples"`
	}
	return json.Marshal(edgeJSON{
		Source:    e.Source,
		Target:    e.Target,
		Weight:    e.Weight,
		Sentiment: e.Sentiment,
		Examples:  e.ExamplesText(),
	})
}

// Graph is an undirected, simple, weighted entity co-occurrence graph.
//
// A Graph is built once by Assemble (or BuildGraph) and is not changed
// afterwards: ComputeCentrality and Filter return annotated copies, so
// several views can be derived from one base graph safely. AddNode is the
// only mutating method and is meant for construction.
type Graph struct {
	nodes     map[string]*Node
	nodeOrder []string

	edges     map[pairKey]*Edge
	edgeOrder []pairKey
	incident  map[string][]pairKey

	components []ComponentResult
	computed   bool
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		edges:    make(map[pairKey]*Edge),
		incident: make(map[string][]pairKey),
	}
}

// AddNode adds an isolated entity. It reports false when the trimmed name
// is empty or the entity already exists.
func (g *Graph) AddNode(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if _, ok := g.nodes[name]; ok {
		return false
	}
	g.nodes[name] = &Node{Name: name}
	g.nodeOrder = append(g.nodeOrder, name)
	return true
}

// setEdge inserts or replaces the edge between e.Source and e.Target and
// adds missing endpoints. Self loops are ignored.
func (g *Graph) setEdge(e Edge) {
	if e.Source == e.Target {
		return
	}
	key := newPairKey(e.Source, e.Target)
	e.Source, e.Target = key.a, key.b
	e.Examples = append([]string(nil), e.Examples...)

	g.AddNode(key.a)
	g.AddNode(key.b)

	if existing, ok := g.edges[key]; ok {
		*existing = e
		return
	}
	g.edges[key] = &e
	g.edgeOrder = append(g.edgeOrder, key)
	g.incident[key.a] = append(g.incident[key.a], key)
	g.incident[key.b] = append(g.incident[key.b], key)
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodeOrder) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edgeOrder) }

// Nodes returns a copy of every node in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodeOrder))
	for _, name := range g.nodeOrder {
		out = append(out, *g.nodes[name])
	}
	return out
}

// Edges returns a copy of every edge in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edgeOrder))
	for _, key := range g.edgeOrder {
		e := *g.edges[key]
		e.Examples = append([]string(nil), e.Examples...)
		out = append(out, e)
	}
	return out
}

// Node returns the named node.
func (g *Graph) Node(name string) (Node, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Edge returns the edge between a and b in either order.
func (g *Graph) Edge(a, b string) (Edge, bool) {
	e, ok := g.edges[newPairKey(a, b)]
	if !ok {
		return Edge{}, false
	}
	out := *e
	out.Examples = append([]string(nil), e.Examples...)
	return out, true
}

// Neighbors returns the entities adjacent to name in edge insertion order.
func (g *Graph) Neighbors(name string) []string {
	keys := g.incident[name]
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key.a == name {
			out = append(out, key.b)
		} else {
			out = append(out, key.a)
		}
	}
	return out
}

// Scores returns the centrality scores of name, or zero scores when the node
// does not exist or centrality has not been computed.
func (g *Graph) Scores(name string) Scores {
	if n, ok := g.nodes[name]; ok {
		return n.Scores
	}
	return Scores{}
}

// HasCentrality reports whether the node scores were computed, either on
// this graph or on the graph it was filtered from.
func (g *Graph) HasCentrality() bool { return g.computed }

// Components returns the per-component eigenvector report of the last
// ComputeCentrality run that produced this graph. Filtered views have none.
func (g *Graph) Components() []ComponentResult {
	out := make([]ComponentResult, len(g.components))
	for i, c := range g.components {
		c.Nodes = append([]string(nil), c.Nodes...)
		out[i] = c
	}
	return out
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		nodes:      make(map[string]*Node, len(g.nodes)),
		nodeOrder:  append([]string(nil), g.nodeOrder...),
		edges:      make(map[pairKey]*Edge, len(g.edges)),
		edgeOrder:  append([]pairKey(nil), g.edgeOrder...),
		incident:   make(map[string][]pairKey, len(g.incident)),
		components: g.Components(),
		computed:   g.computed,
	}
	for name, n := range g.nodes {
		cp := *n
		out.nodes[name] = &cp
	}
	for key, e := range g.edges {
		cp := *e
		cp.Examples = append([]string(nil), e.Examples...)
		out.edges[key] = &cp
	}
	for name, keys := range g.incident {
		out.incident[name] = append([]pairKey(nil), keys...)
	}
	return out
}

func (g *Graph) MarshalJSON() ([]byte, error) {
	type graphJSON struct {
		Nodes      []Node            `json:"nodes"`
		Edges      []Edge            `json:"edges"`
		Components []ComponentResult `json:"components,omitempty"`
	}
	return json.Marshal(graphJSON{
		Nodes:      g.Nodes(),
		Edges:      g.Edges(),
		Components: g.Components(),
	})
}
