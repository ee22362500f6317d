package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrEigenNotConverged is wrapped by every component-scoped eigenvector
// failure. Use errors.Is to detect it and errors.As with *ComponentError to
// find the affected nodes.
var ErrEigenNotConverged = errors.New("eigenvector centrality did not converge")

const (
	DefaultEigenMaxIter   = 1000
	DefaultEigenTolerance = 1e-6
)

// CostMode selects how a co-occurrence weight becomes a shortest-path cost
// in betweenness centrality.
type CostMode string

const (
	// CostWeight uses the weight itself as the cost: frequently co-occurring
	// pairs are more expensive to traverse.
	CostWeight CostMode = "weight"
	// CostInverseWeight uses 1/weight: frequently co-occurring pairs are
	// closer.
	CostInverseWeight CostMode = "inverse"
)

// ParseCostMode parses a cost mode name. The empty string selects
// CostWeight.
func ParseCostMode(s string) (CostMode, error) {
	switch mode := CostMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "", CostWeight:
		return CostWeight, nil
	case CostInverseWeight:
		return CostInverseWeight, nil
	default:
		return "", fmt.Errorf("unknown betweenness cost mode %q", s)
	}
}

func (m CostMode) cost(weight int) float64 {
	if m == CostInverseWeight {
		return 1 / float64(weight)
	}
	return float64(weight)
}

// CentralityOptions configures ComputeCentrality. Zero values select the
// defaults.
type CentralityOptions struct {
	CostMode       CostMode
	EigenMaxIter   int
	EigenTolerance float64
}

// DefaultCentralityOptions returns the options used when none are given.
func DefaultCentralityOptions() CentralityOptions {
	return CentralityOptions{
		CostMode:       CostWeight,
		EigenMaxIter:   DefaultEigenMaxIter,
		EigenTolerance: DefaultEigenTolerance,
	}
}

func (o CentralityOptions) withDefaults() CentralityOptions {
	if o.CostMode == "" {
		o.CostMode = CostWeight
	}
	if o.EigenMaxIter <= 0 {
		o.EigenMaxIter = DefaultEigenMaxIter
	}
	if o.EigenTolerance <= 0 {
		o.EigenTolerance = DefaultEigenTolerance
	}
	return o
}

// ComponentMethod records how the eigenvector scores of a connected
// component were obtained.
type ComponentMethod string

const (
	MethodTrivial        ComponentMethod = "trivial"
	MethodExact          ComponentMethod = "exact"
	MethodPowerIteration ComponentMethod = "power_iteration"
	MethodFailed         ComponentMethod = "failed"
)

// ComponentResult is the eigenvector outcome of one connected component.
// Err is non-nil only when Method is MethodFailed.
type ComponentResult struct {
	Nodes      []string
	Method     ComponentMethod
	Iterations int
	Err        error
}

// Size returns the number of nodes in the component.
func (c ComponentResult) Size() int { return len(c.Nodes) }

func (c ComponentResult) MarshalJSON() ([]byte, error) {
	type componentJSON struct {
		Nodes      []string        `json:"nodes"`
		Size       int             `json:"size"`
		Method     ComponentMethod `json:"method"`
		Iterations int             `json:"iterations,omitempty"`
		Error      string          `json:"error,omitempty"`
	}
	out := componentJSON{
		Nodes:      c.Nodes,
		Size:       c.Size(),
		Method:     c.Method,
		Iterations: c.Iterations,
	}
	if c.Err != nil {
		out.Error = c.Err.Error()
	}
	return json.Marshal(out)
}

// ComponentError reports that the eigenvector scores of one connected
// component could not be computed.
type ComponentError struct {
	Nodes []string
	Err   error
}

func (e *ComponentError) Error() string {
	preview := e.Nodes
	if len(preview) > 3 {
		preview = preview[:3]
	}
	suffix := ""
	if len(e.Nodes) > len(preview) {
		suffix = ", ..."
	}
	return fmt.Sprintf(
		"component of %d nodes [%s%s]: %v",
		len(e.Nodes), strings.Join(preview, ", "), suffix, e.Err,
	)
}

func (e *ComponentError) Unwrap() error { return e.Err }

// ComputeCentrality returns a copy of g annotated with weighted degree,
// weighted betweenness and per-component eigenvector centrality. g itself is
// not modified, and prior scores on g are ignored, so repeated calls on the
// same graph give the same scores.
//
// The returned graph is always complete for degree and betweenness. The
// error is non-nil only when the eigenvector computation failed for one or
// more components; it then joins one *ComponentError per failed component
// and the nodes of those components carry EigenvectorFailed.
func ComputeCentrality(g *Graph, opts CentralityOptions) (*Graph, error) {
	opts = opts.withDefaults()

	out := g.Clone()
	ig := newIndexedGraph(out)

	degree := weightedDegree(ig)
	betweenness := weightedBetweenness(ig, opts.CostMode)
	eigenvector, components, err := componentEigenvectors(ig, opts)

	for i, name := range ig.names {
		n := out.nodes[name]
		n.Degree = degree[i]
		n.Betweenness = betweenness[i]
		n.Eigenvector = eigenvector[i]
		n.EigenvectorFailed = false
	}
	for _, c := range components {
		if c.Method != MethodFailed {
			continue
		}
		for _, name := range c.Nodes {
			out.nodes[name].EigenvectorFailed = true
		}
	}

	out.components = components
	out.computed = true

	return out, err
}

type neighbor struct {
	to     int
	weight int
}

// indexedGraph is a dense integer view of a Graph used by the centrality
// algorithms. Node i is names[i]; order follows node insertion order so that
// every computation visits nodes deterministically.
type indexedGraph struct {
	names []string
	index map[string]int
	adj   [][]neighbor
}

func newIndexedGraph(g *Graph) *indexedGraph {
	ig := &indexedGraph{
		names: append([]string(nil), g.nodeOrder...),
		index: make(map[string]int, len(g.nodeOrder)),
		adj:   make([][]neighbor, len(g.nodeOrder)),
	}
	for i, name := range ig.names {
		ig.index[name] = i
	}
	for i, name := range ig.names {
		for _, key := range g.incident[name] {
			other := key.a
			if other == name {
				other = key.b
			}
			ig.adj[i] = append(ig.adj[i], neighbor{
				to:     ig.index[other],
				weight: g.edges[key].Weight,
			})
		}
	}
	return ig
}

func weightedDegree(ig *indexedGraph) []float64 {
	degree := make([]float64, len(ig.names))
	for i, nbs := range ig.adj {
		for _, nb := range nbs {
			degree[i] += float64(nb.weight)
		}
	}
	return degree
}
