package graph

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/OFFIS-RIT/eventgraph/backend/pkg/logger"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/mat"
)

// entries of a principal eigenvector below -signTolerance mean the solver
// returned a vector of mixed sign.
const signTolerance = 1e-9

// exactEigenvector is swapped in tests to exercise the fallback path.
var exactEigenvector = principalEigenvector

// connectedComponents returns the connected components of ig as sorted node
// indices, ordered by their smallest index.
func connectedComponents(ig *indexedGraph) [][]int {
	ug := simple.NewUndirectedGraph()
	for i := range ig.names {
		ug.AddNode(simple.Node(i))
	}
	for i, nbs := range ig.adj {
		for _, nb := range nbs {
			if nb.to > i {
				ug.SetEdge(ug.NewEdge(simple.Node(i), simple.Node(nb.to)))
			}
		}
	}

	var comps [][]int
	for _, c := range topo.ConnectedComponents(ug) {
		ids := make([]int, len(c))
		for k, n := range c {
			ids[k] = int(n.ID())
		}
		slices.Sort(ids)
		comps = append(comps, ids)
	}
	slices.SortFunc(comps, func(a, b []int) int { return a[0] - b[0] })
	return comps
}

// componentEigenvectors computes eigenvector centrality separately for every
// connected component. Components of one or two nodes score 1.0. Larger
// components use an exact symmetric eigen-decomposition and fall back to
// power iteration; if both fail the component is reported as failed and
// its scores stay 0.
func componentEigenvectors(ig *indexedGraph, opts CentralityOptions) ([]float64, []ComponentResult, error) {
	scores := make([]float64, len(ig.names))
	var results []ComponentResult
	var errs []error

	for _, comp := range connectedComponents(ig) {
		names := make([]string, len(comp))
		for k, i := range comp {
			names[k] = ig.names[i]
		}
		result := ComponentResult{Nodes: names}

		if len(comp) <= 2 {
			for _, i := range comp {
				scores[i] = 1
			}
			result.Method = MethodTrivial
			results = append(results, result)
			continue
		}

		a := adjacencyMatrix(ig, comp)
		vec, exactErr := exactEigenvector(a)
		if exactErr == nil {
			result.Method = MethodExact
		} else {
			logger.Debug(
				"[Graph] Exact eigen decomposition failed, falling back to power iteration",
				"component_size", len(comp),
				"err", exactErr,
			)
			var iterations int
			var powerErr error
			vec, iterations, powerErr = powerIteration(a, opts.EigenMaxIter, opts.EigenTolerance)
			if powerErr != nil {
				result.Method = MethodFailed
				result.Err = &ComponentError{
					Nodes: names,
					Err:   fmt.Errorf("exact decomposition: %v; power iteration: %w", exactErr, powerErr),
				}
				logger.Warn(
					"[Graph] Eigenvector centrality failed for component",
					"component_size", len(comp),
					"err", result.Err,
				)
				errs = append(errs, result.Err)
				results = append(results, result)
				continue
			}
			result.Method = MethodPowerIteration
			result.Iterations = iterations
		}

		for k, i := range comp {
			scores[i] = vec[k]
		}
		results = append(results, result)
	}

	return scores, results, errors.Join(errs...)
}

// adjacencyMatrix returns the weighted adjacency matrix of the component;
// row k belongs to node comp[k].
func adjacencyMatrix(ig *indexedGraph, comp []int) *mat.SymDense {
	pos := make(map[int]int, len(comp))
	for k, i := range comp {
		pos[i] = k
	}
	a := mat.NewSymDense(len(comp), nil)
	for k, i := range comp {
		for _, nb := range ig.adj[i] {
			if j, ok := pos[nb.to]; ok {
				a.SetSym(k, j, float64(nb.weight))
			}
		}
	}
	return a
}

// principalEigenvector returns the eigenvector of the largest eigenvalue of
// a, oriented to be non-negative and scaled to unit Euclidean length.
func principalEigenvector(a *mat.SymDense) ([]float64, error) {
	var es mat.EigenSym
	if ok := es.Factorize(a, true); !ok {
		return nil, errors.New("symmetric eigen decomposition did not converge")
	}

	values := es.Values(nil)
	if len(values) == 0 {
		return nil, errors.New("empty eigen decomposition")
	}
	principal := floats.MaxIdx(values)

	var vectors mat.Dense
	es.VectorsTo(&vectors)
	vec := mat.Col(nil, principal, &vectors)

	return orientAndNormalize(vec)
}

func orientAndNormalize(vec []float64) ([]float64, error) {
	for _, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("eigenvector has non-finite entries")
		}
	}
	if floats.Sum(vec) < 0 {
		floats.Scale(-1, vec)
	}
	for i, v := range vec {
		if v < -signTolerance {
			return nil, fmt.Errorf("eigenvector has mixed signs (entry %d = %g)", i, v)
		}
		if v < 0 {
			vec[i] = 0
		}
	}
	norm := floats.Norm(vec, 2)
	if norm == 0 || math.IsInf(norm, 0) || math.IsNaN(norm) {
		return nil, errors.New("eigenvector has zero norm")
	}
	floats.Scale(1/norm, vec)
	return vec, nil
}

// powerIteration iterates x ← (A + I)x / ‖(A + I)x‖ from the uniform vector
// until the L1 change drops below n*tol. The identity shift keeps bipartite
// components from oscillating.
func powerIteration(a *mat.SymDense, maxIter int, tol float64) ([]float64, int, error) {
	n, _ := a.Dims()
	x := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x.SetVec(i, 1/float64(n))
	}
	next := mat.NewVecDense(n, nil)

	for iter := 1; iter <= maxIter; iter++ {
		next.MulVec(a, x)
		next.AddVec(next, x)

		norm := floats.Norm(next.RawVector().Data, 2)
		if norm == 0 || math.IsNaN(norm) || math.IsInf(norm, 0) {
			return nil, iter, fmt.Errorf("%w: degenerate iterate", ErrEigenNotConverged)
		}
		next.ScaleVec(1/norm, next)

		diff := floats.Distance(next.RawVector().Data, x.RawVector().Data, 1)
		x.CopyVec(next)
		if diff < float64(n)*tol {
			out := make([]float64, n)
			copy(out, x.RawVector().Data)
			vec, err := orientAndNormalize(out)
			if err != nil {
				return nil, iter, fmt.Errorf("%w: %v", ErrEigenNotConverged, err)
			}
			return vec, iter, nil
		}
	}

	return nil, maxIter, fmt.Errorf("%w within %d iterations", ErrEigenNotConverged, maxIter)
}
