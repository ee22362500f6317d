package graph

import (
	"container/heap"
	"math"
)

// relative tolerance under which two path costs count as equal
const costTolerance = 1e-12

type distItem struct {
	dist float64
	seq  int
	node int
}

type distHeap []distItem

func (h distHeap) Len() int { return len(h) }

func (h distHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].seq < h[j].seq
}

func (h distHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *distHeap) Push(x any) { *h = append(*h, x.(distItem)) }

func (h *distHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func sameCost(a, b float64) bool {
	return math.Abs(a-b) <= costTolerance*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// weightedBetweenness runs Brandes' algorithm with Dijkstra shortest paths
// over the costs selected by mode. Scores are normalised by (n-1)(n-2), the
// number of ordered pairs that can route through a node, and are 0 for
// graphs of fewer than three nodes.
func weightedBetweenness(ig *indexedGraph, mode CostMode) []float64 {
	n := len(ig.names)
	cb := make([]float64, n)
	if n < 3 {
		return cb
	}

	dist := make([]float64, n)
	sigma := make([]float64, n)
	delta := make([]float64, n)
	seen := make([]bool, n)
	settled := make([]bool, n)
	preds := make([][]int, n)
	stack := make([]int, 0, n)

	for s := 0; s < n; s++ {
		for i := 0; i < n; i++ {
			dist[i] = 0
			sigma[i] = 0
			delta[i] = 0
			seen[i] = false
			settled[i] = false
			preds[i] = preds[i][:0]
		}
		stack = stack[:0]

		sigma[s] = 1
		seen[s] = true
		h := &distHeap{{dist: 0, seq: 0, node: s}}
		seq := 1

		for h.Len() > 0 {
			item := heap.Pop(h).(distItem)
			v := item.node
			if settled[v] || item.dist > dist[v] {
				continue
			}
			settled[v] = true
			stack = append(stack, v)

			for _, nb := range ig.adj[v] {
				w := nb.to
				if settled[w] {
					continue
				}
				nd := dist[v] + mode.cost(nb.weight)
				switch {
				case !seen[w] || (nd < dist[w] && !sameCost(nd, dist[w])):
					seen[w] = true
					dist[w] = nd
					sigma[w] = sigma[v]
					preds[w] = append(preds[w][:0], v)
					heap.Push(h, distItem{dist: nd, seq: seq, node: w})
					seq++
				case sameCost(nd, dist[w]):
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			coeff := (1 + delta[w]) / sigma[w]
			for _, v := range preds[w] {
				delta[v] += sigma[v] * coeff
			}
			if w != s {
				cb[w] += delta[w]
			}
		}
	}

	scale := 1 / float64((n-1)*(n-2))
	for i := range cb {
		cb[i] *= scale
	}
	return cb
}
