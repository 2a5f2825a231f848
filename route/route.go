// Package route: the Dijkstra solver.
package route

import (
	"container/heap"
	"fmt"

	"github.com/katalvlaran/fleetpath/core"
)

// Path computes the fastest node sequence from start at end, inclusive of
// both endpoints.
//
// Preconditions and validation (in order):
//  1. g must be non-nil (ErrNilGraph).
//  2. start and end must differ (ErrSameNode).
//  3. Both endpoints must exist (ErrNodeNotFound).
//
// Returns ErrNoPath when every route is hidden by the mask or missing.
//
// Complexity: O((V + E) log V).
func Path(g *core.Graph, start, end string, opts ...Option) ([]string, error) {
	r, err := newRunner(g, start, end, opts)
	if err != nil {
		return nil, err
	}
	r.process()

	return r.pathTo(end)
}

// PathLength computes the total traversal time of the fastest route from
// start to end. Equal endpoints cost zero: the robot is already there.
//
// Validation and errors match Path, except ErrSameNode.
//
// Complexity: O((V + E) log V).
func PathLength(g *core.Graph, start, end string, opts ...Option) (int, error) {
	if g == nil {
		return 0, ErrNilGraph
	}
	if start == end {
		if !g.HasNode(start) {
			return 0, fmt.Errorf("%w: %q", ErrNodeNotFound, start)
		}

		return 0, nil
	}
	r, err := newRunner(g, start, end, opts)
	if err != nil {
		return 0, err
	}
	r.process()

	d, seen := r.dist[end]
	if !seen {
		return 0, fmt.Errorf("%w: %q to %q", ErrNoPath, start, end)
	}

	return d, nil
}

// runner holds the mutable state of a single path computation.
type runner struct {
	g       *core.Graph
	mask    Mask
	source  string
	dist    map[string]int
	prev    map[string]string
	visited map[string]bool
	pq      nodePQ
}

// newRunner validates inputs and prepares the initial solver state.
func newRunner(g *core.Graph, start, end string, opts []Option) (*runner, error) {
	// 1) Apply options.
	var cfg Options
	for _, opt := range opts {
		opt(&cfg)
	}

	// 2) Validate the request.
	if g == nil {
		return nil, ErrNilGraph
	}
	if start == end {
		return nil, fmt.Errorf("%w: %q", ErrSameNode, start)
	}
	if !g.HasNode(start) {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, start)
	}
	if !g.HasNode(end) {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, end)
	}

	// 3) Initialize distances and the heap with the source at zero.
	r := &runner{
		g:       g,
		mask:    cfg.Mask,
		source:  start,
		dist:    make(map[string]int, g.NodeCount()),
		prev:    make(map[string]string, g.NodeCount()),
		visited: make(map[string]bool, g.NodeCount()),
		pq:      make(nodePQ, 0, g.NodeCount()),
	}
	r.dist[start] = 0
	heap.Init(&r.pq)
	heap.Push(&r.pq, &nodeItem{id: start, dist: 0})

	return r, nil
}

// process runs the main loop until every reachable node is finalized.
func (r *runner) process() {
	for r.pq.Len() > 0 {
		// 1) Pop the closest pending node; skip stale heap entries.
		item := heap.Pop(&r.pq).(*nodeItem)
		if r.visited[item.id] {
			continue
		}

		// 2) Finalize and relax.
		r.visited[item.id] = true
		r.relax(item.id)
	}
}

// relax attempts to improve the distance of every admitted neighbor of u.
// Out-edges arrive sorted by destination, so ties resolve the same way on
// every run.
func (r *runner) relax(u string) {
	edges, err := r.g.OutEdges(u)
	if err != nil {
		return
	}
	for _, e := range edges {
		// Unreachable edges are hidden unconditionally, masked edges on top.
		if !e.Reachable() {
			continue
		}
		if r.mask != nil && !r.mask(e) {
			continue
		}

		next := r.dist[u] + e.Weight
		cur, seen := r.dist[e.To]
		if seen && next >= cur {
			continue
		}
		r.dist[e.To] = next
		r.prev[e.To] = u
		heap.Push(&r.pq, &nodeItem{id: e.To, dist: next})
	}
}

// pathTo rebuilds the node sequence from the predecessor chain.
func (r *runner) pathTo(end string) ([]string, error) {
	if _, seen := r.dist[end]; !seen {
		return nil, fmt.Errorf("%w: %q to %q", ErrNoPath, r.source, end)
	}

	var rev []string
	for at := end; ; {
		rev = append(rev, at)
		if at == r.source {
			break
		}
		at = r.prev[at]
	}
	out := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}

	return out, nil
}

// nodeItem is one (node, distance) heap entry.
type nodeItem struct {
	id   string
	dist int
}

// nodePQ is a min-heap of *nodeItem ordered by distance. Improvements push
// duplicates; stale entries are dropped on pop via the visited set.
type nodePQ []*nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
