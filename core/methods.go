// Package core: Graph method implementations.
//
// This file provides the structural operations: node and edge insertion
// during the build phase, value-copy reads, deterministic enumeration, the
// builder-phase attribute setters, and the per-tick occupancy rewrite.
// Adjacency is indexed by both endpoints (out[from][to] and in[to][from]
// share the *Edge), so in- and out-queries are both constant time.
package core

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/fleetpath/source"
)

// AddNode inserts a new node into the graph.
// Returns ErrEmptyNodeID for an empty id, ErrDuplicateNode when present.
// Complexity: O(1) amortized.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrEmptyNodeID
	}
	g.muNode.Lock()
	defer g.muNode.Unlock()

	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
	}
	if n.POI == "" {
		n.POI = source.NoPOI
	}
	stored := n
	g.nodes[n.ID] = &stored

	return nil
}

// HasNode reports whether a node with the given id exists.
// Complexity: O(1).
func (g *Graph) HasNode(id string) bool {
	g.muNode.RLock()
	defer g.muNode.RUnlock()
	_, exists := g.nodes[id]

	return exists
}

// Node returns a copy of the node with the given id.
// Returns ErrNodeNotFound when absent.
// Complexity: O(1).
func (g *Graph) Node(id string) (Node, error) {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	n, exists := g.nodes[id]
	if !exists {
		return Node{}, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}

	return *n, nil
}

// Nodes returns copies of all nodes sorted by id.
// Complexity: O(V log V).
func (g *Graph) Nodes() []Node {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// NodeCount returns the number of nodes.
// Complexity: O(1).
func (g *Graph) NodeCount() int {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	return len(g.nodes)
}

// AddEdge inserts a new edge. Both endpoints must already exist; the
// planning graph holds at most one edge per ordered pair and no loops.
// Returns ErrEmptyNodeID, ErrSelfLoop, ErrNodeNotFound or ErrDuplicateEdge.
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(e Edge) error {
	// 1) Identity validation.
	if e.From == "" || e.To == "" {
		return ErrEmptyNodeID
	}
	if e.From == e.To {
		return fmt.Errorf("%w: %q", ErrSelfLoop, e.From)
	}

	// 2) Endpoint existence under the node lock.
	g.muNode.RLock()
	_, fromOK := g.nodes[e.From]
	_, toOK := g.nodes[e.To]
	g.muNode.RUnlock()
	if !fromOK {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, e.From)
	}
	if !toOK {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, e.To)
	}

	// 3) Insert under the edge lock.
	g.muEdge.Lock()
	defer g.muEdge.Unlock()

	if _, dup := g.out[e.From][e.To]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateEdge, e.Key())
	}
	stored := e
	stored.SourceNodes = append([]string(nil), e.SourceNodes...)
	stored.SourceEdges = append([]int(nil), e.SourceEdges...)
	stored.Robots = append([]string(nil), e.Robots...)
	stored.Corridor = append([]source.Position(nil), e.Corridor...)

	if g.out[e.From] == nil {
		g.out[e.From] = make(map[string]*Edge)
	}
	if g.in[e.To] == nil {
		g.in[e.To] = make(map[string]*Edge)
	}
	g.out[e.From][e.To] = &stored
	g.in[e.To][e.From] = &stored
	g.edgeCount++

	return nil
}

// HasEdge reports whether the edge identified by k exists.
// Complexity: O(1).
func (g *Graph) HasEdge(k EdgeKey) bool {
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()
	_, exists := g.out[k.From][k.To]

	return exists
}

// Edge returns a copy of the edge identified by k, with slices cloned.
// Returns ErrEdgeNotFound when absent.
// Complexity: O(len(slices)).
func (g *Graph) Edge(k EdgeKey) (Edge, error) {
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()

	e, exists := g.out[k.From][k.To]
	if !exists {
		return Edge{}, fmt.Errorf("%w: %s", ErrEdgeNotFound, k)
	}

	return copyEdge(e), nil
}

// Edges returns copies of all edges sorted by (From, To).
// Complexity: O(E log E).
func (g *Graph) Edges() []Edge {
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()

	out := make([]Edge, 0, g.edgeCount)
	for _, tos := range g.out {
		for _, e := range tos {
			out = append(out, copyEdge(e))
		}
	}
	sortEdges(out)

	return out
}

// OutEdges returns copies of the edges leaving the given node, sorted by To.
// Returns ErrNodeNotFound when the node is absent.
// Complexity: O(d log d).
func (g *Graph) OutEdges(id string) ([]Edge, error) {
	if !g.HasNode(id) {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()

	out := make([]Edge, 0, len(g.out[id]))
	for _, e := range g.out[id] {
		out = append(out, copyEdge(e))
	}
	sortEdges(out)

	return out, nil
}

// InEdges returns copies of the edges entering the given node, sorted by From.
// Returns ErrNodeNotFound when the node is absent.
// Complexity: O(d log d).
func (g *Graph) InEdges(id string) ([]Edge, error) {
	if !g.HasNode(id) {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()

	out := make([]Edge, 0, len(g.in[id]))
	for _, e := range g.in[id] {
		out = append(out, copyEdge(e))
	}
	sortEdges(out)

	return out, nil
}

// EdgeCount returns the number of edges.
// Complexity: O(1).
func (g *Graph) EdgeCount() int {
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()

	return g.edgeCount
}

// SetEdgeWeight updates the weight of the edge identified by k.
// Returns ErrEdgeNotFound when absent.
func (g *Graph) SetEdgeWeight(k EdgeKey, weight int) error {
	return g.mutateEdge(k, func(e *Edge) { e.Weight = weight })
}

// SetEdgeGroup updates the exclusion group of the edge identified by k.
// Returns ErrEdgeNotFound when absent.
func (g *Graph) SetEdgeGroup(k EdgeKey, group int) error {
	return g.mutateEdge(k, func(e *Edge) { e.Group = group })
}

// SetEdgeMaxRobots updates the capacity of the edge identified by k.
// Returns ErrEdgeNotFound when absent.
func (g *Graph) SetEdgeMaxRobots(k EdgeKey, n int) error {
	return g.mutateEdge(k, func(e *Edge) { e.MaxRobots = n })
}

// SetEdgeConnectedPOI tags the edge identified by k with the POI whose
// service quota it feeds.
// Returns ErrEdgeNotFound when absent.
func (g *Graph) SetEdgeConnectedPOI(k EdgeKey, poi string) error {
	return g.mutateEdge(k, func(e *Edge) { e.ConnectedPOI = poi })
}

// SetEdgeCorridor replaces the corridor outline of the edge identified by k.
// Returns ErrEdgeNotFound when absent.
func (g *Graph) SetEdgeCorridor(k EdgeKey, pts []source.Position) error {
	cloned := append([]source.Position(nil), pts...)

	return g.mutateEdge(k, func(e *Edge) { e.Corridor = cloned })
}

// SetNodePose records the commanded stand pose of the given node.
// Returns ErrNodeNotFound when absent.
func (g *Graph) SetNodePose(id string, pose Pose) error {
	g.muNode.Lock()
	defer g.muNode.Unlock()

	n, exists := g.nodes[id]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
	}
	n.Pose = pose

	return nil
}

// SetOccupancy rewrites every edge's robot list from the given snapshot:
// all lists are cleared, then each entry is installed. Unknown edges in the
// snapshot return ErrEdgeNotFound and abort the rewrite.
// This is the tick-boundary contract: occupancy is never carried over.
// Complexity: O(E + entries).
func (g *Graph) SetOccupancy(byEdge map[EdgeKey][]string) error {
	g.muEdge.Lock()
	defer g.muEdge.Unlock()

	// 1) Verify before touching anything.
	for k := range byEdge {
		if _, exists := g.out[k.From][k.To]; !exists {
			return fmt.Errorf("%w: %s", ErrEdgeNotFound, k)
		}
	}

	// 2) Clear all lists.
	for _, tos := range g.out {
		for _, e := range tos {
			e.Robots = e.Robots[:0]
		}
	}

	// 3) Install the snapshot, sorted for deterministic reads.
	for k, ids := range byEdge {
		e := g.out[k.From][k.To]
		e.Robots = append(e.Robots[:0], ids...)
		sort.Strings(e.Robots)
	}

	return nil
}

// RobotsOn returns a copy of the robot ids currently on the edge.
// Returns ErrEdgeNotFound when absent.
// Complexity: O(occupants).
func (g *Graph) RobotsOn(k EdgeKey) ([]string, error) {
	g.muEdge.RLock()
	defer g.muEdge.RUnlock()

	e, exists := g.out[k.From][k.To]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrEdgeNotFound, k)
	}

	return append([]string(nil), e.Robots...), nil
}

// mutateEdge applies fn to the live edge under the write lock.
func (g *Graph) mutateEdge(k EdgeKey, fn func(*Edge)) error {
	g.muEdge.Lock()
	defer g.muEdge.Unlock()

	e, exists := g.out[k.From][k.To]
	if !exists {
		return fmt.Errorf("%w: %s", ErrEdgeNotFound, k)
	}
	fn(e)

	return nil
}

// copyEdge clones an edge with all slices detached.
func copyEdge(e *Edge) Edge {
	out := *e
	out.SourceNodes = append([]string(nil), e.SourceNodes...)
	out.SourceEdges = append([]int(nil), e.SourceEdges...)
	out.Robots = append([]string(nil), e.Robots...)
	out.Corridor = append([]source.Position(nil), e.Corridor...)

	return out
}

// sortEdges orders edges by (From, To) in place.
func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}

		return edges[i].To < edges[j].To
	})
}
