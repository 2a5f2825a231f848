// Package source: Graph container plus referential validation.
package source

import (
	"fmt"
	"sort"
)

// Node is one source-graph node as stored.
type Node struct {
	// Name is the operator-facing label; informational only.
	Name string

	// Pos is the node position on the floor plan.
	Pos Position

	// Type is the semantic role from the role table.
	Type NodeType

	// POI is the point-of-interest id this node represents, NoPOI when none.
	POI string
}

// Edge is one source-graph edge as stored. Both orientations of a two-way
// edge share a single Edge record; expansion happens in the builder.
type Edge struct {
	// Start and End are node ids from the enclosing Graph.
	Start string `json:"startNode"`
	End   string `json:"endNode"`

	// Way classifies direction and width.
	Way WayType `json:"type"`

	// Active gates the edge: planning edges derived from an inactive source
	// edge are weighted unreachable.
	Active bool `json:"isActive"`
}

// Graph is the raw operational graph: nodes by id, edges by positive id.
// Edge id 0 is reserved for edges the builder fabricates itself.
type Graph struct {
	Nodes map[string]Node `json:"nodes"`
	Edges map[int]Edge    `json:"edges"`
}

// NewGraph returns an empty source graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]Node),
		Edges: make(map[int]Edge),
	}
}

// AddNode inserts or replaces a node, normalizing an empty POI to NoPOI.
func (g *Graph) AddNode(id string, n Node) {
	if n.POI == "" {
		n.POI = NoPOI
	}
	g.Nodes[id] = n
}

// AddEdge inserts or replaces an edge under the given positive id.
func (g *Graph) AddEdge(id int, e Edge) {
	g.Edges[id] = e
}

// Validate checks referential integrity: every edge id positive, every way
// type on the wire range, every endpoint present in the node map, every node
// role in the table. The first violation is returned wrapped in its sentinel.
func (g *Graph) Validate() error {
	for id, n := range g.Nodes {
		if _, ok := typeTable[n.Type.ID]; !ok {
			return fmt.Errorf("%w: node %q has type id %d", ErrBadNodeType, id, n.Type.ID)
		}
	}
	for id, e := range g.Edges {
		if id <= 0 {
			return fmt.Errorf("%w: got %d", ErrBadEdgeID, id)
		}
		if !e.Way.Valid() {
			return fmt.Errorf("%w: edge %d has way type %d", ErrBadWayType, id, int(e.Way))
		}
		if _, ok := g.Nodes[e.Start]; !ok {
			return fmt.Errorf("%w: edge %d starts at %q", ErrUnknownEndpoint, id, e.Start)
		}
		if _, ok := g.Nodes[e.End]; !ok {
			return fmt.Errorf("%w: edge %d ends at %q", ErrUnknownEndpoint, id, e.End)
		}
	}

	return nil
}

// POIs collects the POI registry: poi id to role, skipping NoPOI carriers.
func (g *Graph) POIs() map[string]NodeType {
	out := make(map[string]NodeType)
	for _, n := range g.Nodes {
		if n.POI != NoPOI {
			out[n.POI] = n.Type
		}
	}

	return out
}

// NodeIDs returns all node ids sorted, for deterministic iteration.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

// EdgeIDs returns all edge ids sorted, for deterministic iteration.
func (g *Graph) EdgeIDs() []int {
	ids := make([]int, 0, len(g.Edges))
	for id := range g.Edges {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}
