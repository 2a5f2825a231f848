// Package core: exclusion-group queries.
//
// Edges that cross the same physical space (a narrow two-way corridor, an
// intersection box) share a positive group id and admit one robot between
// them. Group 0 marks independent edges bounded only by their own capacity.
package core

import "fmt"

// GroupID returns the exclusion group of the edge identified by k.
// Group 0 marks an independent edge.
// Returns ErrEdgeNotFound when absent.
// Complexity: O(1).
func (g *Graph) GroupID(k EdgeKey) (int, error) {
	e, err := g.Edge(k)
	if err != nil {
		return 0, err
	}

	return e.Group, nil
}

// EdgesByGroup returns the keys of all edges in the given group, sorted
// by (From, To).
// Complexity: O(E log E).
func (g *Graph) EdgesByGroup(group int) []EdgeKey {
	out := make([]EdgeKey, 0, 4)
	for _, e := range g.Edges() {
		if e.Group == group {
			out = append(out, e.Key())
		}
	}

	return out
}

// RobotsInGroupEdge returns the robots booked on the edge identified by k,
// widened to the whole group when the edge is grouped. The result doubles
// as a consistency check on the occupancy snapshot.
// Returns ErrEdgeNotFound when absent, ErrGroupOverflow when a group holds
// more than one robot, ErrEdgeCapacity when an independent edge holds more
// robots than its capacity.
// Complexity: O(E log E) for grouped edges, O(1) otherwise.
func (g *Graph) RobotsInGroupEdge(k EdgeKey) ([]string, error) {
	e, err := g.Edge(k)
	if err != nil {
		return nil, err
	}

	// 1) Independent edge: its own list, bounded by capacity.
	if e.Group == 0 {
		if len(e.Robots) > e.MaxRobots {
			return nil, fmt.Errorf("%w: edge %s allows %d robots but holds %d",
				ErrEdgeCapacity, k, e.MaxRobots, len(e.Robots))
		}

		return e.Robots, nil
	}

	// 2) Grouped edge: union over the group, at most one robot total.
	var ids []string
	for _, ge := range g.Edges() {
		if ge.Group == e.Group {
			ids = append(ids, ge.Robots...)
		}
	}
	if len(ids) > 1 {
		return nil, fmt.Errorf("%w: edge %s of group %d holds %d robots",
			ErrGroupOverflow, k, e.Group, len(ids))
	}

	return ids, nil
}

// MaxAllowedRobots returns how many robots the edge identified by k may
// hold at once: one for grouped edges, the edge capacity otherwise.
// Returns ErrEdgeNotFound when absent.
// Complexity: O(1).
func (g *Graph) MaxAllowedRobots(k EdgeKey) (int, error) {
	e, err := g.Edge(k)
	if err != nil {
		return 0, err
	}
	if e.Group != 0 {
		return 1, nil
	}

	return e.MaxRobots, nil
}
