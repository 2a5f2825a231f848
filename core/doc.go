// Package core provides the thread-safe in-memory planning graph that every
// other layer works against: the builder fills it, the router reads it, the
// dispatcher queries and annotates it tick by tick.
//
// The graph G = (V,E) is strictly directed and loop-free. Each node is one
// planning state (dock, wait, undock, end, noChanges, intersection_in,
// intersection_out) derived from a source node; each edge is one atomic robot
// action labeled GO_TO, DOCK, WAIT or UNDOCK and carries:
//
//   - an integer time weight, or WeightUnreachable when any contributing
//     source edge is inactive (a sentinel, never a large number)
//   - a group id: 0 for independent edges, positive for edges sharing a
//     mutual-exclusion quota of one robot (POI chains, parking approaches,
//     narrow two-way pairs, intersection interiors)
//   - a maxRobots capacity for independent edges
//   - the ordered source-node path and contributing source-edge ids
//   - the robot ids currently on the edge, rewritten at each tick boundary
//   - optional corridor geometry for the traversed lane
//
// Why one container instead of graph-plus-managers?
//
//   - Deterministic iteration - Nodes(), Edges(), OutEdges() sorted by id.
//   - POI registry folded in - poi id to role lookups, queue checks, and the
//     canonical behaviour end-nodes live next to the structure they index.
//   - Occupancy accounting in one place - group unions, per-edge capacity and
//     per-POI service quotas share the same locks.
//
// Locking follows the two-mutex split: muNode guards nodes and the POI
// registry, muEdge guards edges and both adjacency directions. Reads return
// value copies with cloned slices; the only mutators are the builder-phase
// setters and the per-tick SetOccupancy rewrite.
//
// Errors are package sentinels (ErrNodeNotFound, ErrEdgeNotFound,
// ErrUnknownPOI, ErrGroupOverflow, ErrEdgeCapacity, ...) wrapped with
// context; compare with errors.Is.
package core
