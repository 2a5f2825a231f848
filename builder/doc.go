// Package builder turns a raw floor-plan graph into the planning graph that
// routing and dispatch operate on.
//
// The floor plan (package source) describes the warehouse as surveyed: nodes
// where something stands or paths meet, edges for the lanes between them,
// way types for how traffic may flow. The planning graph (package core) is
// what a robot actually drives: every service point unfolded into its
// behaviour chain, every intersection split into per-direction halves, every
// lane carrying a travel time, a capacity, an exclusion group and a swept
// corridor.
//
// Construction runs in two stages:
//
//   - Conversion (convert.go). Two-way source edges are expanded into
//     directed copies, chains of plain waypoints are collapsed into single
//     reduced edges that remember the full node path, and every point of
//     interest is checked against the permitted connection shapes: a service
//     stand sits between a waiting and a departure node or behind a
//     waiting-departure gateway, parking and queue pockets hang between two
//     intersections, and so on. A floor plan that violates a shape rule is
//     rejected with ErrGraph naming the offending node.
//
//   - Supervision (supervisor.go). The reduced graph is rebuilt as the
//     planning graph: exclusion groups are allocated, service stands become
//     dock/wait/undock/end chains, travel edges are laid between endpoint
//     representatives, intersections receive their full in×out crossing
//     product, approach edges are tagged with the POI whose quota they feed,
//     and finally weights, capacities, corridor outlines and stand poses are
//     written.
//
// The entry point is Build:
//
//	graph, err := builder.Build(src, poiPoses,
//	    builder.WithRobotVelocity(0.8),
//	    builder.WithCorridorWidth(1.1),
//	)
//	if err != nil { ... }
//
// poiPoses supplies the physical stand pose per POI id; POIs without an
// entry keep a zero pose. All knobs (cruise speed, robot length, corridor
// width, service times) default to the values in constants.go and are
// overridden through the functional options in options.go.
//
// Build is deterministic: base nodes are processed in ascending id order and
// source edges in ascending id order, so the same floor plan always yields
// the same planning graph, including node ids and group numbers.
package builder
