// Package fleetpath plans the traffic of a mobile-robot fleet over a
// shared floor plan: it expands a drawn operational graph into a planning
// graph, routes robots around each other, and assigns transport orders so
// that no two robots ever contest the same stand, pocket or narrow lane.
//
// The pipeline runs bottom-up through the subpackages:
//
//	source/   — raw floor-plan graph: node roles, way types, JSON codec
//	builder/  — two-stage expansion of the floor plan into the planning graph
//	core/     — the planning graph itself: nodes, edges, groups, POI lookups
//	route/    — masked Dijkstra over planning edges
//	tasks/    — transport orders, behaviours and the priority queue
//	fleet/    — reported robot state and the per-pass planning overlay
//	dispatch/ — the four-phase planner producing one assignment per robot
//	snapshot/ — wire codecs, YAML configuration and file watching
//	audit/    — structural health checks over a built planning graph
//	sim/      — discrete-time harness driving the dispatcher tick by tick
//
// A typical deployment decodes the floor plan once, builds the planning
// graph, then calls dispatch.PlanAll on every fleet snapshot:
//
//	g, err := builder.Build(src, poses)
//	d, err := dispatch.New(g)
//	plan, err := d.PlanAll(robots, backlog)
//
// Every plan entry names the robot's next edge and whether finishing it
// completes the current behaviour; robots without an entry hold in place.
package fleetpath
