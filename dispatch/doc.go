// Package dispatch assigns transport orders to robots and issues, per
// planning pass, the next planning-graph edge each robot should traverse.
//
// One pass is one call to PlanAll (or PlanRobot): frozen snapshots of the
// fleet and the task backlog go in, a Plan comes out. The pass first
// rewrites the per-edge occupancy on the planning graph from the snapshot
// (occupancy is never carried over from earlier passes), then works through
// four phases:
//
//  1. Robots mid-service continue: started tasks whose current behaviour is
//     not travel (the robot is docking, waiting or undocking at its stand)
//     are re-bound to their robots and the chain edge is issued.
//  2. Robots en-route continue: started travel tasks are re-bound; a robot
//     standing in a different POI than its goal only receives an edge while
//     the goal still has a free service slot, otherwise it holds position.
//  3. Pre-assigned fresh tasks are picked up by their named robots.
//  4. The remaining tasks are matched to the remaining robots, preferring
//     robots that idle inside a POI some busy robot is heading to. The
//     matching is greedy: the highest-priority task goes to the robot with
//     the shortest masked travel time. The loop runs to fixpoint under a
//     wall-clock deadline (ErrTimeoutPlanning past it).
//
// Edge commitment is guarded twice: the goal POI must have room for the
// robot (or the robot is already inside its exclusion group), and the edge
// itself must have a seat left after current occupants, same-group
// occupants and edges promised to other robots this pass are counted. A
// robot that fails either guard keeps its task but stays in place; it is
// absent from the emitted plan.
//
// The dispatcher serializes passes with a mutex: routing is read-only on
// the graph, but the occupancy rewrite is not.
package dispatch
