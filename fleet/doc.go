// Package fleet tracks the robots a planning pass works with.
//
// A Robot carries two layers of state. The reported layer comes in from
// telemetry: which edge the robot sits on (or which POI it is parked at),
// whether it takes part in planning, whether it is free, how long its
// current behaviour still runs. The planning layer is written by the
// dispatcher within one pass: the task, the next edge to send, and whether
// that edge finishes the current behaviour.
//
// The PlanManager copies the reported robots, keeps only those with
// planning enabled, and resolves POI-parked robots onto their stand's base
// edge so every planned robot has a concrete graph position. All listings
// iterate in robot-id order, so a pass over the same inputs always produces
// the same plan.
package fleet
