// Package snapshot is the boundary between the planner and whatever feeds
// it: wire codecs for the three inputs (source graph, fleet telemetry, task
// backlog) and the one output (the plan), collaborator interfaces the
// transport adapters implement, a concurrent loader that fetches and
// decodes all inputs per tick, a YAML tunables file, and a file watcher
// that triggers a planning-graph rebuild when the source graph changes on
// disk.
//
// The package owns no transport. HTTP, MQTT or database adapters live with
// the deployment; they satisfy GraphSource, FleetSource, TaskSource and
// PlanSink and everything else stays here.
//
// Every loaded snapshot carries a fresh uuid so a plan in one log line can
// be traced to the exact inputs that produced it.
package snapshot
