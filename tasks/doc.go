// Package tasks models transport orders and the queue they wait in.
//
// A task is an ordered list of behaviours: travel to a point of interest,
// dock, wait out the service, undock. Behaviour kinds carry fixed wire
// names shared with the orchestration layer; the wait kind keeps its legacy
// numeric name "3" for compatibility with deployed fleets.
//
// The Manager owns working copies of the submitted tasks, ordered by
// priority (higher first) with ties broken by submission order. The
// dispatcher mutates those copies while planning; callers keep their own
// slices untouched.
package tasks
