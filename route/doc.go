// Package route computes shortest paths over the planning graph.
//
// Planning weights are nominal traversal times, so the cheapest path is the
// fastest one. The solver is Dijkstra with a lazy-decrease-key min-heap:
// vertices leave the heap in order of increasing distance, stale heap
// entries are skipped via the visited set.
//
// Complexity:
//
//   - Time:  O((V + E) log V)
//   - Space: O(V + E)
//
// Edge filtering happens through a Mask predicate instead of mutating the
// graph: an edge is traversable when it is reachable (weight is not the
// unreachable marker) and the mask, if any, admits it. OtherPOIsBlocked
// builds the standard mask for task routing; it hides every edge touching a
// point of interest other than the endpoints of the trip, so a route never
// cuts through somebody else's service stand.
//
// The graph is read through its public accessors only; concurrent planning
// over one graph is safe.
package route
