// SPDX-License-Identifier: MIT
// Package: fleetpath/builder
//
// errors.go — sentinel errors for the builder package.
//
// Error policy (explicit and strict):
//   - Only sentinel variables (package-level) are exposed.
//   - Callers MUST use errors.Is(err, ErrX) to branch on semantics.
//   - Implementations attach context via fmt.Errorf("%s: ...: %w", method, ErrX),
//     where method identifies the stage ("Convert", "Build").
//   - Build NEVER panics at runtime; validation panics are confined to the
//     option constructors (see options.go).

package builder

import "errors"

// ErrNilSource indicates Build received a nil source graph.
//
// Usage: if errors.Is(err, builder.ErrNilSource) { ... }
var ErrNilSource = errors.New("builder: nil source graph")

// ErrGraph indicates the source graph violates a structural rule: a plain
// waypoint chain without proper ends, mixed way types along one chain, or a
// point of interest connected in a shape outside the permitted table. The
// wrapped message names the offending node.
//
// Usage: if errors.Is(err, builder.ErrGraph) { ... }
var ErrGraph = errors.New("builder: malformed source graph")
