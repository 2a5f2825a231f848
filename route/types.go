// Package route: types, sentinels and functional options.
package route

import (
	"errors"

	set "github.com/hashicorp/go-set/v3"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/source"
)

// Sentinel errors returned by the path solver.
var (
	// ErrNilGraph indicates a nil *core.Graph was passed in.
	ErrNilGraph = errors.New("route: graph is nil")

	// ErrNodeNotFound indicates a path endpoint absent from the graph.
	ErrNodeNotFound = errors.New("route: node not found")

	// ErrSameNode indicates a path request whose endpoints coincide.
	ErrSameNode = errors.New("route: start and end node are the same")

	// ErrNoPath indicates the end node is unreachable under the mask.
	ErrNoPath = errors.New("route: no path between nodes")
)

// Mask admits or hides an edge during path search. A nil Mask admits every
// reachable edge.
type Mask func(core.Edge) bool

// OtherPOIsBlocked returns the task-routing mask: only edges whose both
// endpoints are free of POIs, or belong to one of the given POIs, stay
// traversable. Pass the POIs of the trip's start and goal; either may be
// empty when the trip starts or ends on open travel space.
func OtherPOIsBlocked(g *core.Graph, pois ...string) Mask {
	allowed := set.From([]string{source.NoPOI})
	for _, poi := range pois {
		if poi != "" {
			allowed.Insert(poi)
		}
	}

	return func(e core.Edge) bool {
		from, fromHas := nodePOI(g, e.From)
		to, toHas := nodePOI(g, e.To)
		if fromHas && !allowed.Contains(from) {
			return false
		}
		if toHas && !allowed.Contains(to) {
			return false
		}

		return true
	}
}

// nodePOI resolves the POI of a node, reporting whether it carries one.
func nodePOI(g *core.Graph, id string) (string, bool) {
	n, err := g.Node(id)
	if err != nil || n.POI == source.NoPOI || n.POI == "" {
		return "", false
	}

	return n.POI, true
}

// Options configures a single path computation.
type Options struct {
	// Mask hides edges from the solver; nil admits all reachable edges.
	Mask Mask
}

// Option is a functional option for Path and PathLength.
type Option func(*Options)

// WithMask installs an edge-admission predicate.
func WithMask(m Mask) Option {
	return func(o *Options) {
		o.Mask = m
	}
}
