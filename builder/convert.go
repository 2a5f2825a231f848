// SPDX-License-Identifier: MIT
// Package: fleetpath/builder
//
// convert.go — stage 1: source-graph conversion and shape validation.
//
// Pipeline (strict order):
//  1. expand:   every two-way source edge becomes two directed copies, each
//     remembering its source edge id.
//  2. collapse: maximal paths structural → waypoint... → structural fold
//     into one reduced edge carrying the ordered node path and the
//     traversed source edge ids.
//  3. validate: every point of interest must match a permitted connection
//     shape; the first violation aborts with ErrGraph naming the node.
//
// Determinism: source edges are walked in ascending id order and nodes in
// ascending id order, so reduced edges always come out in the same order.

package builder

import (
	"fmt"

	"github.com/katalvlaran/fleetpath/source"
)

// expandedEdge is one directed copy of a source edge.
type expandedEdge struct {
	src  int    // contributing source edge id
	from string // tail node id
	to   string // head node id
	way  source.WayType
}

// reducedEdge is one directed edge of the reduced graph: a travel path whose
// interior nodes are all plain waypoints.
type reducedEdge struct {
	nodes []string // ordered node path; first and last are structural
	srcs  []int    // contributing source edge ids in traversal order
	way   source.WayType
	group int // exclusion group, assigned in stage 2
}

// converter carries stage-1 state.
type converter struct {
	src     *source.Graph
	reduced []reducedEdge
}

// newConverter runs the full stage-1 pipeline over src.
func newConverter(src *source.Graph) (*converter, error) {
	c := &converter{src: src}
	if err := c.collapse(c.expand()); err != nil {
		return nil, err
	}
	if err := c.validateShapes(); err != nil {
		return nil, err
	}

	return c, nil
}

// expand emits directed copies of every source edge in ascending id order:
// forward always, reverse for the two-way classes.
// Complexity: O(E log E) time for the id sort, O(E) space.
func (c *converter) expand() []expandedEdge {
	out := make([]expandedEdge, 0, 2*len(c.src.Edges))
	for _, id := range c.src.EdgeIDs() {
		e := c.src.Edges[id]
		out = append(out, expandedEdge{src: id, from: e.Start, to: e.End, way: e.Way})
		if e.Way == source.TwoWay || e.Way == source.NarrowTwoWay {
			out = append(out, expandedEdge{src: id, from: e.End, to: e.Start, way: e.Way})
		}
	}

	return out
}

// chain accumulates one structural → waypoint... path during the collapse.
type chain struct {
	nodes []string
	srcs  []int
	used  bool // consumed by a reduced edge
}

func (ch *chain) last() string { return ch.nodes[len(ch.nodes)-1] }

func (ch *chain) hasSource(id int) bool {
	for _, s := range ch.srcs {
		if s == id {
			return true
		}
	}

	return false
}

// collapse folds plain-waypoint paths into reduced edges.
//
// Seeds are expanded edges entering a waypoint from a structural node; each
// seed grows by absorbing worklist edges (edges leaving a waypoint) whose
// tail matches the chain head, never reusing a source edge within one chain.
// A worklist edge no chain can absorb means a waypoint path with no
// structural entry; a chain whose head stays a waypoint means no structural
// exit. Both abort with ErrGraph.
func (c *converter) collapse(expanded []expandedEdge) error {
	waypoint := make(map[string]bool, len(c.src.Nodes))
	for id, n := range c.src.Nodes {
		if n.Type.Section == source.SectionNormal {
			waypoint[id] = true
		}
	}

	// 1. Split the expanded edges into chain seeds and a worklist of
	//    waypoint continuations.
	var chains []*chain
	var work []expandedEdge
	for _, e := range expanded {
		switch {
		case !waypoint[e.from] && waypoint[e.to]:
			chains = append(chains, &chain{nodes: []string{e.from, e.to}, srcs: []int{e.src}})
		case waypoint[e.from]:
			work = append(work, e)
		}
	}

	// 2. Grow every chain until the worklist drains. A full sweep without
	//    progress means some waypoint path has no structural entry.
	for len(work) > 0 {
		progressed := false
		for _, ch := range chains {
			for i, e := range work {
				if ch.last() == e.from && !ch.hasSource(e.src) {
					ch.nodes = append(ch.nodes, e.to)
					ch.srcs = append(ch.srcs, e.src)
					work = append(work[:i], work[i+1:]...)
					progressed = true

					break
				}
			}
		}
		if !progressed {
			return fmt.Errorf("%s: waypoint node %q starts a path no structural node enters: %w",
				methodConvert, work[0].from, ErrGraph)
		}
	}

	// 3. Per-chain sanity: one way type end to end, a structural exit.
	for _, ch := range chains {
		for _, s := range ch.srcs[1:] {
			if c.src.Edges[s].Way != c.src.Edges[ch.srcs[0]].Way {
				return fmt.Errorf("%s: waypoint node %q joins segments of different way types: %w",
					methodConvert, ch.nodes[1], ErrGraph)
			}
		}
		if waypoint[ch.last()] {
			return fmt.Errorf("%s: waypoint node %q ends a path without reaching a structural node: %w",
				methodConvert, ch.last(), ErrGraph)
		}
	}

	// 4. Emit reduced edges in expanded order: direct structural pairs
	//    verbatim, chain seeds replaced by their full path.
	for _, e := range expanded {
		switch {
		case waypoint[e.from]:
			// Interior segment, already absorbed by a chain.
		case !waypoint[e.to]:
			c.reduced = append(c.reduced, reducedEdge{
				nodes: []string{e.from, e.to},
				srcs:  []int{e.src},
				way:   e.way,
			})
		default:
			ch := findChain(chains, e.from, e.to)
			if ch == nil {
				return fmt.Errorf("%s: waypoint node %q reachable from %q has no collapsed path: %w",
					methodConvert, e.to, e.from, ErrGraph)
			}
			ch.used = true
			c.reduced = append(c.reduced, reducedEdge{
				nodes: append([]string(nil), ch.nodes...),
				srcs:  append([]int(nil), ch.srcs...),
				way:   e.way,
			})
		}
	}

	return nil
}

// findChain returns the first unconsumed chain whose path starts from → to.
func findChain(chains []*chain, from, to string) *chain {
	for _, ch := range chains {
		if !ch.used && ch.nodes[0] == from && ch.nodes[1] == to {
			return ch
		}
	}

	return nil
}

// inNodes returns the tails of reduced edges ending at id, outNodes the
// heads of reduced edges starting at id. Both keep reduced order.
func (c *converter) inNodes(id string) []string {
	var out []string
	for _, r := range c.reduced {
		if r.nodes[len(r.nodes)-1] == id {
			out = append(out, r.nodes[0])
		}
	}

	return out
}

func (c *converter) outNodes(id string) []string {
	var out []string
	for _, r := range c.reduced {
		if r.nodes[0] == id {
			out = append(out, r.nodes[len(r.nodes)-1])
		}
	}

	return out
}

// wayBetween returns the way type of the first reduced edge from → to.
func (c *converter) wayBetween(from, to string) (source.WayType, bool) {
	for _, r := range c.reduced {
		if r.nodes[0] == from && r.nodes[len(r.nodes)-1] == to {
			return r.way, true
		}
	}

	return 0, false
}

// isStand reports whether id is a service POI base node (a docking or a
// wait-only stand).
func (c *converter) isStand(id string) bool {
	sec := c.src.Nodes[id].Type.Section
	return sec == source.SectionDockWaitUndock || sec == source.SectionWaitPOI
}

// validateShapes checks every point of interest against the permitted
// connection table. Nodes are walked in ascending id order, so the first
// violation reported is deterministic.
func (c *converter) validateShapes() error {
	for _, id := range c.src.NodeIDs() {
		n := c.src.Nodes[id]

		var err error
		switch {
		case c.isStand(id):
			err = c.validateStand(id)
		case n.Type == source.Parking:
			err = c.validatePocket(id, source.NarrowTwoWay)
		case n.Type == source.Queue:
			err = c.validatePocket(id, source.OneWay)
		case n.Type == source.Waiting:
			err = c.validateWaiting(id)
		case n.Type == source.Departure:
			err = c.validateDeparture(id)
		case n.Type == source.WaitingDeparture:
			err = c.validateGateway(id)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// validateStand: a service stand admits exactly waiting → POI → departure
// (both edges oneWay) or waiting-departure ↔ POI ↔ waiting-departure (both
// edges narrowTwoWay).
func (c *converter) validateStand(id string) error {
	in, out := c.inNodes(id), c.outNodes(id)
	if len(in) != 1 {
		return fmt.Errorf("%s: POI node %q has %d entry nodes, want exactly one waiting or waiting-departure: %w",
			methodConvert, id, len(in), ErrGraph)
	}
	if len(out) != 1 {
		return fmt.Errorf("%s: POI node %q has %d exit nodes, want exactly one departure or waiting-departure: %w",
			methodConvert, id, len(out), ErrGraph)
	}

	inType, outType := c.src.Nodes[in[0]].Type, c.src.Nodes[out[0]].Type
	inWay, _ := c.wayBetween(in[0], id)
	outWay, _ := c.wayBetween(id, out[0])
	switch {
	case inType == source.Waiting && outType == source.Departure:
		if inWay != source.OneWay || outWay != source.OneWay {
			return fmt.Errorf("%s: POI node %q: waiting→POI→departure edges must be oneWay: %w",
				methodConvert, id, ErrGraph)
		}
	case inType == source.WaitingDeparture && outType == source.WaitingDeparture:
		if inWay != source.NarrowTwoWay || outWay != source.NarrowTwoWay {
			return fmt.Errorf("%s: POI node %q: waiting-departure↔POI edges must be narrowTwoWay: %w",
				methodConvert, id, ErrGraph)
		}
	default:
		return fmt.Errorf("%s: POI node %q connects %s→POI→%s, want waiting→POI→departure or waiting-departure on both sides: %w",
			methodConvert, id, inType, outType, ErrGraph)
	}

	return nil
}

// validatePocket: parking and queue pockets sit between two intersections.
// Parking connects narrowTwoWay on both sides, queue oneWay in and out.
func (c *converter) validatePocket(id string, want source.WayType) error {
	kind := c.src.Nodes[id].Type
	in, out := c.inNodes(id), c.outNodes(id)
	if len(in) != 1 || len(out) != 1 {
		return fmt.Errorf("%s: %s node %q has %d entries and %d exits, want one intersection each: %w",
			methodConvert, kind, id, len(in), len(out), ErrGraph)
	}
	if c.src.Nodes[in[0]].Type != source.Intersection || c.src.Nodes[out[0]].Type != source.Intersection {
		return fmt.Errorf("%s: %s node %q must connect intersection→%s→intersection: %w",
			methodConvert, kind, id, kind, ErrGraph)
	}

	inWay, _ := c.wayBetween(in[0], id)
	outWay, _ := c.wayBetween(id, out[0])
	if inWay != want || outWay != want {
		return fmt.Errorf("%s: %s node %q edges must be %s: %w", methodConvert, kind, id, want, ErrGraph)
	}

	return nil
}

// validateWaiting: intersection → waiting → POI, both edges oneWay.
func (c *converter) validateWaiting(id string) error {
	in, out := c.inNodes(id), c.outNodes(id)
	if len(in) != 1 {
		return fmt.Errorf("%s: waiting node %q has %d entry nodes, want exactly one intersection: %w",
			methodConvert, id, len(in), ErrGraph)
	}
	if len(out) != 1 {
		return fmt.Errorf("%s: waiting node %q has %d exit nodes, want exactly one POI: %w",
			methodConvert, id, len(out), ErrGraph)
	}
	if c.src.Nodes[in[0]].Type != source.Intersection || !c.isStand(out[0]) {
		return fmt.Errorf("%s: waiting node %q must connect intersection→waiting→POI: %w",
			methodConvert, id, ErrGraph)
	}

	inWay, _ := c.wayBetween(in[0], id)
	outWay, _ := c.wayBetween(id, out[0])
	if inWay != source.OneWay || outWay != source.OneWay {
		return fmt.Errorf("%s: waiting node %q edges must be oneWay: %w", methodConvert, id, ErrGraph)
	}

	return nil
}

// validateDeparture: POI → departure → intersection, both edges oneWay.
func (c *converter) validateDeparture(id string) error {
	in, out := c.inNodes(id), c.outNodes(id)
	if len(in) != 1 {
		return fmt.Errorf("%s: departure node %q has %d entry nodes, want exactly one POI: %w",
			methodConvert, id, len(in), ErrGraph)
	}
	if len(out) != 1 {
		return fmt.Errorf("%s: departure node %q has %d exit nodes, want exactly one intersection: %w",
			methodConvert, id, len(out), ErrGraph)
	}
	if !c.isStand(in[0]) || c.src.Nodes[out[0]].Type != source.Intersection {
		return fmt.Errorf("%s: departure node %q must connect POI→departure→intersection: %w",
			methodConvert, id, ErrGraph)
	}

	inWay, _ := c.wayBetween(in[0], id)
	outWay, _ := c.wayBetween(id, out[0])
	if inWay != source.OneWay || outWay != source.OneWay {
		return fmt.Errorf("%s: departure node %q edges must be oneWay: %w", methodConvert, id, ErrGraph)
	}

	return nil
}

// validateGateway: a waiting-departure node fronts a POI from an
// intersection. Two entries and two exits, one of each on the intersection
// side (twoWay edges) and one of each on the POI side (narrowTwoWay edges).
func (c *converter) validateGateway(id string) error {
	in, out := c.inNodes(id), c.outNodes(id)
	if len(in) != 2 || len(out) != 2 {
		return fmt.Errorf("%s: waiting-departure node %q has %d entries and %d exits, want two each: %w",
			methodConvert, id, len(in), len(out), ErrGraph)
	}

	inInter, inPOI, err := c.splitGatewaySides(id, in)
	if err != nil {
		return err
	}
	outInter, outPOI, err := c.splitGatewaySides(id, out)
	if err != nil {
		return err
	}

	for _, pair := range [][2]string{{inInter, id}, {id, outInter}} {
		if w, _ := c.wayBetween(pair[0], pair[1]); w != source.TwoWay {
			return fmt.Errorf("%s: waiting-departure node %q: intersection-side edges must be twoWay: %w",
				methodConvert, id, ErrGraph)
		}
	}
	for _, pair := range [][2]string{{inPOI, id}, {id, outPOI}} {
		if w, _ := c.wayBetween(pair[0], pair[1]); w != source.NarrowTwoWay {
			return fmt.Errorf("%s: waiting-departure node %q: POI-side edges must be narrowTwoWay: %w",
				methodConvert, id, ErrGraph)
		}
	}

	return nil
}

// splitGatewaySides classifies a waiting-departure neighbour pair into the
// intersection side and the POI side.
func (c *converter) splitGatewaySides(id string, pair []string) (inter, poi string, err error) {
	for _, nid := range pair {
		switch {
		case c.src.Nodes[nid].Type == source.Intersection:
			inter = nid
		case c.isStand(nid):
			poi = nid
		}
	}
	if inter == "" || poi == "" {
		return "", "", fmt.Errorf("%s: waiting-departure node %q must connect one intersection and one POI: %w",
			methodConvert, id, ErrGraph)
	}

	return inter, poi, nil
}
