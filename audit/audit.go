// Package audit inspects a built planning graph for structural trouble
// before it goes live: strongly-connected components over reachable travel
// edges, POI pairs no robot could ever travel between, nodes nothing
// connects to, and the exclusion-group layout. The report is advisory; a
// graph that builds but audits badly usually means a drawing mistake on
// the floor plan.
package audit

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/katalvlaran/fleetpath/core"
)

// ErrNilGraph indicates a nil *core.Graph was passed to Run.
var ErrNilGraph = errors.New("audit: graph is nil")

// POIPair is an ordered pair of POIs with no route from the first's exit
// to the second's entry.
type POIPair struct {
	From string
	To   string
}

// Group lists the edges sharing one exclusion group.
type Group struct {
	ID    int
	Edges []core.EdgeKey
}

// Report is the audit outcome.
type Report struct {
	// Components are the strongly-connected components over reachable
	// edges, largest first, node ids sorted inside each.
	Components [][]string

	// IsolatedNodes have neither in- nor out-edges.
	IsolatedNodes []string

	// UnreachablePOIPairs lists ordered POI pairs without a route,
	// ignoring POI masking: these fail on topology alone.
	UnreachablePOIPairs []POIPair

	// Groups is the exclusion-group layout, ascending by id. Group 0
	// (independent edges) is not listed.
	Groups []Group
}

// Run audits the built graph.
// Returns ErrNilGraph, or a core lookup error when the POI tables are
// malformed.
func Run(g *core.Graph) (*Report, error) {
	if g == nil {
		return nil, ErrNilGraph
	}

	idx := newIndex(g)
	rep := &Report{
		Components:    idx.components(),
		IsolatedNodes: idx.isolated(),
		Groups:        groupLayout(g),
	}

	pairs, err := idx.unreachablePOIPairs(g)
	if err != nil {
		return nil, err
	}
	rep.UnreachablePOIPairs = pairs

	return rep, nil
}

// index mirrors the planning graph as a gonum directed graph with a stable
// node numbering, keeping only reachable edges.
type index struct {
	dg   *simple.DirectedGraph
	id   map[string]int64
	name map[int64]string
}

func newIndex(g *core.Graph) *index {
	ix := &index{
		dg:   simple.NewDirectedGraph(),
		id:   make(map[string]int64),
		name: make(map[int64]string),
	}
	for i, n := range g.Nodes() {
		nid := int64(i)
		ix.id[n.ID] = nid
		ix.name[nid] = n.ID
		ix.dg.AddNode(simple.Node(nid))
	}
	for _, e := range g.Edges() {
		if !e.Reachable() {
			continue
		}
		ix.dg.SetEdge(simple.Edge{F: simple.Node(ix.id[e.From]), T: simple.Node(ix.id[e.To])})
	}

	return ix
}

// components returns the SCCs, largest first, ties broken by the smallest
// member id.
func (ix *index) components() [][]string {
	sccs := topo.TarjanSCC(ix.dg)

	out := make([][]string, 0, len(sccs))
	for _, scc := range sccs {
		ids := make([]string, 0, len(scc))
		for _, n := range scc {
			ids = append(ids, ix.name[n.ID()])
		}
		sort.Strings(ids)
		out = append(out, ids)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}

		return out[i][0] < out[j][0]
	})

	return out
}

// isolated returns the nodes with no edges at all, sorted.
func (ix *index) isolated() []string {
	var out []string
	nodes := ix.dg.Nodes()
	for nodes.Next() {
		n := nodes.Node()
		if ix.dg.From(n.ID()).Len() == 0 && ix.dg.To(n.ID()).Len() == 0 {
			out = append(out, ix.name[n.ID()])
		}
	}
	sort.Strings(out)

	return out
}

// reachable reports whether a walk from one node can arrive at another.
func (ix *index) reachable(from, to string) bool {
	src, ok := ix.id[from]
	if !ok {
		return false
	}
	dst, ok := ix.id[to]
	if !ok {
		return false
	}
	if src == dst {
		return true
	}

	found := false
	bf := traverse.BreadthFirst{}
	bf.Walk(ix.dg, ix.dg.Node(src), func(n graph.Node, _ int) bool {
		if n.ID() == dst {
			found = true
		}

		return found
	})

	return found
}

// unreachablePOIPairs probes every ordered POI pair from service exit to
// travel entry.
func (ix *index) unreachablePOIPairs(g *core.Graph) ([]POIPair, error) {
	base, err := g.BasePOIEdges()
	if err != nil {
		return nil, err
	}

	pois := g.POIIDs()
	var out []POIPair
	for _, from := range pois {
		for _, to := range pois {
			if from == to {
				continue
			}
			entry, err := g.EndGoToNode(to)
			if err != nil {
				return nil, err
			}
			if !ix.reachable(base[from].To, entry.ID) {
				out = append(out, POIPair{From: from, To: to})
			}
		}
	}

	return out, nil
}

// groupLayout collects the nonzero exclusion groups with their edges.
func groupLayout(g *core.Graph) []Group {
	byID := make(map[int][]core.EdgeKey)
	for _, e := range g.Edges() {
		if e.Group != 0 {
			byID[e.Group] = append(byID[e.Group], e.Key())
		}
	}

	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]Group, 0, len(ids))
	for _, id := range ids {
		out = append(out, Group{ID: id, Edges: byID[id]})
	}

	return out
}
