// Package core: POI registry and service-point lookups.
//
// A POI (point of interest) is a named service location carried over from
// the base map: chargers, load and unload stands, parking and queue spots.
// The registry maps POI id to its base node type; the lookups below resolve
// the expanded planning nodes that represent each stage of a visit.
package core

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/fleetpath/source"
)

// RegisterPOI records the base node type of a POI. Registering an already
// known id overwrites the previous type.
// Returns ErrUnknownPOI for an empty or reserved ("0") id.
// Complexity: O(1).
func (g *Graph) RegisterPOI(id string, t source.NodeType) error {
	if id == "" || id == source.NoPOI {
		return fmt.Errorf("%w: %q", ErrUnknownPOI, id)
	}
	g.muNode.Lock()
	defer g.muNode.Unlock()
	g.pois[id] = t

	return nil
}

// POIType returns the registered base node type of the POI.
// Returns ErrUnknownPOI when the id was never registered.
// Complexity: O(1).
func (g *Graph) POIType(id string) (source.NodeType, error) {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	t, exists := g.pois[id]
	if !exists {
		return source.NodeType{}, fmt.Errorf("%w: %q", ErrUnknownPOI, id)
	}

	return t, nil
}

// IsQueue reports whether the POI is a queue spot.
// Returns ErrUnknownPOI when the id was never registered.
// Complexity: O(1).
func (g *Graph) IsQueue(id string) (bool, error) {
	t, err := g.POIType(id)
	if err != nil {
		return false, err
	}

	return t == source.Queue, nil
}

// POIs returns a copy of the full POI registry.
// Complexity: O(P).
func (g *Graph) POIs() map[string]source.NodeType {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	out := make(map[string]source.NodeType, len(g.pois))
	for id, t := range g.pois {
		out[id] = t
	}

	return out
}

// POIIDs returns the registered POI ids sorted ascending.
// Complexity: O(P log P).
func (g *Graph) POIIDs() []string {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	out := make([]string, 0, len(g.pois))
	for id := range g.pois {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

// NodesByPOI returns copies of all planning nodes that belong to the POI,
// sorted by id. An unknown POI yields an empty slice.
// Complexity: O(V log V).
func (g *Graph) NodesByPOI(poi string) []Node {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	out := make([]Node, 0, 4)
	for _, n := range g.nodes {
		if n.POI == poi {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// EndGoToNode resolves the planning node that terminates the travel stage
// of a visit to the POI: the dock node for docking stands, the wait node
// for stands without docking, the single node otherwise.
// Returns ErrUnknownPOI when the POI is unregistered or absent from the
// graph, ErrBadStructure when the expected stage node is missing.
func (g *Graph) EndGoToNode(poi string) (Node, error) {
	// 1) The POI must be registered and present on the graph.
	t, err := g.POIType(poi)
	if err != nil {
		return Node{}, err
	}
	nodes := g.NodesByPOI(poi)
	if len(nodes) == 0 {
		return Node{}, fmt.Errorf("%w: %q has no planning nodes", ErrUnknownPOI, poi)
	}

	// 2) Pick the stage node for the POI shape.
	switch {
	case t.Section == source.SectionDockWaitUndock:
		return poiNodeOfKind(nodes, KindDock, poi)
	case t.Section == source.SectionWaitPOI:
		return poiNodeOfKind(nodes, KindWait, poi)
	default:
		return nodes[0], nil
	}
}

// EndDockingNode resolves the node that terminates the docking stage.
// Only POIs with a docking stand have one.
// Returns ErrUnknownPOI, ErrWrongPOIKind or ErrBadStructure.
func (g *Graph) EndDockingNode(poi string) (Node, error) {
	t, err := g.POIType(poi)
	if err != nil {
		return Node{}, err
	}
	if t.Section != source.SectionDockWaitUndock {
		return Node{}, fmt.Errorf("%w: %q has no docking stage", ErrWrongPOIKind, poi)
	}

	return poiNodeOfKind(g.NodesByPOI(poi), KindWait, poi)
}

// EndWaitNode resolves the node that terminates the service stage: the
// undock node for docking stands, the end node for stands without docking.
// Returns ErrUnknownPOI, ErrWrongPOIKind or ErrBadStructure.
func (g *Graph) EndWaitNode(poi string) (Node, error) {
	t, err := g.POIType(poi)
	if err != nil {
		return Node{}, err
	}
	switch t.Section {
	case source.SectionDockWaitUndock:
		return poiNodeOfKind(g.NodesByPOI(poi), KindUndock, poi)
	case source.SectionWaitPOI:
		return poiNodeOfKind(g.NodesByPOI(poi), KindEnd, poi)
	default:
		return Node{}, fmt.Errorf("%w: %q has no service stage", ErrWrongPOIKind, poi)
	}
}

// EndUndockingNode resolves the node that terminates the undocking stage.
// Only POIs with a docking stand have one.
// Returns ErrUnknownPOI, ErrWrongPOIKind or ErrBadStructure.
func (g *Graph) EndUndockingNode(poi string) (Node, error) {
	t, err := g.POIType(poi)
	if err != nil {
		return Node{}, err
	}
	if t.Section != source.SectionDockWaitUndock {
		return Node{}, fmt.Errorf("%w: %q has no undocking stage", ErrWrongPOIKind, poi)
	}

	return poiNodeOfKind(g.NodesByPOI(poi), KindEnd, poi)
}

// BasePOIEdges resolves, for every registered POI, the edge a robot
// standing at the POI is booked on: the single in-edge for one-node POIs,
// undock to end for docking stands, wait to end for stands without docking.
// Returns ErrBadStructure when a POI's node count matches no known shape.
// Complexity: O(P * V log V).
func (g *Graph) BasePOIEdges() (map[string]EdgeKey, error) {
	out := make(map[string]EdgeKey, len(g.pois))
	for _, poi := range g.POIIDs() {
		nodes := g.NodesByPOI(poi)
		switch len(nodes) {
		case 1:
			// Parking and queue spots keep a single planning node.
			in, err := g.InEdges(nodes[0].ID)
			if err != nil {
				return nil, err
			}
			if len(in) == 0 {
				return nil, fmt.Errorf("%w: POI %q node %q has no in edge", ErrBadStructure, poi, nodes[0].ID)
			}
			out[poi] = in[0].Key()
		case 4:
			undock, err := poiNodeOfKind(nodes, KindUndock, poi)
			if err != nil {
				return nil, err
			}
			end, err := poiNodeOfKind(nodes, KindEnd, poi)
			if err != nil {
				return nil, err
			}
			out[poi] = EdgeKey{From: undock.ID, To: end.ID}
		case 2:
			wait, err := poiNodeOfKind(nodes, KindWait, poi)
			if err != nil {
				return nil, err
			}
			end, err := poiNodeOfKind(nodes, KindEnd, poi)
			if err != nil {
				return nil, err
			}
			out[poi] = EdgeKey{From: wait.ID, To: end.ID}
		default:
			return nil, fmt.Errorf("%w: POI %q spans %d planning nodes", ErrBadStructure, poi, len(nodes))
		}
	}

	return out, nil
}

// POICapacities returns, per POI, how many robots may be inbound to or
// serviced at the POI before further arrivals start queueing on the main
// travel corridors. The number is read off the edges tagged with the POI:
// one slot at a parking spot, the tagged edge's capacity at a queue spot,
// capacity plus the stand itself for ungrouped service stands. POIs with
// no tagged edge stay at zero.
// Complexity: O(E log E).
func (g *Graph) POICapacities() map[string]int {
	out := make(map[string]int, len(g.pois))
	g.muNode.RLock()
	for id := range g.pois {
		out[id] = 0
	}
	g.muNode.RUnlock()

	for _, e := range g.Edges() {
		if e.ConnectedPOI == "" || e.ConnectedPOI == source.NoPOI {
			continue
		}
		t, err := g.POIType(e.ConnectedPOI)
		if err != nil {
			continue
		}
		switch {
		case t == source.Parking:
			out[e.ConnectedPOI] = 1
		case t == source.Queue:
			out[e.ConnectedPOI] = atLeastOne(e.MaxRobots)
		case (t.Section == source.SectionWaitPOI || t.Section == source.SectionDockWaitUndock) && e.Group == 0:
			out[e.ConnectedPOI] = atLeastOne(e.MaxRobots + 1)
		}
	}

	return out
}

// EdgePOI returns the POI at the edge's destination node. The second
// return is false when the destination carries no POI.
// Complexity: O(1).
func (g *Graph) EdgePOI(k EdgeKey) (string, bool) {
	g.muNode.RLock()
	defer g.muNode.RUnlock()

	n, exists := g.nodes[k.To]
	if !exists || n.POI == source.NoPOI || n.POI == "" {
		return "", false
	}

	return n.POI, true
}

// poiNodeOfKind picks the node of the wanted kind out of a POI's nodes.
func poiNodeOfKind(nodes []Node, kind Kind, poi string) (Node, error) {
	for _, n := range nodes {
		if n.Kind == kind {
			return n, nil
		}
	}

	return Node{}, fmt.Errorf("%w: POI %q has no %s node", ErrBadStructure, poi, kind)
}

// atLeastOne clamps a capacity to the one-robot floor.
func atLeastOne(n int) int {
	if n > 0 {
		return n
	}

	return 1
}
