// Package source: role tables, way types and geometry primitives shared by
// every layer above (builder, core, dispatch).
//
// This file declares WayType, Section, NodeType with the full role table,
// Position, and the package sentinels.
package source

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for source-graph validation.
var (
	// ErrUnknownEndpoint indicates an edge referencing a node id absent from the node map.
	ErrUnknownEndpoint = errors.New("source: edge endpoint references unknown node")

	// ErrBadWayType indicates a way type outside the wire range 1..3.
	ErrBadWayType = errors.New("source: invalid way type")

	// ErrBadEdgeID indicates a non-positive edge id; 0 is reserved for derived edges.
	ErrBadEdgeID = errors.New("source: edge id must be positive")

	// ErrBadNodeType indicates a role id outside the table 1..14.
	ErrBadNodeType = errors.New("source: unknown node type id")
)

// NoPOI is the normalized "this node carries no POI" sentinel.
// Decoding maps "", 0 and "0" onto it; comparisons elsewhere use only this form.
const NoPOI = "0"

// WayType classifies a source edge by direction and usable width.
type WayType int

const (
	// TwoWay is wide enough for two robots passing in opposite directions.
	TwoWay WayType = iota + 1

	// NarrowTwoWay is passable in both directions but only one robot at a time.
	NarrowTwoWay

	// OneWay permits a single direction of travel.
	OneWay
)

// Valid reports whether w is one of the three wire values.
func (w WayType) Valid() bool { return w >= TwoWay && w <= OneWay }

// String implements fmt.Stringer.
func (w WayType) String() string {
	switch w {
	case TwoWay:
		return "twoWay"
	case NarrowTwoWay:
		return "narrowTwoWay"
	case OneWay:
		return "oneWay"
	default:
		return fmt.Sprintf("wayType(%d)", int(w))
	}
}

// Section tells the supervisor builder how a node expands into planning nodes.
type Section int

const (
	// SectionDockWaitUndock expands into a dock/wait/undock/end chain.
	SectionDockWaitUndock Section = iota + 1

	// SectionWaitPOI expands into a wait/end chain.
	SectionWaitPOI

	// SectionNoChanges expands into a single planning node.
	SectionNoChanges

	// SectionNormal marks geometric waypoints that collapse into reduced edges.
	SectionNormal

	// SectionIntersection expands into per-direction in/out halves.
	SectionIntersection
)

// String implements fmt.Stringer.
func (s Section) String() string {
	switch s {
	case SectionDockWaitUndock:
		return "dockWaitUndock"
	case SectionWaitPOI:
		return "waitPOI"
	case SectionNoChanges:
		return "noChanges"
	case SectionNormal:
		return "normal"
	case SectionIntersection:
		return "intersection"
	default:
		return fmt.Sprintf("section(%d)", int(s))
	}
}

// NodeType couples a base role with the section governing its expansion.
// Values are comparable; role identity is the ID field.
type NodeType struct {
	// ID is the wire role id, 1..14.
	ID int

	// Section governs how the builder expands nodes of this role.
	Section Section
}

// The full role table. IDs mirror the wire encoding and must not be reordered.
var (
	Charger          = NodeType{ID: 1, Section: SectionDockWaitUndock}
	Load             = NodeType{ID: 2, Section: SectionWaitPOI}
	Unload           = NodeType{ID: 3, Section: SectionWaitPOI}
	LoadUnload       = NodeType{ID: 4, Section: SectionWaitPOI}
	LoadDock         = NodeType{ID: 5, Section: SectionDockWaitUndock}
	UnloadDock       = NodeType{ID: 6, Section: SectionDockWaitUndock}
	LoadUnloadDock   = NodeType{ID: 7, Section: SectionDockWaitUndock}
	Waiting          = NodeType{ID: 8, Section: SectionNoChanges}
	Departure        = NodeType{ID: 9, Section: SectionNoChanges}
	WaitingDeparture = NodeType{ID: 10, Section: SectionIntersection}
	Parking          = NodeType{ID: 11, Section: SectionNoChanges}
	Queue            = NodeType{ID: 12, Section: SectionNoChanges}
	Normal           = NodeType{ID: 13, Section: SectionNormal}
	Intersection     = NodeType{ID: 14, Section: SectionIntersection}
)

// typeTable indexes the role table by wire id.
var typeTable = map[int]NodeType{
	1: Charger, 2: Load, 3: Unload, 4: LoadUnload,
	5: LoadDock, 6: UnloadDock, 7: LoadUnloadDock,
	8: Waiting, 9: Departure, 10: WaitingDeparture,
	11: Parking, 12: Queue, 13: Normal, 14: Intersection,
}

// typeNames maps wire ids to stable display names.
var typeNames = map[int]string{
	1: "charger", 2: "load", 3: "unload", 4: "load-unload",
	5: "load-dock", 6: "unload-dock", 7: "load-unload-dock",
	8: "waiting", 9: "departure", 10: "waiting-departure",
	11: "parking", 12: "queue", 13: "normal", 14: "intersection",
}

// TypeByID resolves a wire role id against the table.
func TypeByID(id int) (NodeType, bool) {
	t, ok := typeTable[id]

	return t, ok
}

// String implements fmt.Stringer.
func (t NodeType) String() string {
	if name, ok := typeNames[t.ID]; ok {
		return name
	}

	return fmt.Sprintf("nodeType(%d)", t.ID)
}

// Operational reports whether robots are serviced at nodes of this role:
// every dockWaitUndock and waitPOI role plus parking. Edges touching an
// operational POI never receive a bulk capacity.
func (t NodeType) Operational() bool {
	return t.Section == SectionDockWaitUndock || t.Section == SectionWaitPOI || t == Parking
}

// Position is a point on the floor plan, meters.
type Position struct {
	X float64
	Y float64
}

// DistanceTo returns the Euclidean distance to q.
func (p Position) DistanceTo(q Position) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}
