// Package core declares the planning-graph value types, the Graph container,
// and the package sentinel errors.
//
// The concurrency model mirrors the container's two concerns: muNode guards
// the node map and the POI registry, muEdge guards the edge maps and both
// adjacency directions. All read APIs return copies, so callers never alias
// internal state.
package core

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/katalvlaran/fleetpath/source"
)

// Sentinel errors for planning-graph operations.
var (
	// ErrEmptyNodeID indicates a node or endpoint with an empty id.
	ErrEmptyNodeID = errors.New("core: node id is empty")

	// ErrDuplicateNode indicates an AddNode for an id already present.
	ErrDuplicateNode = errors.New("core: node already present")

	// ErrNodeNotFound indicates an operation referenced a missing node.
	ErrNodeNotFound = errors.New("core: node not found")

	// ErrDuplicateEdge indicates an AddEdge for endpoints already connected.
	ErrDuplicateEdge = errors.New("core: edge already present")

	// ErrEdgeNotFound indicates an operation referenced a missing edge.
	ErrEdgeNotFound = errors.New("core: edge not found")

	// ErrSelfLoop indicates an edge with identical endpoints; planning edges
	// always move the robot somewhere.
	ErrSelfLoop = errors.New("core: self-loop not allowed")

	// ErrUnknownPOI indicates a POI id absent from the registry.
	ErrUnknownPOI = errors.New("core: unknown POI id")

	// ErrWrongPOIKind indicates a behaviour end-node lookup against a POI
	// whose role cannot host that behaviour.
	ErrWrongPOIKind = errors.New("core: POI role does not support this behaviour")

	// ErrGroupOverflow indicates more than one robot inside an exclusion group.
	ErrGroupOverflow = errors.New("core: more than one robot in exclusion group")

	// ErrEdgeCapacity indicates more robots on an independent edge than maxRobots.
	ErrEdgeCapacity = errors.New("core: robots on edge exceed maxRobots")

	// ErrBadStructure indicates a POI whose expansion shape is not one of the
	// recognized chains; the graph was not produced by the builder contract.
	ErrBadStructure = errors.New("core: POI expansion shape not recognized")
)

// WeightUnreachable marks an edge whose source path crosses an inactive
// source edge. Routing must skip such edges entirely; the value is a
// sentinel, not a cost.
const WeightUnreachable = -1

// Kind enumerates the planning-node states a source node expands into.
type Kind int

const (
	// KindDock is the docking entry of a dockWaitUndock chain.
	KindDock Kind = iota + 1

	// KindWait is the service seat of a chain (second of dockWaitUndock,
	// first of waitPOI).
	KindWait

	// KindUndock is the undocking seat of a dockWaitUndock chain.
	KindUndock

	// KindEnd is the exit of a POI chain.
	KindEnd

	// KindNoChanges is the single node of waiting/departure/parking/queue POIs.
	KindNoChanges

	// KindIntersectionIn is the entry half of an intersection for one
	// incoming direction.
	KindIntersectionIn

	// KindIntersectionOut is the exit half of an intersection for one
	// outgoing direction.
	KindIntersectionOut
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindDock:
		return "dock"
	case KindWait:
		return "wait"
	case KindUndock:
		return "undock"
	case KindEnd:
		return "end"
	case KindNoChanges:
		return "noChanges"
	case KindIntersectionIn:
		return "intersection_in"
	case KindIntersectionOut:
		return "intersection_out"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Label is the behaviour a planning edge executes.
type Label string

const (
	// LabelGoTo moves the robot along a corridor segment.
	LabelGoTo Label = "GO_TO"

	// LabelDock runs the docking procedure.
	LabelDock Label = "DOCK"

	// LabelWait covers the service (or battery-exchange) stay.
	LabelWait Label = "WAIT"

	// LabelUndock runs the undocking procedure.
	LabelUndock Label = "UNDOCK"
)

// EdgeKey identifies an edge by its endpoints. The planning graph holds at
// most one edge per ordered pair, so the pair is the edge's identity.
type EdgeKey struct {
	From string
	To   string
}

// String implements fmt.Stringer.
func (k EdgeKey) String() string { return k.From + "->" + k.To }

// Pose is a position plus heading on the floor plan.
type Pose struct {
	// Pos is the planar position, meters.
	Pos source.Position

	// Theta is the heading (yaw), radians.
	Theta float64
}

// Quaternion returns the planar-rotation quaternion components (z, w) that
// telemetry consumers expect; x and y are always zero for floor travel.
func (p Pose) Quaternion() (z, w float64) {
	return math.Sin(p.Theta / 2), math.Cos(p.Theta / 2)
}

// Node is one planning-graph node.
type Node struct {
	// ID uniquely identifies this node within its Graph.
	ID string

	// Kind is the planning state this node represents.
	Kind Kind

	// POI is the point-of-interest this node belongs to, source.NoPOI when none.
	POI string

	// Source is the source-graph node id this node derives from.
	Source string

	// Pos is the node position, inherited from the source node.
	Pos source.Position

	// Pose is the commanded stand pose at this node (position + heading).
	Pose Pose
}

// Edge is one planning-graph edge: a single atomic robot action.
type Edge struct {
	// From and To are planning-node ids.
	From string
	To   string

	// Label is the behaviour the edge executes.
	Label Label

	// Weight is the nominal traversal time, or WeightUnreachable.
	Weight int

	// Group is the mutual-exclusion group id, 0 for independent edges.
	Group int

	// MaxRobots caps simultaneous occupants of an independent edge.
	MaxRobots int

	// Way is the width class inherited from the source path.
	Way source.WayType

	// SourceNodes is the ordered source-node path the edge traverses.
	SourceNodes []string

	// SourceEdges lists contributing source-edge ids; {0} for edges the
	// builder fabricates (POI chains, intersection interiors).
	SourceEdges []int

	// ConnectedPOI tags approach edges with the POI whose service quota
	// they feed; empty when untagged.
	ConnectedPOI string

	// Robots holds the ids currently on the edge, rewritten each tick.
	Robots []string

	// Corridor is the swept-lane outline for the traversed segment.
	Corridor []source.Position
}

// Key returns the edge's identity pair.
func (e Edge) Key() EdgeKey { return EdgeKey{From: e.From, To: e.To} }

// Reachable reports whether the edge can be traversed at all.
func (e Edge) Reachable() bool { return e.Weight != WeightUnreachable }

// Graph is the planning-graph container.
//
// muNode protects nodes and the POI registry; muEdge protects the edge map
// and both adjacency directions. The graph is structurally immutable once
// the builder finishes; after that the only writes are the per-tick
// occupancy rewrite and test setups.
type Graph struct {
	muNode sync.RWMutex // guards nodes and pois
	muEdge sync.RWMutex // guards edges, out and in

	// nodes maps node id to node.
	nodes map[string]*Node

	// out and in index the same *Edge by both endpoints:
	// out[from][to] == in[to][from].
	out map[string]map[string]*Edge
	in  map[string]map[string]*Edge

	// pois registers poi id to its source role.
	pois map[string]source.NodeType

	edgeCount int
}

// NewGraph returns an empty planning graph.
// Complexity: O(1).
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		out:   make(map[string]map[string]*Edge),
		in:    make(map[string]map[string]*Edge),
		pois:  make(map[string]source.NodeType),
	}
}
