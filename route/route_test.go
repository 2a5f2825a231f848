package route

import (
	"errors"
	"reflect"
	"testing"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/source"
)

// ---------------------------------------------------------------------------
// fixtures
// ---------------------------------------------------------------------------

// diamond builds two parallel lanes from A to D. The upper lane runs through
// a service stand (POI "P1"), the lower one through open travel space.
//
//	A -> B(P1) -> D   cost 1+1 = 2
//	A -> C     -> D   cost 2+2 = 4
func diamond(t *testing.T) *core.Graph {
	t.Helper()
	g := core.NewGraph()

	nodes := []core.Node{
		{ID: "A", Kind: core.KindIntersectionOut},
		{ID: "B", Kind: core.KindWait, POI: "P1"},
		{ID: "C", Kind: core.KindNoChanges},
		{ID: "D", Kind: core.KindIntersectionIn},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%q): %v", n.ID, err)
		}
	}
	edges := []core.Edge{
		{From: "A", To: "B", Label: core.LabelGoTo, Weight: 1, MaxRobots: 1},
		{From: "B", To: "D", Label: core.LabelGoTo, Weight: 1, MaxRobots: 1},
		{From: "A", To: "C", Label: core.LabelGoTo, Weight: 2, MaxRobots: 1},
		{From: "C", To: "D", Label: core.LabelGoTo, Weight: 2, MaxRobots: 1},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s): %v", e.Key(), err)
		}
	}
	if err := g.RegisterPOI("P1", source.Load); err != nil {
		t.Fatalf("RegisterPOI: %v", err)
	}
	return g
}

// ---------------------------------------------------------------------------
// validation
// ---------------------------------------------------------------------------

func TestPathValidation(t *testing.T) {
	g := diamond(t)

	if _, err := Path(nil, "A", "D"); !errors.Is(err, ErrNilGraph) {
		t.Fatalf("nil graph: got %v, want ErrNilGraph", err)
	}
	if _, err := Path(g, "A", "A"); !errors.Is(err, ErrSameNode) {
		t.Fatalf("same node: got %v, want ErrSameNode", err)
	}
	if _, err := Path(g, "Z", "D"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("missing start: got %v, want ErrNodeNotFound", err)
	}
	if _, err := Path(g, "A", "Z"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("missing end: got %v, want ErrNodeNotFound", err)
	}
}

func TestPathNoRoute(t *testing.T) {
	g := diamond(t)
	// D has no out-edges, so the reverse trip cannot exist.
	if _, err := Path(g, "D", "A"); !errors.Is(err, ErrNoPath) {
		t.Fatalf("no route: got %v, want ErrNoPath", err)
	}
	if _, err := PathLength(g, "D", "A"); !errors.Is(err, ErrNoPath) {
		t.Fatalf("no route length: got %v, want ErrNoPath", err)
	}
}

// ---------------------------------------------------------------------------
// shortest paths
// ---------------------------------------------------------------------------

func TestPathShortest(t *testing.T) {
	g := diamond(t)

	got, err := Path(g, "A", "D")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if want := []string{"A", "B", "D"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Path: got %v, want %v", got, want)
	}

	n, err := PathLength(g, "A", "D")
	if err != nil {
		t.Fatalf("PathLength: %v", err)
	}
	if n != 2 {
		t.Fatalf("PathLength: got %d, want 2", n)
	}
}

func TestPathLengthSameNode(t *testing.T) {
	g := diamond(t)

	n, err := PathLength(g, "A", "A")
	if err != nil || n != 0 {
		t.Fatalf("PathLength(A,A): got %d %v, want 0", n, err)
	}
	if _, err = PathLength(g, "Z", "Z"); !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("PathLength(Z,Z): got %v, want ErrNodeNotFound", err)
	}
}

func TestPathSkipsUnreachableEdges(t *testing.T) {
	g := diamond(t)
	// Disabling the fast lane reroutes through the slow one.
	k := core.EdgeKey{From: "A", To: "B"}
	if err := g.SetEdgeWeight(k, core.WeightUnreachable); err != nil {
		t.Fatalf("SetEdgeWeight: %v", err)
	}

	got, err := Path(g, "A", "D")
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if want := []string{"A", "C", "D"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Path: got %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// masking
// ---------------------------------------------------------------------------

func TestPathWithMask(t *testing.T) {
	g := diamond(t)
	// Hide the B lane explicitly.
	mask := func(e core.Edge) bool { return e.To != "B" }

	got, err := Path(g, "A", "D", WithMask(mask))
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if want := []string{"A", "C", "D"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("masked path: got %v, want %v", got, want)
	}
}

func TestOtherPOIsBlocked(t *testing.T) {
	g := diamond(t)

	// A trip with no business at P1 must route around it.
	got, err := Path(g, "A", "D", WithMask(OtherPOIsBlocked(g)))
	if err != nil {
		t.Fatalf("Path(blocked): %v", err)
	}
	if want := []string{"A", "C", "D"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("blocked path: got %v, want %v", got, want)
	}

	// The same trip bound for P1 may pass through it.
	got, err = Path(g, "A", "D", WithMask(OtherPOIsBlocked(g, "P1")))
	if err != nil {
		t.Fatalf("Path(allowed): %v", err)
	}
	if want := []string{"A", "B", "D"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("allowed path: got %v, want %v", got, want)
	}
}

func TestOtherPOIsBlockedFullyCut(t *testing.T) {
	// A single lane through a foreign POI leaves no admissible route.
	g := core.NewGraph()
	for _, id := range []string{"A", "D"} {
		if err := g.AddNode(core.Node{ID: id}); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}
	if err := g.AddNode(core.Node{ID: "B", POI: "P1"}); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if err := g.AddEdge(core.Edge{From: "A", To: "B", Weight: 1, MaxRobots: 1}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	if err := g.AddEdge(core.Edge{From: "B", To: "D", Weight: 1, MaxRobots: 1}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}

	if _, err := Path(g, "A", "D", WithMask(OtherPOIsBlocked(g))); !errors.Is(err, ErrNoPath) {
		t.Fatalf("fully cut: got %v, want ErrNoPath", err)
	}
}
