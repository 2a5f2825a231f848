package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/dispatch"
	"github.com/katalvlaran/fleetpath/fleet"
	"github.com/katalvlaran/fleetpath/route"
	"github.com/katalvlaran/fleetpath/source"
	"github.com/katalvlaran/fleetpath/tasks"
)

// ---------------------------------------------------------------------------
// fixture
// ---------------------------------------------------------------------------

// floor mirrors the dispatch test floor: two intersections, a parking
// pocket PP, a load stand PL with a wait chain, a charger PC with a full
// dock chain.
func floor(t *testing.T) *core.Graph {
	t.Helper()
	g := core.NewGraph()

	nodes := []core.Node{
		{ID: "Xi", Kind: core.KindIntersectionIn},
		{ID: "Xo", Kind: core.KindIntersectionOut},
		{ID: "Yi", Kind: core.KindIntersectionIn},
		{ID: "Yo", Kind: core.KindIntersectionOut},
		{ID: "P", Kind: core.KindNoChanges, POI: "PP"},
		{ID: "Lw", Kind: core.KindWait, POI: "PL"},
		{ID: "Le", Kind: core.KindEnd, POI: "PL"},
		{ID: "Cd", Kind: core.KindDock, POI: "PC"},
		{ID: "Cw", Kind: core.KindWait, POI: "PC"},
		{ID: "Cu", Kind: core.KindUndock, POI: "PC"},
		{ID: "Ce", Kind: core.KindEnd, POI: "PC"},
	}
	for _, n := range nodes {
		require.NoError(t, g.AddNode(n))
	}

	edges := []core.Edge{
		{From: "Xi", To: "Xo", Label: core.LabelGoTo, Weight: 3, Group: 10, MaxRobots: 1},
		{From: "Yi", To: "Yo", Label: core.LabelGoTo, Weight: 3, Group: 11, MaxRobots: 1},
		{From: "Xo", To: "Yi", Label: core.LabelGoTo, Weight: 8, MaxRobots: 3},
		{From: "Yo", To: "Xi", Label: core.LabelGoTo, Weight: 8, MaxRobots: 3},
		{From: "Xo", To: "P", Label: core.LabelGoTo, Weight: 4, Group: 1, MaxRobots: 1, ConnectedPOI: "PP"},
		{From: "P", To: "Xi", Label: core.LabelGoTo, Weight: 4, Group: 1, MaxRobots: 1},
		{From: "Yo", To: "Lw", Label: core.LabelGoTo, Weight: 5, MaxRobots: 1, ConnectedPOI: "PL"},
		{From: "Lw", To: "Le", Label: core.LabelWait, Weight: 10, Group: 2, MaxRobots: 1},
		{From: "Le", To: "Yi", Label: core.LabelGoTo, Weight: 5, MaxRobots: 1},
		{From: "Yo", To: "Cd", Label: core.LabelGoTo, Weight: 6, MaxRobots: 1, ConnectedPOI: "PC"},
		{From: "Cd", To: "Cw", Label: core.LabelDock, Weight: 20, Group: 3, MaxRobots: 1},
		{From: "Cw", To: "Cu", Label: core.LabelWait, Weight: 10, Group: 3, MaxRobots: 1},
		{From: "Cu", To: "Ce", Label: core.LabelUndock, Weight: 20, Group: 3, MaxRobots: 1},
		{From: "Ce", To: "Yi", Label: core.LabelGoTo, Weight: 6, MaxRobots: 1},
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e))
	}

	require.NoError(t, g.RegisterPOI("PP", source.Parking))
	require.NoError(t, g.RegisterPOI("PL", source.Load))
	require.NoError(t, g.RegisterPOI("PC", source.Charger))

	return g
}

func harness(t *testing.T, g *core.Graph, robots []fleet.Robot, backlog []tasks.Task) *Supervisor {
	t.Helper()
	d, err := dispatch.New(g)
	require.NoError(t, err)
	s, err := New(g, d, robots, backlog)
	require.NoError(t, err)

	return s
}

func parked(id, poi string) fleet.Robot {
	return fleet.Robot{ID: id, POI: poi, PlanningOn: true, IsFree: true}
}

func goTo(id, goal string) tasks.Task {
	return tasks.Task{
		ID:        id,
		StartTime: "2026-08-25 10:00:00",
		Current:   -1,
		Status:    tasks.StatusToDo,
		Priority:  tasks.DefaultPriority,
		Behaviours: []tasks.Behaviour{
			{ID: id + "-go", Kind: tasks.KindGoTo, To: goal},
		},
	}
}

func chargeTask(id string) tasks.Task {
	return tasks.Task{
		ID:        id,
		StartTime: "2026-08-25 10:00:00",
		Current:   -1,
		Status:    tasks.StatusToDo,
		Priority:  tasks.DefaultPriority,
		Behaviours: []tasks.Behaviour{
			{ID: id + "-go", Kind: tasks.KindGoTo, To: "PC"},
			{ID: id + "-dock", Kind: tasks.KindDock},
			{ID: id + "-charge", Kind: tasks.KindBatteryExchange},
			{ID: id + "-undock", Kind: tasks.KindUndock},
		},
	}
}

// ---------------------------------------------------------------------------
// construction
// ---------------------------------------------------------------------------

func TestNewValidation(t *testing.T) {
	g := floor(t)
	d, err := dispatch.New(g)
	require.NoError(t, err)

	_, err = New(nil, d, nil, nil)
	assert.ErrorIs(t, err, ErrNilDependency)

	_, err = New(g, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNilDependency)

	_, err = New(g, d, []fleet.Robot{{ID: ""}}, nil)
	assert.ErrorIs(t, err, fleet.ErrRobotInput)

	_, err = New(g, d, []fleet.Robot{parked("r1", "PP"), parked("r1", "PP")}, nil)
	assert.ErrorIs(t, err, fleet.ErrRobotInput)

	_, err = New(g, d, nil, []tasks.Task{{ID: "bad"}})
	assert.ErrorIs(t, err, tasks.ErrTaskInput)
}

// ---------------------------------------------------------------------------
// single ticks
// ---------------------------------------------------------------------------

func TestTickStartsOrderAndMovesRobot(t *testing.T) {
	s := harness(t, floor(t), []fleet.Robot{parked("r1", "PP")}, []tasks.Task{goTo("t1", "PL")})

	plan, err := s.Tick(1)
	require.NoError(t, err)
	require.Contains(t, plan, "r1")
	assert.Equal(t, core.EdgeKey{From: "P", To: "Xi"}, plan["r1"].NextEdge)

	robots := s.Robots()
	require.Len(t, robots, 1)
	require.NotNil(t, robots[0].Edge)
	assert.Equal(t, core.EdgeKey{From: "P", To: "Xi"}, *robots[0].Edge)
	assert.False(t, robots[0].IsFree)
	assert.InDelta(t, 4, robots[0].TimeRemaining, 1e-9)

	orders := s.Tasks()
	require.Len(t, orders, 1)
	assert.Equal(t, tasks.StatusInProgress, orders[0].Status)
	assert.Equal(t, "r1", orders[0].RobotID)
	assert.Equal(t, 0, orders[0].Current)
}

func TestTickCountsDownTraversal(t *testing.T) {
	s := harness(t, floor(t), []fleet.Robot{parked("r1", "PP")}, []tasks.Task{goTo("t1", "PL")})

	_, err := s.Tick(1)
	require.NoError(t, err)

	// Mid-edge ticks only advance time; the dispatcher issues nothing.
	plan, err := s.Tick(1)
	require.NoError(t, err)
	assert.Empty(t, plan)
	assert.InDelta(t, 3, s.Robots()[0].TimeRemaining, 1e-9)
}

// ---------------------------------------------------------------------------
// end-to-end runs
// ---------------------------------------------------------------------------

func TestRunSimpleDelivery(t *testing.T) {
	s := harness(t, floor(t), []fleet.Robot{parked("r1", "PP")}, []tasks.Task{goTo("t1", "PL")})

	ticks, err := s.Run(60, 1)
	require.NoError(t, err)
	assert.True(t, s.Done())
	// Pure travel costs 23s; planning happens on node boundaries.
	assert.GreaterOrEqual(t, ticks, 23)

	robots := s.Robots()
	assert.Equal(t, "Lw", robots[0].Edge.To, "the run ends at the stand's wait seat")
	assert.Equal(t, tasks.StatusDone, s.Tasks()[0].Status)
}

func TestRunFullChargeChain(t *testing.T) {
	s := harness(t, floor(t), []fleet.Robot{parked("r1", "PP")}, []tasks.Task{chargeTask("t1")})

	ticks, err := s.Run(120, 1)
	require.NoError(t, err)
	assert.True(t, s.Done())
	// Travel 24s plus dock 20, charge 10, undock 20.
	assert.GreaterOrEqual(t, ticks, 74)

	assert.Equal(t, "Ce", s.Robots()[0].Edge.To, "undocking ends at the chain exit")
	order := s.Tasks()[0]
	assert.Equal(t, tasks.StatusDone, order.Status)
	assert.Equal(t, 3, order.Current, "the index rests on the last behaviour")
}

func TestRunSequentialOrders(t *testing.T) {
	s := harness(t, floor(t),
		[]fleet.Robot{parked("r1", "PP")},
		[]tasks.Task{goTo("t1", "PL"), goTo("t2", "PP")},
	)

	_, err := s.Run(150, 1)
	require.NoError(t, err)
	assert.True(t, s.Done())

	// The robot delivered to the stand and returned to parking.
	assert.Equal(t, "P", s.Robots()[0].Edge.To)
	for _, order := range s.Tasks() {
		assert.Equal(t, tasks.StatusDone, order.Status)
		assert.Equal(t, "r1", order.RobotID)
	}
}

// ---------------------------------------------------------------------------
// degraded floors
// ---------------------------------------------------------------------------

func TestTickSurfacesNoRoute(t *testing.T) {
	g := floor(t)
	// The only eastbound corridor goes dark mid-shift.
	require.NoError(t, g.SetEdgeWeight(core.EdgeKey{From: "Xo", To: "Yi"}, core.WeightUnreachable))

	started := goTo("t1", "PL")
	started.RobotID = "r1"
	started.Status = tasks.StatusInProgress
	started.Current = 0

	s := harness(t, g, []fleet.Robot{parked("r1", "PP")}, []tasks.Task{started})

	_, err := s.Tick(1)
	assert.ErrorIs(t, err, route.ErrNoPath)
}

func TestRunUnreachableFreshOrderStalls(t *testing.T) {
	g := floor(t)
	require.NoError(t, g.SetEdgeWeight(core.EdgeKey{From: "Xo", To: "Yi"}, core.WeightUnreachable))

	s := harness(t, g, []fleet.Robot{parked("r1", "PP")}, []tasks.Task{goTo("t1", "PL")})

	// Unassignable fresh orders don't error; the run just never finishes.
	_, err := s.Run(5, 1)
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, tasks.StatusToDo, s.Tasks()[0].Status)
}
