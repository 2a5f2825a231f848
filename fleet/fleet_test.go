package fleet

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/source"
	"github.com/katalvlaran/fleetpath/tasks"
)

func edgeKey(from, to string) *core.EdgeKey {
	return &core.EdgeKey{From: from, To: to}
}

func travelTask(id, robot, poi string) *tasks.Task {
	return &tasks.Task{
		ID:        id,
		RobotID:   robot,
		StartTime: "2018-06-29 10:00:00",
		Current:   -1,
		Status:    tasks.StatusToDo,
		Priority:  tasks.DefaultPriority,
		Behaviours: []tasks.Behaviour{
			{ID: "1", Kind: tasks.KindGoTo, To: poi},
		},
	}
}

func onEdge(id, from, to string) Robot {
	return Robot{ID: id, Edge: edgeKey(from, to), POI: source.NoPOI, PlanningOn: true, IsFree: true}
}

func atPOI(id, poi string) Robot {
	return Robot{ID: id, POI: poi, PlanningOn: true, IsFree: true}
}

// ---------------------------------------------------------------------------

func TestRobotJSON(t *testing.T) {
	raw := []byte(`{"id":"r1","edge":["4","5"],"poiId":"0","planningOn":true,"isFree":false,"timeRemaining":7.5}`)

	var r Robot
	require.NoError(t, json.Unmarshal(raw, &r))
	assert.Equal(t, "r1", r.ID)
	require.NotNil(t, r.Edge)
	assert.Equal(t, core.EdgeKey{From: "4", To: "5"}, *r.Edge)
	assert.Equal(t, source.NoPOI, r.POI)
	assert.False(t, r.IsFree)
	assert.Equal(t, 7.5, r.TimeRemaining)

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))
}

func TestRobotJSONParkedAtPOI(t *testing.T) {
	raw := []byte(`{"id":"r2","edge":null,"poiId":"P3","planningOn":true,"isFree":true,"timeRemaining":0}`)

	var r Robot
	require.NoError(t, json.Unmarshal(raw, &r))
	assert.Nil(t, r.Edge)
	assert.Equal(t, "P3", r.POI)
}

func TestRobotValidate(t *testing.T) {
	missing := Robot{ID: "r1", POI: source.NoPOI}
	assert.ErrorIs(t, missing.Validate(), ErrRobotInput, "no edge and no POI")

	negative := onEdge("r1", "a", "b")
	negative.TimeRemaining = -1
	assert.ErrorIs(t, negative.Validate(), ErrRobotInput)

	anon := onEdge("", "a", "b")
	assert.ErrorIs(t, anon.Validate(), ErrRobotInput)
}

func TestCurrentNode(t *testing.T) {
	r := onEdge("r1", "4", "5")
	node, ok := r.CurrentNode()
	require.True(t, ok)
	assert.Equal(t, "5", node, "robot lands on the edge's destination")

	parked := atPOI("r2", "P1")
	_, ok = parked.CurrentNode()
	assert.False(t, ok)
}

// ---------------------------------------------------------------------------

func TestNewPlanManager(t *testing.T) {
	base := map[string]core.EdgeKey{"P1": {From: "u", To: "e"}}
	off := onEdge("r3", "a", "b")
	off.PlanningOn = false

	m, err := NewPlanManager([]Robot{onEdge("r1", "a", "b"), atPOI("r2", "P1"), off}, base)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len(), "planning-off robots stay out")
	assert.False(t, m.Has("r3"))

	parked, ok := m.Robot("r2")
	require.True(t, ok)
	require.NotNil(t, parked.Edge, "POI-parked robot resolves to the base edge")
	assert.Equal(t, core.EdgeKey{From: "u", To: "e"}, *parked.Edge)
}

func TestNewPlanManagerUnknownPOI(t *testing.T) {
	_, err := NewPlanManager([]Robot{atPOI("r1", "P9")}, nil)
	assert.ErrorIs(t, err, ErrRobotInput)
}

func TestNewPlanManagerCopies(t *testing.T) {
	in := []Robot{onEdge("r1", "a", "b")}
	in[0].Task = travelTask("t1", "r1", "P1")
	in[0].EndBeh = true

	m, err := NewPlanManager(in, nil)
	require.NoError(t, err)

	r, _ := m.Robot("r1")
	assert.Nil(t, r.Task, "planning layer resets at pass entry")
	assert.False(t, r.EndBeh)

	r.Edge.From = "z"
	assert.Equal(t, "a", in[0].Edge.From, "working copy mutated the input")
}

// ---------------------------------------------------------------------------

func TestSetTask(t *testing.T) {
	m, err := NewPlanManager([]Robot{onEdge("r1", "a", "b")}, nil)
	require.NoError(t, err)

	task := travelTask("t1", "", "P1")
	require.NoError(t, m.SetTask("r1", task))
	assert.Equal(t, "r1", task.RobotID, "binding writes the robot onto the task")

	r, _ := m.Robot("r1")
	require.NotNil(t, r.Task)
	assert.Equal(t, "t1", r.Task.ID)

	assert.ErrorIs(t, m.SetTask("ghost", travelTask("t2", "", "P1")), ErrUnknownRobot)
	assert.ErrorIs(t, m.SetTask("r1", travelTask("t3", "r9", "P1")), ErrTaskMismatch)
}

func TestPlanningWriteOrder(t *testing.T) {
	m, err := NewPlanManager([]Robot{onEdge("r1", "a", "b")}, nil)
	require.NoError(t, err)
	next := core.EdgeKey{From: "b", To: "c"}

	assert.ErrorIs(t, m.SetNextEdge("r1", next), ErrNoTask)
	assert.ErrorIs(t, m.SetEndBeh("r1", true), ErrNoTask)

	require.NoError(t, m.SetTask("r1", travelTask("t1", "", "P1")))
	assert.ErrorIs(t, m.SetEndBeh("r1", true), ErrNoNextEdge)

	require.NoError(t, m.SetNextEdge("r1", next))
	require.NoError(t, m.SetEndBeh("r1", true))

	r, _ := m.Robot("r1")
	assert.Equal(t, next, *r.NextEdge)
	assert.True(t, r.EndBeh)

	assert.ErrorIs(t, m.SetNextEdge("ghost", next), ErrUnknownRobot)
}

// ---------------------------------------------------------------------------

func TestFreeAndBusy(t *testing.T) {
	m, err := NewPlanManager([]Robot{
		onEdge("r2", "a", "b"),
		onEdge("r1", "b", "c"),
		onEdge("r3", "c", "d"),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, m.SetTask("r2", travelTask("t1", "", "P1")))

	var free []string
	for _, r := range m.FreeRobots() {
		free = append(free, r.ID)
	}
	assert.Equal(t, []string{"r1", "r3"}, free, "free robots in id order")

	busy := m.BusyRobots()
	require.Len(t, busy, 1)
	assert.Equal(t, "r2", busy[0].ID)
}

func TestEdgeMembership(t *testing.T) {
	m, err := NewPlanManager([]Robot{
		onEdge("r1", "a", "b"),
		onEdge("r2", "b", "c"),
		onEdge("r3", "a", "b"),
	}, nil)
	require.NoError(t, err)

	got := m.RobotsOnEdges([]core.EdgeKey{{From: "a", To: "b"}})
	assert.Equal(t, []string{"r1", "r3"}, got)

	require.NoError(t, m.SetTask("r2", travelTask("t1", "", "P1")))
	require.NoError(t, m.SetNextEdge("r2", core.EdgeKey{From: "c", To: "d"}))

	got = m.RobotsOnFutureEdges([]core.EdgeKey{{From: "c", To: "d"}, {From: "x", To: "y"}})
	assert.Equal(t, []string{"r2"}, got)
	assert.Empty(t, m.RobotsOnFutureEdges([]core.EdgeKey{{From: "a", To: "b"}}))
}

func TestCurrentGoals(t *testing.T) {
	m, err := NewPlanManager([]Robot{onEdge("r1", "a", "b"), onEdge("r2", "b", "c")}, nil)
	require.NoError(t, err)
	require.NoError(t, m.SetTask("r1", travelTask("t1", "", "P5")))

	goals := m.CurrentGoals()
	assert.Equal(t, map[string]string{"r1": "P5"}, goals)
}
