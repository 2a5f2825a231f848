package tasks

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goTo(id, poi string) Behaviour {
	return Behaviour{ID: id, Kind: KindGoTo, To: poi}
}

func step(id string, kind Kind) Behaviour {
	return Behaviour{ID: id, Kind: kind}
}

// serviceTask is the canonical four-step visit to a docking stand.
func serviceTask(id, robot string, status Status, current int) Task {
	return Task{
		ID:        id,
		RobotID:   robot,
		StartTime: "2018-06-29 10:00:00",
		Current:   current,
		Status:    status,
		Priority:  DefaultPriority,
		Behaviours: []Behaviour{
			goTo("1", "P1"),
			step("2", KindDock),
			step("3", KindWait),
			step("4", KindUndock),
		},
	}
}

// ---------------------------------------------------------------------------

func TestKindNames(t *testing.T) {
	assert.Equal(t, "GO_TO", KindGoTo.String())
	assert.Equal(t, "DOCK", KindDock.String())
	assert.Equal(t, "3", KindWait.String(), "wait keeps its legacy wire name")
	assert.Equal(t, "BAT_EX", KindBatteryExchange.String())
	assert.Equal(t, "UNDOCK", KindUndock.String())

	for _, name := range []string{"GO_TO", "DOCK", "3", "BAT_EX", "UNDOCK"} {
		k, err := ParseKind(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, k.String())
	}
	_, err := ParseKind("FLY_TO")
	assert.ErrorIs(t, err, ErrBehaviourInput)
}

func TestBehaviourValidate(t *testing.T) {
	assert.NoError(t, goTo("1", "P1").Validate())
	assert.NoError(t, step("2", KindWait).Validate())

	assert.ErrorIs(t, Behaviour{Kind: KindDock}.Validate(), ErrBehaviourInput)
	assert.ErrorIs(t, Behaviour{ID: "1", Kind: Kind(99)}.Validate(), ErrBehaviourInput)
	assert.ErrorIs(t, Behaviour{ID: "1", Kind: KindGoTo}.Validate(), ErrBehaviourInput)
}

func TestBehaviourJSON(t *testing.T) {
	raw := []byte(`{"id":"7","parameters":{"name":"GO_TO","to":"P4"}}`)

	var b Behaviour
	require.NoError(t, json.Unmarshal(raw, &b))
	assert.Equal(t, Behaviour{ID: "7", Kind: KindGoTo, To: "P4"}, b)

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(out))

	var bad Behaviour
	err = json.Unmarshal([]byte(`{"id":"8","parameters":{"name":"FLY"}}`), &bad)
	assert.ErrorIs(t, err, ErrBehaviourInput)
}

// ---------------------------------------------------------------------------

func TestTaskValidate(t *testing.T) {
	ok := serviceTask("t1", "", StatusToDo, -1)
	require.NoError(t, ok.Validate())

	cases := []struct {
		name   string
		mutate func(*Task)
	}{
		{"empty id", func(task *Task) { task.ID = "" }},
		{"unknown status", func(task *Task) { task.Status = "PAUSED" }},
		{"started without robot", func(task *Task) { task.Status = StatusInProgress }},
		{"no behaviours", func(task *Task) { task.Behaviours = nil }},
		{"index below range", func(task *Task) { task.Current = -2 }},
		{"index above range", func(task *Task) { task.Current = 4 }},
		{"bad start time", func(task *Task) { task.StartTime = "29.06.2018" }},
		{"bad behaviour", func(task *Task) { task.Behaviours[0].To = "" }},
	}
	for _, tc := range cases {
		task := serviceTask("t1", "", StatusToDo, -1)
		tc.mutate(&task)
		assert.ErrorIs(t, task.Validate(), ErrTaskInput, tc.name)
	}
}

func TestTaskJSONDefaults(t *testing.T) {
	raw := []byte(`{
		"id": "t9",
		"robot": null,
		"start_time": "2018-06-29 10:00:00",
		"current_behaviour_index": -1,
		"status": "To Do",
		"behaviours": [{"id":"1","parameters":{"name":"GO_TO","to":"P2"}}]
	}`)

	var task Task
	require.NoError(t, json.Unmarshal(raw, &task))
	assert.Empty(t, task.RobotID, "null robot decodes to unassigned")
	assert.Equal(t, DefaultPriority, task.Priority, "missing priority falls back")
	require.NoError(t, task.Validate())

	// An assigned task keeps its robot through a round trip.
	task.RobotID = "r1"
	task.Status = StatusAssigned
	out, err := json.Marshal(&task)
	require.NoError(t, err)
	var back Task
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "r1", back.RobotID)
	assert.Equal(t, StatusAssigned, back.Status)
}

func TestTaskLifecycle(t *testing.T) {
	task := serviceTask("t1", "", StatusToDo, -1)
	assert.False(t, task.Started())
	assert.Equal(t, "1", task.CurrentBehaviour().ID, "fresh task starts at first behaviour")

	task = serviceTask("t1", "r1", StatusInProgress, 2)
	assert.True(t, task.Started())
	assert.Equal(t, "3", task.CurrentBehaviour().ID)

	// Full walk: start, step through every behaviour, complete.
	task = serviceTask("t2", "", StatusToDo, -1)
	task.MarkStarted("r2")
	assert.Equal(t, StatusInProgress, task.Status)
	assert.Equal(t, "r2", task.RobotID)
	assert.Equal(t, 0, task.Current)
	assert.False(t, task.Done())

	for task.Current < len(task.Behaviours)-1 {
		prev := task.Current
		task.AdvanceBehaviour()
		assert.Equal(t, prev+1, task.Current)
	}
	task.AdvanceBehaviour()
	assert.Equal(t, StatusDone, task.Status)
	assert.True(t, task.Done())
	assert.Equal(t, len(task.Behaviours)-1, task.Current, "completion keeps the last index")
}

func TestPoiGoal(t *testing.T) {
	// Travelling: the goal is the current travel target.
	task := serviceTask("t1", "r1", StatusInProgress, 0)
	poi, ok := task.PoiGoal()
	require.True(t, ok)
	assert.Equal(t, "P1", poi)

	// Mid-service: the goal is the stand the robot travelled to.
	task.Current = 2
	poi, ok = task.PoiGoal()
	require.True(t, ok)
	assert.Equal(t, "P1", poi)

	// Two-leg task: each leg reports its own target.
	twoLeg := Task{
		ID: "t2", RobotID: "r1", StartTime: "2018-06-29 10:00:00",
		Status: StatusInProgress, Current: 2, Priority: DefaultPriority,
		Behaviours: []Behaviour{
			goTo("1", "P1"),
			step("2", KindWait),
			goTo("3", "P2"),
			step("4", KindWait),
		},
	}
	poi, ok = twoLeg.PoiGoal()
	require.True(t, ok)
	assert.Equal(t, "P2", poi)
	twoLeg.Current = 3
	poi, ok = twoLeg.PoiGoal()
	require.True(t, ok)
	assert.Equal(t, "P2", poi)

	// No travel behaviour at all: no goal.
	bare := Task{ID: "t3", Behaviours: []Behaviour{step("1", KindWait)}, Current: -1}
	_, ok = bare.PoiGoal()
	assert.False(t, ok)
}

func TestPoiGoalDuplicateBehaviourIDs(t *testing.T) {
	// Sloppy backends reuse behaviour ids; the goal must follow the current
	// index, not some later behaviour that happens to share its id.
	dup := Task{
		ID: "t4", RobotID: "r1", StartTime: "2018-06-29 10:00:00",
		Status: StatusInProgress, Current: 0, Priority: DefaultPriority,
		Behaviours: []Behaviour{
			goTo("go", "P1"),
			goTo("go", "P2"),
		},
	}
	poi, ok := dup.PoiGoal()
	require.True(t, ok)
	assert.Equal(t, "P1", poi)

	dup.Current = 1
	poi, ok = dup.PoiGoal()
	require.True(t, ok)
	assert.Equal(t, "P2", poi)
}

// ---------------------------------------------------------------------------

func TestManagerOrdering(t *testing.T) {
	low := serviceTask("low", "", StatusToDo, -1)
	low.Priority = 1
	mid1 := serviceTask("mid1", "", StatusToDo, -1)
	mid2 := serviceTask("mid2", "", StatusToDo, -1)
	high := serviceTask("high", "", StatusToDo, -1)
	high.Priority = 9

	m, err := NewManager([]Task{low, mid1, mid2, high})
	require.NoError(t, err)

	var order []string
	for _, task := range m.Tasks() {
		order = append(order, task.ID)
	}
	assert.Equal(t, []string{"high", "mid1", "mid2", "low"}, order,
		"priority descending, ties keep submission order")
}

func TestManagerCopies(t *testing.T) {
	in := []Task{serviceTask("t1", "", StatusToDo, -1)}
	m, err := NewManager(in)
	require.NoError(t, err)

	queued, err := m.Get("t1")
	require.NoError(t, err)
	queued.RobotID = "r7"
	queued.Behaviours[0].To = "P9"

	assert.Empty(t, in[0].RobotID, "input task mutated through the queue")
	assert.Equal(t, "P1", in[0].Behaviours[0].To, "input behaviours mutated through the queue")
}

func TestManagerValidatesInput(t *testing.T) {
	bad := serviceTask("t1", "", StatusToDo, -1)
	bad.StartTime = "whenever"
	_, err := NewManager([]Task{bad})
	assert.ErrorIs(t, err, ErrTaskInput)
}

func TestManagerRemove(t *testing.T) {
	m, err := NewManager([]Task{
		serviceTask("t1", "", StatusToDo, -1),
		serviceTask("t2", "", StatusToDo, -1),
		serviceTask("t3", "", StatusToDo, -1),
	})
	require.NoError(t, err)

	m.RemoveByID([]string{"t2", "nope"})
	assert.Equal(t, 2, m.Len())
	_, err = m.Get("t2")
	assert.ErrorIs(t, err, ErrTaskManager)
	_, err = m.Get("t1")
	assert.NoError(t, err)
}

func TestManagerUnassignedUnstarted(t *testing.T) {
	free := serviceTask("free", "", StatusToDo, -1)
	running := serviceTask("running", "r1", StatusInProgress, 1)
	assigned := serviceTask("assigned", "r2", StatusAssigned, -1)

	m, err := NewManager([]Task{free, running, assigned})
	require.NoError(t, err)

	open := m.UnassignedUnstarted()
	require.Len(t, open, 1)
	assert.Equal(t, "free", open[0].ID)
}
