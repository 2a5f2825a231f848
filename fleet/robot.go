package fleet

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/source"
	"github.com/katalvlaran/fleetpath/tasks"
)

// Sentinel errors for robot input and planning-state misuse.
var (
	// ErrRobotInput indicates a malformed robot record.
	ErrRobotInput = errors.New("fleet: bad robot input")

	// ErrUnknownRobot indicates an operation against an id not under
	// planning.
	ErrUnknownRobot = errors.New("fleet: robot not under planning")

	// ErrNoTask indicates a planning write against a robot with no task.
	ErrNoTask = errors.New("fleet: robot has no task")

	// ErrNoNextEdge indicates an end-of-behaviour write before the next
	// edge was set.
	ErrNoNextEdge = errors.New("fleet: robot has no next edge")

	// ErrTaskMismatch indicates a task bound to a different robot.
	ErrTaskMismatch = errors.New("fleet: task assigned to different robot")
)

// Robot is one fleet member under planning.
type Robot struct {
	// ID identifies the robot.
	ID string

	// Edge is the planning-graph edge the robot currently occupies, nil
	// when the robot reports a POI instead.
	Edge *core.EdgeKey

	// POI is the stand the robot is parked at, source.NoPOI when travelling.
	POI string

	// PlanningOn reports whether the robot takes part in planning.
	PlanningOn bool

	// IsFree reports whether the current behaviour has finished.
	IsFree bool

	// TimeRemaining is the seconds left in the current behaviour.
	TimeRemaining float64

	// Task is the order the robot executes, set during a planning pass.
	Task *tasks.Task

	// NextEdge is the next transition to send, set during a planning pass.
	NextEdge *core.EdgeKey

	// EndBeh reports whether traversing NextEdge finishes the current
	// behaviour.
	EndBeh bool
}

// CurrentNode returns the node the robot is at, or will be at once its
// current edge completes. The second return is false while the robot has
// no resolved edge.
func (r *Robot) CurrentNode() (string, bool) {
	if r.Edge == nil {
		return "", false
	}

	return r.Edge.To, true
}

// DestinationGoal returns the POI the robot's task is directed at. The
// second return is false for robots without a task or tasks without a
// travel target.
func (r *Robot) DestinationGoal() (string, bool) {
	if r.Task == nil {
		return "", false
	}

	return r.Task.PoiGoal()
}

// Validate checks the reported fields.
// Returns ErrRobotInput describing the first defect found.
func (r *Robot) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: robot id is empty", ErrRobotInput)
	}
	if r.Edge == nil && (r.POI == "" || r.POI == source.NoPOI) {
		return fmt.Errorf("%w: robot %q reports neither edge nor POI", ErrRobotInput, r.ID)
	}
	if r.TimeRemaining < 0 {
		return fmt.Errorf("%w: robot %q has negative time remaining", ErrRobotInput, r.ID)
	}

	return nil
}

// clone detaches a working copy with the planning layer reset.
func (r *Robot) clone() *Robot {
	out := *r
	if r.Edge != nil {
		k := *r.Edge
		out.Edge = &k
	}
	out.Task = nil
	out.NextEdge = nil
	out.EndBeh = false

	return &out
}

// robotWire is the telemetry layout. The edge arrives as a two-element
// node-id array or null for POI-parked robots.
type robotWire struct {
	ID            string     `json:"id"`
	Edge          *[2]string `json:"edge"`
	POI           string     `json:"poiId"`
	PlanningOn    bool       `json:"planningOn"`
	IsFree        bool       `json:"isFree"`
	TimeRemaining float64    `json:"timeRemaining"`
}

// MarshalJSON encodes the reported layer in the telemetry layout.
func (r Robot) MarshalJSON() ([]byte, error) {
	w := robotWire{
		ID:            r.ID,
		POI:           r.POI,
		PlanningOn:    r.PlanningOn,
		IsFree:        r.IsFree,
		TimeRemaining: r.TimeRemaining,
	}
	if w.POI == "" {
		w.POI = source.NoPOI
	}
	if r.Edge != nil {
		w.Edge = &[2]string{r.Edge.From, r.Edge.To}
	}

	return json.Marshal(w)
}

// UnmarshalJSON decodes the telemetry layout and validates the result.
func (r *Robot) UnmarshalJSON(data []byte) error {
	var w robotWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrRobotInput, err)
	}
	r.ID = w.ID
	r.Edge = nil
	if w.Edge != nil {
		r.Edge = &core.EdgeKey{From: w.Edge[0], To: w.Edge[1]}
	}
	r.POI = w.POI
	if r.POI == "" {
		r.POI = source.NoPOI
	}
	r.PlanningOn = w.PlanningOn
	r.IsFree = w.IsFree
	r.TimeRemaining = w.TimeRemaining
	r.Task = nil
	r.NextEdge = nil
	r.EndBeh = false

	return r.Validate()
}
