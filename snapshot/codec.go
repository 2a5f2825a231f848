package snapshot

import (
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/dispatch"
	"github.com/katalvlaran/fleetpath/fleet"
	"github.com/katalvlaran/fleetpath/source"
	"github.com/katalvlaran/fleetpath/tasks"
)

// Sentinel errors of the snapshot boundary.
var (
	// ErrInput indicates a wire payload that failed decoding or validation.
	ErrInput = errors.New("snapshot: malformed input")

	// ErrConfig indicates an unreadable or inconsistent tunables file.
	ErrConfig = errors.New("snapshot: bad config")

	// ErrWatcher indicates the source-change watcher failed.
	ErrWatcher = errors.New("snapshot: watcher failure")
)

// DecodeGraph decodes and validates a source-graph payload.
// Returns ErrInput wrapping the decode failure, or the source validation
// error as is.
func DecodeGraph(data []byte) (*source.Graph, error) {
	g := source.NewGraph()
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("%w: graph: %v", ErrInput, err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}

// fleetRecord is one robot's telemetry as stored: the robot id lives in the
// enclosing map key, not in the record.
type fleetRecord struct {
	Edge          *[2]string `json:"edge"`
	POI           string     `json:"poiId"`
	PlanningOn    bool       `json:"planningOn"`
	IsFree        bool       `json:"isFree"`
	TimeRemaining float64    `json:"timeRemaining"`
}

// DecodeFleet decodes a fleet payload (robot id to telemetry record) into
// validated robot snapshots sorted by id.
// Returns ErrInput or fleet.ErrRobotInput.
func DecodeFleet(data []byte) ([]fleet.Robot, error) {
	var wire map[string]fleetRecord
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: fleet: %v", ErrInput, err)
	}

	out := make([]fleet.Robot, 0, len(wire))
	for id, rec := range wire {
		r := fleet.Robot{
			ID:            id,
			POI:           rec.POI,
			PlanningOn:    rec.PlanningOn,
			IsFree:        rec.IsFree,
			TimeRemaining: rec.TimeRemaining,
		}
		if r.POI == "" {
			r.POI = source.NoPOI
		}
		if rec.Edge != nil {
			r.Edge = &core.EdgeKey{From: rec.Edge[0], To: rec.Edge[1]}
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// DecodeBacklog decodes a task-backlog payload (a task list) into validated
// orders in stored sequence.
// Returns ErrInput or tasks.ErrTaskInput.
func DecodeBacklog(data []byte) ([]tasks.Task, error) {
	var out []tasks.Task
	if err := json.Unmarshal(data, &out); err != nil {
		if errors.Is(err, tasks.ErrTaskInput) || errors.Is(err, tasks.ErrBehaviourInput) {
			return nil, err
		}

		return nil, fmt.Errorf("%w: backlog: %v", ErrInput, err)
	}
	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// planWire is the published plan layout.
type planWire struct {
	PlanID string                    `json:"planId"`
	Robots map[string]assignmentWire `json:"robots"`
}

type assignmentWire struct {
	TaskID   string    `json:"taskId"`
	NextEdge [2]string `json:"nextEdge"`
	EndBeh   bool      `json:"endBeh"`
}

// EncodePlan encodes a finished plan under the given correlation id.
func EncodePlan(planID string, plan dispatch.Plan) ([]byte, error) {
	w := planWire{PlanID: planID, Robots: make(map[string]assignmentWire, len(plan))}
	for robotID, a := range plan {
		w.Robots[robotID] = assignmentWire{
			TaskID:   a.TaskID,
			NextEdge: [2]string{a.NextEdge.From, a.NextEdge.To},
			EndBeh:   a.EndBeh,
		}
	}

	return json.Marshal(w)
}

// DecodePlan decodes a published plan, the inverse of EncodePlan. Mostly a
// test and tooling aid; the planner itself never reads plans back.
// Returns ErrInput.
func DecodePlan(data []byte) (string, dispatch.Plan, error) {
	var w planWire
	if err := json.Unmarshal(data, &w); err != nil {
		return "", nil, fmt.Errorf("%w: plan: %v", ErrInput, err)
	}
	plan := make(dispatch.Plan, len(w.Robots))
	for robotID, a := range w.Robots {
		plan[robotID] = dispatch.Assignment{
			TaskID:   a.TaskID,
			NextEdge: core.EdgeKey{From: a.NextEdge[0], To: a.NextEdge[1]},
			EndBeh:   a.EndBeh,
		}
	}

	return w.PlanID, plan, nil
}
