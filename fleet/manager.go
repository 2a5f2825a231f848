package fleet

import (
	"fmt"
	"sort"

	set "github.com/hashicorp/go-set/v3"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/tasks"
)

// PlanManager owns the working copies of the robots a planning pass
// assigns tasks and edges to.
type PlanManager struct {
	robots map[string]*Robot
}

// NewPlanManager copies the reported robots, dropping those with planning
// disabled and resolving POI-parked robots onto their stand's base edge.
// Returns ErrRobotInput when a record fails validation or parks at a POI
// with no base edge.
func NewPlanManager(reported []Robot, basePOIEdges map[string]core.EdgeKey) (*PlanManager, error) {
	m := &PlanManager{robots: make(map[string]*Robot, len(reported))}
	for i := range reported {
		r := &reported[i]
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if !r.PlanningOn {
			continue
		}
		work := r.clone()
		if work.Edge == nil {
			base, ok := basePOIEdges[work.POI]
			if !ok {
				return nil, fmt.Errorf("%w: robot %q parked at POI %q with no base edge",
					ErrRobotInput, work.ID, work.POI)
			}
			work.Edge = &base
		}
		m.robots[work.ID] = work
	}

	return m, nil
}

// Robot returns the working copy with the given id.
func (m *PlanManager) Robot(id string) (*Robot, bool) {
	r, ok := m.robots[id]

	return r, ok
}

// Has reports whether the robot is under planning.
func (m *PlanManager) Has(id string) bool {
	_, ok := m.robots[id]

	return ok
}

// Len returns the number of robots under planning.
func (m *PlanManager) Len() int { return len(m.robots) }

// Robots returns all working copies sorted by id.
func (m *PlanManager) Robots() []*Robot {
	out := make([]*Robot, 0, len(m.robots))
	for _, r := range m.robots {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// SetTask binds a task to the robot.
// Returns ErrUnknownRobot when the robot is not under planning and
// ErrTaskMismatch when the task names a different robot.
func (m *PlanManager) SetTask(robotID string, task *tasks.Task) error {
	r, ok := m.robots[robotID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRobot, robotID)
	}
	if task.RobotID != "" && task.RobotID != robotID {
		return fmt.Errorf("%w: task %q wants robot %q, got %q",
			ErrTaskMismatch, task.ID, task.RobotID, robotID)
	}
	task.RobotID = robotID
	r.Task = task

	return nil
}

// SetNextEdge records the next transition to send to the robot.
// Returns ErrUnknownRobot or ErrNoTask.
func (m *PlanManager) SetNextEdge(robotID string, k core.EdgeKey) error {
	r, ok := m.robots[robotID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRobot, robotID)
	}
	if r.Task == nil {
		return fmt.Errorf("%w: %q cannot take a next edge", ErrNoTask, robotID)
	}
	r.NextEdge = &k

	return nil
}

// SetEndBeh records whether the robot's next transition finishes its
// current behaviour.
// Returns ErrUnknownRobot, ErrNoTask or ErrNoNextEdge.
func (m *PlanManager) SetEndBeh(robotID string, endBeh bool) error {
	r, ok := m.robots[robotID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRobot, robotID)
	}
	if r.Task == nil {
		return fmt.Errorf("%w: %q cannot take an end marker", ErrNoTask, robotID)
	}
	if r.NextEdge == nil {
		return fmt.Errorf("%w: %q cannot take an end marker", ErrNoNextEdge, robotID)
	}
	r.EndBeh = endBeh

	return nil
}

// FreeRobots returns the robots without a task, sorted by id.
func (m *PlanManager) FreeRobots() []*Robot {
	out := make([]*Robot, 0, len(m.robots))
	for _, r := range m.Robots() {
		if r.Task == nil {
			out = append(out, r)
		}
	}

	return out
}

// BusyRobots returns the robots with a task, sorted by id.
func (m *PlanManager) BusyRobots() []*Robot {
	out := make([]*Robot, 0, len(m.robots))
	for _, r := range m.Robots() {
		if r.Task != nil {
			out = append(out, r)
		}
	}

	return out
}

// RobotsOnEdges returns the ids of robots whose current edge is one of the
// given keys, in id order.
func (m *PlanManager) RobotsOnEdges(keys []core.EdgeKey) []string {
	wanted := set.From(keys)
	var out []string
	for _, r := range m.Robots() {
		if r.Edge != nil && wanted.Contains(*r.Edge) {
			out = append(out, r.ID)
		}
	}

	return out
}

// RobotsOnFutureEdges returns the ids of robots whose planned next edge is
// one of the given keys, in id order.
func (m *PlanManager) RobotsOnFutureEdges(keys []core.EdgeKey) []string {
	wanted := set.From(keys)
	var out []string
	for _, r := range m.Robots() {
		if r.NextEdge != nil && wanted.Contains(*r.NextEdge) {
			out = append(out, r.ID)
		}
	}

	return out
}

// CurrentGoals returns, per busy robot, the POI its task is directed at.
// Robots whose task has no travel target are skipped.
func (m *PlanManager) CurrentGoals() map[string]string {
	out := make(map[string]string)
	for _, r := range m.BusyRobots() {
		if poi, ok := r.DestinationGoal(); ok {
			out[r.ID] = poi
		}
	}

	return out
}
