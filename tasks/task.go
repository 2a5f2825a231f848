package tasks

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Status is the lifecycle state of a task.
type Status string

const (
	// StatusToDo marks a fresh task not yet assigned to a robot.
	StatusToDo Status = "To Do"

	// StatusInProgress marks a task a robot is executing.
	StatusInProgress Status = "IN_PROGRESS"

	// StatusAssigned marks a task handed to a robot awaiting confirmation.
	StatusAssigned Status = "ASSIGN"

	// StatusDone marks a finished task.
	StatusDone Status = "COMPLETED"
)

// knownStatuses lists every accepted lifecycle state.
var knownStatuses = map[Status]bool{
	StatusToDo:       true,
	StatusInProgress: true,
	StatusAssigned:   true,
	StatusDone:       true,
}

// StartTimeLayout is the submission timestamp format.
const StartTimeLayout = "2006-01-02 15:04:05"

// DefaultPriority applies when a task arrives without one.
const DefaultPriority = 3

// Task is one transport order.
type Task struct {
	// ID identifies the task.
	ID string

	// RobotID is the executing robot, empty while unassigned.
	RobotID string

	// StartTime is the submission timestamp in StartTimeLayout.
	StartTime string

	// Current indexes the behaviour in progress, -1 before the first one
	// starts.
	Current int

	// Status is the lifecycle state.
	Status Status

	// Priority orders the queue; higher runs earlier.
	Priority int

	// Behaviours is the ordered step list.
	Behaviours []Behaviour

	// arrival is the submission order inside the Manager.
	arrival int
}

// Validate checks structural and lifecycle consistency.
// Returns ErrTaskInput describing the first defect found.
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: task id is empty", ErrTaskInput)
	}
	if !knownStatuses[t.Status] {
		return fmt.Errorf("%w: task %q has unknown status %q", ErrTaskInput, t.ID, t.Status)
	}
	if t.RobotID == "" && t.Status != StatusToDo {
		return fmt.Errorf("%w: task %q was started but has no robot", ErrTaskInput, t.ID)
	}
	if len(t.Behaviours) == 0 {
		return fmt.Errorf("%w: task %q has no behaviours", ErrTaskInput, t.ID)
	}
	if t.Current < -1 || t.Current > len(t.Behaviours)-1 {
		return fmt.Errorf("%w: task %q behaviour index %d outside [-1,%d]",
			ErrTaskInput, t.ID, t.Current, len(t.Behaviours)-1)
	}
	if _, err := time.Parse(StartTimeLayout, t.StartTime); err != nil {
		return fmt.Errorf("%w: task %q start time %q, want YYYY-mm-dd HH:MM:SS",
			ErrTaskInput, t.ID, t.StartTime)
	}
	for _, b := range t.Behaviours {
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%w: task %q: %v", ErrTaskInput, t.ID, err)
		}
	}

	return nil
}

// Started reports whether the task left the To Do state.
func (t *Task) Started() bool { return t.Status != StatusToDo }

// Done reports whether the task completed.
func (t *Task) Done() bool { return t.Status == StatusDone }

// MarkStarted moves a fresh task into execution by the given robot.
func (t *Task) MarkStarted(robotID string) {
	t.Status = StatusInProgress
	t.RobotID = robotID
	t.Current = 0
}

// AdvanceBehaviour steps the task to its next behaviour, completing it
// after the last one.
func (t *Task) AdvanceBehaviour() {
	if t.Current < 0 {
		t.Current = 0
	}
	if t.Current >= len(t.Behaviours)-1 {
		t.Status = StatusDone

		return
	}
	t.Current++
}

// CurrentBehaviour returns the behaviour in progress, or the first one
// before the task starts. Call only on validated tasks.
func (t *Task) CurrentBehaviour() Behaviour {
	if t.Current == -1 {
		return t.Behaviours[0]
	}

	return t.Behaviours[t.Current]
}

// PoiGoal resolves the POI the task is currently directed at: the target
// of the current travel behaviour, or of the travel behaviour preceding the
// current service step. The second return is false for tasks with no travel
// behaviour at all.
func (t *Task) PoiGoal() (string, bool) {
	current := t.Current
	if current < 0 {
		current = 0
	}
	var goal string
	var found bool
	var prev *Behaviour

	for i := range t.Behaviours {
		b := t.Behaviours[i]
		if i == current {
			if poi, ok := b.POI(); ok {
				goal, found = poi, true
			} else if prev != nil {
				goal, _ = prev.POI()
				found = true
				break
			}
		}
		if b.IsGoTo() {
			prev = &t.Behaviours[i]
		}
	}
	if found {
		return goal, true
	}
	if prev != nil {
		poi, _ := prev.POI()

		return poi, true
	}

	return "", false
}

// Clone returns a deep copy with the behaviour slice detached.
func (t *Task) Clone() *Task {
	out := *t
	out.Behaviours = append([]Behaviour(nil), t.Behaviours...)

	return &out
}

// taskWire is the persisted layout. The robot field is null while the task
// is unassigned, and priority falls back to DefaultPriority when absent.
type taskWire struct {
	ID         string      `json:"id"`
	RobotID    *string     `json:"robot"`
	StartTime  string      `json:"start_time"`
	Current    int         `json:"current_behaviour_index"`
	Status     Status      `json:"status"`
	Priority   *int        `json:"priority,omitempty"`
	Behaviours []Behaviour `json:"behaviours"`
}

// MarshalJSON encodes the task in its wire layout.
func (t Task) MarshalJSON() ([]byte, error) {
	w := taskWire{
		ID:         t.ID,
		StartTime:  t.StartTime,
		Current:    t.Current,
		Status:     t.Status,
		Behaviours: t.Behaviours,
	}
	if t.RobotID != "" {
		w.RobotID = &t.RobotID
	}
	priority := t.Priority
	w.Priority = &priority

	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire layout, applying the priority default.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrTaskInput, err)
	}
	t.ID = w.ID
	t.RobotID = ""
	if w.RobotID != nil {
		t.RobotID = *w.RobotID
	}
	t.StartTime = w.StartTime
	t.Current = w.Current
	t.Status = w.Status
	t.Priority = DefaultPriority
	if w.Priority != nil {
		t.Priority = *w.Priority
	}
	t.Behaviours = w.Behaviours

	return nil
}
