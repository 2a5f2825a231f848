package tasks

import (
	"fmt"
	"sort"

	set "github.com/hashicorp/go-set/v3"
)

// Manager holds the planning queue: validated working copies of the
// submitted tasks in execution order. Higher priority runs earlier; equal
// priorities keep submission order.
type Manager struct {
	tasks []*Task
}

// NewManager validates, copies and orders the submitted tasks.
// Returns ErrTaskInput when any task fails validation.
func NewManager(submitted []Task) (*Manager, error) {
	m := &Manager{}
	if err := m.SetTasks(submitted); err != nil {
		return nil, err
	}

	return m, nil
}

// SetTasks replaces the queue with fresh working copies of the submitted
// tasks. The input slice stays untouched.
// Returns ErrTaskInput when any task fails validation.
func (m *Manager) SetTasks(submitted []Task) error {
	queue := make([]*Task, 0, len(submitted))
	for i := range submitted {
		t := submitted[i].Clone()
		if err := t.Validate(); err != nil {
			return err
		}
		t.arrival = i + 1
		queue = append(queue, t)
	}
	sort.SliceStable(queue, func(i, j int) bool {
		return queue[i].Priority > queue[j].Priority
	})
	m.tasks = queue

	return nil
}

// Tasks returns the live queue in execution order. The dispatcher mutates
// these entries while planning.
func (m *Manager) Tasks() []*Task {
	return m.tasks
}

// Get returns the queued task with the given id.
// Returns ErrTaskManager when absent.
func (m *Manager) Get(id string) (*Task, error) {
	for _, t := range m.tasks {
		if t.ID == id {
			return t, nil
		}
	}

	return nil, fmt.Errorf("%w: task %q not queued", ErrTaskManager, id)
}

// RemoveByID drops every queued task whose id is listed.
func (m *Manager) RemoveByID(ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := set.From(ids)
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if !drop.Contains(t.ID) {
			kept = append(kept, t)
		}
	}
	// Release trailing pointers so removed tasks can be collected.
	for i := len(kept); i < len(m.tasks); i++ {
		m.tasks[i] = nil
	}
	m.tasks = kept
}

// UnassignedUnstarted returns the queued tasks with no robot and no
// progress, in execution order.
func (m *Manager) UnassignedUnstarted() []*Task {
	out := make([]*Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if t.RobotID == "" && !t.Started() {
			out = append(out, t)
		}
	}

	return out
}

// Len returns the queue length.
func (m *Manager) Len() int { return len(m.tasks) }
