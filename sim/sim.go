// Package sim is a discrete-time harness around the dispatcher: a model
// fleet traverses the planning graph tick by tick, and every tick the
// supervisor reports the fleet, asks for a plan and applies it. No physics
// beyond edge weights; a robot on an edge is done with it once the edge's
// weight in seconds has elapsed.
//
// The harness powers the end-to-end scenario tests and the examples. It is
// not a deployment runtime.
package sim

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/dispatch"
	"github.com/katalvlaran/fleetpath/fleet"
	"github.com/katalvlaran/fleetpath/source"
	"github.com/katalvlaran/fleetpath/tasks"
)

// Sentinel errors of the harness.
var (
	// ErrNilDependency indicates New received a nil graph or dispatcher.
	ErrNilDependency = errors.New("sim: graph and dispatcher are required")

	// ErrIncomplete indicates Run exhausted its tick budget with work left.
	ErrIncomplete = errors.New("sim: run did not complete")
)

// Option customizes a Supervisor.
type Option func(*Supervisor)

// WithLogger installs the tick logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Supervisor) { s.log = l }
}

// robotState is one model robot: the reported layer plus traversal
// progress.
type robotState struct {
	fleet.Robot

	// elapsed is the time spent on the current edge, seconds.
	elapsed float64

	// weight is the current edge's full traversal time, seconds.
	weight float64

	// endBeh records whether finishing the current edge ends the task's
	// current behaviour.
	endBeh bool

	// taskID is the order under execution, empty when idle.
	taskID string
}

// Supervisor owns the model fleet and the live task list.
type Supervisor struct {
	graph  *core.Graph
	d      *dispatch.Dispatcher
	robots map[string]*robotState
	orders []*tasks.Task
	log    zerolog.Logger
}

// New validates the initial fleet and task list and returns a ready
// harness.
// Returns ErrNilDependency, fleet.ErrRobotInput or tasks.ErrTaskInput.
func New(g *core.Graph, d *dispatch.Dispatcher, robots []fleet.Robot, backlog []tasks.Task, opts ...Option) (*Supervisor, error) {
	if g == nil || d == nil {
		return nil, ErrNilDependency
	}

	s := &Supervisor{
		graph:  g,
		d:      d,
		robots: make(map[string]*robotState, len(robots)),
		orders: make([]*tasks.Task, 0, len(backlog)),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for i := range robots {
		r := robots[i]
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.robots[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate robot %q", fleet.ErrRobotInput, r.ID)
		}
		s.robots[r.ID] = &robotState{Robot: r}
	}
	for i := range backlog {
		order := backlog[i].Clone()
		if err := order.Validate(); err != nil {
			return nil, err
		}
		s.orders = append(s.orders, order)
	}

	return s, nil
}

// Tick advances the model by step seconds, plans over the resulting state
// and applies the plan. The returned plan is the dispatcher's verbatim.
func (s *Supervisor) Tick(step float64) (dispatch.Plan, error) {
	s.advance(step)

	plan, err := s.d.PlanAll(s.Robots(), s.pending())
	if err != nil {
		return nil, err
	}
	s.apply(plan)

	return plan, nil
}

// Run ticks until every order completes or the budget runs out, returning
// the ticks spent.
// Returns ErrIncomplete past the budget, or the first Tick failure.
func (s *Supervisor) Run(maxTicks int, step float64) (int, error) {
	for tick := 1; tick <= maxTicks; tick++ {
		if _, err := s.Tick(step); err != nil {
			return tick, err
		}
		if s.Done() {
			return tick, nil
		}
	}

	return maxTicks, fmt.Errorf("%w: %d ticks spent", ErrIncomplete, maxTicks)
}

// Done reports whether every order has completed.
func (s *Supervisor) Done() bool {
	for _, order := range s.orders {
		if !order.Done() {
			return false
		}
	}

	return true
}

// Robots returns reported snapshots of the model fleet, sorted by id.
func (s *Supervisor) Robots() []fleet.Robot {
	out := make([]fleet.Robot, 0, len(s.robots))
	for _, rs := range s.robots {
		r := rs.Robot
		if rs.Edge != nil {
			k := *rs.Edge
			r.Edge = &k
		}
		r.Task, r.NextEdge, r.EndBeh = nil, nil, false
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Tasks returns copies of every order, completed ones included, in
// submission order.
func (s *Supervisor) Tasks() []tasks.Task {
	out := make([]tasks.Task, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, *order.Clone())
	}

	return out
}

// advance moves time forward: busy robots progress along their edge and
// become free at its end, finishing their behaviour when the edge was
// marked as the behaviour's last.
func (s *Supervisor) advance(step float64) {
	for _, id := range s.robotIDs() {
		rs := s.robots[id]
		if rs.IsFree {
			continue
		}
		rs.elapsed += step
		if rs.elapsed < rs.weight {
			rs.TimeRemaining = rs.weight - rs.elapsed

			continue
		}
		rs.IsFree = true
		rs.TimeRemaining = 0
		if rs.endBeh {
			rs.endBeh = false
			s.finishBehaviour(rs)
		}
		s.log.Debug().Str("robot", rs.ID).Stringer("edge", rs.Edge).Msg("edge traversed")
	}
}

// apply starts fresh orders the plan assigned and puts robots on their
// committed edges.
func (s *Supervisor) apply(plan dispatch.Plan) {
	for _, id := range s.robotIDs() {
		a, ok := plan[id]
		if !ok {
			continue
		}
		rs := s.robots[id]

		order := s.orderByID(a.TaskID)
		if order == nil {
			continue
		}
		if !order.Started() {
			order.MarkStarted(id)
			s.log.Debug().Str("robot", id).Str("task", order.ID).Msg("order started")
		}

		edge, err := s.graph.Edge(a.NextEdge)
		if err != nil {
			// A plan naming an unknown edge means the graph changed under
			// the dispatcher; surface loudly but keep the model coherent.
			s.log.Error().Str("robot", id).Stringer("edge", a.NextEdge).Err(err).
				Msg("plan names an unknown edge, ignored")

			continue
		}
		next := a.NextEdge
		rs.Edge = &next
		rs.POI = source.NoPOI
		rs.IsFree = false
		rs.elapsed = 0
		rs.weight = float64(edge.Weight)
		rs.TimeRemaining = rs.weight
		rs.endBeh = a.EndBeh
		rs.taskID = a.TaskID
	}
}

// finishBehaviour advances the robot's order to its next behaviour,
// completing the order after the last one.
func (s *Supervisor) finishBehaviour(rs *robotState) {
	order := s.orderByID(rs.taskID)
	if order == nil {
		return
	}
	order.AdvanceBehaviour()
	if order.Done() {
		rs.taskID = ""
		s.log.Debug().Str("robot", rs.ID).Str("task", order.ID).Msg("order completed")
	}
}

// pending returns the orders still in play, as values.
func (s *Supervisor) pending() []tasks.Task {
	out := make([]tasks.Task, 0, len(s.orders))
	for _, order := range s.orders {
		if order.Done() {
			continue
		}
		out = append(out, *order.Clone())
	}

	return out
}

// orderByID finds the live order with the given id.
func (s *Supervisor) orderByID(id string) *tasks.Task {
	for _, order := range s.orders {
		if order.ID == id {
			return order
		}
	}

	return nil
}

// robotIDs returns the model robot ids sorted, for deterministic ticks.
func (s *Supervisor) robotIDs() []string {
	out := make([]string, 0, len(s.robots))
	for id := range s.robots {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}
