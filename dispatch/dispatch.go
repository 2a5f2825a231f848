package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	set "github.com/hashicorp/go-set/v3"
	"github.com/rs/zerolog"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/fleet"
	"github.com/katalvlaran/fleetpath/tasks"
)

// Sentinel errors of the planning pass.
var (
	// ErrNilGraph indicates a nil *core.Graph was passed to New.
	ErrNilGraph = errors.New("dispatch: graph is nil")

	// ErrTimeoutPlanning indicates the assignment loop did not settle
	// within its budget.
	ErrTimeoutPlanning = errors.New("dispatch: task assignment did not settle in time")

	// ErrNoTravelGoal indicates a task whose behaviours name no POI to
	// drive to, leaving the router without a destination.
	ErrNoTravelGoal = errors.New("dispatch: task has no travel goal")

	// ErrUnreachableTask indicates a task whose goal no offered robot can
	// route to. The masks never depend on occupancy, so the condition is
	// structural and will not clear on a later pass.
	ErrUnreachableTask = errors.New("dispatch: no offered robot can reach the task goal")
)

// DefaultPlanningTimeout bounds one assignment loop by wall clock.
const DefaultPlanningTimeout = 5 * time.Second

// Assignment is the planning outcome for one robot: which task it runs and
// the next planning-graph edge it should traverse. EndBeh marks the edge
// that finishes the task's current behaviour.
type Assignment struct {
	TaskID   string
	NextEdge core.EdgeKey
	EndBeh   bool
}

// Plan maps robot id to its assignment. Robots that received a task but no
// edge this pass are absent; they hold position.
type Plan map[string]Assignment

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithLogger installs the pass logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithPlanningTimeout overrides the wall-clock budget of the assignment
// loop. Panics if t <= 0.
func WithPlanningTimeout(t time.Duration) Option {
	if t <= 0 {
		panic("dispatch: WithPlanningTimeout(t<=0)")
	}

	return func(d *Dispatcher) { d.timeout = t }
}

// WithPlanningFuel bounds the assignment loop by iteration count instead of
// wall clock, which keeps timeout behaviour deterministic under test.
// Panics if rounds <= 0.
func WithPlanningFuel(rounds int) Option {
	if rounds <= 0 {
		panic("dispatch: WithPlanningFuel(rounds<=0)")
	}

	return func(d *Dispatcher) { d.fuel = rounds }
}

// Dispatcher plans task assignments and edge transitions over one built
// planning graph. The POI lookup tables are resolved once at construction;
// per-edge occupancy is rewritten at every pass.
type Dispatcher struct {
	mu    sync.Mutex
	graph *core.Graph

	// base books POI-parked robots onto their stand's planning edge.
	base map[string]core.EdgeKey

	// caps is the service-slot quota per POI.
	caps map[string]int

	// poiGroups holds the exclusion groups of the base POI edges, so the
	// availability check can tell a robot inside some stand from one on
	// open travel space. Ungrouped base edges (queues) are not listed.
	poiGroups *set.Set[int]

	// poiGroup maps each POI to its base edge's exclusion group, zero when
	// the base edge is ungrouped. A robot whose current group matches its
	// goal's entry here already stands inside the goal chain.
	poiGroup map[string]int

	log     zerolog.Logger
	timeout time.Duration
	fuel    int
}

// New resolves the POI tables of the built graph and returns a ready
// dispatcher.
// Returns ErrNilGraph, or the core error when the graph's POI expansion is
// malformed.
func New(g *core.Graph, opts ...Option) (*Dispatcher, error) {
	if g == nil {
		return nil, ErrNilGraph
	}

	base, err := g.BasePOIEdges()
	if err != nil {
		return nil, err
	}
	groups := set.New[int](len(base))
	byPOI := make(map[string]int, len(base))
	for poi, k := range base {
		gid, err := g.GroupID(k)
		if err != nil {
			return nil, err
		}
		byPOI[poi] = gid
		if gid != 0 {
			groups.Insert(gid)
		}
	}

	d := &Dispatcher{
		graph:     g,
		base:      base,
		caps:      g.POICapacities(),
		poiGroups: groups,
		poiGroup:  byPOI,
		log:       zerolog.Nop(),
		timeout:   DefaultPlanningTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// PlanAll runs one planning pass over the reported fleet and the submitted
// backlog and returns the per-robot plan.
// Returns fleet.ErrRobotInput or tasks.ErrTaskInput for malformed
// snapshots, ErrTimeoutPlanning when assignment does not settle, or a
// routing/lookup error.
func (d *Dispatcher) PlanAll(reported []fleet.Robot, backlog []tasks.Task) (Plan, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.startPass(reported, backlog)
	if err != nil {
		return nil, err
	}
	if err := p.run(); err != nil {
		return nil, err
	}

	plan := p.result()
	d.log.Info().
		Int("robots", p.robots.Len()).
		Int("tasksLeft", p.queue.Len()).
		Int("edges", len(plan)).
		Msg("planning pass complete")

	return plan, nil
}

// PlanRobot runs a full planning pass and returns the assignment of one
// robot. A nil assignment with a nil error means the robot holds position
// this pass.
// Returns fleet.ErrUnknownRobot when the robot is not under planning, and
// otherwise errors as PlanAll.
func (d *Dispatcher) PlanRobot(robotID string, reported []fleet.Robot, backlog []tasks.Task) (*Assignment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, err := d.startPass(reported, backlog)
	if err != nil {
		return nil, err
	}
	if !p.robots.Has(robotID) {
		return nil, fmt.Errorf("%w: %q", fleet.ErrUnknownRobot, robotID)
	}
	if err := p.run(); err != nil {
		return nil, err
	}

	a, ok := p.result()[robotID]
	if !ok {
		return nil, nil
	}

	return &a, nil
}
