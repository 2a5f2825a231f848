package dispatch

import (
	"fmt"
	"time"

	set "github.com/hashicorp/go-set/v3"
	"github.com/rs/zerolog"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/fleet"
	"github.com/katalvlaran/fleetpath/tasks"
)

// pass holds the working state of one planning run: validated copies of the
// fleet and the backlog, over the shared graph with occupancy rewritten
// from this pass's snapshot.
type pass struct {
	d      *Dispatcher
	graph  *core.Graph
	robots *fleet.PlanManager
	queue  *tasks.Manager
	log    zerolog.Logger
}

// startPass validates the snapshots and rewrites the per-edge occupancy.
// Every reported robot books its edge, planning-enabled or not: excluded
// robots still take up physical space. POI-parked robots book their
// stand's base edge; an excluded robot on an unresolvable stand is simply
// not booked anywhere.
func (d *Dispatcher) startPass(reported []fleet.Robot, backlog []tasks.Task) (*pass, error) {
	robots, err := fleet.NewPlanManager(reported, d.base)
	if err != nil {
		return nil, err
	}
	queue, err := tasks.NewManager(backlog)
	if err != nil {
		return nil, err
	}

	occupancy := make(map[core.EdgeKey][]string, len(reported))
	for i := range reported {
		r := &reported[i]
		at := r.Edge
		if at == nil {
			base, ok := d.base[r.POI]
			if !ok {
				if !r.PlanningOn {
					continue
				}

				return nil, fmt.Errorf("%w: robot %q parked at POI %q with no base edge",
					fleet.ErrRobotInput, r.ID, r.POI)
			}
			at = &base
		}
		occupancy[*at] = append(occupancy[*at], r.ID)
	}
	if err := d.graph.SetOccupancy(occupancy); err != nil {
		return nil, err
	}

	return &pass{d: d, graph: d.graph, robots: robots, queue: queue, log: d.log}, nil
}

// run works through the four planning phases in order.
func (p *pass) run() error {
	if err := p.continueService(); err != nil {
		return err
	}
	if err := p.continueTravel(); err != nil {
		return err
	}
	if err := p.pickPreassigned(); err != nil {
		return err
	}

	return p.assignRemaining()
}

// result collects the committed transitions into a plan.
func (p *pass) result() Plan {
	out := make(Plan, p.robots.Len())
	for _, r := range p.robots.Robots() {
		if r.Task == nil || r.NextEdge == nil {
			continue
		}
		out[r.ID] = Assignment{TaskID: r.Task.ID, NextEdge: *r.NextEdge, EndBeh: r.EndBeh}
	}

	return out
}

// continueService re-binds started tasks whose current behaviour is a
// service stage (dock, wait, undock) and issues the chain edge.
func (p *pass) continueService() error {
	var handled []string
	for _, t := range p.queue.Tasks() {
		if !t.Started() || t.CurrentBehaviour().IsGoTo() {
			continue
		}
		r, ok := p.robots.Robot(t.RobotID)
		if !ok || r.Task != nil {
			continue
		}
		if err := p.robots.SetTask(r.ID, t); err != nil {
			return err
		}
		if err := p.commitEdge(r); err != nil {
			return err
		}
		handled = append(handled, t.ID)
	}
	p.queue.RemoveByID(handled)

	return nil
}

// continueTravel re-binds started travel tasks. A robot standing inside a
// POI other than its goal only moves out while the goal still has a free
// service slot; otherwise it keeps its task and holds position, leaving the
// slot to whoever is closer to done.
func (p *pass) continueTravel() error {
	slots := p.freeSlots()

	var handled []string
	for _, t := range p.queue.Tasks() {
		if !t.Started() || !t.CurrentBehaviour().IsGoTo() {
			continue
		}
		r, ok := p.robots.Robot(t.RobotID)
		if !ok || r.Task != nil {
			continue
		}
		if err := p.robots.SetTask(r.ID, t); err != nil {
			return err
		}
		handled = append(handled, t.ID)

		goal, _ := t.PoiGoal()
		at, parked := p.robotPOI(r)
		if !parked || at == goal {
			if err := p.commitEdge(r); err != nil {
				return err
			}

			continue
		}
		if slots[goal] > 0 {
			slots[goal]--
			if err := p.commitEdge(r); err != nil {
				return err
			}

			continue
		}
		p.log.Debug().Str("robot", r.ID).Str("task", t.ID).Str("goal", goal).
			Msg("goal has no free slot, robot holds inside POI")
	}
	p.queue.RemoveByID(handled)

	return nil
}

// pickPreassigned hands fresh tasks that name a robot to that robot.
func (p *pass) pickPreassigned() error {
	var handled []string
	for _, t := range p.queue.Tasks() {
		if t.Started() || t.RobotID == "" {
			continue
		}
		r, ok := p.robots.Robot(t.RobotID)
		if !ok || r.Task != nil {
			continue
		}
		if err := p.robots.SetTask(r.ID, t); err != nil {
			return err
		}
		if err := p.commitEdge(r); err != nil {
			return err
		}
		handled = append(handled, t.ID)
	}
	p.queue.RemoveByID(handled)

	return nil
}

// assignRemaining matches the leftover backlog to the leftover robots until
// nothing more can move. Robots idling inside a POI some busy robot is
// heading to are served first so they clear the spot. Every round hands out
// at least one task or exits, and handed tasks leave the queue, so the loop
// shrinks; the budget guards against a backlog that keeps refusing to fit.
func (p *pass) assignRemaining() error {
	started := time.Now()
	for round := 1; ; round++ {
		free := p.robots.FreeRobots()
		blocking := p.blockingRobots(free)
		candidates := p.candidateTasks(len(free))
		forBlocking := p.candidateTasks(len(blocking))

		var err error
		switch {
		case len(candidates) == len(free):
			return p.assignGreedy(free, candidates)
		case len(blocking) > 0 && len(forBlocking) >= len(blocking):
			err = p.assignGreedy(blocking, forBlocking)
		case len(free) > 0 && len(candidates) > 0:
			err = p.assignGreedy(free, candidates)
		default:
			p.parkIdleRobots(free)

			return nil
		}
		if err != nil {
			return err
		}

		if p.d.fuel > 0 {
			if round >= p.d.fuel {
				return fmt.Errorf("%w: %d assignment rounds spent", ErrTimeoutPlanning, round)
			}
		} else if time.Since(started) > p.d.timeout {
			return fmt.Errorf("%w: %s elapsed", ErrTimeoutPlanning, p.d.timeout)
		}
	}
}

// blockingRobots filters free robots parked inside a non-queue POI that
// some busy robot is destined to. They occupy a service slot somebody else
// needs, so the assignment loop serves them first.
func (p *pass) blockingRobots(free []*fleet.Robot) []*fleet.Robot {
	goals := set.New[string](p.robots.Len())
	for _, goal := range p.robots.CurrentGoals() {
		goals.Insert(goal)
	}

	var out []*fleet.Robot
	for _, r := range free {
		poi, parked := p.robotPOI(r)
		if !parked || !goals.Contains(poi) {
			continue
		}
		if queue, err := p.graph.IsQueue(poi); err != nil || queue {
			continue
		}
		out = append(out, r)
	}

	return out
}

// parkIdleRobots is the give-up hook of the assignment loop: the robots
// left over have no task that fits. Surfacing them lets an operator (or a
// later parking policy) clear the floor.
func (p *pass) parkIdleRobots(free []*fleet.Robot) {
	if len(free) == 0 {
		return
	}
	ids := make([]string, 0, len(free))
	for _, r := range free {
		ids = append(ids, r.ID)
	}
	p.log.Debug().Strs("robots", ids).Msg("no assignable task left, robots stay idle")
}
