// Package dispatch: edge commitment and the availability guards around it.
package dispatch

import (
	"errors"
	"fmt"

	set "github.com/hashicorp/go-set/v3"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/fleet"
	"github.com/katalvlaran/fleetpath/route"
	"github.com/katalvlaran/fleetpath/tasks"
)

// commitEdge routes the robot toward the node that finishes its task's
// current behaviour and, when both the goal POI and the first edge have
// room, records the transition. A robot that fails either guard keeps its
// task and holds position. Robots whose current behaviour has not finished
// are left alone.
func (p *pass) commitEdge(r *fleet.Robot) error {
	if !r.IsFree {
		return nil
	}
	t := r.Task

	target, err := p.behaviourEndNode(t)
	if err != nil {
		return err
	}
	start := r.Edge.To
	if start == target {
		// The behaviour boundary was already crossed; nothing to send.
		p.log.Debug().Str("robot", r.ID).Str("task", t.ID).Str("node", start).
			Msg("robot already at behaviour end node")

		return nil
	}

	path, err := route.Path(p.graph, start, target, route.WithMask(p.maskFor(start, target)))
	if err != nil {
		return fmt.Errorf("dispatch: routing robot %q on task %q: %w", r.ID, t.ID, err)
	}
	next := core.EdgeKey{From: path[0], To: path[1]}

	poiOK, err := p.poiAvailable(r, t)
	if err != nil {
		return err
	}
	edgeOK, err := p.edgeAvailable(r.ID, next)
	if err != nil {
		return err
	}
	if !poiOK || !edgeOK {
		p.log.Debug().Str("robot", r.ID).Str("task", t.ID).Stringer("edge", next).
			Bool("poiFree", poiOK).Bool("edgeFree", edgeOK).
			Msg("transition declined, robot holds position")

		return nil
	}

	if err := p.robots.SetNextEdge(r.ID, next); err != nil {
		return err
	}
	endBeh := !t.CurrentBehaviour().IsGoTo() || len(path) == 2
	if err := p.robots.SetEndBeh(r.ID, endBeh); err != nil {
		return err
	}
	p.log.Debug().Str("robot", r.ID).Str("task", t.ID).Stringer("edge", next).
		Bool("endBeh", endBeh).Msg("transition committed")

	return nil
}

// behaviourEndNode resolves the planning node that finishes the task's
// current behaviour.
func (p *pass) behaviourEndNode(t *tasks.Task) (string, error) {
	goal, ok := t.PoiGoal()
	if !ok {
		return "", fmt.Errorf("%w: task %q", ErrNoTravelGoal, t.ID)
	}

	var n core.Node
	var err error
	switch kind := t.CurrentBehaviour().Kind; kind {
	case tasks.KindGoTo:
		n, err = p.graph.EndGoToNode(goal)
	case tasks.KindDock:
		n, err = p.graph.EndDockingNode(goal)
	case tasks.KindWait, tasks.KindBatteryExchange:
		n, err = p.graph.EndWaitNode(goal)
	case tasks.KindUndock:
		n, err = p.graph.EndUndockingNode(goal)
	default:
		err = fmt.Errorf("%w: task %q has kind %d", tasks.ErrBehaviourInput, t.ID, int(kind))
	}
	if err != nil {
		return "", err
	}

	return n.ID, nil
}

// maskFor builds the routing mask for a trip: every POI except those at the
// trip's endpoints is sealed off.
func (p *pass) maskFor(start, target string) route.Mask {
	var pois []string
	if n, err := p.graph.Node(start); err == nil {
		pois = append(pois, n.POI)
	}
	if n, err := p.graph.Node(target); err == nil {
		pois = append(pois, n.POI)
	}

	return route.OtherPOIsBlocked(p.graph, pois...)
}

// poiAvailable reports whether the task's goal POI can seat the robot. In
// order, the goal is available when:
//  1. it still has a free service slot;
//  2. the robot already stands inside the goal's own exclusion chain
//     (its current edge group equals the goal's base edge group), so
//     holding it would wedge the very chain it must vacate;
//  3. the robot is not inside any POI's exclusion zone (its current edge
//     belongs to no base POI group), so it waits on open travel space;
//  4. the robot is already counted among the POI's users and the users fit
//     the quota.
//
// Tasks without a travel goal pass unconditionally.
func (p *pass) poiAvailable(r *fleet.Robot, t *tasks.Task) (bool, error) {
	goal, ok := t.PoiGoal()
	if !ok {
		return true, nil
	}

	if p.freeSlots()[goal] > 0 {
		return true, nil
	}

	robotGroup, err := p.graph.GroupID(*r.Edge)
	if err != nil {
		return false, err
	}
	if robotGroup != 0 && robotGroup == p.d.poiGroup[goal] {
		return true, nil
	}
	if robotGroup == 0 || !p.d.poiGroups.Contains(robotGroup) {
		return true, nil
	}

	users := set.New[string](p.robots.Len())
	for id, poi := range p.robots.CurrentGoals() {
		if poi == goal {
			users.Insert(id)
		}
	}
	for _, free := range p.robots.FreeRobots() {
		if poi, parked := p.robotPOI(free); parked && poi == goal {
			users.Insert(free.ID)
		}
	}

	return users.Contains(r.ID) && users.Size() <= p.d.caps[goal], nil
}

// edgeAvailable reports whether the edge has a seat left for the robot once
// current occupants, planned occupants and (for grouped edges) the whole
// exclusion group are counted.
func (p *pass) edgeAvailable(robotID string, k core.EdgeKey) (bool, error) {
	gid, err := p.graph.GroupID(k)
	if err != nil {
		return false, err
	}

	conflicts := set.New[string](4)
	if gid != 0 {
		group := p.graph.EdgesByGroup(gid)
		onGroup, err := p.graph.RobotsInGroupEdge(k)
		if err != nil {
			return false, err
		}
		conflicts.InsertSlice(onGroup)
		conflicts.InsertSlice(p.robots.RobotsOnEdges(group))
		conflicts.InsertSlice(p.robots.RobotsOnFutureEdges(group))
		conflicts.Remove(robotID)

		return conflicts.Empty(), nil
	}

	occupants, err := p.graph.RobotsOn(k)
	if err != nil {
		return false, err
	}
	conflicts.InsertSlice(occupants)
	conflicts.InsertSlice(p.robots.RobotsOnEdges([]core.EdgeKey{k}))
	conflicts.InsertSlice(p.robots.RobotsOnFutureEdges([]core.EdgeKey{k}))
	conflicts.Remove(robotID)

	max, err := p.graph.MaxAllowedRobots(k)
	if err != nil {
		return false, err
	}

	return conflicts.Size() < max, nil
}

// freeSlots returns the remaining service slots per POI: the quota minus
// robots destined to the POI minus task-less robots already parked inside
// it, floored at zero.
func (p *pass) freeSlots() map[string]int {
	slots := make(map[string]int, len(p.d.caps))
	for poi, quota := range p.d.caps {
		slots[poi] = quota
	}
	for _, goal := range p.robots.CurrentGoals() {
		if _, known := slots[goal]; known {
			slots[goal]--
		}
	}
	for _, r := range p.robots.FreeRobots() {
		if poi, parked := p.robotPOI(r); parked {
			if _, known := slots[poi]; known {
				slots[poi]--
			}
		}
	}
	for poi, left := range slots {
		if left < 0 {
			slots[poi] = 0
		}
	}

	return slots
}

// robotPOI resolves the POI the robot currently stands in, through the
// destination node of its current edge.
func (p *pass) robotPOI(r *fleet.Robot) (string, bool) {
	if r.Edge == nil {
		return "", false
	}

	return p.graph.EdgePOI(*r.Edge)
}

// candidateTasks picks up to limit fresh unassigned tasks in queue order,
// letting each travel task consume one free slot at its goal so two
// candidates never bank on the same seat.
func (p *pass) candidateTasks(limit int) []*tasks.Task {
	if limit <= 0 {
		return nil
	}
	slots := p.freeSlots()

	out := make([]*tasks.Task, 0, limit)
	for _, t := range p.queue.UnassignedUnstarted() {
		if goal, ok := t.PoiGoal(); ok {
			if slots[goal] <= 0 {
				continue
			}
			slots[goal]--
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}

	return out
}

// assignGreedy hands the selected tasks to the selected robots: tasks
// arrive in priority order and each goes to the still-unoccupied robot with
// the shortest masked travel time to its goal. Ties keep the smaller robot
// id. A task no offered robot can route to fails the pass with
// ErrUnreachableTask: the masks are static, so the order would otherwise
// vanish without anyone noticing.
func (p *pass) assignGreedy(robots []*fleet.Robot, handed []*tasks.Task) error {
	ids := make([]string, 0, len(handed))
	for _, t := range handed {
		ids = append(ids, t.ID)
	}
	defer p.queue.RemoveByID(ids)

	for _, t := range handed {
		target, err := p.behaviourEndNode(t)
		if err != nil {
			return err
		}

		var best *fleet.Robot
		var bestCost int
		for _, r := range robots {
			if r.Task != nil {
				continue
			}
			start := r.Edge.To
			cost, err := route.PathLength(p.graph, start, target, route.WithMask(p.maskFor(start, target)))
			if err != nil {
				if errors.Is(err, route.ErrNoPath) {
					continue
				}

				return err
			}
			if best == nil || cost < bestCost {
				best, bestCost = r, cost
			}
		}
		if best == nil {
			return fmt.Errorf("%w: task %q", ErrUnreachableTask, t.ID)
		}

		if err := p.robots.SetTask(best.ID, t); err != nil {
			return err
		}
		if err := p.commitEdge(best); err != nil {
			return err
		}
	}

	return nil
}
