// SPDX-License-Identifier: MIT
// Package: fleetpath/builder
//
// supervisor.go — stage 2: planning-graph construction.
//
// Phase order (strict, each phase depends on the previous ones):
//  1. groups:     one exclusion group per service stand and parking node,
//     leftover narrow two-way twins paired under fresh groups.
//  2. expansion:  service stands become dock/wait/undock/end chains,
//     pocket and waiting POIs single nodes.
//  3. registry:   every POI id recorded with its role.
//  4. main paths: GO_TO edges between endpoint representatives, fresh
//     intersection halves minted per direction.
//  5. crossings:  full in×out product inside every intersection.
//  6. tagging:    approach edges pick up the POI whose quota they feed.
//  7. weights:    service times, crossing times, travel times, the
//     unreachable sentinel for paths over inactive source edges.
//  8. capacities: bulk maxRobots on free corridor edges.
//  9. corridors:  swept-lane outlines for every GO_TO edge.
//  10. poses:     stand poses from path headings and the supplied registry.
//
// Determinism: base nodes are walked in ascending id order and reduced
// edges in their reduction order; planning node ids are dense decimals
// from "1", groups dense from 1.

package builder

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/katalvlaran/fleetpath/core"
	"github.com/katalvlaran/fleetpath/source"
)

// Build converts a raw floor-plan graph into the planning graph. poiPoses
// supplies the physical stand pose per POI id; POIs without an entry keep a
// zero pose. The source graph is read, never mutated.
//
// Errors: source validation failures surface as the source package
// sentinels, structural violations as ErrGraph (wrapped with the offending
// node). Build never panics.
func Build(src *source.Graph, poiPoses map[string]core.Pose, opts ...Option) (*core.Graph, error) {
	if src == nil {
		return nil, fmt.Errorf("%s: %w", methodBuild, ErrNilSource)
	}
	if err := src.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", methodBuild, err)
	}

	conv, err := newConverter(src)
	if err != nil {
		return nil, err
	}

	s := &supervisor{
		src:       src,
		cfg:       newConfig(opts...),
		graph:     core.NewGraph(),
		reduced:   conv.reduced,
		poiPoses:  poiPoses,
		nextNode:  1,
		nextGroup: 1,
		groups:    make(map[string]int),
		bySource:  make(map[string][]string),
	}

	s.assignGroups()
	for _, phase := range []func() error{
		s.expandStations,
		s.registerPOIs,
		s.addMainPaths,
		s.addCrossEdges,
		s.tagApproaches,
		s.assignWeights,
		s.assignCapacities,
		s.assignCorridors,
		s.assignPoses,
	} {
		if err := phase(); err != nil {
			return nil, err
		}
	}

	return s.graph, nil
}

// supervisor carries stage-2 state: the planning graph under construction
// plus the running id counters.
type supervisor struct {
	src      *source.Graph
	cfg      config
	graph    *core.Graph
	reduced  []reducedEdge
	poiPoses map[string]core.Pose

	nextNode  int // planning node id counter
	nextGroup int // exclusion group counter

	// groups maps a service stand or parking base node to its exclusion
	// group.
	groups map[string]int

	// bySource lists planning node ids per base node in creation order.
	bySource map[string][]string
}

// mintNode inserts a fresh planning node derived from base and returns its
// id. Ids are dense decimals in creation order.
func (s *supervisor) mintNode(kind core.Kind, base, poi string) (string, error) {
	id := strconv.Itoa(s.nextNode)
	err := s.graph.AddNode(core.Node{
		ID:     id,
		Kind:   kind,
		POI:    poi,
		Source: base,
		Pos:    s.src.Nodes[base].Pos,
	})
	if err != nil {
		return "", fmt.Errorf("%s: add node %s: %w", methodBuild, id, err)
	}

	s.nextNode++
	s.bySource[base] = append(s.bySource[base], id)

	return id, nil
}

// nodeOfKind returns the planning node of the given kind derived from base.
func (s *supervisor) nodeOfKind(base string, kind core.Kind) (string, bool) {
	for _, id := range s.bySource[base] {
		if n, err := s.graph.Node(id); err == nil && n.Kind == kind {
			return id, true
		}
	}

	return "", false
}

// nodesBySection returns the base node ids of the section in ascending order.
func (s *supervisor) nodesBySection(sec source.Section) []string {
	var out []string
	for _, id := range s.src.NodeIDs() {
		if s.src.Nodes[id].Type.Section == sec {
			out = append(out, id)
		}
	}

	return out
}

// positions maps base node ids onto their floor positions.
func (s *supervisor) positions(ids []string) []source.Position {
	out := make([]source.Position, len(ids))
	for i, id := range ids {
		out[i] = s.src.Nodes[id].Pos
	}

	return out
}

// assignGroups gives every service stand and parking base node a unique
// positive group, inherits it onto incident reduced edges, then pairs the
// remaining narrow two-way edges with their reverse twins under fresh
// groups. Narrow edges without a twin stay independent.
func (s *supervisor) assignGroups() {
	for _, id := range s.src.NodeIDs() {
		if s.src.Nodes[id].Type.Operational() {
			s.groups[id] = s.nextGroup
			s.nextGroup++
		}
	}

	for i := range s.reduced {
		r := &s.reduced[i]
		if g, ok := s.groups[r.nodes[0]]; ok {
			r.group = g
		} else if g, ok := s.groups[r.nodes[len(r.nodes)-1]]; ok {
			r.group = g
		}
	}

	var narrow []int
	for i, r := range s.reduced {
		if r.way == source.NarrowTwoWay && r.group == 0 {
			narrow = append(narrow, i)
		}
	}
	for len(narrow) > 0 {
		head := narrow[0]
		narrow = narrow[1:]
		for j, idx := range narrow {
			if reversedPath(s.reduced[head].nodes, s.reduced[idx].nodes) {
				s.reduced[head].group = s.nextGroup
				s.reduced[idx].group = s.nextGroup
				s.nextGroup++
				narrow = append(narrow[:j], narrow[j+1:]...)

				break
			}
		}
	}
}

// reversedPath reports whether b runs the same node path as a, backwards.
func reversedPath(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[len(b)-1-i] {
			return false
		}
	}

	return true
}

// expandStations expands service stands into behaviour chains and every
// other POI into a single node. Docking stands unfold to
// dock→wait→undock→end, wait-only stands to wait→end; chain edges carry
// the POI group and the fabricated source edge id 0.
func (s *supervisor) expandStations() error {
	for _, base := range s.nodesBySection(source.SectionDockWaitUndock) {
		err := s.addChain(base,
			[]core.Kind{core.KindDock, core.KindWait, core.KindUndock, core.KindEnd},
			[]core.Label{core.LabelDock, core.LabelWait, core.LabelUndock})
		if err != nil {
			return err
		}
	}
	for _, base := range s.nodesBySection(source.SectionWaitPOI) {
		err := s.addChain(base,
			[]core.Kind{core.KindWait, core.KindEnd},
			[]core.Label{core.LabelWait})
		if err != nil {
			return err
		}
	}
	for _, base := range s.nodesBySection(source.SectionNoChanges) {
		if _, err := s.mintNode(core.KindNoChanges, base, s.src.Nodes[base].POI); err != nil {
			return err
		}
	}

	return nil
}

// addChain mints the kinds in order and links them with the labelled edges.
func (s *supervisor) addChain(base string, kinds []core.Kind, labels []core.Label) error {
	poi := s.src.Nodes[base].POI
	ids := make([]string, len(kinds))
	for i, k := range kinds {
		id, err := s.mintNode(k, base, poi)
		if err != nil {
			return err
		}
		ids[i] = id
	}

	for i, label := range labels {
		e := core.Edge{
			From:        ids[i],
			To:          ids[i+1],
			Label:       label,
			Group:       s.groups[base],
			MaxRobots:   1,
			SourceNodes: []string{base},
			SourceEdges: []int{0},
		}
		if err := s.graph.AddEdge(e); err != nil {
			return fmt.Errorf("%s: add edge %s: %w", methodBuild, e.Key(), err)
		}
	}

	return nil
}

// registerPOIs records every POI id and its role in the planning graph.
func (s *supervisor) registerPOIs() error {
	pois := s.src.POIs()
	ids := make([]string, 0, len(pois))
	for id := range pois {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := s.graph.RegisterPOI(id, pois[id]); err != nil {
			return fmt.Errorf("%s: register POI %q: %w", methodBuild, id, err)
		}
	}

	return nil
}

// addMainPaths lays the GO_TO edge of every reduced edge between endpoint
// representatives. Intersection endpoints mint a fresh half per direction:
// an intersection_out where the path leaves, an intersection_in where it
// arrives. POI endpoints reuse the chain exit (end) or entry (dock, wait)
// and pockets their single node.
func (s *supervisor) addMainPaths() error {
	for i := range s.reduced {
		r := &s.reduced[i]
		start, end := r.nodes[0], r.nodes[len(r.nodes)-1]

		var from, to string
		var err error
		if s.src.Nodes[start].Type.Section == source.SectionIntersection {
			from, err = s.mintNode(core.KindIntersectionOut, start, source.NoPOI)
		} else {
			from, err = s.chainExit(start)
		}
		if err != nil {
			return err
		}
		if s.src.Nodes[end].Type.Section == source.SectionIntersection {
			to, err = s.mintNode(core.KindIntersectionIn, end, source.NoPOI)
		} else {
			to, err = s.chainEntry(end)
		}
		if err != nil {
			return err
		}

		e := core.Edge{
			From:        from,
			To:          to,
			Label:       core.LabelGoTo,
			Group:       r.group,
			MaxRobots:   1,
			Way:         r.way,
			SourceNodes: append([]string(nil), r.nodes...),
			SourceEdges: append([]int(nil), r.srcs...),
		}
		if err := s.graph.AddEdge(e); err != nil {
			return fmt.Errorf("%s: add edge %s: %w", methodBuild, e.Key(), err)
		}
	}

	return nil
}

// chainExit is the planning node a path leaves a base node from: the chain
// end for service stands, the single node otherwise.
func (s *supervisor) chainExit(base string) (string, error) {
	return s.chainNode(base, true)
}

// chainEntry is the planning node a path arrives at: dock for docking
// stands, wait for wait-only stands, the single node otherwise.
func (s *supervisor) chainEntry(base string) (string, error) {
	return s.chainNode(base, false)
}

func (s *supervisor) chainNode(base string, exit bool) (string, error) {
	var kind core.Kind
	switch s.src.Nodes[base].Type.Section {
	case source.SectionDockWaitUndock:
		kind = core.KindDock
		if exit {
			kind = core.KindEnd
		}
	case source.SectionWaitPOI:
		kind = core.KindWait
		if exit {
			kind = core.KindEnd
		}
	case source.SectionNoChanges:
		kind = core.KindNoChanges
	default:
		return "", fmt.Errorf("%s: node %q cannot anchor a travel edge: %w", methodBuild, base, ErrGraph)
	}

	if id, ok := s.nodeOfKind(base, kind); ok {
		return id, nil
	}

	return "", fmt.Errorf("%s: no %s planning node for source node %q: %w", methodBuild, kind, base, ErrGraph)
}

// addCrossEdges connects every intersection_in to every intersection_out of
// the same base node. Each crossing is GO_TO, oneWay, a single source node.
// A plain intersection claims a fresh group shared by all of its crossings;
// a waiting-departure gateway inherits the group of the POI it fronts, so
// the gateway and the POI exclude each other as one unit.
func (s *supervisor) addCrossEdges() error {
	for _, base := range s.nodesBySection(source.SectionIntersection) {
		var ins, outs []string
		for _, id := range s.bySource[base] {
			n, err := s.graph.Node(id)
			if err != nil {
				return fmt.Errorf("%s: node %s: %w", methodBuild, id, err)
			}
			switch n.Kind {
			case core.KindIntersectionIn:
				ins = append(ins, id)
			case core.KindIntersectionOut:
				outs = append(outs, id)
			}
		}

		group := s.nextGroup
		gateway := s.src.Nodes[base].Type == source.WaitingDeparture
		if gateway {
			poiBase, err := s.gatewayPOI(base)
			if err != nil {
				return err
			}
			group = s.groups[poiBase]
		}

		if len(ins) == 0 || len(outs) == 0 {
			continue
		}
		for _, in := range ins {
			for _, out := range outs {
				e := core.Edge{
					From:        in,
					To:          out,
					Label:       core.LabelGoTo,
					Group:       group,
					MaxRobots:   1,
					Way:         source.OneWay,
					SourceNodes: []string{base},
					SourceEdges: []int{0},
				}
				if err := s.graph.AddEdge(e); err != nil {
					return fmt.Errorf("%s: add edge %s: %w", methodBuild, e.Key(), err)
				}
			}
		}
		if !gateway {
			s.nextGroup++
		}
	}

	return nil
}

// gatewayPOI finds the service stand a waiting-departure node fronts: the
// far end of the first reduced edge linking the gateway with a stand.
func (s *supervisor) gatewayPOI(base string) (string, error) {
	stand := func(id string) bool {
		sec := s.src.Nodes[id].Type.Section
		return sec == source.SectionDockWaitUndock || sec == source.SectionWaitPOI
	}
	for _, r := range s.reduced {
		head, tail := r.nodes[0], r.nodes[len(r.nodes)-1]
		if head == base && stand(tail) {
			return tail, nil
		}
		if tail == base && stand(head) {
			return head, nil
		}
	}

	return "", fmt.Errorf("%s: waiting-departure node %q fronts no POI: %w", methodBuild, base, ErrGraph)
}

// tagApproaches writes the connectedPOI tag onto the edges robots queue on:
// the approach into a parking or queue node carries the node's own POI, the
// approach into a waiting node the POI it waits for, and the plain-corridor
// approach into a waiting-departure gateway the POI the gateway fronts.
func (s *supervisor) tagApproaches() error {
	for _, base := range s.src.NodeIDs() {
		var err error
		switch s.src.Nodes[base].Type {
		case source.Parking, source.Queue:
			err = s.tagPocket(base)
		case source.Waiting:
			err = s.tagWaiting(base)
		case source.WaitingDeparture:
			err = s.tagGateway(base)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// singleNode returns the lone planning node of a pocket or waiting base.
func (s *supervisor) singleNode(base string) (string, bool) {
	ids := s.bySource[base]
	if len(ids) == 0 {
		return "", false
	}

	return ids[0], true
}

func (s *supervisor) tagPocket(base string) error {
	kind := s.src.Nodes[base].Type
	node, ok := s.singleNode(base)
	if !ok {
		return fmt.Errorf("%s: no planning node for %s node %q: %w", methodBuild, kind, base, ErrGraph)
	}

	in, err := s.graph.InEdges(node)
	if err != nil {
		return fmt.Errorf("%s: node %s: %w", methodBuild, node, err)
	}
	if len(in) == 0 {
		return fmt.Errorf("%s: %s node %q has no approach edge: %w", methodBuild, kind, base, ErrGraph)
	}
	if err := s.graph.SetEdgeConnectedPOI(in[0].Key(), s.src.Nodes[base].POI); err != nil {
		return fmt.Errorf("%s: tag edge %s: %w", methodBuild, in[0].Key(), err)
	}

	return nil
}

func (s *supervisor) tagWaiting(base string) error {
	node, ok := s.singleNode(base)
	if !ok {
		return fmt.Errorf("%s: no planning node for waiting node %q: %w", methodBuild, base, ErrGraph)
	}

	in, err := s.graph.InEdges(node)
	if err != nil {
		return fmt.Errorf("%s: node %s: %w", methodBuild, node, err)
	}
	out, err := s.graph.OutEdges(node)
	if err != nil {
		return fmt.Errorf("%s: node %s: %w", methodBuild, node, err)
	}
	if len(in) == 0 || len(out) == 0 {
		return fmt.Errorf("%s: waiting node %q is not wired between corridor and POI: %w",
			methodBuild, base, ErrGraph)
	}

	// The edge out of a waiting node leads into the POI chain; its head
	// carries the POI id the queue feeds.
	successor, err := s.graph.Node(out[0].To)
	if err != nil {
		return fmt.Errorf("%s: node %s: %w", methodBuild, out[0].To, err)
	}
	if err := s.graph.SetEdgeConnectedPOI(in[0].Key(), successor.POI); err != nil {
		return fmt.Errorf("%s: tag edge %s: %w", methodBuild, in[0].Key(), err)
	}

	return nil
}

// tagGateway tags the corridor-side approach into a waiting-departure
// gateway. The gateway has two entry halves: one fed by the POI (that edge
// carries the POI group), one fed by the plain corridor (group 0). The
// corridor edge is the one robots queue on; the POI id is read off the
// chain node the grouped edge leaves.
func (s *supervisor) tagGateway(base string) error {
	var approaches []core.Edge
	for _, id := range s.bySource[base] {
		n, err := s.graph.Node(id)
		if err != nil {
			return fmt.Errorf("%s: node %s: %w", methodBuild, id, err)
		}
		if n.Kind != core.KindIntersectionIn {
			continue
		}
		in, err := s.graph.InEdges(id)
		if err != nil {
			return fmt.Errorf("%s: node %s: %w", methodBuild, id, err)
		}
		approaches = append(approaches, in...)
	}
	if len(approaches) != 2 {
		return fmt.Errorf("%s: waiting-departure node %q has %d approach edges, want 2: %w",
			methodBuild, base, len(approaches), ErrGraph)
	}

	waiting, grouped := approaches[0], approaches[1]
	if waiting.Group != 0 {
		waiting, grouped = grouped, waiting
	}
	if waiting.Group != 0 || grouped.Group == 0 {
		return fmt.Errorf("%s: waiting-departure node %q approaches carry groups %d and %d, want one POI side and one corridor side: %w",
			methodBuild, base, approaches[0].Group, approaches[1].Group, ErrGraph)
	}

	poiNode, err := s.graph.Node(grouped.From)
	if err != nil {
		return fmt.Errorf("%s: node %s: %w", methodBuild, grouped.From, err)
	}
	if err := s.graph.SetEdgeConnectedPOI(waiting.Key(), poiNode.POI); err != nil {
		return fmt.Errorf("%s: tag edge %s: %w", methodBuild, waiting.Key(), err)
	}

	return nil
}

// assignWeights writes the nominal traversal time of every edge: behaviour
// edges take the configured service times, crossings the intersection time,
// travel edges the path length over the cruise speed rounded up. An edge
// whose path runs over an inactive source edge is marked unreachable.
func (s *supervisor) assignWeights() error {
	for _, e := range s.graph.Edges() {
		w, err := s.edgeWeight(e)
		if err != nil {
			return err
		}
		if err := s.graph.SetEdgeWeight(e.Key(), w); err != nil {
			return fmt.Errorf("%s: weight edge %s: %w", methodBuild, e.Key(), err)
		}
	}

	return nil
}

func (s *supervisor) edgeWeight(e core.Edge) (int, error) {
	for _, id := range e.SourceEdges {
		if id != 0 && !s.src.Edges[id].Active {
			return core.WeightUnreachable, nil
		}
	}

	switch e.Label {
	case core.LabelDock:
		return s.cfg.dockTime, nil
	case core.LabelWait:
		return s.cfg.waitTime, nil
	case core.LabelUndock:
		return s.cfg.undockTime, nil
	case core.LabelGoTo:
		if e.Group != 0 && len(e.SourceNodes) == 1 {
			return s.cfg.intersectionTime, nil
		}

		return int(math.Ceil(pathLength(s.positions(e.SourceNodes)) / s.cfg.robotVelocity)), nil
	}

	return 0, fmt.Errorf("%s: edge %s has unknown label %q: %w", methodBuild, e.Key(), e.Label, ErrGraph)
}

// assignCapacities writes bulk capacities onto free corridors: travel edges
// with a multi-node path touching no operational POI hold
// floor(pathLength/robotLength) robots, at least one. Everything else keeps
// capacity one.
func (s *supervisor) assignCapacities() error {
	for _, e := range s.graph.Edges() {
		if e.Label != core.LabelGoTo || len(e.SourceNodes) < 2 {
			continue
		}
		first := s.src.Nodes[e.SourceNodes[0]].Type
		last := s.src.Nodes[e.SourceNodes[len(e.SourceNodes)-1]].Type
		if first.Operational() || last.Operational() {
			continue
		}

		bulk := int(math.Floor(pathLength(s.positions(e.SourceNodes)) / s.cfg.robotLength))
		if bulk < 1 {
			bulk = 1
		}
		if err := s.graph.SetEdgeMaxRobots(e.Key(), bulk); err != nil {
			return fmt.Errorf("%s: capacity edge %s: %w", methodBuild, e.Key(), err)
		}
	}

	return nil
}

// assignCorridors writes the swept-lane outline of every travel edge.
func (s *supervisor) assignCorridors() error {
	for _, e := range s.graph.Edges() {
		if e.Label != core.LabelGoTo {
			continue
		}

		path, err := s.lanePath(e)
		if err != nil {
			return err
		}
		if err := s.graph.SetEdgeCorridor(e.Key(), corridorOutline(path, s.cfg.corridorWidth)); err != nil {
			return fmt.Errorf("%s: corridor edge %s: %w", methodBuild, e.Key(), err)
		}
	}

	return nil
}

// lanePath returns the centerline a robot drives along e. Wide two-way
// paths shift half a corridor to the travel side so the two directions pass
// clear of each other; narrow and one-way paths run the source polyline as
// is. Endpoints always snap to the planning node positions. Intersection
// crossings run a throat path instead.
func (s *supervisor) lanePath(e core.Edge) ([]source.Position, error) {
	fromNode, err := s.graph.Node(e.From)
	if err != nil {
		return nil, fmt.Errorf("%s: node %s: %w", methodBuild, e.From, err)
	}
	toNode, err := s.graph.Node(e.To)
	if err != nil {
		return nil, fmt.Errorf("%s: node %s: %w", methodBuild, e.To, err)
	}

	if len(e.SourceNodes) == 1 {
		return s.throatPath(e, fromNode, toNode)
	}

	path := s.positions(e.SourceNodes)
	if e.Way == source.TwoWay {
		path = offsetPolyline(path, -s.cfg.corridorWidth/2)
	}
	path[0] = fromNode.Pos
	path[len(path)-1] = toNode.Pos

	return path, nil
}

// throatPath is the crossing line inside an intersection: from the incoming
// mouth to the outgoing one, stepping half a corridor outside each mouth so
// the band clears the corner. A U-turn (both feeds meet the same far node)
// runs straight between the halves.
func (s *supervisor) throatPath(e core.Edge, fromNode, toNode core.Node) ([]source.Position, error) {
	inEdge, err := s.feedEdge(e.From, true)
	if err != nil {
		return nil, err
	}
	outEdge, err := s.feedEdge(e.To, false)
	if err != nil {
		return nil, err
	}

	base := e.SourceNodes[0]
	if farEnd(inEdge.SourceNodes, base) == farEnd(outEdge.SourceNodes, base) {
		return []source.Position{fromNode.Pos, toNode.Pos}, nil
	}

	inPts := s.positions(inEdge.SourceNodes)
	outPts := s.positions(outEdge.SourceNodes)
	stepIn := intersectionStep(inPts[len(inPts)-1], inPts[len(inPts)-2],
		s.cfg.corridorWidth, inEdge.Way != source.TwoWay, true)
	stepOut := intersectionStep(outPts[0], outPts[1],
		s.cfg.corridorWidth, outEdge.Way != source.TwoWay, false)

	return []source.Position{fromNode.Pos, stepIn, stepOut, toNode.Pos}, nil
}

// feedEdge is the multi-node travel edge feeding an intersection half: the
// approach into an intersection_in, the departure out of an
// intersection_out.
func (s *supervisor) feedEdge(node string, inbound bool) (core.Edge, error) {
	var edges []core.Edge
	var err error
	if inbound {
		edges, err = s.graph.InEdges(node)
	} else {
		edges, err = s.graph.OutEdges(node)
	}
	if err != nil {
		return core.Edge{}, fmt.Errorf("%s: node %s: %w", methodBuild, node, err)
	}

	for _, e := range edges {
		if len(e.SourceNodes) > 1 {
			return e, nil
		}
	}

	return core.Edge{}, fmt.Errorf("%s: intersection half %s has no feeding path: %w", methodBuild, node, ErrGraph)
}

// farEnd returns the end of a source node path that is not base.
func farEnd(pathNodes []string, base string) string {
	if pathNodes[0] != base {
		return pathNodes[0]
	}

	return pathNodes[len(pathNodes)-1]
}

// assignPoses writes stand poses. Intersection entries face along the last
// segment of their approach path; intersection exits and every pocket or
// waiting node face along the first segment of their departure path. POI
// chain nodes stand in the pose the supplied registry prescribes.
func (s *supervisor) assignPoses() error {
	posed := make(map[string]bool)
	for _, n := range s.graph.Nodes() {
		var inbound bool
		switch n.Kind {
		case core.KindIntersectionIn:
			inbound = true
		case core.KindIntersectionOut, core.KindNoChanges:
			inbound = false
		default:
			continue
		}

		e, err := s.mainEdge(n, inbound)
		if err != nil {
			return err
		}
		pts := s.positions(e.SourceNodes)
		theta := heading(pts[0], pts[1])
		if inbound {
			theta = heading(pts[len(pts)-2], pts[len(pts)-1])
		}
		if err := s.graph.SetNodePose(n.ID, core.Pose{Pos: n.Pos, Theta: theta}); err != nil {
			return fmt.Errorf("%s: pose node %s: %w", methodBuild, n.ID, err)
		}
		posed[n.ID] = true
	}

	for _, n := range s.graph.Nodes() {
		if posed[n.ID] || n.POI == source.NoPOI {
			continue
		}
		pose, ok := s.poiPoses[n.POI]
		if !ok {
			continue
		}
		if err := s.graph.SetNodePose(n.ID, pose); err != nil {
			return fmt.Errorf("%s: pose node %s: %w", methodBuild, n.ID, err)
		}
	}

	return nil
}

// mainEdge is the first travel edge entering (inbound) or leaving node n
// that comes from a different base node, which skips crossings and chain
// hops.
func (s *supervisor) mainEdge(n core.Node, inbound bool) (core.Edge, error) {
	var edges []core.Edge
	var err error
	if inbound {
		edges, err = s.graph.InEdges(n.ID)
	} else {
		edges, err = s.graph.OutEdges(n.ID)
	}
	if err != nil {
		return core.Edge{}, fmt.Errorf("%s: node %s: %w", methodBuild, n.ID, err)
	}

	for _, e := range edges {
		other := e.From
		if !inbound {
			other = e.To
		}
		o, err := s.graph.Node(other)
		if err != nil {
			return core.Edge{}, fmt.Errorf("%s: node %s: %w", methodBuild, other, err)
		}
		if o.Source != n.Source {
			return e, nil
		}
	}

	return core.Edge{}, fmt.Errorf("%s: node %s has no travel edge to face along: %w", methodBuild, n.ID, ErrGraph)
}
