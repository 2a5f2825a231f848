// SPDX-License-Identifier: MIT
// Package: fleetpath/builder
//
// options.go — functional options for planning-graph construction.
//
// Contract (strict):
//   - Options are functional (type Option func(*config)).
//   - Option constructors VALIDATE their inputs and PANIC on meaningless
//     values; Build itself never panics.
//   - No hidden globals; every knob flows through config.

package builder

// Option customizes planning-graph construction by mutating a config
// instance before any stage runs.
type Option func(*config)

// config aggregates all construction knobs. It is resolved once per Build
// call and passed by value to the stages.
type config struct {
	robotVelocity    float64 // cruise speed, m/s, > 0
	robotLength      float64 // occupied lane length per robot, m, > 0
	corridorWidth    float64 // swept-lane width, m, > 0
	dockTime         int     // DOCK edge weight, seconds, > 0
	waitTime         int     // WAIT edge weight, seconds, > 0
	undockTime       int     // UNDOCK edge weight, seconds, > 0
	intersectionTime int     // intersection crossing weight, seconds, > 0
}

// newConfig seeds the defaults from constants.go, then applies opts in
// order (last one wins).
// Complexity: O(len(opts)) time, O(1) space.
func newConfig(opts ...Option) config {
	cfg := config{
		robotVelocity:    DefaultRobotVelocity,
		robotLength:      DefaultRobotLength,
		corridorWidth:    DefaultCorridorWidth,
		dockTime:         DefaultDockTime,
		waitTime:         DefaultWaitTime,
		undockTime:       DefaultUndockTime,
		intersectionTime: DefaultIntersectionTime,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// WithRobotVelocity overrides the cruise speed used for travel-time weights.
// Panics if v <= 0.
func WithRobotVelocity(v float64) Option {
	if v <= 0 {
		panic("builder: WithRobotVelocity(v<=0)")
	}

	return func(c *config) { c.robotVelocity = v }
}

// WithRobotLength overrides the lane length one robot occupies, which sets
// bulk edge capacities. Panics if l <= 0.
func WithRobotLength(l float64) Option {
	if l <= 0 {
		panic("builder: WithRobotLength(l<=0)")
	}

	return func(c *config) { c.robotLength = l }
}

// WithCorridorWidth overrides the swept-lane width. Panics if w <= 0.
func WithCorridorWidth(w float64) Option {
	if w <= 0 {
		panic("builder: WithCorridorWidth(w<=0)")
	}

	return func(c *config) { c.corridorWidth = w }
}

// WithDockTime overrides the DOCK edge weight. Panics if t <= 0.
func WithDockTime(t int) Option {
	if t <= 0 {
		panic("builder: WithDockTime(t<=0)")
	}

	return func(c *config) { c.dockTime = t }
}

// WithWaitTime overrides the WAIT edge weight. Panics if t <= 0.
func WithWaitTime(t int) Option {
	if t <= 0 {
		panic("builder: WithWaitTime(t<=0)")
	}

	return func(c *config) { c.waitTime = t }
}

// WithUndockTime overrides the UNDOCK edge weight. Panics if t <= 0.
func WithUndockTime(t int) Option {
	if t <= 0 {
		panic("builder: WithUndockTime(t<=0)")
	}

	return func(c *config) { c.undockTime = t }
}

// WithIntersectionTime overrides the weight of one intersection crossing.
// Panics if t <= 0.
func WithIntersectionTime(t int) Option {
	if t <= 0 {
		panic("builder: WithIntersectionTime(t<=0)")
	}

	return func(c *config) { c.intersectionTime = t }
}
