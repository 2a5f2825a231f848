// Package builder: shared defaults and method-name constants.
package builder

//-----------------------------------------------------------------------------
// Builder Method Name Constants
//   used to prefix errors with the originating stage for context.
//-----------------------------------------------------------------------------

const (
	methodConvert = "Convert"
	methodBuild   = "Build"
)

//-----------------------------------------------------------------------------
// Planning Defaults
//   every value is adjustable through the functional options in options.go.
//-----------------------------------------------------------------------------

const (
	// DefaultRobotVelocity is the cruise speed used for travel-time weights,
	// meters per second.
	DefaultRobotVelocity = 0.5

	// DefaultRobotLength is the lane length one robot occupies, meters.
	// Bulk edges hold floor(pathLength / robotLength) robots.
	DefaultRobotLength = 0.7

	// DefaultCorridorWidth is the width of the swept lane, meters.
	DefaultCorridorWidth = 0.9

	// DefaultDockTime is the weight of a DOCK edge, seconds.
	DefaultDockTime = 20

	// DefaultWaitTime is the weight of a WAIT edge, seconds.
	DefaultWaitTime = 10

	// DefaultUndockTime is the weight of an UNDOCK edge, seconds.
	DefaultUndockTime = 20

	// DefaultIntersectionTime is the weight of one intersection crossing,
	// seconds.
	DefaultIntersectionTime = 3
)
