package snapshot

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/fleetpath/builder"
	"github.com/katalvlaran/fleetpath/dispatch"
)

// Duration is a time.Duration that YAML-decodes from the human form ("5s")
// or from a bare number of seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("%w: duration %q: %v", ErrConfig, s, err)
		}
		*d = Duration(parsed)

		return nil
	}

	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(time.Duration(n) * time.Second)

		return nil
	}

	return fmt.Errorf("%w: duration: unsupported form %q", ErrConfig, value.Value)
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config carries the deployment tunables of the builder and the dispatcher.
// Zero values are not meaningful; start from DefaultConfig and overlay.
type Config struct {
	// RobotVelocity is the cruise speed for travel-time weights, m/s.
	RobotVelocity float64 `yaml:"robotVelocity"`

	// RobotLength is the lane length one robot occupies, meters.
	RobotLength float64 `yaml:"robotLength"`

	// CorridorWidth is the swept-lane width, meters.
	CorridorWidth float64 `yaml:"corridorWidth"`

	// DockTime, WaitTime and UndockTime are the service-stage weights,
	// seconds.
	DockTime   int `yaml:"dockTime"`
	WaitTime   int `yaml:"waitTime"`
	UndockTime int `yaml:"undockTime"`

	// IntersectionTime is the weight of one intersection crossing, seconds.
	IntersectionTime int `yaml:"intersectionTime"`

	// PlanningTimeout bounds the dispatcher's assignment loop.
	PlanningTimeout Duration `yaml:"planningTimeout"`
}

// DefaultConfig mirrors the builder and dispatcher defaults.
func DefaultConfig() Config {
	return Config{
		RobotVelocity:    builder.DefaultRobotVelocity,
		RobotLength:      builder.DefaultRobotLength,
		CorridorWidth:    builder.DefaultCorridorWidth,
		DockTime:         builder.DefaultDockTime,
		WaitTime:         builder.DefaultWaitTime,
		UndockTime:       builder.DefaultUndockTime,
		IntersectionTime: builder.DefaultIntersectionTime,
		PlanningTimeout:  Duration(dispatch.DefaultPlanningTimeout),
	}
}

// Validate checks that every tunable is positive.
// Returns ErrConfig naming the first offender.
func (c Config) Validate() error {
	checks := []struct {
		name string
		ok   bool
	}{
		{"robotVelocity", c.RobotVelocity > 0},
		{"robotLength", c.RobotLength > 0},
		{"corridorWidth", c.CorridorWidth > 0},
		{"dockTime", c.DockTime > 0},
		{"waitTime", c.WaitTime > 0},
		{"undockTime", c.UndockTime > 0},
		{"intersectionTime", c.IntersectionTime > 0},
		{"planningTimeout", c.PlanningTimeout > 0},
	}
	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s must be positive", ErrConfig, check.name)
		}
	}

	return nil
}

// LoadConfig reads a YAML tunables file over the defaults: keys absent from
// the file keep their default.
// Returns ErrConfig for unreadable files, bad YAML or invalid values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// BuilderOptions expresses the construction tunables as builder options.
// Call Validate first; the option constructors panic on non-positive values.
func (c Config) BuilderOptions() []builder.Option {
	return []builder.Option{
		builder.WithRobotVelocity(c.RobotVelocity),
		builder.WithRobotLength(c.RobotLength),
		builder.WithCorridorWidth(c.CorridorWidth),
		builder.WithDockTime(c.DockTime),
		builder.WithWaitTime(c.WaitTime),
		builder.WithUndockTime(c.UndockTime),
		builder.WithIntersectionTime(c.IntersectionTime),
	}
}

// DispatchOptions expresses the planning tunables as dispatcher options.
func (c Config) DispatchOptions() []dispatch.Option {
	return []dispatch.Option{
		dispatch.WithPlanningTimeout(time.Duration(c.PlanningTimeout)),
	}
}
