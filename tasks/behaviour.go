package tasks

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// Sentinel errors for malformed inputs and queue misuse.
var (
	// ErrBehaviourInput indicates a malformed behaviour definition.
	ErrBehaviourInput = errors.New("tasks: bad behaviour input")

	// ErrTaskInput indicates a malformed task definition.
	ErrTaskInput = errors.New("tasks: bad task input")

	// ErrTaskManager indicates a queue operation against a missing robot or
	// a task bound to a different robot.
	ErrTaskManager = errors.New("tasks: task manager misuse")
)

// Kind enumerates the behaviour types a robot can execute.
type Kind int

const (
	// KindGoTo drives to a point of interest.
	KindGoTo Kind = iota + 1

	// KindDock runs the docking procedure at a stand.
	KindDock

	// KindWait sits out the service time at a stand.
	KindWait

	// KindBatteryExchange swaps the battery; planned like a wait.
	KindBatteryExchange

	// KindUndock runs the undocking procedure.
	KindUndock
)

// kindNames carries the fixed wire names. "3" for wait is historical and
// kept for compatibility.
var kindNames = map[Kind]string{
	KindGoTo:            "GO_TO",
	KindDock:            "DOCK",
	KindWait:            "3",
	KindBatteryExchange: "BAT_EX",
	KindUndock:          "UNDOCK",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a wire name back to its Kind.
// Returns ErrBehaviourInput for unknown names.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: behaviour %q doesn't exist", ErrBehaviourInput, name)
}

// Behaviour is one step of a task.
type Behaviour struct {
	// ID identifies the behaviour within its task.
	ID string

	// Kind is the behaviour type.
	Kind Kind

	// To is the target POI; meaningful for KindGoTo only.
	To string
}

// IsGoTo reports whether the behaviour drives to a POI.
func (b Behaviour) IsGoTo() bool { return b.Kind == KindGoTo }

// POI returns the travel target of a KindGoTo behaviour; the second return
// is false for every other kind.
func (b Behaviour) POI() (string, bool) {
	if !b.IsGoTo() {
		return "", false
	}

	return b.To, true
}

// Validate checks the behaviour holds everything its kind requires.
// Returns ErrBehaviourInput describing the first defect found.
func (b Behaviour) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("%w: behaviour id is empty", ErrBehaviourInput)
	}
	if _, ok := kindNames[b.Kind]; !ok {
		return fmt.Errorf("%w: behaviour %q has unknown kind %d", ErrBehaviourInput, b.ID, int(b.Kind))
	}
	if b.Kind == KindGoTo && b.To == "" {
		return fmt.Errorf("%w: behaviour %q of kind GO_TO has no target POI", ErrBehaviourInput, b.ID)
	}

	return nil
}

// behaviourWire is the persisted layout: the kind and target hide inside a
// parameters object.
type behaviourWire struct {
	ID         string          `json:"id"`
	Parameters behaviourParams `json:"parameters"`
}

type behaviourParams struct {
	Name string `json:"name"`
	To   string `json:"to,omitempty"`
}

// MarshalJSON encodes the behaviour in its wire layout.
func (b Behaviour) MarshalJSON() ([]byte, error) {
	return json.Marshal(behaviourWire{
		ID: b.ID,
		Parameters: behaviourParams{
			Name: b.Kind.String(),
			To:   b.To,
		},
	})
}

// UnmarshalJSON decodes the wire layout and validates the result.
func (b *Behaviour) UnmarshalJSON(data []byte) error {
	var w behaviourWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %v", ErrBehaviourInput, err)
	}
	kind, err := ParseKind(w.Parameters.Name)
	if err != nil {
		return err
	}
	b.ID = w.ID
	b.Kind = kind
	b.To = w.Parameters.To

	return b.Validate()
}
