package snapshot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/fleetpath/fleet"
	"github.com/katalvlaran/fleetpath/source"
	"github.com/katalvlaran/fleetpath/tasks"
)

// GraphSource serves the raw source-graph payload.
type GraphSource interface {
	FetchGraph(ctx context.Context) ([]byte, error)
}

// FleetSource serves the raw fleet-telemetry payload.
type FleetSource interface {
	FetchFleet(ctx context.Context) ([]byte, error)
}

// TaskSource serves the raw task-backlog payload.
type TaskSource interface {
	FetchBacklog(ctx context.Context) ([]byte, error)
}

// PlanSink receives the encoded plan of a finished pass.
type PlanSink interface {
	PublishPlan(ctx context.Context, plan []byte) error
}

// Sources bundles the three input collaborators of one deployment.
type Sources struct {
	Graph GraphSource
	Fleet FleetSource
	Tasks TaskSource
}

// Snapshot is one consistent set of planner inputs, stamped for log
// correlation.
type Snapshot struct {
	// ID correlates this snapshot with the plans and log lines it produced.
	ID string

	// Graph is the validated source graph.
	Graph *source.Graph

	// Robots is the validated fleet telemetry, sorted by id.
	Robots []fleet.Robot

	// Backlog is the validated task queue in stored sequence.
	Backlog []tasks.Task
}

// Load fetches and decodes the three inputs concurrently. The first failure
// cancels the remaining fetches and is returned; the snapshot is complete
// or nil.
// Returns ErrInput when a collaborator is missing or a payload is
// malformed, or the collaborator/validation error as is.
func Load(ctx context.Context, src Sources) (*Snapshot, error) {
	if src.Graph == nil || src.Fleet == nil || src.Tasks == nil {
		return nil, fmt.Errorf("%w: all three sources are required", ErrInput)
	}

	snap := &Snapshot{ID: uuid.NewString()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := src.Graph.FetchGraph(ctx)
		if err != nil {
			return fmt.Errorf("fetch graph: %w", err)
		}
		snap.Graph, err = DecodeGraph(data)

		return err
	})
	g.Go(func() error {
		data, err := src.Fleet.FetchFleet(ctx)
		if err != nil {
			return fmt.Errorf("fetch fleet: %w", err)
		}
		snap.Robots, err = DecodeFleet(data)

		return err
	})
	g.Go(func() error {
		data, err := src.Tasks.FetchBacklog(ctx)
		if err != nil {
			return fmt.Errorf("fetch backlog: %w", err)
		}
		snap.Backlog, err = DecodeBacklog(data)

		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return snap, nil
}
