package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of filesystem events one save
// produces into a single rebuild.
const DefaultDebounce = 500 * time.Millisecond

// WatchOption customizes Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	debounce time.Duration
	log      zerolog.Logger
}

// WithDebounce overrides the event-coalescing window. Panics if d <= 0.
func WithDebounce(d time.Duration) WatchOption {
	if d <= 0 {
		panic("snapshot: WithDebounce(d<=0)")
	}

	return func(c *watchConfig) { c.debounce = d }
}

// WithWatchLogger installs the watcher logger. The default discards
// everything.
func WithWatchLogger(l zerolog.Logger) WatchOption {
	return func(c *watchConfig) { c.log = l }
}

// Watch blocks watching the source-graph file and invokes onChange after
// each settled burst of writes, until the context ends. The caller's
// onChange typically reloads the file and rebuilds the planning graph.
// Returns the context error on cancellation, ErrWatcher otherwise.
func Watch(ctx context.Context, path string, onChange func(), opts ...WatchOption) error {
	cfg := watchConfig{debounce: DefaultDebounce, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatcher, err)
	}
	defer w.Close()
	if err := w.Add(path); err != nil {
		return fmt.Errorf("%w: watching %q: %v", ErrWatcher, path, err)
	}
	cfg.log.Info().Str("file", path).Dur("debounce", cfg.debounce).Msg("watching source graph")

	// The timer starts drained; the first relevant event arms it.
	settle := time.NewTimer(cfg.debounce)
	if !settle.Stop() {
		<-settle.C
	}
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("%w: event stream closed", ErrWatcher)
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			cfg.log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("source change observed")
			if !settle.Stop() {
				select {
				case <-settle.C:
				default:
				}
			}
			settle.Reset(cfg.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("%w: error stream closed", ErrWatcher)
			}

			return fmt.Errorf("%w: %v", ErrWatcher, err)

		case <-settle.C:
			cfg.log.Debug().Str("file", path).Msg("source settled, rebuilding")
			onChange()
		}
	}
}
