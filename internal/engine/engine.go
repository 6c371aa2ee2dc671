// Package engine runs the apply loop: the single goroutine that owns the pad
// grid, applies decoded pad events, runs auto-repeat on a timer and executes
// commands submitted by other goroutines.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/PixPMusic/gopher-linkb/internal/keystate"
	"github.com/PixPMusic/gopher-linkb/internal/midi"
)

// ErrStopped is returned by Do once Run has returned.
var ErrStopped = errors.New("engine stopped")

// Engine serializes all access to a keystate.Grid.
type Engine struct {
	grid     *keystate.Grid
	events   <-chan midi.PadEvent
	commands chan func(*keystate.Grid)
	stopped  chan struct{}
	log      *slog.Logger
}

// New creates an engine applying events to grid.
func New(grid *keystate.Grid, events <-chan midi.PadEvent, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		grid:     grid,
		events:   events,
		commands: make(chan func(*keystate.Grid)),
		stopped:  make(chan struct{}),
		log:      logger,
	}
}

// Run applies events until ctx is cancelled. Every held key is released
// before it returns.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.stopped)

	interval := e.grid.Handler().TickInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	events := e.events
	e.log.Info("engine started", "tick", interval)

	for {
		select {
		case <-ctx.Done():
			e.grid.Handler().ReleaseAll()
			e.log.Info("engine stopped")
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			e.grid.Apply(ev)

		case cmd := <-e.commands:
			cmd(e.grid)

		case <-ticker.C:
			e.grid.Tick()
		}

		if next := e.grid.Handler().TickInterval(); next != interval {
			interval = next
			ticker.Reset(interval)
		}
	}
}

// Do runs fn on the apply loop and waits for it to finish.
func (e *Engine) Do(ctx context.Context, fn func(g *keystate.Grid)) error {
	done := make(chan struct{})
	cmd := func(g *keystate.Grid) {
		defer close(done)
		fn(g)
	}

	select {
	case e.commands <- cmd:
	case <-e.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the grid state.
func (e *Engine) Snapshot(ctx context.Context) (keystate.Snapshot, error) {
	var s keystate.Snapshot
	err := e.Do(ctx, func(g *keystate.Grid) {
		s = g.Snapshot()
	})
	return s, err
}
