package keystate

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PixPMusic/gopher-linkb/internal/input"
	"github.com/PixPMusic/gopher-linkb/internal/keymap"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
	"github.com/PixPMusic/gopher-linkb/internal/midi"
)

type injected struct {
	kind input.EventKind
	key  keys.Code
}

type recordingInjector struct {
	events []injected
}

func (r *recordingInjector) SimulateKeyDown(key keys.Code) {
	r.events = append(r.events, injected{input.Press, key})
}

func (r *recordingInjector) SimulateKeyUp(key keys.Code) {
	r.events = append(r.events, injected{input.Release, key})
}

func (r *recordingInjector) SimulateKeyRepeat(key keys.Code) {
	r.events = append(r.events, injected{input.Repeat, key})
}

func (r *recordingInjector) count(kind input.EventKind, key keys.Code) int {
	n := 0
	for _, ev := range r.events {
		if ev.kind == kind && ev.key == key {
			n++
		}
	}
	return n
}

type fakeClock struct {
	now int64
}

func (c *fakeClock) read() int64 { return c.now }

func (c *fakeClock) advanceMs(ms int64) { c.now += ms * TicksPerMillisecond }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	grid     *Grid
	handler  *Handler
	injector *recordingInjector
	clock    *fakeClock
	km       *keymap.Keymap
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	km, err := keymap.New(25, 8)
	require.NoError(t, err)

	f := &fixture{
		injector: &recordingInjector{},
		clock:    &fakeClock{now: 1},
		km:       km,
	}
	f.handler = NewHandler(f.injector, f.clock.read, quietLogger())
	f.grid = NewGrid(km, f.handler, quietLogger())
	return f
}

func (f *fixture) set(t *testing.T, col, row int, layer keys.Layer, key keys.Code) {
	t.Helper()
	require.NoError(t, f.km.Set(col, row, layer, key))
}

func (f *fixture) press(col, row int) {
	f.grid.Apply(midi.PadEvent{Column: col, Row: row, Axis: midi.AxisVelocity, Value: 100})
}

func (f *fixture) release(col, row int) {
	f.grid.Apply(midi.PadEvent{Column: col, Row: row, Axis: midi.AxisVelocity, Value: 0})
}
