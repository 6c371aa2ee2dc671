// Package keystate owns pad state, per-key press counters, the active layer
// and key auto-repeat. Nothing in it is safe for concurrent use; a single
// goroutine (the engine's apply loop) drives it.
package keystate

import (
	"log/slog"
	"time"

	"github.com/PixPMusic/gopher-linkb/internal/input"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

// TicksPerMillisecond converts the clock's unit (microseconds) to milliseconds.
const TicksPerMillisecond = 1000

const notPressed = 0

// Clock returns a monotonic tick count that is never zero.
type Clock func() int64

// MonotonicClock ticks in microseconds since it was created.
func MonotonicClock() Clock {
	start := time.Now()
	return func() int64 {
		return time.Since(start).Microseconds() + 1
	}
}

// KeyPress is reported to observers whenever an injectable key goes down or up.
type KeyPress struct {
	Key     keys.Code
	Pressed bool
}

type keyPress struct {
	count       int32
	pressTime   int64
	repeatsSent uint64
}

// Handler keeps a press counter for every key code. Several pads may resolve
// to the same key, so a key is only released when the last of them lets go.
type Handler struct {
	injector input.Injector
	now      Clock
	log      *slog.Logger

	presses [1 << 16]keyPress

	delayTicks int64
	rateTicks  int64

	observers []func(KeyPress)
}

// NewHandler returns a handler that injects through injector.
func NewHandler(injector input.Injector, clock Clock, logger *slog.Logger) *Handler {
	if clock == nil {
		clock = MonotonicClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		injector:   injector,
		now:        clock,
		log:        logger,
		delayTicks: DefaultRepeatDelay.Milliseconds() * TicksPerMillisecond,
		rateTicks:  DefaultRepeatRate.Milliseconds() * TicksPerMillisecond,
	}
}

// OnKeyEvent registers fn to be called after every injected press or release.
func (h *Handler) OnKeyEvent(fn func(KeyPress)) {
	h.observers = append(h.observers, fn)
}

func (h *Handler) IsPressed(key keys.Code) bool {
	return h.presses[key].count > 0
}

func (h *Handler) PressCount(key keys.Code) int32 {
	return h.presses[key].count
}

// Pressed lists every assigned key with a positive press count, in code order.
func (h *Handler) Pressed() []keys.Code {
	var pressed []keys.Code
	for i := 1; i < len(h.presses); i++ {
		if h.presses[i].count > 0 {
			pressed = append(pressed, keys.Code(i))
		}
	}
	return pressed
}

// Press counts one more pad holding key. The first press records the press
// time and injects a key-down.
func (h *Handler) Press(key keys.Code) {
	p := &h.presses[key]
	p.count++
	if p.count != 1 {
		return
	}

	p.pressTime = h.now()
	p.repeatsSent = 0
	if key.IsInjectable() {
		h.injector.SimulateKeyDown(key)
		h.notify(KeyPress{Key: key, Pressed: true})
	}
}

// Release counts one pad letting go of key. The last release clears the
// repeat state and injects a key-up. Releasing an unpressed key is logged
// and otherwise ignored.
func (h *Handler) Release(key keys.Code) {
	p := &h.presses[key]
	p.count--

	switch {
	case p.count < 0:
		h.log.Warn("key released more often than pressed", "key", key, "count", p.count)
		p.count = 0
	case p.count == 0:
		p.pressTime = notPressed
		p.repeatsSent = 0
		if key.IsInjectable() {
			h.injector.SimulateKeyUp(key)
			h.notify(KeyPress{Key: key, Pressed: false})
		}
	}
}

// ForceRelease releases key no matter how many pads hold it.
func (h *Handler) ForceRelease(key keys.Code) {
	p := &h.presses[key]
	if p.count <= 0 {
		return
	}
	p.count = 1
	h.Release(key)
}

// ReleaseAll force-releases every pressed key.
func (h *Handler) ReleaseAll() {
	for i := range h.presses {
		if h.presses[i].count > 0 {
			h.ForceRelease(keys.Code(i))
		}
	}
}

func (h *Handler) notify(kp KeyPress) {
	for _, fn := range h.observers {
		fn(kp)
	}
}
