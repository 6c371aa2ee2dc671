package keystate

import (
	"time"

	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

const (
	DefaultRepeatDelay = 500 * time.Millisecond
	DefaultRepeatRate  = 33 * time.Millisecond

	// MaxRepeatsPerTick bounds the repeats one key emits in a single Tick.
	// A longer backlog is worked off by the following ticks.
	MaxRepeatsPerTick = 32
)

// SetRepeat changes the auto-repeat delay and interval. A delay of 1ms or
// less and a non-positive rate are ignored, so callers can pass through
// partially known system settings.
func (h *Handler) SetRepeat(delayMs, rateMs int) {
	if delayMs > 1 {
		h.delayTicks = int64(delayMs) * TicksPerMillisecond
	}
	if rateMs > 0 {
		h.rateTicks = int64(rateMs) * TicksPerMillisecond
	}
}

// Repeat returns the current auto-repeat delay and interval.
func (h *Handler) Repeat() (delay, rate time.Duration) {
	delay = time.Duration(h.delayTicks/TicksPerMillisecond) * time.Millisecond
	rate = time.Duration(h.rateTicks/TicksPerMillisecond) * time.Millisecond
	return delay, rate
}

// TickInterval is how often Tick should run to keep up with the repeat rate.
func (h *Handler) TickInterval() time.Duration {
	_, rate := h.Repeat()
	interval := rate / 4
	if interval < time.Millisecond {
		interval = time.Millisecond
	}
	return interval
}

// Tick emits the repeats that are due for every held injectable key. The first
// repeat fires once the delay has passed; after that the number of repeats is
// kept equal to the whole rate periods elapsed since the delay, so a late tick
// emits the repeats it missed, at most MaxRepeatsPerTick at a time.
func (h *Handler) Tick() {
	now := h.now()
	for i := 1; i < int(keys.NonSystemKeyStart); i++ {
		p := &h.presses[i]
		if p.pressTime == notPressed {
			continue
		}
		elapsed := now - p.pressTime
		if elapsed < h.delayTicks {
			continue
		}

		due := uint64((elapsed - h.delayTicks) / h.rateTicks)
		for n := 0; n < MaxRepeatsPerTick && (p.repeatsSent == 0 || due > p.repeatsSent); n++ {
			p.repeatsSent++
			h.injector.SimulateKeyRepeat(keys.Code(i))
		}
	}
}
