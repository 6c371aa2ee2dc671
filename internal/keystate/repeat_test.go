package keystate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/PixPMusic/gopher-linkb/internal/input"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

func TestFirstRepeatFiresAtDelay(t *testing.T) {
	f := newFixture(t)
	f.handler.Press(keys.A)

	f.clock.advanceMs(499)
	f.handler.Tick()
	assert.Equal(t, 0, f.injector.count(input.Repeat, keys.A))

	f.clock.advanceMs(1)
	f.handler.Tick()
	assert.Equal(t, 1, f.injector.count(input.Repeat, keys.A))

	f.clock.advanceMs(32)
	f.handler.Tick()
	assert.Equal(t, 1, f.injector.count(input.Repeat, keys.A))
}

func TestRepeatCountDoesNotDriftWithIrregularPolling(t *testing.T) {
	const delayMs, rateMs = 500, 33

	f := newFixture(t)
	f.handler.SetRepeat(delayMs, rateMs)
	f.handler.Press(keys.Backspace)

	var elapsed int64
	steps := []int64{120, 260, 150, 7, 90, 333, 41, 5, 600, 17, 1, 66, 250, 3, 999, 12}
	for _, step := range steps {
		f.clock.advanceMs(step)
		elapsed += step
		f.handler.Tick()

		var want int64
		switch {
		case elapsed < delayMs:
			want = 0
		case elapsed-delayMs < rateMs:
			want = 1
		default:
			want = (elapsed - delayMs) / rateMs
		}
		assert.Equal(t, int(want), f.injector.count(input.Repeat, keys.Backspace), "elapsed %dms", elapsed)
	}
}

func TestLateTickCatchesUp(t *testing.T) {
	f := newFixture(t)
	f.handler.SetRepeat(200, 20)
	f.handler.Press(keys.Left)

	f.clock.advanceMs(200 + 10*20)
	f.handler.Tick()
	assert.Equal(t, 10, f.injector.count(input.Repeat, keys.Left))

	f.handler.Tick()
	assert.Equal(t, 10, f.injector.count(input.Repeat, keys.Left), "no double counting")
}

func TestStalledTickEmitsBoundedBurst(t *testing.T) {
	f := newFixture(t)
	f.handler.SetRepeat(200, 20)
	f.handler.Press(keys.Down)

	f.clock.advanceMs(200 + 100*20)
	f.handler.Tick()
	assert.Equal(t, MaxRepeatsPerTick, f.injector.count(input.Repeat, keys.Down))

	for _, want := range []int{64, 96, 100, 100} {
		f.handler.Tick()
		assert.Equal(t, want, f.injector.count(input.Repeat, keys.Down))
	}

	f.clock.advanceMs(time.Hour.Milliseconds())
	f.handler.Tick()
	assert.Equal(t, 100+MaxRepeatsPerTick, f.injector.count(input.Repeat, keys.Down))
}

func TestReleaseStopsRepeats(t *testing.T) {
	f := newFixture(t)
	f.handler.Press(keys.Space)
	f.clock.advanceMs(600)
	f.handler.Tick()
	before := f.injector.count(input.Repeat, keys.Space)
	assert.Positive(t, before)

	f.handler.Release(keys.Space)
	f.clock.advanceMs(600)
	f.handler.Tick()
	assert.Equal(t, before, f.injector.count(input.Repeat, keys.Space))

	// A new press starts over with the delay.
	f.handler.Press(keys.Space)
	f.clock.advanceMs(100)
	f.handler.Tick()
	assert.Equal(t, before, f.injector.count(input.Repeat, keys.Space))
}

func TestLogicalKeysNeverRepeat(t *testing.T) {
	f := newFixture(t)
	f.handler.Press(keys.Undefined)
	f.handler.Press(keys.Blocker)
	f.handler.Press(keys.Mod1)

	f.clock.advanceMs(5000)
	f.handler.Tick()
	assert.Empty(t, f.injector.events)
}

func TestSetRepeatIgnoresInvalidValues(t *testing.T) {
	f := newFixture(t)

	delay, rate := f.handler.Repeat()
	assert.Equal(t, DefaultRepeatDelay, delay)
	assert.Equal(t, DefaultRepeatRate, rate)

	f.handler.SetRepeat(1, 0)
	delay, rate = f.handler.Repeat()
	assert.Equal(t, DefaultRepeatDelay, delay)
	assert.Equal(t, DefaultRepeatRate, rate)

	f.handler.SetRepeat(250, 20)
	delay, rate = f.handler.Repeat()
	assert.Equal(t, 250*time.Millisecond, delay)
	assert.Equal(t, 20*time.Millisecond, rate)
	assert.Equal(t, 5*time.Millisecond, f.handler.TickInterval())

	f.handler.SetRepeat(0, 2)
	assert.Equal(t, time.Millisecond, f.handler.TickInterval())
}
