package engine

import (
	"log/slog"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/PixPMusic/gopher-linkb/internal/keystate"
	"github.com/PixPMusic/gopher-linkb/internal/midi"
)

// LEDs mirrors the colour of every pad onto the device. It is driven by the
// grid's pad observer and so runs on the apply loop.
type LEDs struct {
	device  midi.Device
	send    func(gomidi.Message) error
	grid    *keystate.Grid
	log     *slog.Logger
	last    []midi.LedColor
	failing bool
}

// AttachLEDs registers LED feedback on grid and paints every pad once.
func AttachLEDs(grid *keystate.Grid, device midi.Device, send func(gomidi.Message) error, logger *slog.Logger) *LEDs {
	if logger == nil {
		logger = slog.Default()
	}
	l := &LEDs{
		device: device,
		send:   send,
		grid:   grid,
		log:    logger,
		last:   make([]midi.LedColor, grid.Width()*grid.Height()),
	}
	for i := range l.last {
		l.last[i] = midi.LedDefault
	}
	grid.OnPadChanged(l.update)
	for col := 0; col < grid.Width(); col++ {
		for row := 0; row < grid.Height(); row++ {
			l.update(col, row)
		}
	}
	return l
}

func (l *LEDs) update(col, row int) {
	color := l.grid.Color(col, row)
	i := col*l.grid.Height() + row
	if l.last[i] == color {
		return
	}

	if err := l.device.SetPadColor(l.send, col, row, color); err != nil {
		if !l.failing {
			l.log.Warn("failed to update pad LED", "column", col, "row", row, "error", err)
			l.failing = true
		}
		return
	}
	l.failing = false
	l.last[i] = color
}

// Clear turns every LED off. Call it from the apply loop or after it stopped.
func (l *LEDs) Clear() error {
	for i := range l.last {
		l.last[i] = midi.LedOff
	}
	return l.device.ClearAllPads(l.send)
}
