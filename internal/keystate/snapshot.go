package keystate

import (
	"time"

	"github.com/PixPMusic/gopher-linkb/internal/keys"
	"github.com/PixPMusic/gopher-linkb/internal/midi"
)

// Cell describes one pad as it is currently resolved.
type Cell struct {
	Column  int
	Row     int
	Key     keys.Code
	FoundOn keys.Layer
	PadDown bool
	KeyDown bool
	Color   midi.LedColor
}

// Snapshot is a copy of the grid state that may be handed to other goroutines.
type Snapshot struct {
	Width       int
	Height      int
	Layer       keys.Layer
	KeyEvents   bool
	RepeatDelay time.Duration
	RepeatRate  time.Duration
	Pressed     []keys.Code

	// Cells are ordered column-major: Cells[col*Height+row]
	Cells []Cell
}

// At returns the cell at col, row.
func (s Snapshot) At(col, row int) Cell {
	return s.Cells[col*s.Height+row]
}

// Snapshot copies the current state.
func (g *Grid) Snapshot() Snapshot {
	delay, rate := g.handler.Repeat()
	s := Snapshot{
		Width:       g.width,
		Height:      g.height,
		Layer:       g.layer,
		KeyEvents:   g.keyEvents,
		RepeatDelay: delay,
		RepeatRate:  rate,
		Pressed:     g.handler.Pressed(),
		Cells:       make([]Cell, 0, g.width*g.height),
	}
	for col := 0; col < g.width; col++ {
		for row := 0; row < g.height; row++ {
			key, found := g.keymap.Resolve(col, row, g.layer)
			down := g.handler.IsPressed(key)
			s.Cells = append(s.Cells, Cell{
				Column:  col,
				Row:     row,
				Key:     key,
				FoundOn: found,
				PadDown: g.pads[g.index(col, row)].Pressed(),
				KeyDown: down,
				Color:   ColorFor(key, down),
			})
		}
	}
	return s
}
