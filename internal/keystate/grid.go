package keystate

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/PixPMusic/gopher-linkb/internal/keymap"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
	"github.com/PixPMusic/gopher-linkb/internal/midi"
)

// AxisUnset marks an axis that has not been reported since the pad was pressed.
const AxisUnset float32 = -math.MaxFloat32

// PadState is the last known touch of one pad.
type PadState struct {
	Velocity01 float32
	X, Y, Z    float32
}

func (p PadState) Pressed() bool {
	return p.Velocity01 > 0
}

func (p *PadState) resetAxes() {
	p.X, p.Y, p.Z = AxisUnset, AxisUnset, AxisUnset
}

// Grid applies pad events to pad state and turns pad presses into key presses
// through the keymap at the active layer.
type Grid struct {
	keymap  *keymap.Keymap
	handler *Handler
	log     *slog.Logger

	width  int
	height int
	pads   []PadState

	layer     keys.Layer
	keyEvents bool

	padObservers   []func(col, row int)
	layerObservers []func(old, new keys.Layer)
}

// NewGrid creates a grid shaped like km. Key events start enabled.
func NewGrid(km *keymap.Keymap, handler *Handler, logger *slog.Logger) *Grid {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Grid{
		keymap:    km,
		handler:   handler,
		log:       logger,
		width:     km.Width(),
		height:    km.Height(),
		pads:      make([]PadState, km.Width()*km.Height()),
		layer:     keys.Layer1,
		keyEvents: true,
	}
	for i := range g.pads {
		g.pads[i].resetAxes()
	}
	return g
}

func (g *Grid) Width() int                { return g.width }
func (g *Grid) Height() int               { return g.height }
func (g *Grid) Layer() keys.Layer         { return g.layer }
func (g *Grid) Keymap() *keymap.Keymap    { return g.keymap }
func (g *Grid) Handler() *Handler         { return g.handler }
func (g *Grid) KeyEventsEnabled() bool    { return g.keyEvents }
func (g *Grid) Pad(col, row int) PadState { return g.pads[g.index(col, row)] }

// OnPadChanged registers fn to be called after anything that may change how
// a pad should be drawn: its touch, its key's press state or the layer.
func (g *Grid) OnPadChanged(fn func(col, row int)) {
	g.padObservers = append(g.padObservers, fn)
}

// OnLayerChanged registers fn to be called after the active layer changes.
func (g *Grid) OnLayerChanged(fn func(old, new keys.Layer)) {
	g.layerObservers = append(g.layerObservers, fn)
}

// KeyAt resolves the key of a pad at the active layer.
func (g *Grid) KeyAt(col, row int) keys.Code {
	key, _ := g.keymap.Resolve(col, row, g.layer)
	return key
}

func (g *Grid) index(col, row int) int {
	return col*g.height + row
}

func (g *Grid) inBounds(col, row int) bool {
	return col >= 0 && col < g.width && row >= 0 && row < g.height
}

// Apply updates one pad from a decoded event. A change between pressed and
// released is a single key transition.
func (g *Grid) Apply(ev midi.PadEvent) {
	if !g.inBounds(ev.Column, ev.Row) {
		g.log.Warn("pad event out of bounds", "column", ev.Column, "row", ev.Row)
		return
	}

	pad := &g.pads[g.index(ev.Column, ev.Row)]
	wasPressed := pad.Pressed()

	switch ev.Axis {
	case midi.AxisVelocity:
		pad.Velocity01 = ev.Value / 127
		if !pad.Pressed() {
			pad.resetAxes()
		}
	case midi.AxisX:
		pad.X = ev.Value
	case midi.AxisY:
		pad.Y = ev.Value
	case midi.AxisZ:
		pad.Z = ev.Value
	}

	if pad.Pressed() != wasPressed {
		g.padTransition(ev.Column, ev.Row, pad.Pressed())
	}
}

func (g *Grid) padTransition(col, row int, pressed bool) {
	if g.keyEvents {
		key := g.KeyAt(col, row)
		if pressed {
			g.handler.Press(key)
		} else {
			g.handler.Release(key)
		}
		if key.IsLayerModifier() {
			g.recomputeLayer()
		}
	}
	g.padChanged(col, row)
}

// recomputeLayer derives the layer from the held modifiers. Keys that were
// pressed through the old layer and resolve differently on the new one are
// released so they cannot stick.
func (g *Grid) recomputeLayer() {
	var layer keys.Layer
	for _, mod := range keys.Modifiers {
		if g.handler.IsPressed(mod) {
			layer |= mod.LayerBit()
		}
	}

	old := g.layer
	if layer == old {
		return
	}
	g.layer = layer

	for col := 0; col < g.width; col++ {
		for row := 0; row < g.height; row++ {
			oldKey, _ := g.keymap.Resolve(col, row, old)
			newKey, _ := g.keymap.Resolve(col, row, layer)
			if oldKey == newKey || oldKey.IsLayerModifier() {
				continue
			}
			if g.handler.IsPressed(oldKey) {
				g.handler.ForceRelease(oldKey)
			}
		}
	}

	g.log.Debug("layer changed", "from", old, "to", layer)
	for _, fn := range g.layerObservers {
		fn(old, layer)
	}
	g.repaint()
}

// Tick runs the auto-repeat scheduler.
func (g *Grid) Tick() {
	g.handler.Tick()
}

// SetKeyEventsEnabled pauses or resumes key injection. Pausing releases every
// pressed key and returns to Layer1; pads keep tracking touches.
func (g *Grid) SetKeyEventsEnabled(enabled bool) {
	if g.keyEvents == enabled {
		return
	}
	g.keyEvents = enabled
	if !enabled {
		g.handler.ReleaseAll()
		g.recomputeLayer()
	}
	g.repaint()
}

// SetKey changes one keymap cell. A key held through the cell that no longer
// resolves there is released.
func (g *Grid) SetKey(col, row int, layer keys.Layer, key keys.Code) error {
	before := g.KeyAt(col, row)
	if err := g.keymap.Set(col, row, layer, key); err != nil {
		return err
	}
	after := g.KeyAt(col, row)
	if before != after && g.handler.IsPressed(before) {
		g.handler.ForceRelease(before)
		if before.IsLayerModifier() {
			g.recomputeLayer()
		}
	}
	if g.inBounds(col, row) {
		g.padChanged(col, row)
	}
	return nil
}

// SetKeymap replaces the keymap. It must have the grid's shape. Every pressed
// key is released first.
func (g *Grid) SetKeymap(km *keymap.Keymap) error {
	if km.Width() != g.width || km.Height() != g.height {
		return fmt.Errorf("keymap is %dx%d, grid is %dx%d", km.Width(), km.Height(), g.width, g.height)
	}
	g.handler.ReleaseAll()
	g.keymap = km
	g.recomputeLayer()
	g.repaint()
	return nil
}

func (g *Grid) padChanged(col, row int) {
	for _, fn := range g.padObservers {
		fn(col, row)
	}
}

// repaint notifies pad observers about every pad.
func (g *Grid) repaint() {
	if len(g.padObservers) == 0 {
		return
	}
	for col := 0; col < g.width; col++ {
		for row := 0; row < g.height; row++ {
			g.padChanged(col, row)
		}
	}
}
