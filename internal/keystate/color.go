package keystate

import (
	"github.com/PixPMusic/gopher-linkb/internal/keys"
	"github.com/PixPMusic/gopher-linkb/internal/midi"
)

// ColorFor picks the LED colour of a pad showing key.
func ColorFor(key keys.Code, pressed bool) midi.LedColor {
	switch {
	case key == keys.Undefined || key == keys.Blocker:
		return midi.LedOff
	case pressed:
		return midi.LedPink
	case key.IsLayerModifier():
		return midi.LedGreen
	case key == keys.F || key == keys.J:
		return midi.LedBlue
	case key.IsLock():
		return midi.LedRed
	case key.IsLetter():
		return midi.LedWhite
	case key.IsNumber():
		return midi.LedOrange
	case key.IsSymbol():
		return midi.LedLime
	}
	return midi.LedCyan
}

// Color is the LED colour of a pad at the active layer.
func (g *Grid) Color(col, row int) midi.LedColor {
	key := g.KeyAt(col, row)
	return ColorFor(key, g.handler.IsPressed(key))
}
