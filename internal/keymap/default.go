package keymap

import (
	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

const none = keys.Undefined

type layerRows struct {
	layer keys.Layer
	// rows are listed top row first
	rows [][]keys.Code
}

var defaultLayout = []layerRows{
	{keys.Layer1, [][]keys.Code{
		{keys.Escape, keys.F1, keys.F2, keys.F3, keys.F4, keys.F5, keys.F6, keys.F7, keys.F8, keys.F9, keys.F10, keys.F11, keys.F12, keys.PrintScreen, keys.ScrollLock, keys.Pause},
		{keys.BackQuote, keys.N1, keys.N2, keys.N3, keys.N4, keys.N5, keys.N6, keys.N7, keys.N8, keys.N9, keys.N0, keys.Minus, keys.Equals, keys.Backspace, keys.Insert, keys.Home, keys.PageUp},
		{keys.Tab, keys.Q, keys.W, keys.E, keys.R, keys.T, keys.Y, keys.U, keys.I, keys.O, keys.P, keys.OpenBracket, keys.CloseBracket, keys.Backslash, keys.Delete, keys.End, keys.PageDown},
		{keys.CapsLock, keys.A, keys.S, keys.D, keys.F, keys.G, keys.H, keys.J, keys.K, keys.L, keys.Semicolon, keys.Quote, keys.Enter},
		{keys.LeftShift, keys.Z, keys.X, keys.C, keys.V, keys.B, keys.N, keys.M, keys.Comma, keys.Period, keys.Slash, keys.RightShift, none, none, none, keys.Up},
		{keys.LeftControl, keys.LeftMeta, keys.LeftAlt, keys.Space, keys.Space, keys.Space, keys.Space, keys.Space, keys.RightAlt, keys.ContextMenu, keys.RightControl, none, none, none, keys.Left, keys.Down, keys.Right},
		{keys.Mod1, keys.Mod2, keys.Mod3},
	}},
	{keys.Layer2, [][]keys.Code{
		{},
		{none, keys.F1, keys.F2, keys.F3, keys.F4, keys.F5, keys.F6, keys.F7, keys.F8, keys.F9, keys.F10, keys.F11, keys.F12, keys.Delete},
		{none, none, none, none, none, none, keys.Home, keys.PageDown, keys.PageUp, keys.End},
		{none, none, none, none, none, none, keys.Left, keys.Down, keys.Up, keys.Right},
		{none, none, none, none, none, none, none, keys.VolumeMute, keys.VolumeDown, keys.VolumeUp},
		{none, none, none, keys.MediaPrevious, keys.MediaPlay, keys.MediaPlay, keys.MediaPlay, keys.MediaNext},
	}},
	{keys.Layer3, [][]keys.Code{
		{},
		{none, none, none, none, none, none, none, keys.NumLock, keys.NumPadForwardSlash, keys.NumPadAsterisk, keys.NumPadMinus},
		{none, none, none, none, none, none, none, keys.NumPad7, keys.NumPad8, keys.NumPad9, keys.NumPadPlus},
		{none, none, none, none, none, none, none, keys.NumPad4, keys.NumPad5, keys.NumPad6, keys.NumPadEnter},
		{none, none, none, none, none, none, none, keys.NumPad1, keys.NumPad2, keys.NumPad3, keys.NumPadPeriod},
		{none, none, none, keys.NumPad0, keys.NumPad0, keys.NumPad0, keys.NumPad0, keys.NumPad0},
	}},
}

// Default returns the built-in QWERTY layout cropped to the grid size. Layer2
// holds function keys and navigation, Layer3 a number pad.
func Default(width, height int) (*Keymap, error) {
	km, err := New(width, height)
	if err != nil {
		return nil, err
	}
	for _, lr := range defaultLayout {
		for i, cols := range lr.rows {
			row := height - 1 - i
			if row < 0 {
				break
			}
			for col, key := range cols {
				if col >= width || key == keys.Undefined {
					continue
				}
				if err := km.Set(col, row, lr.layer, key); err != nil {
					return nil, err
				}
			}
		}
	}
	return km, nil
}
