//go:build linux

package hid

import (
	evdev "github.com/holoplot/go-evdev"

	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

// The virtual keyboard registers the standard keyboard range only.
const (
	keyMin evdev.EvCode = 1
	keyMax evdev.EvCode = 255
)

var toEvdev = map[keys.Code]evdev.EvCode{
	keys.N0: evdev.KEY_0,
	keys.N1: evdev.KEY_1,
	keys.N2: evdev.KEY_2,
	keys.N3: evdev.KEY_3,
	keys.N4: evdev.KEY_4,
	keys.N5: evdev.KEY_5,
	keys.N6: evdev.KEY_6,
	keys.N7: evdev.KEY_7,
	keys.N8: evdev.KEY_8,
	keys.N9: evdev.KEY_9,

	keys.Q: evdev.KEY_Q,
	keys.W: evdev.KEY_W,
	keys.E: evdev.KEY_E,
	keys.R: evdev.KEY_R,
	keys.T: evdev.KEY_T,
	keys.Y: evdev.KEY_Y,
	keys.U: evdev.KEY_U,
	keys.I: evdev.KEY_I,
	keys.O: evdev.KEY_O,
	keys.P: evdev.KEY_P,
	keys.A: evdev.KEY_A,
	keys.S: evdev.KEY_S,
	keys.D: evdev.KEY_D,
	keys.F: evdev.KEY_F,
	keys.G: evdev.KEY_G,
	keys.H: evdev.KEY_H,
	keys.J: evdev.KEY_J,
	keys.K: evdev.KEY_K,
	keys.L: evdev.KEY_L,
	keys.Z: evdev.KEY_Z,
	keys.X: evdev.KEY_X,
	keys.C: evdev.KEY_C,
	keys.V: evdev.KEY_V,
	keys.B: evdev.KEY_B,
	keys.N: evdev.KEY_N,
	keys.M: evdev.KEY_M,

	keys.Backspace: evdev.KEY_BACKSPACE,
	keys.Insert:    evdev.KEY_INSERT,
	keys.Delete:    evdev.KEY_DELETE,
	keys.PageUp:    evdev.KEY_PAGEUP,
	keys.PageDown:  evdev.KEY_PAGEDOWN,
	keys.End:       evdev.KEY_END,
	keys.Home:      evdev.KEY_HOME,
	keys.Up:        evdev.KEY_UP,
	keys.Right:     evdev.KEY_RIGHT,
	keys.Down:      evdev.KEY_DOWN,
	keys.Left:      evdev.KEY_LEFT,
	keys.Tab:       evdev.KEY_TAB,
	keys.Enter:     evdev.KEY_ENTER,
	keys.Space:     evdev.KEY_SPACE,
	keys.Escape:    evdev.KEY_ESC,

	keys.NumPad0:            evdev.KEY_KP0,
	keys.NumPad1:            evdev.KEY_KP1,
	keys.NumPad2:            evdev.KEY_KP2,
	keys.NumPad3:            evdev.KEY_KP3,
	keys.NumPad4:            evdev.KEY_KP4,
	keys.NumPad5:            evdev.KEY_KP5,
	keys.NumPad6:            evdev.KEY_KP6,
	keys.NumPad7:            evdev.KEY_KP7,
	keys.NumPad8:            evdev.KEY_KP8,
	keys.NumPad9:            evdev.KEY_KP9,
	keys.NumPadAsterisk:     evdev.KEY_KPASTERISK,
	keys.NumPadPlus:         evdev.KEY_KPPLUS,
	keys.NumPadMinus:        evdev.KEY_KPMINUS,
	keys.NumPadPeriod:       evdev.KEY_KPDOT,
	keys.NumPadForwardSlash: evdev.KEY_KPSLASH,
	keys.NumPadEnter:        evdev.KEY_KPENTER,
	keys.NumPadEquals:       evdev.KEY_KPEQUAL,
	keys.NumPadSeparator:    evdev.KEY_KPCOMMA,

	keys.CapsLock:   evdev.KEY_CAPSLOCK,
	keys.NumLock:    evdev.KEY_NUMLOCK,
	keys.ScrollLock: evdev.KEY_SCROLLLOCK,

	keys.App1:             evdev.KEY_PROG1,
	keys.App2:             evdev.KEY_PROG2,
	keys.App3:             evdev.KEY_PROG3,
	keys.App4:             evdev.KEY_PROG4,
	keys.AppCalculator:    evdev.KEY_CALC,
	keys.AppBrowser:       evdev.KEY_WWW,
	keys.AppMail:          evdev.KEY_MAIL,
	keys.BrowserBack:      evdev.KEY_BACK,
	keys.BrowserForward:   evdev.KEY_FORWARD,
	keys.BrowserRefresh:   evdev.KEY_REFRESH,
	keys.BrowserStop:      evdev.KEY_STOP,
	keys.BrowserSearch:    evdev.KEY_SEARCH,
	keys.BrowserFavorites: evdev.KEY_BOOKMARKS,
	keys.BrowserHome:      evdev.KEY_HOMEPAGE,
	keys.MediaPlay:        evdev.KEY_PLAYPAUSE,
	keys.MediaNext:        evdev.KEY_NEXTSONG,
	keys.MediaPrevious:    evdev.KEY_PREVIOUSSONG,
	keys.MediaStop:        evdev.KEY_STOPCD,
	keys.MediaEject:       evdev.KEY_EJECTCD,
	keys.MediaSelect:      evdev.KEY_MEDIA,

	keys.PrintScreen: evdev.KEY_SYSRQ,
	keys.Pause:       evdev.KEY_PAUSE,
	keys.VolumeDown:  evdev.KEY_VOLUMEDOWN,
	keys.VolumeUp:    evdev.KEY_VOLUMEUP,
	keys.VolumeMute:  evdev.KEY_MUTE,
	keys.ContextMenu: evdev.KEY_COMPOSE,
	keys.Help:        evdev.KEY_HELP,
	keys.Sleep:       evdev.KEY_SLEEP,
	keys.Power:       evdev.KEY_POWER,
	keys.Key102:      evdev.KEY_102ND,
	keys.Cancel:      evdev.KEY_CANCEL,

	keys.Hiragana:         evdev.KEY_HIRAGANA,
	keys.Katakana:         evdev.KEY_KATAKANA,
	keys.KatakanaHiragana: evdev.KEY_KATAKANAHIRAGANA,
	keys.Convert:          evdev.KEY_HENKAN,
	keys.NonConvert:       evdev.KEY_MUHENKAN,
	keys.Kanji:            evdev.KEY_ZENKAKUHANKAKU,
	keys.Hangul:           evdev.KEY_HANGEUL,
	keys.Hanja:            evdev.KEY_HANJA,
	keys.Yen:              evdev.KEY_YEN,
	keys.JpComma:          evdev.KEY_KPJPCOMMA,

	keys.Minus:        evdev.KEY_MINUS,
	keys.Equals:       evdev.KEY_EQUAL,
	keys.OpenBracket:  evdev.KEY_LEFTBRACE,
	keys.CloseBracket: evdev.KEY_RIGHTBRACE,
	keys.Semicolon:    evdev.KEY_SEMICOLON,
	keys.Quote:        evdev.KEY_APOSTROPHE,
	keys.BackQuote:    evdev.KEY_GRAVE,
	keys.Comma:        evdev.KEY_COMMA,
	keys.Period:       evdev.KEY_DOT,
	keys.Slash:        evdev.KEY_SLASH,
	keys.Backslash:    evdev.KEY_BACKSLASH,
	keys.Underscore:   evdev.KEY_RO,

	keys.LeftMeta:     evdev.KEY_LEFTMETA,
	keys.RightMeta:    evdev.KEY_RIGHTMETA,
	keys.RightAlt:     evdev.KEY_RIGHTALT,
	keys.RightControl: evdev.KEY_RIGHTCTRL,
	keys.RightShift:   evdev.KEY_RIGHTSHIFT,
	keys.LeftAlt:      evdev.KEY_LEFTALT,
	keys.LeftControl:  evdev.KEY_LEFTCTRL,
	keys.LeftShift:    evdev.KEY_LEFTSHIFT,

	keys.F1:  evdev.KEY_F1,
	keys.F2:  evdev.KEY_F2,
	keys.F3:  evdev.KEY_F3,
	keys.F4:  evdev.KEY_F4,
	keys.F5:  evdev.KEY_F5,
	keys.F6:  evdev.KEY_F6,
	keys.F7:  evdev.KEY_F7,
	keys.F8:  evdev.KEY_F8,
	keys.F9:  evdev.KEY_F9,
	keys.F10: evdev.KEY_F10,
	keys.F11: evdev.KEY_F11,
	keys.F12: evdev.KEY_F12,
	keys.F13: evdev.KEY_F13,
	keys.F14: evdev.KEY_F14,
	keys.F15: evdev.KEY_F15,
	keys.F16: evdev.KEY_F16,
	keys.F17: evdev.KEY_F17,
	keys.F18: evdev.KEY_F18,
	keys.F19: evdev.KEY_F19,
	keys.F20: evdev.KEY_F20,
	keys.F21: evdev.KEY_F21,
	keys.F22: evdev.KEY_F22,
	keys.F23: evdev.KEY_F23,
	keys.F24: evdev.KEY_F24,
}

// fromEvdev is the reverse of toEvdev. Several logical keys may share a code.
var fromEvdev = func() map[evdev.EvCode][]keys.Code {
	m := make(map[evdev.EvCode][]keys.Code, len(toEvdev))
	for _, key := range keys.All() {
		if code, ok := toEvdev[key]; ok {
			m[code] = append(m[code], key)
		}
	}
	return m
}()

// SupportsKey reports whether key can be injected through the virtual keyboard.
func SupportsKey(key keys.Code) bool {
	_, ok := toEvdev[key]
	return ok
}
