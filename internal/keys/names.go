package keys

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownKey is returned by Parse for names that match no key.
var ErrUnknownKey = errors.New("unknown key")

var systemNames = [...]string{
	"None",
	"N0", "N1", "N2", "N3", "N4", "N5", "N6", "N7", "N8", "N9",
	"Q", "W", "E", "R", "T", "Y", "U", "I", "O", "P",
	"A", "S", "D", "F", "G", "H", "J", "K", "L",
	"Z", "X", "C", "V", "B", "N", "M",
	"Backspace", "Insert", "Delete",
	"PageUp", "PageDown", "End", "Home",
	"Up", "Right", "Down", "Left",
	"Tab", "Enter", "Space", "Escape",
	"NumPad0", "NumPad1", "NumPad2", "NumPad3", "NumPad4",
	"NumPad5", "NumPad6", "NumPad7", "NumPad8", "NumPad9",
	"NumPadAsterisk", "NumPadPlus", "NumPadMinus", "NumPadPeriod", "NumPadForwardSlash",
	"NumPadEnter", "NumPadEquals", "NumPadSeparator", "NumPadClear",
	"CapsLock", "NumLock", "ScrollLock",
	"App1", "App2", "App3", "App4", "AppCalculator", "AppBrowser", "AppMail",
	"BrowserBack", "BrowserForward", "BrowserRefresh", "BrowserStop", "BrowserSearch",
	"BrowserFavorites", "BrowserHome",
	"MediaPlay", "MediaNext", "MediaPrevious", "MediaStop", "MediaEject", "MediaSelect",
	"PrintScreen", "Pause", "VolumeDown", "VolumeUp", "VolumeMute", "ContextMenu", "Help",
	"Final", "Function", "VendorKey", "Sleep", "Power", "Process", "102",
	"AlphaNumeric", "ImeOn", "ImeOff", "ChangeInputSource", "Accept", "Cancel", "ModeChange",
	"Hiragana", "Katakana", "KatakanaHiragana", "Convert", "NonConvert", "Kana", "Kanji",
	"Hangul", "Junja", "Hanja", "Yen", "JpComma",
	"Minus", "Equals", "OpenBracket", "CloseBracket", "Semicolon", "Quote", "BackQuote",
	"Comma", "Period", "Slash", "Backslash", "Underscore",
	"LeftMeta", "RightMeta", "RightAlt", "RightControl", "RightShift",
	"LeftAlt", "LeftControl", "LeftShift",
	"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12",
	"F13", "F14", "F15", "F16", "F17", "F18", "F19", "F20", "F21", "F22", "F23", "F24",
	"MouseLeft", "MouseRight", "MouseMiddle", "MouseBack", "MouseForward", "MouseTask",
}

var logicalNames = map[Code]string{
	Blocker: "Blocker",
	Mod1:    "Mod1",
	Mod2:    "Mod2",
	Mod3:    "Mod3",
}

var byName = func() map[string]Code {
	m := make(map[string]Code, len(systemNames)+len(logicalNames))
	for i, name := range systemNames {
		m[strings.ToLower(name)] = Code(i)
	}
	for c, name := range logicalNames {
		m[strings.ToLower(name)] = c
	}
	return m
}()

// Name returns the display name of c. Unknown codes are rendered numerically.
func (c Code) Name() string {
	if int(c) < len(systemNames) {
		return systemNames[c]
	}
	if name, ok := logicalNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint16(c))
}

func (c Code) String() string {
	return c.Name()
}

// Parse looks a key up by name, ignoring case. An empty name is Undefined.
func Parse(name string) (Code, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Undefined, nil
	}
	if c, ok := byName[strings.ToLower(name)]; ok {
		return c, nil
	}
	return Undefined, fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// All returns every named key in ascending code order.
func All() []Code {
	all := make([]Code, 0, len(systemNames)+len(logicalNames))
	for i := range systemNames {
		all = append(all, Code(i))
	}
	all = append(all, Blocker, Mod3, Mod2, Mod1)
	return all
}
