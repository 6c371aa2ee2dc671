package keys

// Code identifies a logical key. Values below NonSystemKeyStart map onto real
// keyboard keys, values at or above it only exist inside this application.
type Code uint16

const (
	Undefined Code = iota

	// number row
	N0
	N1
	N2
	N3
	N4
	N5
	N6
	N7
	N8
	N9

	// letters, QWERTY order
	Q
	W
	E
	R
	T
	Y
	U
	I
	O
	P
	A
	S
	D
	F
	G
	H
	J
	K
	L
	Z
	X
	C
	V
	B
	N
	M

	Backspace
	Insert
	Delete

	PageUp
	PageDown
	End
	Home

	Up
	Right
	Down
	Left

	Tab
	Enter
	Space
	Escape

	NumPad0
	NumPad1
	NumPad2
	NumPad3
	NumPad4
	NumPad5
	NumPad6
	NumPad7
	NumPad8
	NumPad9

	NumPadAsterisk
	NumPadPlus
	NumPadMinus
	NumPadPeriod
	NumPadForwardSlash
	NumPadEnter
	NumPadEquals
	NumPadSeparator
	NumPadClear

	CapsLock
	NumLock
	ScrollLock

	App1
	App2
	App3
	App4
	AppCalculator
	AppBrowser
	AppMail
	BrowserBack
	BrowserForward
	BrowserRefresh
	BrowserStop
	BrowserSearch
	BrowserFavorites
	BrowserHome
	MediaPlay
	MediaNext
	MediaPrevious
	MediaStop
	MediaEject
	MediaSelect

	PrintScreen
	Pause
	VolumeDown
	VolumeUp
	VolumeMute
	ContextMenu
	Help
	Final
	Function
	VendorKey
	Sleep
	Power
	Process
	Key102

	AlphaNumeric
	ImeOn
	ImeOff
	ChangeInputSource
	Accept
	Cancel
	ModeChange

	Hiragana
	Katakana
	KatakanaHiragana
	Convert
	NonConvert
	Kana
	Kanji
	Hangul
	Junja
	Hanja
	Yen
	JpComma

	Minus
	Equals
	OpenBracket
	CloseBracket
	Semicolon
	Quote
	BackQuote
	Comma
	Period
	Slash
	Backslash
	Underscore

	LeftMeta
	RightMeta
	RightAlt
	RightControl
	RightShift
	LeftAlt
	LeftControl
	LeftShift

	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
	F13
	F14
	F15
	F16
	F17
	F18
	F19
	F20
	F21
	F22
	F23
	F24

	MouseLeft
	MouseRight
	MouseMiddle
	MouseBack
	MouseForward
	MouseTask

	lastSystemKey = MouseTask
)

const (
	// NonSystemKeyStart is the first code that is never sent to the operating system.
	NonSystemKeyStart Code = 0xF000

	// Blocker occupies a cell so that lower layers do not show through it.
	Blocker Code = NonSystemKeyStart

	// Layer modifiers. Each one contributes a single bit to the active layer.
	Mod1 = Code(0xFFFF - uint16(Layer2) + 1)
	Mod2 = Code(0xFFFF - uint16(Layer3) + 1)
	Mod3 = Code(0xFFFF - uint16(Layer4) + 1)

	ModifierKeyMin = Mod3
	ModifierKeyMax = Mod1
)

// Modifiers lists the layer modifier keys, lowest layer bit first.
var Modifiers = [...]Code{Mod1, Mod2, Mod3}

// IsLayerModifier reports whether c is one of Mod1, Mod2 or Mod3.
func (c Code) IsLayerModifier() bool {
	return c >= ModifierKeyMin
}

// LayerBit returns the layer bit contributed by a layer modifier, or Layer1
// for any other key.
func (c Code) LayerBit() Layer {
	switch c {
	case Mod1:
		return Layer2
	case Mod2:
		return Layer3
	case Mod3:
		return Layer4
	}
	return Layer1
}

// IsInjectable reports whether c should be replayed to the operating system.
func (c Code) IsInjectable() bool {
	return c != Undefined && c < NonSystemKeyStart
}

func (c Code) IsLetter() bool {
	return c >= Q && c <= M
}

func (c Code) IsNumber() bool {
	return (c >= N0 && c <= N9) || (c >= NumPad0 && c <= NumPad9)
}

func (c Code) IsSymbol() bool {
	switch c {
	case Equals, NumPadEquals, Minus, NumPadAsterisk, NumPadForwardSlash, NumPadMinus,
		NumPadPlus, NumPadSeparator, NumPadPeriod, Slash, Backslash, BackQuote, JpComma,
		Comma, Period, Semicolon, Quote, OpenBracket, CloseBracket, Underscore:
		return true
	}
	return false
}

func (c Code) IsLock() bool {
	return c == CapsLock || c == NumLock || c == ScrollLock
}
