package midi

// DeviceType represents the type of device
type DeviceType string

const (
	DeviceTypeLinnstrument DeviceType = "linnstrument" // LinnStrument 128/200 in user firmware mode
)

// Axis names the dimension of a pad touch reported by an event
type Axis uint8

const (
	AxisVelocity Axis = iota // note on/off velocity, 0 means released
	AxisX                    // position within the cell, 0..1
	AxisY                    // 7-bit vertical position
	AxisZ                    // 7-bit pressure
)

func (a Axis) String() string {
	switch a {
	case AxisVelocity:
		return "velocity"
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "unknown"
}

// PadEvent is a decoded change of one axis of one pad
type PadEvent struct {
	Column int
	Row    int
	Axis   Axis
	Value  float32
}

// LedColor is a cell colour as understood by the LinnStrument (CC 22 values)
type LedColor uint8

const (
	LedDefault LedColor = iota // colour from the device's note light settings
	LedRed
	LedYellow
	LedGreen
	LedCyan
	LedBlue
	LedMagenta
	LedOff
	LedWhite
	LedOrange
	LedLime
	LedPink
)

var ledHex = map[LedColor]string{
	LedDefault: "#808080",
	LedRed:     "#FF0000",
	LedYellow:  "#FFFF00",
	LedGreen:   "#00FF00",
	LedCyan:    "#00FFFF",
	LedBlue:    "#0000FF",
	LedMagenta: "#FF00FF",
	LedOff:     "#000000",
	LedWhite:   "#FFFFFF",
	LedOrange:  "#FF8000",
	LedLime:    "#BFFF00",
	LedPink:    "#FFBFCC",
}

// Hex returns an approximate on-screen colour for previews
func (c LedColor) Hex() string {
	if h, ok := ledHex[c]; ok {
		return h
	}
	return ledHex[LedDefault]
}
