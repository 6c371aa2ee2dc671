package midi

import "gitlab.com/gomidi/midi/v2"

// Device represents a MIDI pad grid that can act as a keyboard
type Device interface {
	// Connect sends the commands that put the device into the mode pad events are decoded from
	Connect(send func(midi.Message) error) error

	// Disconnect returns the device to its normal mode
	Disconnect(send func(midi.Message) error) error

	// SetPadColor sets the LED colour of a single pad
	SetPadColor(send func(midi.Message) error, col, row int, color LedColor) error

	// ClearAllPads turns every pad LED off
	ClearAllPads(send func(midi.Message) error) error

	// Decode parses a MIDI message into a pad event
	// Returns ok=false if the message does not describe a pad change
	Decode(msg midi.Message) (ev PadEvent, ok bool, err error)

	// GridSize returns the number of columns and rows
	GridSize() (width, height int)
}
