package midi

import (
	"errors"
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// ErrOutOfBounds is returned when a message addresses a cell outside the grid
var ErrOutOfBounds = errors.New("pad out of bounds")

// xAxisRange is the number of 14-bit X steps the device spreads across its full width
const xAxisRange = 4265

const noMSB = -1

// Decoder turns LinnStrument user firmware mode messages into pad events.
// Columns come from the note or controller number, rows from the channel.
// X arrives as an MSB/LSB controller pair, so the decoder keeps the pending
// MSB of every cell between calls. A Decoder is not safe for concurrent use.
type Decoder struct {
	width     int
	height    int
	perColumn int
	msb       []int16
}

// NewDecoder creates a decoder for a width x height grid
func NewDecoder(width, height int) *Decoder {
	d := &Decoder{
		width:     width,
		height:    height,
		perColumn: xAxisRange / width,
		msb:       make([]int16, width*height),
	}
	for i := range d.msb {
		d.msb[i] = noMSB
	}
	return d
}

// Decode translates one message. ok is false when the message carries no pad
// event, either because it is unrelated or because it only buffered an MSB.
func (d *Decoder) Decode(msg midi.Message) (ev PadEvent, ok bool, err error) {
	var channel, key, value uint8

	switch {
	case msg.GetNoteOn(&channel, &key, &value):
		return d.event(int(key)-1, int(channel), AxisVelocity, float32(value))

	case msg.GetNoteOff(&channel, &key, &value):
		return d.event(int(key)-1, int(channel), AxisVelocity, 0)

	case msg.GetPolyAfterTouch(&channel, &key, &value):
		return d.event(int(key)-1, int(channel), AxisZ, float32(value))

	case msg.GetControlChange(&channel, &key, &value):
		return d.controlChange(key, int(channel), value)
	}

	return PadEvent{}, false, nil
}

func (d *Decoder) controlChange(cc uint8, row int, value uint8) (PadEvent, bool, error) {
	switch {
	case cc >= 1 && cc <= 25:
		col := int(cc) - 1
		if err := d.check(col, row); err != nil {
			return PadEvent{}, false, err
		}
		d.msb[d.index(col, row)] = int16(value)
		return PadEvent{}, false, nil

	case cc >= 32 && cc <= 57:
		col := int(cc) - 32 - 1
		if err := d.check(col, row); err != nil {
			return PadEvent{}, false, err
		}
		i := d.index(col, row)
		msb := d.msb[i]
		if msb == noMSB {
			return PadEvent{}, false, nil
		}
		d.msb[i] = noMSB

		combined := int(msb)<<7 | int(value)
		cellValue := combined % d.perColumn
		return PadEvent{Column: col, Row: row, Axis: AxisX, Value: float32(cellValue) / float32(d.perColumn)}, true, nil

	case cc >= 64 && cc <= 89:
		return d.event(int(cc)-64-1, row, AxisY, float32(value))
	}

	return PadEvent{}, false, nil
}

func (d *Decoder) event(col, row int, axis Axis, value float32) (PadEvent, bool, error) {
	if err := d.check(col, row); err != nil {
		return PadEvent{}, false, err
	}
	return PadEvent{Column: col, Row: row, Axis: axis, Value: value}, true, nil
}

func (d *Decoder) check(col, row int) error {
	if col < 0 || col >= d.width || row < 0 || row >= d.height {
		return fmt.Errorf("%w: column %d row %d on a %dx%d grid", ErrOutOfBounds, col, row, d.width, d.height)
	}
	return nil
}

func (d *Decoder) index(col, row int) int {
	return col*d.height + row
}
