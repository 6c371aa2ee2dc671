package midi

import (
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"
)

const (
	nrpnUserFirmwareMode = 245

	ccAxisX      = 10
	ccAxisY      = 11
	ccAxisZ      = 12
	ccDecimation = 13
	ccLedColumn  = 20
	ccLedRow     = 21
	ccLedColor   = 22
)

// Linnstrument implements Device for the LinnStrument in user firmware mode
type Linnstrument struct {
	*Decoder

	width  int
	height int

	// SettleDelay is how long Connect waits after switching firmware mode
	SettleDelay time.Duration

	// DecimationMs sets the device's MIDI decimation rate when non-zero
	DecimationMs uint8
}

// NewLinnstrument creates a LinnStrument device for a width x height grid
func NewLinnstrument(width, height int) *Linnstrument {
	return &Linnstrument{
		Decoder:     NewDecoder(width, height),
		width:       width,
		height:      height,
		SettleDelay: 500 * time.Millisecond,
	}
}

func (d *Linnstrument) GridSize() (int, int) {
	return d.width, d.height
}

func (d *Linnstrument) Connect(send func(midi.Message) error) error {
	if err := d.setUserFirmwareMode(send, true); err != nil {
		return err
	}
	time.Sleep(d.SettleDelay)

	// One channel per row. X, Y and Z are off by default in user firmware mode.
	for _, cc := range []uint8{ccAxisX, ccAxisY, ccAxisZ} {
		for row := 0; row < d.height && row < 16; row++ {
			if err := send(midi.ControlChange(uint8(row), cc, 1)); err != nil {
				return fmt.Errorf("failed to request axis data: %w", err)
			}
		}
	}

	if d.DecimationMs > 0 {
		if err := send(midi.ControlChange(0, ccDecimation, d.DecimationMs&0x7F)); err != nil {
			return fmt.Errorf("failed to set decimation rate: %w", err)
		}
	}
	return nil
}

func (d *Linnstrument) Disconnect(send func(midi.Message) error) error {
	return d.setUserFirmwareMode(send, false)
}

// setUserFirmwareMode sends NRPN 245 with value 1 or 0, followed by the null RPN
func (d *Linnstrument) setUserFirmwareMode(send func(midi.Message) error, on bool) error {
	var value uint8
	if on {
		value = 1
	}
	msgs := []midi.Message{
		midi.ControlChange(0, 99, nrpnUserFirmwareMode>>7),
		midi.ControlChange(0, 98, nrpnUserFirmwareMode&0x7F),
		midi.ControlChange(0, 6, 0),
		midi.ControlChange(0, 38, value),
		midi.ControlChange(0, 101, 127),
		midi.ControlChange(0, 100, 127),
	}
	for _, msg := range msgs {
		if err := send(msg); err != nil {
			return fmt.Errorf("failed to send user firmware mode message: %w", err)
		}
	}
	return nil
}

func (d *Linnstrument) SetPadColor(send func(midi.Message) error, col, row int, color LedColor) error {
	if col < 0 || col >= d.width || row < 0 || row >= d.height {
		return nil // Pad doesn't exist on this device
	}
	msgs := []midi.Message{
		midi.ControlChange(0, ccLedColumn, uint8(col+1)),
		midi.ControlChange(0, ccLedRow, uint8(row)),
		midi.ControlChange(0, ccLedColor, uint8(color)),
	}
	for _, msg := range msgs {
		if err := send(msg); err != nil {
			return fmt.Errorf("failed to set pad colour: %w", err)
		}
	}
	return nil
}

func (d *Linnstrument) ClearAllPads(send func(midi.Message) error) error {
	for col := 0; col < d.width; col++ {
		for row := 0; row < d.height; row++ {
			if err := d.SetPadColor(send, col, row, LedOff); err != nil {
				return err
			}
		}
	}
	return nil
}
