package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

func TestDecodeNotes(t *testing.T) {
	d := NewDecoder(25, 8)

	ev, ok, err := d.Decode(midi.NoteOn(2, 4, 100))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, PadEvent{Column: 3, Row: 2, Axis: AxisVelocity, Value: 100}, ev)

	ev, ok, err = d.Decode(midi.NoteOff(2, 4))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, PadEvent{Column: 3, Row: 2, Axis: AxisVelocity, Value: 0}, ev)

	ev, ok, err = d.Decode(midi.NoteOn(2, 4, 0))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, AxisVelocity, ev.Axis)
	assert.Zero(t, ev.Value)
}

func TestDecodePressureAndY(t *testing.T) {
	d := NewDecoder(25, 8)

	ev, ok, err := d.Decode(midi.PolyAfterTouch(5, 10, 77))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, PadEvent{Column: 9, Row: 5, Axis: AxisZ, Value: 77}, ev)

	ev, ok, err = d.Decode(midi.ControlChange(1, 64+7, 42))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, PadEvent{Column: 6, Row: 1, Axis: AxisY, Value: 42}, ev)
}

func TestDecodeXScenario(t *testing.T) {
	d := NewDecoder(25, 8)

	_, ok, err := d.Decode(midi.ControlChange(0, 1, 64))
	require.NoError(t, err)
	assert.False(t, ok, "MSB alone must not emit")

	ev, ok, err := d.Decode(midi.ControlChange(0, 33, 0))
	require.NoError(t, err)
	require.True(t, ok)

	perColumn := 4265 / 25
	assert.Equal(t, 170, perColumn)
	assert.Equal(t, 0, ev.Column)
	assert.Equal(t, 0, ev.Row)
	assert.Equal(t, AxisX, ev.Axis)
	assert.InDelta(t, float64(8192%perColumn)/float64(perColumn), float64(ev.Value), 1e-6)
}

func TestDecodeXRoundTrip(t *testing.T) {
	for _, width := range []int{25, 16} {
		d := NewDecoder(width, 8)
		perColumn := 4265 / width

		for combined := 0; combined < 1<<14; combined += 37 {
			msb := uint8(combined >> 7)
			lsb := uint8(combined & 0x7F)
			col := combined % width

			_, ok, err := d.Decode(midi.ControlChange(3, uint8(col+1), msb))
			require.NoError(t, err)
			require.False(t, ok)

			ev, ok, err := d.Decode(midi.ControlChange(3, uint8(col+32+1), lsb))
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, col, ev.Column)
			assert.Equal(t, 3, ev.Row)

			want := float32(combined%perColumn) / float32(perColumn)
			assert.Equal(t, want, ev.Value, "combined %d", combined)
			assert.GreaterOrEqual(t, ev.Value, float32(0))
			assert.Less(t, ev.Value, float32(1))
		}
	}
}

func TestDecodeLSBWithoutMSBIsDiscarded(t *testing.T) {
	d := NewDecoder(25, 8)

	_, ok, err := d.Decode(midi.ControlChange(0, 33, 5))
	require.NoError(t, err)
	assert.False(t, ok)

	// The buffer is cleared after a pair is combined.
	_, _, _ = d.Decode(midi.ControlChange(0, 1, 1))
	_, ok, _ = d.Decode(midi.ControlChange(0, 33, 5))
	assert.True(t, ok)
	_, ok, _ = d.Decode(midi.ControlChange(0, 33, 5))
	assert.False(t, ok)
}

func TestDecodeMSBIsPerCell(t *testing.T) {
	d := NewDecoder(25, 8)
	_, _, _ = d.Decode(midi.ControlChange(0, 1, 10))

	_, ok, _ := d.Decode(midi.ControlChange(1, 33, 5))
	assert.False(t, ok, "different row")
	_, ok, _ = d.Decode(midi.ControlChange(0, 34, 5))
	assert.False(t, ok, "different column")
	_, ok, _ = d.Decode(midi.ControlChange(0, 33, 5))
	assert.True(t, ok)
}

func TestDecodeOutOfBounds(t *testing.T) {
	d := NewDecoder(25, 8)

	tests := []struct {
		name string
		msg  midi.Message
	}{
		{"note zero", midi.NoteOn(0, 0, 100)},
		{"note past width", midi.NoteOn(0, 26, 100)},
		{"row past height", midi.NoteOn(8, 3, 100)},
		{"msb row past height", midi.ControlChange(12, 1, 3)},
		{"lsb row past height", midi.ControlChange(12, 33, 3)},
		{"y row past height", midi.ControlChange(9, 70, 3)},
		{"y controller 64", midi.ControlChange(0, 64, 3)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, ok, err := d.Decode(test.msg)
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrOutOfBounds)
		})
	}
}

func TestDecodeNarrowGridRejectsHighColumns(t *testing.T) {
	d := NewDecoder(16, 8)
	_, _, err := d.Decode(midi.ControlChange(0, 20, 3))
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, _, err = d.Decode(midi.ControlChange(0, 89, 3))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestDecodeIgnoresOtherMessages(t *testing.T) {
	d := NewDecoder(25, 8)

	for _, msg := range []midi.Message{
		midi.ProgramChange(0, 3),
		midi.ControlChange(0, 0, 3),
		midi.ControlChange(0, 30, 3),
		midi.ControlChange(0, 60, 3),
		midi.ControlChange(0, 100, 3),
	} {
		_, ok, err := d.Decode(msg)
		assert.NoError(t, err, msg.String())
		assert.False(t, ok, msg.String())
	}
}
