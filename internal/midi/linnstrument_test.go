package midi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
)

type ccRecord struct {
	channel, controller, value uint8
}

type recordingSender struct {
	sent []ccRecord
	fail bool
}

func (r *recordingSender) send(msg midi.Message) error {
	if r.fail {
		return errors.New("port closed")
	}
	var rec ccRecord
	if msg.GetControlChange(&rec.channel, &rec.controller, &rec.value) {
		r.sent = append(r.sent, rec)
	}
	return nil
}

func TestLinnstrumentConnect(t *testing.T) {
	d := NewLinnstrument(25, 8)
	d.SettleDelay = 0
	d.DecimationMs = 12

	r := &recordingSender{}
	require.NoError(t, d.Connect(r.send))

	require.GreaterOrEqual(t, len(r.sent), 6)
	assert.Equal(t, []ccRecord{
		{0, 99, 1},
		{0, 98, 117},
		{0, 6, 0},
		{0, 38, 1},
		{0, 101, 127},
		{0, 100, 127},
	}, r.sent[:6])

	axisRequests := 0
	for _, rec := range r.sent[6:] {
		if rec.controller >= 10 && rec.controller <= 12 {
			assert.Equal(t, uint8(1), rec.value)
			assert.Less(t, rec.channel, uint8(8))
			axisRequests++
		}
	}
	assert.Equal(t, 3*8, axisRequests)
	assert.Equal(t, ccRecord{0, 13, 12}, r.sent[len(r.sent)-1])
}

func TestLinnstrumentDisconnect(t *testing.T) {
	d := NewLinnstrument(25, 8)
	r := &recordingSender{}
	require.NoError(t, d.Disconnect(r.send))
	require.Len(t, r.sent, 6)
	assert.Equal(t, ccRecord{0, 38, 0}, r.sent[3])
}

func TestLinnstrumentSetPadColor(t *testing.T) {
	d := NewLinnstrument(25, 8)
	r := &recordingSender{}

	require.NoError(t, d.SetPadColor(r.send, 4, 2, LedPink))
	assert.Equal(t, []ccRecord{{0, 20, 5}, {0, 21, 2}, {0, 22, uint8(LedPink)}}, r.sent)

	r.sent = nil
	require.NoError(t, d.SetPadColor(r.send, 30, 2, LedPink))
	assert.Empty(t, r.sent)

	r.fail = true
	assert.Error(t, d.SetPadColor(r.send, 0, 0, LedOff))
}

func TestLinnstrumentClearAllPads(t *testing.T) {
	d := NewLinnstrument(3, 2)
	r := &recordingSender{}
	require.NoError(t, d.ClearAllPads(r.send))
	require.Len(t, r.sent, 3*2*3)
	for i := 2; i < len(r.sent); i += 3 {
		assert.Equal(t, uint8(LedOff), r.sent[i].value)
	}
}

func TestGetDevice(t *testing.T) {
	dev, err := GetDevice(DeviceTypeLinnstrument, 16, 8)
	require.NoError(t, err)
	w, h := dev.GridSize()
	assert.Equal(t, 16, w)
	assert.Equal(t, 8, h)

	_, err = GetDevice("launchpad", 9, 9)
	assert.Error(t, err)
}

func TestMatchPort(t *testing.T) {
	names := []string{"Midi Through:Midi Through Port-0 14:0", "LinnStrument MIDI:LinnStrument MIDI MIDI 1 24:0"}

	name, ok := MatchPort(names, "linnstrument")
	require.True(t, ok)
	assert.Equal(t, names[1], name)

	name, ok = MatchPort(names, names[0])
	require.True(t, ok)
	assert.Equal(t, names[0], name)

	_, ok = MatchPort(names, "launchpad")
	assert.False(t, ok)
}
