package midi

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register rtmidi driver
)

// Manager handles MIDI port discovery, listening and sending
type Manager struct {
	mu  sync.RWMutex
	log *slog.Logger
}

// NewManager creates a new MIDI manager
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{log: logger}
}

// Close cleans up the MIDI driver
func (m *Manager) Close() {
	midi.CloseDriver()
}

// ListInPorts returns the names of available MIDI input ports
func (m *Manager) ListInPorts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ins := midi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// ListOutPorts returns the names of available MIDI output ports
func (m *Manager) ListOutPorts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	outs := midi.GetOutPorts()
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names
}

// MatchPort picks the first name containing search, ignoring case.
// An exact match wins over a partial one.
func MatchPort(names []string, search string) (string, bool) {
	for _, name := range names {
		if name == search {
			return name, true
		}
	}
	needle := strings.ToLower(search)
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), needle) {
			return name, true
		}
	}
	return "", false
}

// GetInPort returns an input port by exact name or substring
func (m *Manager) GetInPort(search string) (drivers.In, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ins := midi.GetInPorts()
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	name, ok := MatchPort(names, search)
	if !ok {
		return nil, fmt.Errorf("input port not found: %s", search)
	}
	for _, in := range ins {
		if in.String() == name {
			return in, nil
		}
	}
	return nil, fmt.Errorf("input port not found: %s", search)
}

// GetOutPort returns an output port by exact name or substring
func (m *Manager) GetOutPort(search string) (drivers.Out, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	outs := midi.GetOutPorts()
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	name, ok := MatchPort(names, search)
	if !ok {
		return nil, fmt.Errorf("output port not found: %s", search)
	}
	for _, out := range outs {
		if out.String() == name {
			return out, nil
		}
	}
	return nil, fmt.Errorf("output port not found: %s", search)
}

// MessageCallback receives raw messages on the driver's delivery goroutine
type MessageCallback func(msg midi.Message)

// StartListening begins listening for MIDI input on the specified port.
// The callback runs on the driver's thread and must not block.
func (m *Manager) StartListening(inPortName string, callback MessageCallback) (func(), error) {
	inPort, err := m.GetInPort(inPortName)
	if err != nil {
		return nil, err
	}

	stop, err := midi.ListenTo(inPort, func(msg midi.Message, timestampms int32) {
		callback(msg)
	}, midi.HandleError(func(err error) {
		m.log.Warn("midi input error", "port", inPort.String(), "error", err)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to start listening: %w", err)
	}

	m.log.Info("listening for midi input", "port", inPort.String())
	return stop, nil
}

// Sender returns a send function for the given output port. Sends are serialized.
func (m *Manager) Sender(outPortName string) (func(midi.Message) error, error) {
	outPort, err := m.GetOutPort(outPortName)
	if err != nil {
		return nil, err
	}

	send, err := midi.SendTo(outPort)
	if err != nil {
		return nil, fmt.Errorf("failed to create sender: %w", err)
	}

	var mu sync.Mutex
	return func(msg midi.Message) error {
		mu.Lock()
		defer mu.Unlock()
		return send(msg)
	}, nil
}
