//go:build linux

package hid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/PixPMusic/gopher-linkb/internal/input"
)

// Observer reads key events from every keyboard under /dev/input and
// publishes them to its subscribers.
type Observer struct {
	input.Subscribers

	virtualName string
	log         *slog.Logger

	mu      sync.Mutex
	devices []*evdev.InputDevice
	wg      sync.WaitGroup
}

var _ input.EventProvider = (*Observer)(nil)

// NewObserver creates an observer. Events from a device named virtualName
// are marked as simulated.
func NewObserver(virtualName string, logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{virtualName: virtualName, log: logger}
}

// Start opens every keyboard and reads from each on its own goroutine until
// ctx is cancelled. Devices that cannot be opened are skipped.
func (o *Observer) Start(ctx context.Context) error {
	devices, err := findKeyboards(o.log)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.devices = devices
	o.mu.Unlock()

	for id, dev := range devices {
		name, _ := dev.Name()
		o.log.Info("observing keyboard", "device", id, "name", name)
		o.wg.Add(1)
		go o.read(ctx, dev, id, name == o.virtualName)
	}

	go func() {
		<-ctx.Done()
		o.closeDevices()
	}()
	return nil
}

// Wait blocks until every reader has stopped.
func (o *Observer) Wait() {
	o.wg.Wait()
}

func (o *Observer) read(ctx context.Context, dev *evdev.InputDevice, id int, simulated bool) {
	defer o.wg.Done()
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			switch {
			case ctx.Err() != nil, errors.Is(err, os.ErrClosed):
			case errors.Is(err, syscall.ENODEV):
				o.log.Info("keyboard removed", "device", id)
			default:
				o.log.Warn("failed to read keyboard", "device", id, "error", err)
			}
			return
		}

		kev, ok := translate(ev, id, simulated)
		if !ok {
			continue
		}
		o.Publish(kev)
	}
}

func (o *Observer) closeDevices() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, dev := range o.devices {
		dev.Close()
	}
	o.devices = nil
}

// translate converts a raw key event. Values 1 and 2 (press and repeat)
// count as down.
func translate(ev *evdev.InputEvent, deviceID int, simulated bool) (input.KeyboardEvent, bool) {
	if ev.Type != evdev.EV_KEY {
		return input.KeyboardEvent{}, false
	}
	codes, ok := fromEvdev[ev.Code]
	if !ok {
		return input.KeyboardEvent{}, false
	}
	return input.KeyboardEvent{
		Keys:        codes,
		IsDown:      ev.Value == int32(input.Press) || ev.Value == int32(input.Repeat),
		Timestamp:   time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond)),
		DeviceID:    deviceID,
		IsSimulated: simulated,
	}, true
}

// findKeyboards opens every input device that has both KEY_A and KEY_ENTER.
func findKeyboards(logger *slog.Logger) ([]*evdev.InputDevice, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}

	var keyboards []*evdev.InputDevice
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			logger.Warn("failed to open input device", "path", p.Path, "error", err)
			continue
		}
		if isKeyboard(dev.CapableEvents(evdev.EV_KEY)) {
			keyboards = append(keyboards, dev)
		} else {
			dev.Close()
		}
	}
	return keyboards, nil
}

func isKeyboard(codes []evdev.EvCode) bool {
	hasA, hasEnter := false, false
	for _, c := range codes {
		switch c {
		case evdev.KEY_A:
			hasA = true
		case evdev.KEY_ENTER:
			hasEnter = true
		}
	}
	return hasA && hasEnter
}
