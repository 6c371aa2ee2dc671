//go:build linux

package hid

import (
	"fmt"
	"log/slog"
	"sync"

	evdev "github.com/holoplot/go-evdev"

	"github.com/PixPMusic/gopher-linkb/internal/input"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

type eventWriter interface {
	WriteOne(event *evdev.InputEvent) error
	Close() error
}

// VirtualKeyboard is a uinput keyboard that logical keys are written to.
// It implements input.Injector.
type VirtualKeyboard struct {
	mu  sync.Mutex
	dev eventWriter
	log *slog.Logger
}

var _ input.Injector = (*VirtualKeyboard)(nil)

// NewVirtualKeyboard registers a virtual USB keyboard named name.
func NewVirtualKeyboard(name string, logger *slog.Logger) (*VirtualKeyboard, error) {
	codes := make([]evdev.EvCode, 0, keyMax-keyMin+1)
	for code := keyMin; code <= keyMax; code++ {
		codes = append(codes, code)
	}

	id := evdev.InputID{
		BusType: 0x03, // USB
		Vendor:  0x1234,
		Product: 0x5678,
		Version: 1,
	}
	dev, err := evdev.CreateDevice(name, id, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: codes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create virtual keyboard: %w", err)
	}
	return newVirtualKeyboard(dev, logger), nil
}

func newVirtualKeyboard(dev eventWriter, logger *slog.Logger) *VirtualKeyboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &VirtualKeyboard{dev: dev, log: logger}
}

func (k *VirtualKeyboard) SimulateKeyDown(key keys.Code)   { k.emit(key, input.Press) }
func (k *VirtualKeyboard) SimulateKeyUp(key keys.Code)     { k.emit(key, input.Release) }
func (k *VirtualKeyboard) SimulateKeyRepeat(key keys.Code) { k.emit(key, input.Repeat) }

// emit writes one key event followed by a sync report. Write failures are
// logged and dropped.
func (k *VirtualKeyboard) emit(key keys.Code, kind input.EventKind) {
	code, ok := toEvdev[key]
	if !ok {
		k.log.Debug("key has no evdev code", "key", key)
		return
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.dev == nil {
		return
	}

	if err := k.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: int32(kind)}); err != nil {
		k.log.Error("failed to write key event", "key", key, "event", kind, "error", err)
		return
	}
	if err := k.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}); err != nil {
		k.log.Error("failed to write sync report", "key", key, "error", err)
	}
}

// Close destroys the virtual device. Later writes are ignored.
func (k *VirtualKeyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.dev == nil {
		return nil
	}
	err := k.dev.Close()
	k.dev = nil
	return err
}
