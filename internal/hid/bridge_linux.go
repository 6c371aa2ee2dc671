//go:build linux

package hid

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/PixPMusic/gopher-linkb/internal/input"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

// Bridge owns the virtual keyboard and, optionally, the physical keyboard
// observer. It implements input.Injector and input.EventProvider.
type Bridge struct {
	keyboard *VirtualKeyboard
	observer *Observer
	cancel   context.CancelFunc
}

var (
	_ input.Injector      = (*Bridge)(nil)
	_ input.EventProvider = (*Bridge)(nil)
)

// Open creates the virtual keyboard. Failing to create it is fatal; failing
// to observe physical keyboards is only logged.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}
	keyboard, err := NewVirtualKeyboard(opts.name(), logger)
	if err != nil {
		return nil, err
	}
	logger.Info("created virtual keyboard", "name", opts.name())

	ctx, cancel := context.WithCancel(ctx)
	b := &Bridge{
		keyboard: keyboard,
		observer: NewObserver(opts.name(), logger),
		cancel:   cancel,
	}
	if opts.ObservePhysical {
		if err := b.observer.Start(ctx); err != nil {
			logger.Warn("physical keyboards will not be observed", "error", err)
		}
	}
	return b, nil
}

func (b *Bridge) SimulateKeyDown(key keys.Code)   { b.keyboard.SimulateKeyDown(key) }
func (b *Bridge) SimulateKeyUp(key keys.Code)     { b.keyboard.SimulateKeyUp(key) }
func (b *Bridge) SimulateKeyRepeat(key keys.Code) { b.keyboard.SimulateKeyRepeat(key) }

func (b *Bridge) Subscribe(handler func(input.KeyboardEvent)) uuid.UUID {
	return b.observer.Subscribe(handler)
}

func (b *Bridge) Unsubscribe(id uuid.UUID) {
	b.observer.Unsubscribe(id)
}

// SupportsKey reports whether key can be injected.
func (b *Bridge) SupportsKey(key keys.Code) bool {
	return SupportsKey(key)
}

// SystemRepeat reads the keyboard auto-repeat settings from the kernel.
func (b *Bridge) SystemRepeat() (delayMs, rateMs int, err error) {
	return SystemRepeat()
}

// Close stops the observer and destroys the virtual keyboard.
func (b *Bridge) Close() error {
	b.cancel()
	b.observer.Wait()
	return b.keyboard.Close()
}
