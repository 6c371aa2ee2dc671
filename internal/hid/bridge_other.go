//go:build !linux

package hid

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/PixPMusic/gopher-linkb/internal/input"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
)

// Bridge is unavailable on this platform. Open always fails.
type Bridge struct{}

func Open(context.Context, Options, *slog.Logger) (*Bridge, error) {
	return nil, ErrUnsupported
}

func (b *Bridge) SimulateKeyDown(keys.Code)                     {}
func (b *Bridge) SimulateKeyUp(keys.Code)                       {}
func (b *Bridge) SimulateKeyRepeat(keys.Code)                   {}
func (b *Bridge) Subscribe(func(input.KeyboardEvent)) uuid.UUID { return uuid.Nil }
func (b *Bridge) Unsubscribe(uuid.UUID)                         {}
func (b *Bridge) SupportsKey(keys.Code) bool                    { return false }
func (b *Bridge) Close() error                                  { return nil }

func (b *Bridge) SystemRepeat() (delayMs, rateMs int, err error) {
	return 0, 0, ErrUnsupported
}

func SupportsKey(keys.Code) bool { return false }

func SystemRepeat() (delayMs, rateMs int, err error) {
	return 0, 0, ErrUnsupported
}
