package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcherReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[keyboard]\nrepeat_rate_ms = 30\n"), 0644))

	initial, err := LoadFile(path)
	require.NoError(t, err)
	w := NewWatcher(path, initial, quietLogger())

	var gotOld, gotNew *Config
	w.OnChange(func(old, new *Config) {
		gotOld, gotNew = old, new
	})

	require.NoError(t, os.WriteFile(path, []byte("[keyboard]\nrepeat_rate_ms = 20\n"), 0644))
	require.NoError(t, w.Reload())

	assert.Equal(t, 30, gotOld.Keyboard.RepeatRateMs)
	assert.Equal(t, 20, gotNew.Keyboard.RepeatRateMs)
	assert.Equal(t, 20, w.Config().Keyboard.RepeatRateMs)
}

func TestWatcherKeepsConfigOnInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	initial := Default()
	w := NewWatcher(path, initial, quietLogger())

	called := false
	w.OnChange(func(*Config, *Config) { called = true })

	require.NoError(t, os.WriteFile(path, []byte("[device]\nwidth = 99\n"), 0644))
	require.Error(t, w.Reload())
	assert.False(t, called)
	assert.Same(t, initial, w.Config())
}

func TestWatcherRunPicksUpWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[keyboard]\nrepeat_delay_ms = 300\n"), 0644))

	initial, err := LoadFile(path)
	require.NoError(t, err)
	w := NewWatcher(path, initial, quietLogger())

	var delay atomic.Int64
	w.OnChange(func(_, new *Config) {
		delay.Store(int64(new.Keyboard.RepeatDelayMs))
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Keep writing until the watcher is registered and reports the change.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("[keyboard]\nrepeat_delay_ms = 450\n"), 0644)
		return delay.Load() == 450
	}, 5*time.Second, 150*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatcherUpdateWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	initial := Default()
	w := NewWatcher(path, initial, quietLogger())

	require.NoError(t, w.Update(func(c *Config) { c.Keyboard.KeyEventsEnabled = false }))
	assert.True(t, initial.Keyboard.KeyEventsEnabled, "current config is untouched until reload")

	saved, err := LoadFile(path)
	require.NoError(t, err)
	assert.False(t, saved.Keyboard.KeyEventsEnabled)

	require.NoError(t, w.Reload())
	assert.False(t, w.Config().Keyboard.KeyEventsEnabled)

	assert.Error(t, w.Update(func(c *Config) { c.Device.Width = 0 }))
}
