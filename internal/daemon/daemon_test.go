package daemon

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixPMusic/gopher-linkb/internal/config"
	"github.com/PixPMusic/gopher-linkb/internal/engine"
	"github.com/PixPMusic/gopher-linkb/internal/hid"
	"github.com/PixPMusic/gopher-linkb/internal/input"
	"github.com/PixPMusic/gopher-linkb/internal/keymap"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
	"github.com/PixPMusic/gopher-linkb/internal/keystate"
	"github.com/PixPMusic/gopher-linkb/internal/midi"
)

type fakeKeyboard struct {
	input.Subscribers

	mu     sync.Mutex
	down   []keys.Code
	up     []keys.Code
	closed bool
}

func (k *fakeKeyboard) SimulateKeyDown(key keys.Code) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.down = append(k.down, key)
}

func (k *fakeKeyboard) SimulateKeyUp(key keys.Code) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.up = append(k.up, key)
}

func (k *fakeKeyboard) SimulateKeyRepeat(keys.Code) {}

func (k *fakeKeyboard) SupportsKey(key keys.Code) bool { return key.IsInjectable() }

func (k *fakeKeyboard) SystemRepeat() (int, int, error) { return 400, 25, nil }

func (k *fakeKeyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.closed = true
	return nil
}

func (k *fakeKeyboard) snapshot() (down, up []keys.Code, closed bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return slices.Clone(k.down), slices.Clone(k.up), k.closed
}

type fakePorts struct {
	mu       sync.Mutex
	callback midi.MessageCallback
	sent     []gomidi.Message
	stopped  bool
	closed   bool
}

func (p *fakePorts) StartListening(_ string, cb midi.MessageCallback) (func(), error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callback = cb
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.stopped = true
	}, nil
}

func (p *fakePorts) Sender(string) (func(gomidi.Message) error, error) {
	return func(msg gomidi.Message) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.sent = append(p.sent, msg)
		return nil
	}, nil
}

func (p *fakePorts) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePorts) deliver(msg gomidi.Message) {
	p.mu.Lock()
	cb := p.callback
	p.mu.Unlock()
	cb(msg)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testSetup writes a 2x1 layout: A and Mod1 on layer 1, B under A on layer 2.
func testSetup(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")

	cfg := config.Default()
	cfg.Device.Width = 2
	cfg.Device.Height = 1
	cfg.Device.UserFirmwareMode = false
	cfg.Keyboard.LayoutFile = "layout.txt"
	cfg.Keyboard.ObservePhysical = false

	km, err := keymap.New(2, 1)
	require.NoError(t, err)
	require.NoError(t, km.Set(0, 0, keys.Layer1, keys.A))
	require.NoError(t, km.Set(1, 0, keys.Layer1, keys.Mod1))
	require.NoError(t, km.Set(0, 0, keys.Layer2, keys.B))
	require.NoError(t, config.SaveLayout(filepath.Join(dir, "layout.txt"), km))
	require.NoError(t, cfg.SaveFile(cfgPath))
	return cfgPath, cfg
}

func newTestDaemon(cfgPath string, cfg *config.Config, kb *fakeKeyboard, ports *fakePorts) *Daemon {
	d := New(cfgPath, cfg, quietLogger())
	d.openKeyboard = func(context.Context, hid.Options, *slog.Logger) (Keyboard, error) { return kb, nil }
	d.openPorts = func(*slog.Logger) Ports { return ports }
	return d
}

func start(t *testing.T, d *Daemon) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	select {
	case <-d.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("daemon stopped before it was ready: %v", err)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("daemon not ready")
	}
	return cancel, done
}

func TestDaemonTypesPadPresses(t *testing.T) {
	cfgPath, cfg := testSetup(t)
	kb := &fakeKeyboard{}
	ports := &fakePorts{}
	d := newTestDaemon(cfgPath, cfg, kb, ports)

	var layerMu sync.Mutex
	var layers []keys.Layer
	d.OnLayerChanged(func(l keys.Layer) {
		layerMu.Lock()
		defer layerMu.Unlock()
		layers = append(layers, l)
	})

	cancel, done := start(t, d)
	require.NotNil(t, d.Engine())

	snap, err := d.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, keys.Layer1, snap.Layer)
	assert.Equal(t, 400*time.Millisecond, snap.RepeatDelay, "system repeat settings are used")
	assert.Equal(t, 25*time.Millisecond, snap.RepeatRate)

	ports.deliver(gomidi.NoteOn(0, 1, 100))
	assert.Eventually(t, func() bool {
		down, _, _ := kb.snapshot()
		return slices.Equal(down, []keys.Code{keys.A})
	}, time.Second, 5*time.Millisecond)

	ports.deliver(gomidi.NoteOff(0, 1))
	ports.deliver(gomidi.NoteOn(0, 2, 100))
	ports.deliver(gomidi.NoteOn(0, 1, 100))
	assert.Eventually(t, func() bool {
		down, _, _ := kb.snapshot()
		return slices.Equal(down, []keys.Code{keys.A, keys.B})
	}, time.Second, 5*time.Millisecond)

	layerMu.Lock()
	assert.Equal(t, []keys.Layer{keys.Layer2}, layers)
	layerMu.Unlock()

	cancel()
	require.NoError(t, <-done)

	_, up, closed := kb.snapshot()
	assert.Contains(t, up, keys.A)
	assert.Contains(t, up, keys.B, "held keys are released on shutdown")
	assert.True(t, closed)

	ports.mu.Lock()
	defer ports.mu.Unlock()
	assert.True(t, ports.stopped)
	assert.True(t, ports.closed)
	assert.NotEmpty(t, ports.sent, "pad LEDs were painted")
}

func TestDaemonDefaultLayoutWhenFileMissing(t *testing.T) {
	cfgPath, cfg := testSetup(t)
	cfg.Keyboard.LayoutFile = "missing.txt"
	d := newTestDaemon(cfgPath, cfg, &fakeKeyboard{}, &fakePorts{})

	km, err := d.loadKeymap(cfg, func(keys.Code) bool { return true })
	require.NoError(t, err)
	want, err := keymap.Default(2, 1)
	require.NoError(t, err)
	assert.True(t, want.Equal(km))
}

func TestDaemonRejectsMismatchedLayout(t *testing.T) {
	cfgPath, cfg := testSetup(t)
	cfg.Device.Width = 3
	d := newTestDaemon(cfgPath, cfg, &fakeKeyboard{}, &fakePorts{})

	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2x1")
}

func TestDaemonFailsWithoutVirtualKeyboard(t *testing.T) {
	cfgPath, cfg := testSetup(t)
	d := New(cfgPath, cfg, quietLogger())
	d.openKeyboard = func(context.Context, hid.Options, *slog.Logger) (Keyboard, error) {
		return nil, hid.ErrUnsupported
	}

	err := d.Run(context.Background())
	assert.ErrorIs(t, err, hid.ErrUnsupported)

	err = d.Do(context.Background(), func(*keystate.Grid) {})
	assert.ErrorIs(t, err, engine.ErrStopped)
}

func TestDaemonAppliesConfigReload(t *testing.T) {
	cfgPath, cfg := testSetup(t)
	kb := &fakeKeyboard{}
	ports := &fakePorts{}
	d := newTestDaemon(cfgPath, cfg, kb, ports)

	toggled := make(chan bool, 1)
	d.OnKeyEventsChanged(func(enabled bool) { toggled <- enabled })

	cancel, done := start(t, d)
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, d.Settings().Update(func(c *config.Config) {
		c.Keyboard.KeyEventsEnabled = false
		c.Keyboard.RepeatRateMs = 50
	}))
	require.NoError(t, d.Settings().Reload())

	select {
	case enabled := <-toggled:
		assert.False(t, enabled)
	case <-time.After(3 * time.Second):
		t.Fatal("config change not applied")
	}

	ports.deliver(gomidi.NoteOn(0, 1, 100))
	time.Sleep(50 * time.Millisecond)
	down, _, _ := kb.snapshot()
	assert.Empty(t, down, "key events are disabled")
}

func TestRecordPhysicalIgnoresSimulated(t *testing.T) {
	d := New("", config.Default(), quietLogger())
	d.recordPhysical(input.KeyboardEvent{Keys: []keys.Code{keys.A}, IsDown: true, IsSimulated: true})
	assert.Empty(t, d.LastKey())

	d.recordPhysical(input.KeyboardEvent{Keys: []keys.Code{keys.A}, IsDown: true})
	assert.Contains(t, d.LastKey(), "down")
}
