// Package daemon assembles the keyboard: MIDI input, the apply loop, LED
// feedback, the virtual keyboard, config hot reload and the local API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/PixPMusic/gopher-linkb/internal/api"
	"github.com/PixPMusic/gopher-linkb/internal/config"
	"github.com/PixPMusic/gopher-linkb/internal/engine"
	"github.com/PixPMusic/gopher-linkb/internal/hid"
	"github.com/PixPMusic/gopher-linkb/internal/ingress"
	"github.com/PixPMusic/gopher-linkb/internal/input"
	"github.com/PixPMusic/gopher-linkb/internal/keymap"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
	"github.com/PixPMusic/gopher-linkb/internal/keystate"
	"github.com/PixPMusic/gopher-linkb/internal/midi"
)

// Keyboard is the operating system side: a virtual keyboard plus the
// physical keyboards it observes.
type Keyboard interface {
	input.Injector
	input.EventProvider
	SupportsKey(key keys.Code) bool
	SystemRepeat() (delayMs, rateMs int, err error)
	Close() error
}

// Ports opens MIDI ports by name.
type Ports interface {
	StartListening(inPortName string, callback midi.MessageCallback) (func(), error)
	Sender(outPortName string) (func(gomidi.Message) error, error)
	Close()
}

// Daemon runs the keyboard until its context is cancelled.
type Daemon struct {
	cfgPath string
	cfg     *config.Config
	watcher *config.Watcher
	log     *slog.Logger

	openKeyboard func(ctx context.Context, opts hid.Options, logger *slog.Logger) (Keyboard, error)
	openPorts    func(logger *slog.Logger) Ports

	onLayer     []func(keys.Layer)
	onKeyEvents []func(bool)

	engine  *engine.Engine
	ready   chan struct{}
	done    chan struct{}
	lastKey atomic.Pointer[string]
}

// New creates a daemon for the config loaded from cfgPath.
func New(cfgPath string, cfg *config.Config, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		cfgPath: cfgPath,
		cfg:     cfg,
		watcher: config.NewWatcher(cfgPath, cfg, logger.With("component", "config")),
		log:     logger,
		openKeyboard: func(ctx context.Context, opts hid.Options, logger *slog.Logger) (Keyboard, error) {
			return hid.Open(ctx, opts, logger)
		},
		openPorts: func(logger *slog.Logger) Ports {
			return midi.NewManager(logger)
		},
		ready: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Settings returns the live config, which tray toggles write through.
func (d *Daemon) Settings() *config.Watcher { return d.watcher }

// OnLayerChanged registers fn to run on the apply loop whenever the active
// layer changes. Register before Run.
func (d *Daemon) OnLayerChanged(fn func(keys.Layer)) {
	d.onLayer = append(d.onLayer, fn)
}

// OnKeyEventsChanged registers fn for key event toggles made through the
// config file. Register before Run.
func (d *Daemon) OnKeyEventsChanged(fn func(bool)) {
	d.onKeyEvents = append(d.onKeyEvents, fn)
}

// Ready is closed once the apply loop is running.
func (d *Daemon) Ready() <-chan struct{} { return d.ready }

// Engine returns the apply loop. It is nil until Ready is closed.
func (d *Daemon) Engine() *engine.Engine { return d.engine }

// Do runs fn on the apply loop, waiting for it to start if needed.
func (d *Daemon) Do(ctx context.Context, fn func(g *keystate.Grid)) error {
	select {
	case <-d.ready:
	case <-d.done:
		return engine.ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	return d.engine.Do(ctx, fn)
}

// Snapshot returns the grid state once the apply loop is running.
func (d *Daemon) Snapshot(ctx context.Context) (keystate.Snapshot, error) {
	var snap keystate.Snapshot
	err := d.Do(ctx, func(g *keystate.Grid) { snap = g.Snapshot() })
	return snap, err
}

// LastKey describes the last key seen on a physical keyboard.
func (d *Daemon) LastKey() string {
	if s := d.lastKey.Load(); s != nil {
		return *s
	}
	return ""
}

// Run assembles every component and blocks until ctx is cancelled or a
// component fails. Keys held at shutdown are released.
func (d *Daemon) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(d.done)

	cfg := d.cfg
	log := d.log

	keyboard, err := d.openKeyboard(ctx, hid.Options{
		Name:            cfg.Keyboard.VirtualName,
		ObservePhysical: cfg.Keyboard.ObservePhysical,
	}, log.With("component", "hid"))
	if err != nil {
		return fmt.Errorf("failed to create virtual keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); err != nil {
			log.Warn("failed to close virtual keyboard", "error", err)
		}
	}()

	km, err := d.loadKeymap(cfg, keyboard.SupportsKey)
	if err != nil {
		return err
	}

	handler := keystate.NewHandler(keyboard, nil, log.With("component", "keys"))
	d.applyRepeat(handler, keyboard, cfg)
	handler.OnKeyEvent(func(kp keystate.KeyPress) {
		log.Debug("key event", "key", kp.Key, "pressed", kp.Pressed)
	})

	grid := keystate.NewGrid(km, handler, log.With("component", "grid"))
	grid.SetKeyEventsEnabled(cfg.Keyboard.KeyEventsEnabled)
	grid.OnLayerChanged(func(old, new keys.Layer) {
		log.Debug("layer changed", "from", old, "to", new)
		for _, fn := range d.onLayer {
			fn(new)
		}
	})

	device, err := midi.GetDevice(midi.DeviceType(cfg.Device.Type), cfg.Device.Width, cfg.Device.Height)
	if err != nil {
		return err
	}
	if ls, ok := device.(*midi.Linnstrument); ok {
		ls.DecimationMs = uint8(cfg.Device.DecimationMs)
	}

	ports := d.openPorts(log.With("component", "midi"))
	defer ports.Close()

	send, err := ports.Sender(cfg.Device.OutPort)
	if err != nil {
		return fmt.Errorf("failed to open midi output: %w", err)
	}
	if cfg.Device.UserFirmwareMode {
		if err := device.Connect(send); err != nil {
			return fmt.Errorf("failed to connect %s: %w", cfg.Device.Name, err)
		}
		defer func() {
			if err := device.Disconnect(send); err != nil {
				log.Warn("failed to disconnect device", "error", err)
			}
		}()
	}

	pipeline := ingress.New(device, ingress.DefaultQueueSize, log.With("component", "ingress"))
	stopListening, err := ports.StartListening(cfg.Device.InPort, func(msg gomidi.Message) {
		pipeline.Deliver(msg)
	})
	if err != nil {
		return fmt.Errorf("failed to open midi input: %w", err)
	}
	defer stopListening()

	d.engine = engine.New(grid, pipeline.Events(), log.With("component", "engine"))
	leds := engine.AttachLEDs(grid, device, send, log.With("component", "leds"))
	defer func() {
		if err := leds.Clear(); err != nil {
			log.Warn("failed to clear pad LEDs", "error", err)
		}
	}()

	subID := keyboard.Subscribe(d.recordPhysical)
	defer keyboard.Unsubscribe(subID)

	d.watcher.OnChange(func(old, new *config.Config) {
		d.applyConfig(ctx, keyboard, old, new)
	})

	var server *api.Server
	if cfg.API.Enabled {
		server = api.New(d.engine, keyboard.SupportsKey, log.With("component", "api"))
		if layoutPath := cfg.LayoutPath(d.cfgPath); layoutPath != "" {
			server.OnKeymapChanged(func(km *keymap.Keymap) {
				if err := config.SaveLayout(layoutPath, km); err != nil {
					log.Error("failed to save layout", "path", layoutPath, "error", err)
				}
			})
		}
	}

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("component failed", "component", name, "error", err)
				errMu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", name, err)
				}
				errMu.Unlock()
				cancel()
			}
		}()
	}

	run("ingress", pipeline.Run)
	run("engine", d.engine.Run)
	run("config", func(ctx context.Context) error {
		if err := d.watcher.Run(ctx); err != nil {
			log.Warn("config changes will not be picked up", "error", err)
		}
		return nil
	})
	if server != nil {
		run("api", func(ctx context.Context) error {
			return server.Run(ctx, cfg.API.Listen)
		})
	}

	log.Info("keyboard running",
		"device", cfg.Device.Name,
		"width", cfg.Device.Width,
		"height", cfg.Device.Height,
		"key_events", cfg.Keyboard.KeyEventsEnabled)
	close(d.ready)

	<-ctx.Done()
	wg.Wait()
	log.Info("keyboard stopped")
	return firstErr
}

// loadKeymap reads the configured layout, or builds the default one.
func (d *Daemon) loadKeymap(cfg *config.Config, supported func(keys.Code) bool) (*keymap.Keymap, error) {
	path := cfg.LayoutPath(d.cfgPath)
	if path == "" {
		return keymap.Default(cfg.Device.Width, cfg.Device.Height)
	}

	km, err := config.LoadLayout(path, supported)
	if errors.Is(err, os.ErrNotExist) {
		d.log.Info("layout file not found, using default layout", "path", path)
		return keymap.Default(cfg.Device.Width, cfg.Device.Height)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}
	if km.Width() != cfg.Device.Width || km.Height() != cfg.Device.Height {
		return nil, fmt.Errorf("layout %s is %dx%d but the device is %dx%d",
			path, km.Width(), km.Height(), cfg.Device.Width, cfg.Device.Height)
	}
	return km, nil
}

// applyRepeat uses the configured repeat settings, falling back to the
// system's and then to the built-in defaults.
func (d *Daemon) applyRepeat(handler *keystate.Handler, keyboard Keyboard, cfg *config.Config) {
	delayMs, rateMs, err := keyboard.SystemRepeat()
	if err != nil {
		d.log.Debug("system repeat settings unavailable", "error", err)
	} else {
		handler.SetRepeat(delayMs, rateMs)
	}
	handler.SetRepeat(cfg.Keyboard.RepeatDelayMs, cfg.Keyboard.RepeatRateMs)

	delay, rate := handler.Repeat()
	d.log.Info("key repeat", "delay", delay, "rate", rate)
}

// applyConfig runs on the watcher goroutine and hands grid changes to the
// apply loop.
func (d *Daemon) applyConfig(ctx context.Context, keyboard Keyboard, old, new *config.Config) {
	if old.Device != new.Device || old.Keyboard.VirtualName != new.Keyboard.VirtualName ||
		old.Keyboard.ObservePhysical != new.Keyboard.ObservePhysical || old.API != new.API {
		d.log.Warn("device, virtual keyboard and api changes apply after a restart")
	}

	var km *keymap.Keymap
	if old.Keyboard.LayoutFile != new.Keyboard.LayoutFile || new.Keyboard.LayoutFile != "" {
		next, err := d.loadKeymap(new, keyboard.SupportsKey)
		if err != nil {
			d.log.Error("layout not reloaded", "error", err)
		} else {
			km = next
		}
	}

	err := d.engine.Do(ctx, func(g *keystate.Grid) {
		g.Handler().SetRepeat(new.Keyboard.RepeatDelayMs, new.Keyboard.RepeatRateMs)
		if new.Keyboard.KeyEventsEnabled != g.KeyEventsEnabled() {
			g.SetKeyEventsEnabled(new.Keyboard.KeyEventsEnabled)
			for _, fn := range d.onKeyEvents {
				fn(new.Keyboard.KeyEventsEnabled)
			}
		}
		if km != nil && !km.Equal(g.Keymap()) {
			if err := g.SetKeymap(km); err != nil {
				d.log.Error("layout not applied", "error", err)
				return
			}
			d.log.Info("layout reloaded")
		}
	})
	if err != nil {
		d.log.Warn("config change not applied", "error", err)
	}
}

func (d *Daemon) recordPhysical(ev input.KeyboardEvent) {
	if ev.IsSimulated {
		return
	}
	state := "up"
	if ev.IsDown {
		state = "down"
	}
	desc := fmt.Sprintf("%v %s", ev.Keys, state)
	d.lastKey.Store(&desc)
	d.log.Debug("physical key", "keys", ev.Keys, "down", ev.IsDown, "device", ev.DeviceID)
}
