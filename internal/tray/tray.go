// Package tray shows the active layer in the system tray and offers a small
// menu for toggling key events and login startup.
package tray

import (
	"context"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"

	"github.com/PixPMusic/gopher-linkb/internal/config"
	"github.com/PixPMusic/gopher-linkb/internal/keys"
	"github.com/PixPMusic/gopher-linkb/internal/keystate"
	"github.com/PixPMusic/gopher-linkb/internal/startup"
)

// Controller runs functions against the live grid.
type Controller interface {
	Do(ctx context.Context, fn func(g *keystate.Grid)) error
}

// Settings is the persisted config the menu toggles write to.
type Settings interface {
	Config() *config.Config
	Update(fn func(c *config.Config)) error
}

// Callbacks for tray menu actions
type Callbacks struct {
	OnQuit func()
}

// Tray owns the tray icon and menu.
type Tray struct {
	desk     desktop.App
	ctl      Controller
	settings Settings
	log      *slog.Logger

	icons iconCache

	mu     sync.Mutex
	layer  keys.Layer
	active bool

	keyEventsItem *fyne.MenuItem
	menu          *fyne.Menu
}

// Setup initializes the system tray using Fyne's built-in support. It returns
// nil when the app has no tray.
func Setup(app fyne.App, ctl Controller, settings Settings, callbacks Callbacks, logger *slog.Logger) *Tray {
	desk, ok := app.(desktop.App)
	if !ok {
		logger.Warn("system tray not available")
		return nil
	}

	cfg := settings.Config()
	t := &Tray{
		desk:     desk,
		ctl:      ctl,
		settings: settings,
		log:      logger,
		layer:    keys.Layer1,
		active:   cfg.Keyboard.KeyEventsEnabled,
	}

	t.keyEventsItem = fyne.NewMenuItem("Key Events", nil)
	t.keyEventsItem.Checked = t.active

	startupItem := fyne.NewMenuItem("Open at Startup", nil)
	startupItem.Checked = cfg.OpenAtStartup || startup.IsEnabled()

	quitItem := fyne.NewMenuItem("Quit", func() {
		if callbacks.OnQuit != nil {
			callbacks.OnQuit()
		}
	})

	t.menu = fyne.NewMenu("GopherLinKB",
		t.keyEventsItem,
		fyne.NewMenuItemSeparator(),
		startupItem,
		fyne.NewMenuItemSeparator(),
		quitItem,
	)

	// Set the actions after the menu is created so they can refresh it
	t.keyEventsItem.Action = func() {
		t.toggleKeyEvents(!t.keyEventsItem.Checked)
	}
	startupItem.Action = func() {
		enable := !startupItem.Checked
		if err := setStartup(enable); err != nil {
			logger.Error("failed to change startup registration", "enable", enable, "error", err)
			return
		}
		startupItem.Checked = enable
		if err := settings.Update(func(c *config.Config) { c.OpenAtStartup = enable }); err != nil {
			logger.Warn("failed to save config", "error", err)
		}
		t.menu.Refresh()
	}

	desk.SetSystemTrayMenu(t.menu)
	t.refreshIcon()
	return t
}

func setStartup(enable bool) error {
	if !enable {
		return startup.Disable()
	}
	entry, err := startup.DefaultEntry()
	if err != nil {
		return err
	}
	return startup.Enable(entry)
}

// toggleKeyEvents runs on the fyne goroutine.
func (t *Tray) toggleKeyEvents(enabled bool) {
	err := t.ctl.Do(context.Background(), func(g *keystate.Grid) {
		g.SetKeyEventsEnabled(enabled)
	})
	if err != nil {
		t.log.Error("failed to change key events", "enabled", enabled, "error", err)
		return
	}
	if err := t.settings.Update(func(c *config.Config) { c.Keyboard.KeyEventsEnabled = enabled }); err != nil {
		t.log.Warn("failed to save config", "error", err)
	}
	t.keyEventsItem.Checked = enabled
	t.menu.Refresh()
	t.SetKeyEventsEnabled(enabled)
}

// SetLayer updates the icon to show layer. Safe to call from any goroutine.
func (t *Tray) SetLayer(layer keys.Layer) {
	t.mu.Lock()
	changed := t.layer != layer
	t.layer = layer
	t.mu.Unlock()
	if changed {
		fyne.Do(t.refreshIcon)
	}
}

// SetKeyEventsEnabled updates the icon and menu check mark. Safe to call
// from any goroutine.
func (t *Tray) SetKeyEventsEnabled(enabled bool) {
	t.mu.Lock()
	changed := t.active != enabled
	t.active = enabled
	t.mu.Unlock()
	if !changed {
		return
	}
	fyne.Do(func() {
		if t.keyEventsItem.Checked != enabled {
			t.keyEventsItem.Checked = enabled
			t.menu.Refresh()
		}
		t.refreshIcon()
	})
}

func (t *Tray) refreshIcon() {
	t.mu.Lock()
	layer, active := t.layer, t.active
	t.mu.Unlock()

	data, err := t.icons.get(layer, active)
	if err != nil {
		t.log.Error("failed to render tray icon", "layer", layer, "error", err)
		return
	}
	t.desk.SetSystemTrayIcon(fyne.NewStaticResource("icon.png", data))
}
