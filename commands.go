package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/PixPMusic/gopher-linkb/internal/config"
	"github.com/PixPMusic/gopher-linkb/internal/console"
	"github.com/PixPMusic/gopher-linkb/internal/daemon"
	"github.com/PixPMusic/gopher-linkb/internal/hid"
	"github.com/PixPMusic/gopher-linkb/internal/keymap"
	"github.com/PixPMusic/gopher-linkb/internal/logging"
	"github.com/PixPMusic/gopher-linkb/internal/midi"
	"github.com/PixPMusic/gopher-linkb/internal/startup"
	"github.com/PixPMusic/gopher-linkb/internal/tray"
)

// loadConfig reads the config file, writing the defaults on first launch so
// there is a file to edit.
func loadConfig() (string, *config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return "", nil, err
		}
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.FirstLaunchCompleted {
		cfg.FirstLaunchCompleted = true
		if err := cfg.SaveFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to save config: %v\n", err)
		}
	}
	return path, cfg, nil
}

// newLogger builds the process logger from the config. The terminal view
// owns the screen, so console mode never logs to it.
func newLogger(cfg *config.Config, forConsole bool) (*logging.Logger, error) {
	lc := logging.DefaultConfig()

	levelName := cfg.Logging.Level
	if logLevel != "" {
		levelName = logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	lc.Level = level
	lc.Format = format
	lc.Output = cfg.Logging.Output
	if cfg.Logging.FilePath != "" {
		lc.FilePath = cfg.Logging.FilePath
	}

	if forConsole {
		switch lc.Output {
		case "file", "none":
		default:
			lc.Output = "file"
		}
	}

	logger, err := logging.New(lc)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger.Logger)
	return logger, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runKeyboard(cmd *cobra.Command, args []string) error {
	path, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signalContext()
	defer stop()

	d := daemon.New(path, cfg, logger.WithComponent("daemon"))
	if !trayMode && !cfg.Tray {
		return d.Run(ctx)
	}
	return runWithTray(ctx, d, logger)
}

// runWithTray runs the fyne app on the main goroutine and the keyboard
// beside it. Either one stopping stops the other.
func runWithTray(ctx context.Context, d *daemon.Daemon, logger *logging.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fyneApp := app.NewWithID("com.pixpmusic.gopher-linkb")

	t := tray.Setup(fyneApp, d, d.Settings(), tray.Callbacks{
		OnQuit: func() {
			fyneApp.Quit()
		},
	}, logger.WithComponent("tray"))
	if t != nil {
		d.OnLayerChanged(t.SetLayer)
		d.OnKeyEventsChanged(t.SetKeyEventsEnabled)
	}

	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
		fyne.Do(fyneApp.Quit)
	}()

	// Run the Fyne app (this blocks until app.Quit is called)
	fyneApp.Run()
	cancel()
	return <-done
}

func runConsole(cmd *cobra.Command, args []string) error {
	path, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signalContext()
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := daemon.New(path, cfg, logger.WithComponent("daemon"))
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	select {
	case <-d.Ready():
	case err := <-done:
		return err
	}

	viewErr := console.Run(ctx, d, d.LastKey)
	cancel()
	return errors.Join(viewErr, <-done)
}

func runPorts(cmd *cobra.Command, args []string) error {
	m := midi.NewManager(slog.Default())
	defer m.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Inputs:")
	for _, name := range m.ListInPorts() {
		fmt.Fprintf(out, "  %s\n", name)
	}
	fmt.Fprintln(out, "Outputs:")
	for _, name := range m.ListOutPorts() {
		fmt.Fprintf(out, "  %s\n", name)
	}
	return nil
}

func runLayoutExport(cmd *cobra.Command, args []string) error {
	path, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var km *keymap.Keymap
	layoutPath := cfg.LayoutPath(path)
	if useDefault || layoutPath == "" {
		km, err = keymap.Default(cfg.Device.Width, cfg.Device.Height)
	} else {
		km, err = config.LoadLayout(layoutPath, hid.SupportsKey)
	}
	if err != nil {
		return err
	}

	if outputFile == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), config.FormatLayout(km))
		return err
	}
	if err := config.SaveLayout(outputFile, km); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %dx%d layout to %s\n", km.Width(), km.Height(), outputFile)
	return nil
}

func runLayoutCheck(cmd *cobra.Command, args []string) error {
	km, err := config.LoadLayout(args[0], hid.SupportsKey)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d layout OK\n", args[0], km.Width(), km.Height())
	return nil
}

func runStartupEnable(cmd *cobra.Command, args []string) error {
	entry, err := startup.DefaultEntry()
	if err != nil {
		return err
	}
	if err := startup.Enable(entry); err != nil {
		return err
	}
	return setOpenAtStartup(true)
}

func runStartupDisable(cmd *cobra.Command, args []string) error {
	if err := startup.Disable(); err != nil {
		return err
	}
	return setOpenAtStartup(false)
}

func setOpenAtStartup(enabled bool) error {
	path, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.OpenAtStartup = enabled
	return cfg.SaveFile(path)
}

func runStartupStatus(cmd *cobra.Command, args []string) error {
	state := "disabled"
	if startup.IsEnabled() {
		state = "enabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Launch at login: %s\n", state)
	return nil
}
