// Package startup registers the keyboard daemon to launch at login.
package startup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	appID   = "com.pixpmusic.gopher-linkb"
	appName = "GopherLinKB"
)

// Entry is the command registered for login.
type Entry struct {
	Exec string
	Args []string
}

// DefaultEntry launches the running executable with "run --tray".
func DefaultEntry() (Entry, error) {
	execPath, err := os.Executable()
	if err != nil {
		return Entry{}, err
	}
	return Entry{Exec: execPath, Args: []string{"run", "--tray"}}, nil
}

// Enable registers the application to launch at system startup
func Enable(e Entry) error {
	switch runtime.GOOS {
	case "darwin":
		return enableMacOS(e)
	case "linux":
		return enableLinux(e)
	case "windows":
		return enableWindows(e)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// Disable removes the application from system startup
func Disable() error {
	switch runtime.GOOS {
	case "darwin":
		return removeIfExists(macOSPlistPath())
	case "linux":
		return removeIfExists(linuxDesktopPath())
	case "windows":
		return disableWindows()
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// IsEnabled checks if the application is registered for startup
func IsEnabled() bool {
	switch runtime.GOOS {
	case "darwin":
		return exists(macOSPlistPath())
	case "linux":
		return exists(linuxDesktopPath())
	case "windows":
		return exec.Command("reg", "query", windowsRegistryKey, "/v", appName).Run() == nil
	default:
		return false
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func removeIfExists(path string) error {
	if !exists(path) {
		return nil
	}
	return os.Remove(path)
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// --- macOS ---

func macOSPlistPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "LaunchAgents", appID+".plist")
}

func (e Entry) launchAgent() string {
	var args strings.Builder
	for _, a := range append([]string{e.Exec}, e.Args...) {
		fmt.Fprintf(&args, "        <string>%s</string>\n", xmlEscape(a))
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>%s</string>
    <key>ProgramArguments</key>
    <array>
%s    </array>
    <key>RunAtLoad</key>
    <true/>
</dict>
</plist>
`, appID, args.String())
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func enableMacOS(e Entry) error {
	return writeFile(macOSPlistPath(), e.launchAgent())
}

// --- Linux ---

func linuxDesktopPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "autostart", "gopher-linkb.desktop")
}

// desktopEntry renders an XDG autostart file. Exec arguments are quoted
// when they contain spaces.
func (e Entry) desktopEntry() string {
	parts := make([]string, 0, len(e.Args)+1)
	for _, a := range append([]string{e.Exec}, e.Args...) {
		if strings.ContainsAny(a, " \t\"") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts = append(parts, a)
	}
	return fmt.Sprintf(`[Desktop Entry]
Type=Application
Name=%s
Comment=LinnStrument keyboard
Exec=%s
Hidden=false
NoDisplay=false
X-GNOME-Autostart-enabled=true
`, appName, strings.Join(parts, " "))
}

func enableLinux(e Entry) error {
	return writeFile(linuxDesktopPath(), e.desktopEntry())
}

// --- Windows ---

const windowsRegistryKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (e Entry) commandLine() string {
	parts := []string{`"` + e.Exec + `"`}
	parts = append(parts, e.Args...)
	return strings.Join(parts, " ")
}

func enableWindows(e Entry) error {
	return exec.Command("reg", "add", windowsRegistryKey,
		"/v", appName,
		"/t", "REG_SZ",
		"/d", e.commandLine(),
		"/f").Run()
}

func disableWindows() error {
	cmd := exec.Command("reg", "delete", windowsRegistryKey, "/v", appName, "/f")
	output, err := cmd.CombinedOutput()
	// Ignore error if the key doesn't exist
	if err != nil && !strings.Contains(string(output), "The system was unable to find the specified registry key or value") {
		return err
	}
	return nil
}
