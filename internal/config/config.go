// Package config loads and saves the settings file and the keyboard layout.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

const (
	appName = "gopher-linkb"

	// MaxWidth and MaxHeight are the largest LinnStrument grid (25 columns,
	// one MIDI channel per row).
	MaxWidth  = 25
	MaxHeight = 16
)

// DeviceConfig describes the pad controller.
type DeviceConfig struct {
	ID               string `toml:"id" json:"id" yaml:"id"`
	Type             string `toml:"type" json:"type" yaml:"type"` // device model, "linnstrument"
	Name             string `toml:"name" json:"name" yaml:"name"`
	InPort           string `toml:"in_port" json:"in_port" yaml:"in_port"`    // MIDI input port, substring match
	OutPort          string `toml:"out_port" json:"out_port" yaml:"out_port"` // MIDI output port, substring match
	Width            int    `toml:"width" json:"width" yaml:"width"`
	Height           int    `toml:"height" json:"height" yaml:"height"`
	DecimationMs     int    `toml:"decimation_ms" json:"decimation_ms" yaml:"decimation_ms"`
	UserFirmwareMode bool   `toml:"user_firmware_mode" json:"user_firmware_mode" yaml:"user_firmware_mode"`
}

// KeyboardConfig controls the virtual keyboard and key behaviour.
type KeyboardConfig struct {
	VirtualName      string `toml:"virtual_name" json:"virtual_name" yaml:"virtual_name"`
	RepeatDelayMs    int    `toml:"repeat_delay_ms" json:"repeat_delay_ms" yaml:"repeat_delay_ms"` // 0 = system setting
	RepeatRateMs     int    `toml:"repeat_rate_ms" json:"repeat_rate_ms" yaml:"repeat_rate_ms"`    // 0 = system setting
	LayoutFile       string `toml:"layout_file" json:"layout_file" yaml:"layout_file"`             // empty = built-in layout
	KeyEventsEnabled bool   `toml:"key_events_enabled" json:"key_events_enabled" yaml:"key_events_enabled"`
	ObservePhysical  bool   `toml:"observe_physical" json:"observe_physical" yaml:"observe_physical"`
}

type LoggingConfig struct {
	Level    string `toml:"level" json:"level" yaml:"level"`
	Format   string `toml:"format" json:"format" yaml:"format"`
	Output   string `toml:"output" json:"output" yaml:"output"`
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

type APIConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled" yaml:"enabled"`
	Listen  string `toml:"listen" json:"listen" yaml:"listen"`
}

// Config holds application configuration
type Config struct {
	FirstLaunchCompleted bool           `toml:"first_launch_completed" json:"first_launch_completed" yaml:"first_launch_completed"`
	OpenAtStartup        bool           `toml:"open_at_startup" json:"open_at_startup" yaml:"open_at_startup"`
	Tray                 bool           `toml:"tray" json:"tray" yaml:"tray"`
	Device               DeviceConfig   `toml:"device" json:"device" yaml:"device"`
	Keyboard             KeyboardConfig `toml:"keyboard" json:"keyboard" yaml:"keyboard"`
	Logging              LoggingConfig  `toml:"logging" json:"logging" yaml:"logging"`
	API                  APIConfig      `toml:"api" json:"api" yaml:"api"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			ID:               uuid.New().String(),
			Type:             "linnstrument",
			Name:             "LinnStrument",
			InPort:           "LinnStrument",
			OutPort:          "LinnStrument",
			Width:            MaxWidth,
			Height:           8,
			UserFirmwareMode: true,
		},
		Keyboard: KeyboardConfig{
			VirtualName:      "LinKB Keyboard",
			KeyEventsEnabled: true,
			ObservePhysical:  true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		API: APIConfig{
			Listen: "127.0.0.1:7390",
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Device.Width <= 0 || c.Device.Width > MaxWidth {
		errs = append(errs, fmt.Errorf("device.width must be between 1 and %d, got %d", MaxWidth, c.Device.Width))
	}
	if c.Device.Height <= 0 || c.Device.Height > MaxHeight {
		errs = append(errs, fmt.Errorf("device.height must be between 1 and %d, got %d", MaxHeight, c.Device.Height))
	}
	if c.Device.DecimationMs < 0 || c.Device.DecimationMs > 127 {
		errs = append(errs, fmt.Errorf("device.decimation_ms must be between 0 and 127, got %d", c.Device.DecimationMs))
	}
	if c.Device.ID != "" {
		if _, err := uuid.Parse(c.Device.ID); err != nil {
			errs = append(errs, fmt.Errorf("device.id: %w", err))
		}
	}
	if c.Keyboard.RepeatDelayMs < 0 {
		errs = append(errs, fmt.Errorf("keyboard.repeat_delay_ms must not be negative"))
	}
	if c.Keyboard.RepeatRateMs < 0 {
		errs = append(errs, fmt.Errorf("keyboard.repeat_rate_ms must not be negative"))
	}
	if c.API.Enabled && c.API.Listen == "" {
		errs = append(errs, fmt.Errorf("api.listen is required when the api is enabled"))
	}
	return errors.Join(errs...)
}

// LayoutPath resolves the layout file relative to the config file.
func (c *Config) LayoutPath(configPath string) string {
	p := c.Keyboard.LayoutFile
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(configPath), p)
}

// configDir returns the platform-appropriate config directory
func configDir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configHome, appName), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config from the default path, returning defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config at path. The format follows the
// file extension. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := decode(path, data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte) (*Config, error) {
	cfg := Default()
	switch format(path) {
	case "toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the config to path in the format its extension names.
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	var data []byte
	var err error
	switch format(path) {
	case "toml":
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(c)
		data = []byte(sb.String())
	case "json":
		data, err = json.MarshalIndent(c, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	}
	return "toml"
}
