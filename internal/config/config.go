// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/bethropolis/easel/internal/logger"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger   logger.Config  `toml:"logger"` // Embed logger config under [logger] table
	Editor   EditorConfig   `toml:"editor"`
	Autosave AutosaveConfig `toml:"autosave"`
	Store    StoreConfig    `toml:"store"`
	Server   ServerConfig   `toml:"server"`
}

// EditorConfig holds editing-session settings.
type EditorConfig struct {
	HistoryDepth    int           `toml:"history_depth"`
	CoalesceWindow  time.Duration `toml:"coalesce_window"`
	PasteOffset     float64       `toml:"paste_offset"` // Zero pastes in place
	MoveStep        float64       `toml:"move_step"` // Canvas units per arrow press
	SystemClipboard bool          `toml:"system_clipboard"`
	CellWidth       float64       `toml:"cell_width"`  // Canvas units per terminal column
	CellHeight      float64       `toml:"cell_height"` // Canvas units per terminal row
	Theme           string        `toml:"theme"`
}

// AutosaveConfig controls the debounced save cycle.
type AutosaveConfig struct {
	Debounce time.Duration `toml:"debounce"`
	Timeout  time.Duration `toml:"timeout"` // Per save call
}

// StoreConfig selects where projects live.
type StoreConfig struct {
	Driver string `toml:"driver"` // sqlite, remote or memory
	Path   string `toml:"path"`   // sqlite database file
	URL    string `toml:"url"`    // remote API base URL
}

// ServerConfig is used by easeld.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

var (
	loadedConfig *Config
	loadOnce     sync.Once
	loadErr      error
)

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.Config{
			LogLevel:    "info",
			LogFilePath: "", // Empty means default path logic in logger.Init applies
		},
		Editor: EditorConfig{
			HistoryDepth:    DefaultHistoryDepth,
			CoalesceWindow:  DefaultCoalesceWindow,
			PasteOffset:     DefaultPasteOffset,
			MoveStep:        DefaultMoveStep,
			SystemClipboard: SystemClipboard,
			CellWidth:       DefaultCellWidth,
			CellHeight:      DefaultCellHeight,
		},
		Autosave: AutosaveConfig{
			Debounce: DefaultDebounce,
			Timeout:  DefaultSaveTimeout,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
			Path:   defaultDBPath(),
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultDBFileName
	}
	return filepath.Join(dir, AppName, DefaultDBFileName)
}

// DefaultConfigPath is where the config file lives when -config is not given.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// loadFromFile decodes filePath over cfg. A missing file is not an error.
func loadFromFile(cfg *Config, filePath string) error {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	if undecoded := metadata.Undecoded(); len(undecoded) > 0 {
		// The logger is not up yet; surface this once it is.
		pendingWarnings = append(pendingWarnings, fmt.Sprintf("Config file '%s': Unrecognized keys: %v", filePath, undecoded))
	}
	return nil
}

var pendingWarnings []string

// LogPendingWarnings reports problems found before the logger was initialised.
func LogPendingWarnings() {
	for _, w := range pendingWarnings {
		logger.Warnf("%s", w)
	}
	pendingWarnings = nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}

	if c.Editor.HistoryDepth <= 0 {
		c.Editor.HistoryDepth = defaults.Editor.HistoryDepth
	}
	if c.Editor.CoalesceWindow < 0 { // Zero disables coalescing
		c.Editor.CoalesceWindow = defaults.Editor.CoalesceWindow
	}
	if c.Editor.PasteOffset < 0 {
		c.Editor.PasteOffset = defaults.Editor.PasteOffset
	}
	if c.Editor.MoveStep <= 0 {
		c.Editor.MoveStep = defaults.Editor.MoveStep
	}
	if c.Editor.CellWidth <= 0 {
		c.Editor.CellWidth = defaults.Editor.CellWidth
	}
	if c.Editor.CellHeight <= 0 {
		c.Editor.CellHeight = defaults.Editor.CellHeight
	}

	if c.Autosave.Debounce <= 0 {
		c.Autosave.Debounce = defaults.Autosave.Debounce
	}
	if c.Autosave.Timeout <= 0 {
		c.Autosave.Timeout = defaults.Autosave.Timeout
	}

	switch c.Store.Driver {
	case DriverSQLite, DriverRemote, DriverMemory:
	default:
		pendingWarnings = append(pendingWarnings, fmt.Sprintf("Unknown store driver %q, using %s", c.Store.Driver, DriverSQLite))
		c.Store.Driver = DriverSQLite
	}
	if c.Store.Driver == DriverSQLite && c.Store.Path == "" {
		c.Store.Path = defaults.Store.Path
	}
	if c.Store.Driver == DriverRemote && c.Store.URL == "" {
		pendingWarnings = append(pendingWarnings, "Remote store without url, using in-memory store")
		c.Store.Driver = DriverMemory
	}

	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
}

// Load builds a configuration from defaults, the file at configFilePath (or
// the default location when empty), and flag overrides.
func Load(configFilePath string, flags *Flags) (*Config, error) {
	cfg := NewDefaultConfig()

	effectivePath := configFilePath
	if effectivePath == "" {
		effectivePath = DefaultConfigPath()
	}

	var err error
	if effectivePath != "" {
		err = loadFromFile(cfg, effectivePath)
	}

	if flags != nil {
		flags.ApplyOverrides(cfg)
	}
	cfg.validate()
	return cfg, err
}

// LoadConfig loads the configuration once and keeps it for Get.
// It should be called only once, typically from main.
func LoadConfig(configFilePath string, flags *Flags) (*Config, error) {
	loadOnce.Do(func() {
		loadedConfig, loadErr = Load(configFilePath, flags)
	})
	return loadedConfig, loadErr
}

// Get returns the loaded application configuration. Panics if LoadConfig wasn't called.
func Get() *Config {
	if loadedConfig == nil {
		panic("config.Get() called before config.LoadConfig()")
	}
	return loadedConfig
}
