package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"folio/internal/errors"
	"folio/internal/sorter"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// ReloadPolicy decides what happens when the open file changes on disk.
type ReloadPolicy string

const (
	ReloadAuto   ReloadPolicy = "auto"   // reload immediately
	ReloadPrompt ReloadPolicy = "prompt" // ask, deferring while inactive
	ReloadIgnore ReloadPolicy = "ignore" // do nothing
)

// Config represents the application configuration structure.
type Config struct {
	Browse struct {
		Folder     string   `yaml:"folder"`     // Folder opened when none is given
		Extensions []string `yaml:"extensions"` // Known file extensions, without dots
		Exclude    []string `yaml:"exclude"`    // Glob patterns on base names to hide
		Sort       string   `yaml:"sort"`       // natural, lexical or collate
		Locale     string   `yaml:"locale"`     // BCP 47 tag used by collate
	} `yaml:"browse"`
	Watch struct {
		RenameWindow time.Duration `yaml:"rename_window"` // Wait for the second half of a rename
		EmitNone     bool          `yaml:"emit_none"`     // Surface unclassified events
	} `yaml:"watch"`
	Reload struct {
		Policy ReloadPolicy `yaml:"policy"`
	} `yaml:"reload"`
	Slideshow struct {
		Interval time.Duration `yaml:"interval"` // 0 disables auto advance
	} `yaml:"slideshow"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
}

// DefaultPath returns ~/.config/folio/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "folio", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location.
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Unmarshal into a temporary config to preserve defaults for unset fields
	var tempCfg Config
	if err := yaml.Unmarshal(data, &tempCfg); err != nil {
		return nil, errors.NewConfigError("error parsing config file", path, errors.InvalidConfig, err)
	}

	if tempCfg.Browse.Folder != "" {
		cfg.Browse.Folder = tempCfg.Browse.Folder
	}
	if len(tempCfg.Browse.Extensions) > 0 {
		cfg.Browse.Extensions = tempCfg.Browse.Extensions
	}
	if tempCfg.Browse.Exclude != nil {
		cfg.Browse.Exclude = tempCfg.Browse.Exclude
	}
	if tempCfg.Browse.Sort != "" {
		cfg.Browse.Sort = tempCfg.Browse.Sort
	}
	if tempCfg.Browse.Locale != "" {
		cfg.Browse.Locale = tempCfg.Browse.Locale
	}
	if tempCfg.Watch.RenameWindow != 0 {
		cfg.Watch.RenameWindow = tempCfg.Watch.RenameWindow
	}
	cfg.Watch.EmitNone = tempCfg.Watch.EmitNone
	if tempCfg.Reload.Policy != "" {
		cfg.Reload.Policy = tempCfg.Reload.Policy
	}
	cfg.Slideshow.Interval = tempCfg.Slideshow.Interval
	if tempCfg.Log.Level != "" {
		cfg.Log.Level = tempCfg.Log.Level
	}
	cfg.Log.File = tempCfg.Log.File
	cfg.Log.JSON = tempCfg.Log.JSON

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Browse.Folder = "."
	cfg.Browse.Extensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff", "webp", "ico", "psd"}
	cfg.Browse.Exclude = []string{".*"} // hidden files
	cfg.Browse.Sort = string(sorter.ModeNatural)
	cfg.Browse.Locale = "en"

	cfg.Watch.RenameWindow = 50 * time.Millisecond
	cfg.Watch.EmitNone = false

	cfg.Reload.Policy = ReloadPrompt
	cfg.Log.Level = "info"

	return cfg
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.NewConfigError("nil config", "", errors.InvalidConfig, nil)
	}

	if len(c.Browse.Extensions) == 0 {
		return errors.NewConfigError("at least one extension is required", "browse.extensions", errors.InvalidConfig, nil)
	}
	for i, ext := range c.Browse.Extensions {
		if strings.Trim(ext, ". ") == "" {
			return errors.NewConfigError(fmt.Sprintf("extension %d is empty", i), "browse.extensions", errors.InvalidConfig, nil)
		}
	}
	for _, pattern := range c.Browse.Exclude {
		if _, err := glob.Compile(pattern); err != nil {
			return errors.NewConfigError("invalid exclude pattern", "browse.exclude", errors.InvalidConfig, err)
		}
	}
	if _, err := sorter.New(sorter.Mode(c.Browse.Sort), c.Browse.Locale); err != nil {
		return err
	}

	if c.Watch.RenameWindow < 0 {
		return errors.NewConfigError("rename window must be >= 0", "watch.rename_window", errors.InvalidConfig, nil)
	}

	switch c.Reload.Policy {
	case ReloadAuto, ReloadPrompt, ReloadIgnore:
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown policy %q", c.Reload.Policy), "reload.policy", errors.InvalidConfig, nil)
	}

	if c.Slideshow.Interval < 0 {
		return errors.NewConfigError("slideshow interval must be >= 0", "slideshow.interval", errors.InvalidConfig, nil)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewConfigError(fmt.Sprintf("unknown level %q", c.Log.Level), "log.level", errors.InvalidConfig, nil)
	}
	return nil
}

// Sorter builds the configured file name ordering.
func (c *Config) Sorter() (sorter.Sorter, error) {
	return sorter.New(sorter.Mode(c.Browse.Sort), c.Browse.Locale)
}
