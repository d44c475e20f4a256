package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	FormatPNG = "png"
	FormatJPG = "jpg"

	configFileName = "config.json"

	DefaultRegionHotkey     = "Ctrl+Alt+P"
	DefaultFullscreenHotkey = "Ctrl+Alt+F"
	DefaultWindowHotkey     = "Ctrl+Alt+W"
)

// Config is the persisted tool configuration plus a few environment-driven
// settings that never hit the JSON file.
type Config struct {
	SaveDirectory string `json:"save_directory"`
	Format        string `json:"format"`
	JPGQuality    int    `json:"jpg_quality"`

	// Loaded from an optional .env next to the executable, not persisted.
	RegionHotkey      string `json:"-"`
	FullscreenHotkey  string `json:"-"`
	WindowHotkey      string `json:"-"`
	EnableFileLogging bool   `json:"-"`

	path string
}

// Defaults returns the configuration used when no config file exists.
func Defaults() *Config {
	return &Config{
		SaveDirectory:    defaultSaveDirectory(),
		Format:           FormatPNG,
		JPGQuality:       95,
		RegionHotkey:     DefaultRegionHotkey,
		FullscreenHotkey: DefaultFullscreenHotkey,
		WindowHotkey:     DefaultWindowHotkey,
	}
}

func defaultSaveDirectory() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Desktop")
}

// Path returns the config file location: config.json in the executable's
// directory, falling back to the bare file name in the working directory.
func Path() string {
	execPath, err := os.Executable()
	if err != nil {
		return configFileName
	}
	return filepath.Join(filepath.Dir(execPath), configFileName)
}

// Load reads the config file at the default path and applies .env overrides.
// A missing or malformed file yields defaults rather than an error.
func Load() *Config {
	cfg := LoadFrom(Path())
	applyEnvOverrides(cfg)
	return cfg
}

// LoadFrom reads a config file from an explicit path, merging file contents
// over defaults so missing keys keep their default values.
func LoadFrom(path string) *Config {
	cfg := Defaults()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		// Malformed JSON is not fatal; the tool starts with defaults.
		fresh := Defaults()
		fresh.path = path
		return fresh
	}
	cfg.Normalize()
	return cfg
}

// Normalize clamps jpg_quality to [1,100] and canonicalizes the format.
// Values outside the quality range are clamped, not rejected.
func (c *Config) Normalize() {
	if c.JPGQuality < 1 {
		c.JPGQuality = 1
	}
	if c.JPGQuality > 100 {
		c.JPGQuality = 100
	}
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case FormatJPG, "jpeg":
		c.Format = FormatJPG
	default:
		c.Format = FormatPNG
	}
	if strings.TrimSpace(c.SaveDirectory) == "" {
		c.SaveDirectory = defaultSaveDirectory()
	}
}

// Extension returns the file extension for the configured format.
func (c *Config) Extension() string {
	if c.Format == FormatJPG {
		return FormatJPG
	}
	return FormatPNG
}

// Save persists the JSON portion of the config back to its file.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = Path()
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// applyEnvOverrides loads an optional .env beside the executable and picks
// up hotkey and logging settings from the environment.
func applyEnvOverrides(cfg *Config) {
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}
	cfg.RegionHotkey = getEnvWithDefault("HOTKEY_REGION", cfg.RegionHotkey)
	cfg.FullscreenHotkey = getEnvWithDefault("HOTKEY_FULLSCREEN", cfg.FullscreenHotkey)
	cfg.WindowHotkey = getEnvWithDefault("HOTKEY_WINDOW", cfg.WindowHotkey)
	cfg.EnableFileLogging = strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true"
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}
	if alt := os.Getenv("PORTABLE_SCREENSHOT_ENV"); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
