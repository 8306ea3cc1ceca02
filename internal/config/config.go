// Package config resolves runtime settings from a TOML file, an optional
// .env file and the environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/csheth/cardstudio/internal/api"
	"github.com/csheth/cardstudio/internal/export"
)

const appName = "cardstudio"

// Config is the effective application configuration.
type Config struct {
	APIURL       string `toml:"api_url,omitempty"`
	APIKey       string `toml:"api_key,omitempty"`
	Range        string `toml:"range"`
	FilePrefix   string `toml:"file_prefix"`
	OutputDir    string `toml:"output_dir"`
	FontPath     string `toml:"font_path,omitempty"`
	StaleMinutes int    `toml:"stale_minutes"`
	CacheDir     string `toml:"cache_dir,omitempty"`
	HistoryPath  string `toml:"history_path,omitempty"`
}

// Options select where Load reads from. Empty paths are skipped.
type Options struct {
	ConfigPath string
	EnvFile    string
	Lookup     func(string) (string, bool)
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Range:        api.RangeNone.String(),
		FilePrefix:   export.DefaultPrefix,
		OutputDir:    ".",
		StaleMinutes: 5,
		HistoryPath:  filepath.Join(StateDir(), "history.json"),
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or the default path.
func GetXDGConfigHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// GetXDGStateHome returns XDG_STATE_HOME or the default path.
func GetXDGStateHome() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".local", "state")
}

// FilePath returns the path of the config file.
func FilePath() string {
	return filepath.Join(GetXDGConfigHome(), appName, "config.toml")
}

// StateDir holds the log file and export history.
func StateDir() string {
	return filepath.Join(GetXDGStateHome(), appName)
}

// Load reads the config file, .env in the working directory and the
// environment.
func Load() (Config, error) {
	return LoadWith(Options{ConfigPath: FilePath(), EnvFile: ".env"})
}

// LoadWith is Load with explicit sources.
func LoadWith(opts Options) (Config, error) {
	cfg := Default()
	if opts.ConfigPath != "" {
		if _, err := toml.DecodeFile(opts.ConfigPath, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("error decoding config file: %w", err)
		}
	}

	dotenv := map[string]string{}
	if opts.EnvFile != "" {
		values, err := godotenv.Read(opts.EnvFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("error reading %s: %w", opts.EnvFile, err)
		}
		if values != nil {
			dotenv = values
		}
	}
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	// Process environment wins over .env, as godotenv.Load would leave it.
	getEnv := func(keys ...string) (string, bool) {
		for _, key := range keys {
			if v, ok := lookup(key); ok && v != "" {
				return v, true
			}
		}
		for _, key := range keys {
			if v, ok := dotenv[key]; ok && v != "" {
				return v, true
			}
		}
		return "", false
	}

	if v, ok := getEnv("CARDSTUDIO_API_URL", "NEXT_PUBLIC_API_URL"); ok {
		cfg.APIURL = v
	}
	if v, ok := getEnv("CARDSTUDIO_API_KEY", "NEXT_PUBLIC_API_KEY"); ok {
		cfg.APIKey = v
	}
	if v, ok := getEnv("CARDSTUDIO_RANGE"); ok {
		cfg.Range = v
	}
	if v, ok := getEnv("CARDSTUDIO_FILE_PREFIX"); ok {
		cfg.FilePrefix = v
	}
	if v, ok := getEnv("CARDSTUDIO_OUTPUT_DIR"); ok {
		cfg.OutputDir = v
	}
	if v, ok := getEnv("CARDSTUDIO_FONT"); ok {
		cfg.FontPath = v
	}
	if v, ok := getEnv("CARDSTUDIO_CACHE_DIR"); ok {
		cfg.CacheDir = v
	}
	if v, ok := getEnv("CARDSTUDIO_HISTORY"); ok {
		cfg.HistoryPath = v
	}
	if v, ok := getEnv("CARDSTUDIO_STALE_MINUTES"); ok {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid CARDSTUDIO_STALE_MINUTES %q: %w", v, err)
		}
		cfg.StaleMinutes = minutes
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if _, err := cfg.ParsedRange(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParsedRange returns the configured date range.
func (c Config) ParsedRange() (api.Range, error) {
	return api.ParseRange(c.Range)
}

// StaleTime returns the query freshness window.
func (c Config) StaleTime() time.Duration {
	if c.StaleMinutes <= 0 {
		return 0
	}
	return time.Duration(c.StaleMinutes) * time.Minute
}

// Configured reports whether both API settings are present.
func (c Config) Configured() bool {
	return c.APIURL != "" && c.APIKey != ""
}

// MaskedKey returns the API key with all but the last four characters hidden.
func (c Config) MaskedKey() string {
	if c.APIKey == "" {
		return ""
	}
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

// WriteDefault creates a config file at path with the built-in settings. An
// existing file is left untouched.
func WriteDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("error creating config directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return false, fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	cfg.HistoryPath = ""
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return false, fmt.Errorf("error encoding config: %w", err)
	}
	return true, nil
}
