package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/coloringbook/internal/colorbook"
)

// Config holds the settings the client needs at startup.
type Config struct {
	ServerURL string
	AppToken  string
	LogFile   string
	LogLevel  string
	PrintDir  string
	Workers   int
}

const (
	defaultConfigPath = "~/.config/coloringbook/config.toml"
	defaultLogFile    = "~/.local/share/coloringbook/coloringbook.log"
	defaultLogLevel   = "info"
	defaultPrintDir   = "~/.local/share/coloringbook/prints"
	defaultWorkers    = 4

	// DotEnvFile is read from the working directory when present.
	DotEnvFile = ".env"
)

// Environment variables that override the config file.
const (
	EnvServerURL = "COLORINGBOOK_SERVER_URL"
	EnvAppToken  = "COLORINGBOOK_APP_TOKEN"
	EnvLogFile   = "COLORINGBOOK_LOG_FILE"
	EnvLogLevel  = "COLORINGBOOK_LOG_LEVEL"
	EnvPrintDir  = "COLORINGBOOK_PRINT_DIR"
	EnvWorkers   = "COLORINGBOOK_WORKERS"
)

// Default returns the built-in configuration with paths expanded.
func Default() Config {
	return Config{
		ServerURL: colorbook.DefaultServerURL,
		LogFile:   mustExpand(defaultLogFile),
		LogLevel:  defaultLogLevel,
		PrintDir:  mustExpand(defaultPrintDir),
		Workers:   defaultWorkers,
	}
}

// Load reads the TOML config at path (or the default location), then applies
// overrides from DotEnvFile and the process environment. A missing config
// file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return Config{}, err
	}

	env, err := readDotEnv(DotEnvFile)
	if err != nil {
		return Config{}, err
	}
	cfg.applyEnv(env)
	cfg.normalize()
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func loadFile(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServerURL string `toml:"server_url"`
		AppToken  string `toml:"app_token"`
		LogFile   string `toml:"log_file"`
		LogLevel  string `toml:"log_level"`
		PrintDir  string `toml:"print_dir"`
		Workers   int    `toml:"workers"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	setIfPresent(&cfg.ServerURL, raw.ServerURL)
	setIfPresent(&cfg.AppToken, raw.AppToken)
	setIfPresent(&cfg.LogFile, raw.LogFile)
	setIfPresent(&cfg.LogLevel, raw.LogLevel)
	setIfPresent(&cfg.PrintDir, raw.PrintDir)
	if raw.Workers > 0 {
		cfg.Workers = raw.Workers
	}
	return cfg, nil
}

// readDotEnv parses a .env file without touching the process environment.
func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}

// applyEnv lets the process environment win over values from the .env file.
func (c *Config) applyEnv(dotenv map[string]string) {
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}
	setIfPresent(&c.ServerURL, lookup(EnvServerURL))
	setIfPresent(&c.AppToken, lookup(EnvAppToken))
	setIfPresent(&c.LogFile, lookup(EnvLogFile))
	setIfPresent(&c.LogLevel, lookup(EnvLogLevel))
	setIfPresent(&c.PrintDir, lookup(EnvPrintDir))
	if n, err := strconv.Atoi(strings.TrimSpace(lookup(EnvWorkers))); err == nil && n > 0 {
		c.Workers = n
	}
}

func (c *Config) normalize() {
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	if c.ServerURL == "" {
		c.ServerURL = colorbook.DefaultServerURL
	}
	c.LogFile = mustExpand(c.LogFile)
	c.PrintDir = mustExpand(c.PrintDir)
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
}

func setIfPresent(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
