package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds everything tote needs to reach the store and log locally.
type Config struct {
	APIBase      string
	Token        string
	PageSize     int
	PollInterval time.Duration
	LogFile      string
	LogLevel     string
	LogFormat    string
}

// TokenEnv overrides the configured token when set.
const TokenEnv = "TOTE_TOKEN"

// MaxPageSize caps the orders page size.
const MaxPageSize = 50

const (
	defaultConfigPath   = "~/.config/tote/config.toml"
	defaultAPIBase      = "http://127.0.0.1:5000/api"
	defaultLogFile      = "~/.local/state/tote/tote.log"
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultPageSize     = 10
	defaultPollInterval = 15 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:      defaultAPIBase,
		PageSize:     defaultPageSize,
		PollInterval: defaultPollInterval,
		LogFile:      mustExpand(defaultLogFile),
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the tote config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
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
		APIBase     string `toml:"api_base"`
		Token       string `toml:"token"`
		PageSize    int    `toml:"page_size"`
		PollSeconds int    `toml:"poll_seconds"`
		LogFile     string `toml:"log_file"`
		LogLevel    string `toml:"log_level"`
		LogFormat   string `toml:"log_format"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	cfg.Token = strings.TrimSpace(raw.Token)
	if raw.PageSize > 0 {
		cfg.PageSize = min(raw.PageSize, MaxPageSize)
	}
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		switch v {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = v
		default:
			return Config{}, fmt.Errorf("parse config: unknown log_level %q", raw.LogLevel)
		}
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogFormat)); v != "" {
		switch v {
		case "json", "console":
			cfg.LogFormat = v
		default:
			return Config{}, fmt.Errorf("parse config: unknown log_format %q", raw.LogFormat)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		cfg.Token = token
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
