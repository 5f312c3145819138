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

// Config captures everything gradewatch needs to reach the backend.
type Config struct {
	APIURL       string
	APIToken     string
	EscolaID     string
	PollInterval time.Duration
	ListRefresh  time.Duration
	LogLevel     string
	LogFormat    string
	LogFile      string
}

const (
	defaultConfigPath   = "~/.config/gradewatch/config.toml"
	defaultLogFile      = "~/.local/state/gradewatch/gradewatch.log"
	defaultAPIURL       = "http://127.0.0.1:8080"
	defaultPollInterval = 30 * time.Second
	defaultListRefresh  = 60 * time.Second
	defaultLogLevel     = "info"
	defaultLogFormat    = "text"

	tokenEnv = "GRADEWATCH_API_TOKEN"
)

// Load locates and parses the gradewatch config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
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
		APIURL      string `toml:"api_url"`
		APIToken    string `toml:"api_token"`
		EscolaID    string `toml:"escola_id"`
		PollSeconds int    `toml:"poll_interval_seconds"`
		ListSeconds int    `toml:"list_refresh_seconds"`
		LogLevel    string `toml:"log_level"`
		LogFormat   string `toml:"log_format"`
		LogFile     string `toml:"log_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	cfg.APIToken = strings.TrimSpace(raw.APIToken)
	cfg.EscolaID = strings.TrimSpace(raw.EscolaID)
	if raw.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(raw.PollSeconds) * time.Second
	}
	if raw.ListSeconds > 0 {
		cfg.ListRefresh = time.Duration(raw.ListSeconds) * time.Second
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogFormat)); v != "" {
		cfg.LogFormat = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return Config{}, fmt.Errorf("parse config: unknown log_format %q", cfg.LogFormat)
	}

	cfg.applyEnv()
	return cfg, nil
}

// Validate reports settings required to talk to the backend.
func (c Config) Validate() error {
	if strings.TrimSpace(c.EscolaID) == "" {
		return fmt.Errorf("escola_id is not configured")
	}
	return nil
}

func defaults() Config {
	return Config{
		APIURL:       defaultAPIURL,
		PollInterval: defaultPollInterval,
		ListRefresh:  defaultListRefresh,
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
		LogFile:      mustExpand(defaultLogFile),
	}
}

func (c *Config) applyEnv() {
	if token := strings.TrimSpace(os.Getenv(tokenEnv)); token != "" {
		c.APIToken = token
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

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
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
