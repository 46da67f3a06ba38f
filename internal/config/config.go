package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultHost is the queue server's public comet endpoint.
const DefaultHost = "http://marietje-noord.marie-curie.nl/api"

const envPrefix = "MARUSKA_"

// Config is maruska's runtime configuration.
type Config struct {
	Host           string        `koanf:"host" validate:"required,url,startswith=http"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
	RetryAttempts  int           `koanf:"retry_attempts" validate:"min=1"`
	PollRate       float64       `koanf:"poll_rate" validate:"gt=0"`
	BufferSize     int           `koanf:"buffer_size" validate:"min=1"`
	MetricsAddr    string        `koanf:"metrics_addr" validate:"omitempty,hostname_port"`
	Log            LogConfig     `koanf:"log"`
}

// LogConfig selects where and how much to log.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	File   string `koanf:"file"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:           DefaultHost,
		RequestTimeout: 90 * time.Second,
		RetryAttempts:  5,
		PollRate:       4,
		BufferSize:     5000,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultPath returns the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "maruska", "config.toml")
}

// Load layers defaults, the TOML file at path (DefaultPath when empty) and
// the environment, then validates the result.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if _, err := os.Stat(resolved); err == nil {
		if err := k.Load(file.Provider(resolved), TOMLParser()); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("stat config: %w", err)
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps MARUSKA_LOG_LEVEL to log.level and MARUSKA_HOST to host.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, envPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

func (c *Config) normalize() {
	c.Host = strings.TrimSpace(c.Host)
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if f := strings.TrimSpace(c.Log.File); f != "" && f != "-" {
		c.Log.File = mustExpand(f)
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPath(), nil
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
