// Package logging configures the process-wide zerolog logger.
//
// The terminal UI owns stdout, so logs normally go to a file under the XDG
// state directory. Every run carries a short instance id so lines from
// separate sessions can be told apart in the same file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error or disabled.
	Level string
	// Format is json or console.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

var (
	mu         sync.RWMutex
	log        = zerolog.New(os.Stderr).With().Timestamp().Logger()
	instanceID = uuid.New().String()[:8]
)

// Init installs the global logger.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	output := cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05"}
	}
	log = zerolog.New(output).With().Timestamp().Str("instance", instanceID).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// WithComponent returns the global logger tagged with a component name.
func WithComponent(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// InstanceID identifies this process in the logs.
func InstanceID() string {
	return instanceID
}

// DefaultFile is where logs go when no file is configured.
func DefaultFile() string {
	return filepath.Join(xdg.StateHome, "maruska", "maruska.log")
}

// OpenFile opens path for appending, creating parent directories. "-"
// selects stderr and an empty path selects DefaultFile.
func OpenFile(path string) (io.WriteCloser, error) {
	switch strings.TrimSpace(path) {
	case "-":
		return nopCloser{os.Stderr}, nil
	case "":
		path = DefaultFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
