package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %#v, want defaults %#v", cfg, Default())
	}
	if cfg.Host != DefaultHost {
		t.Fatalf("Host = %q, want %q", cfg.Host, DefaultHost)
	}
}

func TestLoad_ParsesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
host = "  https://queue.example.org/api  "
request_timeout = "45s"
retry_attempts = 3
poll_rate = 2.5
buffer_size = 100
metrics_addr = "127.0.0.1:9464"

[log]
level = "DEBUG"
format = "console"
file = "~/logs/maruska.log"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "https://queue.example.org/api" {
		t.Fatalf("Host = %q", cfg.Host)
	}
	if cfg.RequestTimeout != 45*time.Second || cfg.RetryAttempts != 3 || cfg.PollRate != 2.5 || cfg.BufferSize != 100 {
		t.Fatalf("cfg = %#v", cfg)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Fatalf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Fatalf("Log = %#v", cfg.Log)
	}
	if !strings.HasPrefix(cfg.Log.File, home) {
		t.Fatalf("Log.File = %q, want it under HOME %q", cfg.Log.File, home)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
host = "http://file.example.org/api"

[log]
level = "warn"
`)
	t.Setenv("MARUSKA_HOST", "http://env.example.org/api")
	t.Setenv("MARUSKA_LOG_LEVEL", "trace")
	t.Setenv("MARUSKA_RETRY_ATTEMPTS", "9")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Host != "http://env.example.org/api" {
		t.Fatalf("Host = %q, want env override", cfg.Host)
	}
	if cfg.Log.Level != "trace" {
		t.Fatalf("Log.Level = %q, want trace", cfg.Log.Level)
	}
	if cfg.RetryAttempts != 9 {
		t.Fatalf("RetryAttempts = %d, want 9", cfg.RetryAttempts)
	}
}

func TestLoad_InvalidTOMLFails(t *testing.T) {
	path := writeConfig(t, `host = [`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
	}
}

func TestLoad_ValidationFails(t *testing.T) {
	path := writeConfig(t, `
host = "ftp://queue.example.org"
retry_attempts = 0
`)
	_, err := Load(path)
	if err == nil {
		t.Fatalf("Load returned nil error, want validation error")
	}
	for _, want := range []string{"Host", "RetryAttempts"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err.Error(), want)
		}
	}
}

func TestValidate_LogSettings(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate accepted log format xml")
	}
	cfg = Default()
	cfg.MetricsAddr = "not an address"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate accepted metrics address %q", cfg.MetricsAddr)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"MARUSKA_HOST":            "host",
		"MARUSKA_REQUEST_TIMEOUT": "request_timeout",
		"MARUSKA_LOG_FORMAT":      "log.format",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "a/b"); got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
