// Package prefs persists per-user maruska preferences: the UI theme, the last
// username and the access key handed out by the server after a password login.
// Preferences live in $XDG_CONFIG_HOME/maruska/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences.
type Prefs struct {
	Theme     string `toml:"theme"`
	Username  string `toml:"username,omitempty"`
	AccessKey string `toml:"access_key,omitempty"`
}

const defaultTheme = "Dracula"

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "maruska", "prefs.toml")
}

// CanLogin reports whether the stored credentials allow an access-key login.
func (p Prefs) CanLogin() bool {
	return strings.TrimSpace(p.Username) != "" && strings.TrimSpace(p.AccessKey) != ""
}

// Load reads preferences from path. A missing or unreadable file yields the
// defaults; preferences never block startup.
func Load(path string) Prefs {
	prefs := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return prefs
	}
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}
	}

	prefs.Username = strings.TrimSpace(prefs.Username)
	prefs.AccessKey = strings.TrimSpace(prefs.AccessKey)
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	return prefs
}

// Save writes preferences to path, creating directories as needed. The file
// holds an access key, so it is only readable by the owner.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o700); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, data, 0o600); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPath(), nil
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
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
