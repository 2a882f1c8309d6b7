// Package persist stores the small set of UI preferences spec.md §6
// says survive a restart: theme, last-used sort field/direction, and the
// show-all override. Grounded on siftail's internal/persist/settings.go
// (same XDG/AppData path resolution and JSON round-trip), generalized
// from log-viewer settings to dtop's.
package persist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/siftail/dtop/internal/core"
)

// Settings is the persisted subset of UI state.
type Settings struct {
	Theme         string `json:"theme"`
	SortField     string `json:"sortField"`
	SortDirection string `json:"sortDirection"`
	ShowAll       bool   `json:"showAll"`
}

// Store handles loading and saving Settings to disk.
type Store struct {
	path string
}

// NewStore returns a Store bound to the platform config path.
func NewStore() (*Store, error) {
	p, err := settingsPath()
	if err != nil {
		return nil, err
	}
	return &Store{path: p}, nil
}

func settingsPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", os.ErrNotExist
		}
		configDir = filepath.Join(appData, "dtop")
	default:
		xdg := os.Getenv("XDG_CONFIG_HOME")
		if xdg == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			xdg = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(xdg, "dtop")
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, "settings.json"), nil
}

// Load reads settings from disk, returning defaults if the file doesn't exist.
func (st *Store) Load() (Settings, error) {
	s := Settings{Theme: "dark", SortField: core.SortUptime.String(), SortDirection: "desc"}

	if _, err := os.Stat(st.path); os.IsNotExist(err) {
		return s, nil
	}
	data, err := os.ReadFile(st.path)
	if err != nil {
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, err
	}
	if s.Theme == "" {
		s.Theme = "dark"
	}
	return s, nil
}

// Save writes settings to disk.
func (st *Store) Save(s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(st.path, data, 0o644)
}
