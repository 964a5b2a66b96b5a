package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths locates the config file and the data dir (op log, pass history,
// keys, logs).
type Paths struct {
	ConfigPath string
	BaseDir    string
}

// DefaultPaths resolves Paths from the environment, in order:
//   - SFM_CONFIG_PATH, then $XDG_CONFIG_HOME/sfm.toml, then ~/.config/sfm.toml
//   - SFM_HOME, then $XDG_DATA_HOME/sfm, then ~/.local/share/sfm
func DefaultPaths() (Paths, error) {
	configPath, err := envPath("SFM_CONFIG_PATH", "XDG_CONFIG_HOME", "sfm.toml", ".config")
	if err != nil {
		return Paths{}, err
	}
	baseDir, err := envPath("SFM_HOME", "XDG_DATA_HOME", "sfm", ".local", "share")
	if err != nil {
		return Paths{}, err
	}
	return Paths{ConfigPath: configPath, BaseDir: baseDir}, nil
}

// envPath returns $direct, else $xdg/name, else ~/<homeRel...>/name.
func envPath(direct, xdg, name string, homeRel ...string) (string, error) {
	if p := os.Getenv(direct); p != "" {
		return p, nil
	}
	if dir := os.Getenv(xdg); dir != "" {
		return filepath.Join(dir, name), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	parts := append([]string{home}, homeRel...)
	return filepath.Join(append(parts, name)...), nil
}
