package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// DefaultModules are loaded even when the settings file does not mention
// them.
var DefaultModules = []string{"trigger.http"}

// Resolve returns the module IDs to load: DefaultModules plus every
// configured module, sorted and deduplicated.
func Resolve(cfg *Config) []string {
	ids := slices.Clone(DefaultModules)
	for id := range cfg.Modules {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

// ErrNotFound is returned by FindPath when no settings file exists.
var ErrNotFound = errors.New("config: no settings file found")

// FileName is the settings file name looked up by FindPath.
const FileName = "settings.yaml"

// UserPath returns $XDG_CONFIG_HOME/blab-bot/settings.yaml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func UserPath() (string, error) {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, "blab-bot", FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", "blab-bot", FileName), nil
}

// FindPath returns the settings file to use: explicit when non-empty, else
// the first existing file among UserPath() and ./settings.yaml.
func FindPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	var candidates []string
	if p, err := UserPath(); err == nil {
		candidates = append(candidates, p)
	}
	candidates = append(candidates, FileName)

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w (searched: %v)", ErrNotFound, candidates)
}
