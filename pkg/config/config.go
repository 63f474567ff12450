// Package config loads sessionkeeper settings from ~/.sessionkeeper/config.yaml.
// Settings are grouped into sections, each with its own defaults and
// validation, so a bad value in one section never disturbs the others.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/entrhq/sessionkeeper/pkg/workspace"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "SESSIONKEEPER_CONFIG"

// Config is the loaded configuration for one hook invocation.
type Config struct {
	Manager    *Manager
	Milestones *MilestonesSection
	Sessions   *SessionsSection
	Guard      *GuardSection
}

// Defaults returns a configuration holding only default values, with no
// backing file.
func Defaults() *Config {
	return &Config{
		Milestones: NewMilestonesSection(),
		Sessions:   NewSessionsSection(),
		Guard:      NewGuardSection(),
	}
}

// DefaultPath resolves the config file: $SESSIONKEEPER_CONFIG, else
// <home>/.sessionkeeper/config.yaml.
func DefaultPath(homeDir string) string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(homeDir, workspace.StateDirName, "config.yaml")
}

// Load reads the config file at path. It always returns a usable Config:
// on error the affected sections hold defaults and the error says why.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	store, err := NewFileStore(path)
	if err != nil {
		return cfg, err
	}

	manager := NewManager(store)
	for _, section := range []Section{cfg.Milestones, cfg.Sessions, cfg.Guard} {
		if err := manager.RegisterSection(section); err != nil {
			return cfg, err
		}
	}
	cfg.Manager = manager

	if err := manager.LoadAll(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("expected integer, got %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

func toStrings(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("item %d: expected string, got %T", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected list of strings, got %T", value)
	}
}

func stringsToAny(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
