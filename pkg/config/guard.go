package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDGuard is the identifier for the documentation guard section
	SectionIDGuard = "guard"
)

var (
	defaultDeniedPatterns = []string{
		"**.md",
		"**.mdx",
		"**.rst",
	}
	defaultAllowedPatterns = []string{
		"README.md",
		"**/README.md",
		"CLAUDE.md",
		"**/CLAUDE.md",
		"AGENTS.md",
		"**/AGENTS.md",
		"CHANGELOG.md",
		".sessionkeeper/**",
	}
)

// GuardSection configures which documentation files the agent may create.
type GuardSection struct {
	Enabled         bool
	DeniedPatterns  []string
	AllowedPatterns []string
	mu              sync.RWMutex
}

// NewGuardSection creates the section with defaults.
func NewGuardSection() *GuardSection {
	s := &GuardSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *GuardSection) ID() string {
	return SectionIDGuard
}

// Title returns the section title.
func (s *GuardSection) Title() string {
	return "Documentation Guard"
}

// Description returns the section description.
func (s *GuardSection) Description() string {
	return "Glob patterns (relative to the workspace) for documentation writes to deny or allow."
}

// Data returns the current configuration data.
func (s *GuardSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"enabled":          s.Enabled,
		"denied_patterns":  stringsToAny(s.DeniedPatterns),
		"allowed_patterns": stringsToAny(s.AllowedPatterns),
	}
}

// SetData updates the configuration from the provided data.
func (s *GuardSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "enabled":
			enabled, ok := value.(bool)
			if !ok {
				return fmt.Errorf("invalid value type for enabled: expected bool, got %T", value)
			}
			s.Enabled = enabled
		case "denied_patterns":
			patterns, err := toStrings(value)
			if err != nil {
				return fmt.Errorf("invalid value for denied_patterns: %w", err)
			}
			s.DeniedPatterns = patterns
		case "allowed_patterns":
			patterns, err := toStrings(value)
			if err != nil {
				return fmt.Errorf("invalid value for allowed_patterns: %w", err)
			}
			s.AllowedPatterns = patterns
		default:
			continue
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *GuardSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range append(append([]string{}, s.DeniedPatterns...), s.AllowedPatterns...) {
		if p == "" {
			return fmt.Errorf("guard patterns cannot be empty")
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *GuardSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Enabled = true
	s.DeniedPatterns = append([]string(nil), defaultDeniedPatterns...)
	s.AllowedPatterns = append([]string(nil), defaultAllowedPatterns...)
}

// Rules returns a snapshot of the guard settings.
func (s *GuardSection) Rules() (enabled bool, denied, allowed []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Enabled,
		append([]string(nil), s.DeniedPatterns...),
		append([]string(nil), s.AllowedPatterns...)
}
