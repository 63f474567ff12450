package config

import (
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIDSessions is the identifier for the session registry section
	SectionIDSessions = "sessions"

	defaultRecentDays    = 7
	defaultRecentLimit   = 3
	defaultSlugMaxLength = 50
)

// SessionsSection controls cross-session continuity and record naming.
type SessionsSection struct {
	RecentDays    int // window for "recent sessions" in the start context
	RecentLimit   int // maximum recent sessions surfaced
	SlugMaxLength int // maximum filename slug length
	mu            sync.RWMutex
}

// NewSessionsSection creates the section with defaults.
func NewSessionsSection() *SessionsSection {
	return &SessionsSection{
		RecentDays:    defaultRecentDays,
		RecentLimit:   defaultRecentLimit,
		SlugMaxLength: defaultSlugMaxLength,
	}
}

// ID returns the section identifier.
func (s *SessionsSection) ID() string {
	return SectionIDSessions
}

// Title returns the section title.
func (s *SessionsSection) Title() string {
	return "Sessions"
}

// Description returns the section description.
func (s *SessionsSection) Description() string {
	return "Recent-session window shown at start and slug length for renamed records."
}

// Data returns the current configuration data.
func (s *SessionsSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"recent_days":     s.RecentDays,
		"recent_limit":    s.RecentLimit,
		"slug_max_length": s.SlugMaxLength,
	}
}

// SetData updates the configuration from the provided data.
func (s *SessionsSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var target *int
		switch key {
		case "recent_days":
			target = &s.RecentDays
		case "recent_limit":
			target = &s.RecentLimit
		case "slug_max_length":
			target = &s.SlugMaxLength
		default:
			continue
		}
		n, err := toInt(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		*target = n
	}
	return nil
}

// Validate validates the current configuration.
func (s *SessionsSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.RecentDays < 0 {
		return fmt.Errorf("recent_days cannot be negative")
	}
	if s.RecentLimit < 0 {
		return fmt.Errorf("recent_limit cannot be negative")
	}
	if s.SlugMaxLength < 8 || s.SlugMaxLength > 120 {
		return fmt.Errorf("slug_max_length must be between 8 and 120, got %d", s.SlugMaxLength)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *SessionsSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RecentDays = defaultRecentDays
	s.RecentLimit = defaultRecentLimit
	s.SlugMaxLength = defaultSlugMaxLength
}

// RecentWindow returns the recency window as a duration.
func (s *SessionsSection) RecentWindow() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.RecentDays) * 24 * time.Hour
}

// GetRecentLimit returns the cap on recent sessions.
func (s *SessionsSection) GetRecentLimit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RecentLimit
}

// GetSlugMaxLength returns the slug cap.
func (s *SessionsSection) GetSlugMaxLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.SlugMaxLength
}
