package config

import (
	"fmt"
	"sync"
)

const (
	// SectionIDMilestones is the identifier for the milestone section
	SectionIDMilestones = "milestones"

	defaultMilestoneInterval = 50
)

// MilestonesSection controls how often checkpoint prompts fire.
type MilestonesSection struct {
	Interval int
	mu       sync.RWMutex
}

// NewMilestonesSection creates the section with defaults.
func NewMilestonesSection() *MilestonesSection {
	return &MilestonesSection{Interval: defaultMilestoneInterval}
}

// ID returns the section identifier.
func (s *MilestonesSection) ID() string {
	return SectionIDMilestones
}

// Title returns the section title.
func (s *MilestonesSection) Title() string {
	return "Milestones"
}

// Description returns the section description.
func (s *MilestonesSection) Description() string {
	return "Number of tool calls between checkpoint reminders."
}

// Data returns the current configuration data.
func (s *MilestonesSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{"interval": s.Interval}
}

// SetData updates the configuration from the provided data.
func (s *MilestonesSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		switch key {
		case "interval":
			n, err := toInt(value)
			if err != nil {
				return fmt.Errorf("invalid value for interval: %w", err)
			}
			s.Interval = n
		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *MilestonesSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Interval < 1 {
		return fmt.Errorf("interval must be at least 1, got %d", s.Interval)
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *MilestonesSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Interval = defaultMilestoneInterval
}

// GetInterval returns the milestone interval.
func (s *MilestonesSection) GetInterval() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Interval
}
