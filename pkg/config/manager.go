package config

import (
	"fmt"
	"sync"
)

// Section is one independently validated group of settings.
type Section interface {
	// ID returns the key the section is stored under
	ID() string

	// Title returns a human-readable name
	Title() string

	// Description explains what the section controls
	Description() string

	// Data returns the section as a plain map for persistence
	Data() map[string]interface{}

	// SetData applies persisted values; unknown keys are ignored
	SetData(data map[string]interface{}) error

	// Validate checks the current values
	Validate() error

	// Reset restores defaults
	Reset()
}

// Manager owns the registered sections and moves them to and from a Store.
type Manager struct {
	store    Store
	sections []Section
	byID     map[string]Section
	mu       sync.RWMutex
}

// NewManager creates a manager backed by store.
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		byID:  make(map[string]Section),
	}
}

// RegisterSection adds a section. IDs must be unique.
func (m *Manager) RegisterSection(section Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[section.ID()]; exists {
		return fmt.Errorf("section %q already registered", section.ID())
	}
	m.sections = append(m.sections, section)
	m.byID[section.ID()] = section
	return nil
}

// GetSection returns the section registered under id.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byID[id]
	return s, ok
}

// GetSections returns sections in registration order.
func (m *Manager) GetSections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Section, len(m.sections))
	copy(out, m.sections)
	return out
}

// LoadAll reads the store and applies each section's data. A section whose
// data fails to apply or validate is reset to defaults, and the first such
// error is returned after every section has been processed.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var firstErr error
	for _, section := range m.sections {
		data, err := m.store.GetSection(section.ID())
		if err == nil {
			err = section.SetData(data)
		}
		if err == nil {
			err = section.Validate()
		}
		if err != nil {
			section.Reset()
			if firstErr == nil {
				firstErr = fmt.Errorf("section %s: %w", section.ID(), err)
			}
		}
	}
	return firstErr
}

// SaveAll validates every section and writes them to the store.
func (m *Manager) SaveAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, section := range m.sections {
		if err := section.Validate(); err != nil {
			return fmt.Errorf("section %s: %w", section.ID(), err)
		}
		if err := m.store.SetSection(section.ID(), section.Data()); err != nil {
			return err
		}
	}
	return m.store.Save()
}

// ResetAll restores every section to defaults.
func (m *Manager) ResetAll() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, section := range m.sections {
		section.Reset()
	}
}
