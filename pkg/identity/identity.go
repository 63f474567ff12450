// Package identity manages the persona, user profile and project memory
// documents that describe "who am I" to the agent at session start.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/sessionkeeper/pkg/workspace"
)

const starterPersona = `# Soul

Who you are across every project. Edit freely; this file is never overwritten.

## Principles

- Be direct and concrete.
- Leave the workspace better documented than you found it.

## Working Style

[How you prefer to approach problems]
`

const starterUser = `# User

What you know about the person you work with.

## Preferences

[Languages, tools, communication style]

## Background

[Role, expertise, current goals]
`

const starterMemory = `# Project Memory

Durable facts about this project that should survive every session.

## Architecture

[Key components and how they fit together]

## Conventions

[Naming, testing, review expectations]

## Decisions

[Choices made and not to be relitigated]
`

// Documents holds the identity documents read for the start context.
// A field is empty when its file is missing or unreadable.
type Documents struct {
	Persona string
	User    string
	Memory  string
}

// EnsureSetup creates the directory scaffold and writes each starter
// document only if it does not already exist. Every item is attempted even
// when an earlier one fails; the joined error reports all failures. Empty
// paths (no workspace root or no home directory) are skipped.
func EnsureSetup(p workspace.Paths) error {
	var errs []error

	if p.HasWorkspace() {
		for _, dir := range []string{p.SessionsDir, p.ConfigDir, p.MemoryDir} {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				errs = append(errs, fmt.Errorf("identity: create %s: %w", dir, err))
			}
		}
	}

	starters := []struct {
		path    string
		content string
	}{
		{p.MemoryFile, starterMemory},
		{p.PersonaFile, starterPersona},
		{p.UserFile, starterUser},
	}
	for _, s := range starters {
		if s.path == "" {
			continue
		}
		if err := writeIfAbsent(s.path, s.content); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// writeIfAbsent creates path with content unless something is already
// there. O_EXCL guarantees an existing file is never overwritten.
func writeIfAbsent(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("identity: create parent of %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("identity: create %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("identity: write %s: %w", path, err)
	}
	return f.Close()
}

// Load reads the three identity documents. Missing files yield empty
// strings.
func Load(p workspace.Paths) Documents {
	return Documents{
		Persona: readOptional(p.PersonaFile),
		User:    readOptional(p.UserFile),
		Memory:  readOptional(p.MemoryFile),
	}
}

func readOptional(path string) string {
	b, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(b)
}
