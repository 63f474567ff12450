// Package workspace resolves the on-disk layout used by every hook.
// Paths are computed fresh per invocation from the workspace root and the
// user's home directory; nothing here is cached between processes.
package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// StateDirName is the directory created under both the workspace root
	// and the user's home directory.
	StateDirName = ".sessionkeeper"

	// SessionFileExt is the extension of session record files.
	SessionFileExt = ".tmp"
)

// Paths holds every location the hooks read from or write to.
type Paths struct {
	WorkspaceRoot string // Project root the host reported
	StateDir      string // <workspace>/.sessionkeeper
	SessionsDir   string // <workspace>/.sessionkeeper/sessions
	ConfigDir     string // <workspace>/.sessionkeeper/sessions/config (counters, flags)
	MemoryDir     string // <workspace>/.sessionkeeper/memory
	MemoryFile    string // project memory document

	UserDir     string // ~/.sessionkeeper
	PersonaFile string // ~/.sessionkeeper/persona/SOUL.md
	UserFile    string // ~/.sessionkeeper/user/USER.md
	LogDir      string // ~/.sessionkeeper/logs
}

// ResolvePaths derives the layout from a workspace root and a home
// directory. It is a pure function: no directories are created. An empty
// root leaves the workspace fields empty, and an empty home leaves the user
// fields empty.
func ResolvePaths(workspaceRoot, homeDir string) Paths {
	var p Paths

	if workspaceRoot != "" {
		root := filepath.Clean(workspaceRoot)
		state := filepath.Join(root, StateDirName)
		sessions := filepath.Join(state, "sessions")
		memory := filepath.Join(state, "memory")

		p.WorkspaceRoot = root
		p.StateDir = state
		p.SessionsDir = sessions
		p.ConfigDir = filepath.Join(sessions, "config")
		p.MemoryDir = memory
		p.MemoryFile = filepath.Join(memory, "MEMORY.md")
	}

	if homeDir != "" {
		user := filepath.Join(homeDir, StateDirName)

		p.UserDir = user
		p.PersonaFile = filepath.Join(user, "persona", "SOUL.md")
		p.UserFile = filepath.Join(user, "user", "USER.md")
		p.LogDir = filepath.Join(user, "logs")
	}

	return p
}

// HasWorkspace reports whether the layout has a workspace root.
func (p Paths) HasWorkspace() bool {
	return p.WorkspaceRoot != ""
}

// SelectRoot picks the workspace root from a hook payload: the first
// non-empty workspace root, then the working directory. It returns "" when
// neither is usable, which callers treat as a silent no-op.
func SelectRoot(roots []string, cwd string) string {
	for _, r := range roots {
		if r = strings.TrimSpace(r); r != "" {
			return r
		}
	}
	return strings.TrimSpace(cwd)
}

// HomeDir returns the user's home directory, or "" when it cannot be
// determined.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
