package lifecycle

import (
	"fmt"
	"strings"

	"github.com/entrhq/sessionkeeper/pkg/session"
)

// RecentSession is another conversation's record surfaced at start.
type RecentSession struct {
	Path         string
	Date         string
	Title        string
	CurrentState string
}

// ContextBuilder assembles the start-of-session context. Each block comes
// from one collaborator and is omitted when that collaborator had nothing.
type ContextBuilder struct {
	identity    string
	user        string
	sessionPath string
	sessionID   string
	created     bool
	recent      []RecentSession
	memory      string
	environment string
}

// NewContextBuilder creates an empty builder.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{}
}

// WithIdentity sets the persona document.
func (cb *ContextBuilder) WithIdentity(doc string) *ContextBuilder {
	cb.identity = strings.TrimSpace(doc)
	return cb
}

// WithUser sets the user profile document.
func (cb *ContextBuilder) WithUser(doc string) *ContextBuilder {
	cb.user = strings.TrimSpace(doc)
	return cb
}

// WithSession points the agent at its session record. created marks a
// record written by this start.
func (cb *ContextBuilder) WithSession(id, path string, created bool) *ContextBuilder {
	cb.sessionID = id
	cb.sessionPath = path
	cb.created = created
	return cb
}

// WithRecent adds other sessions for continuity.
func (cb *ContextBuilder) WithRecent(recent []RecentSession) *ContextBuilder {
	cb.recent = recent
	return cb
}

// WithMemory sets the project memory document.
func (cb *ContextBuilder) WithMemory(doc string) *ContextBuilder {
	cb.memory = strings.TrimSpace(doc)
	return cb
}

// WithEnvironment sets the rendered environment block.
func (cb *ContextBuilder) WithEnvironment(env string) *ContextBuilder {
	cb.environment = strings.TrimSpace(env)
	return cb
}

// Build renders every non-empty block in order: identity, user, session
// pointer, memory, environment.
func (cb *ContextBuilder) Build() string {
	var b strings.Builder

	writeBlock(&b, "identity", cb.identity)
	writeBlock(&b, "user", cb.user)
	writeBlock(&b, "session", cb.sessionBlock())
	writeBlock(&b, "memory", cb.memory)
	writeBlock(&b, "environment", cb.environment)

	return strings.TrimRight(b.String(), "\n")
}

func (cb *ContextBuilder) sessionBlock() string {
	var b strings.Builder

	if cb.sessionPath != "" {
		fmt.Fprintf(&b, "Session file: %s\n", cb.sessionPath)
		fmt.Fprintf(&b, "Session ID: %s\n", cb.sessionID)
		if cb.created {
			fmt.Fprintf(&b, "\nThis is a new session. Once the task is clear, replace the title %q "+
				"and the Current State placeholder, then keep the file current as you work: "+
				"Completed, In Progress, Blockers, Last Updated and a timestamped Log entry per milestone.\n",
				session.PlaceholderTitle)
		} else {
			b.WriteString("\nThis session is being resumed. Read the session file before continuing.\n")
		}
	}

	if len(cb.recent) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Recent sessions in this workspace:\n")
		for _, r := range cb.recent {
			title := r.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(&b, "- %s %s (%s)\n", r.Date, title, r.Path)
			if r.CurrentState != "" {
				for _, line := range strings.Split(r.CurrentState, "\n") {
					fmt.Fprintf(&b, "  %s\n", line)
				}
			}
		}
	}

	return strings.TrimSpace(b.String())
}

func writeBlock(b *strings.Builder, tag, body string) {
	if body == "" {
		return
	}
	fmt.Fprintf(b, "<%s>\n%s\n</%s>\n\n", tag, body, tag)
}
