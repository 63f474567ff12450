package lifecycle

import (
	"fmt"

	"github.com/entrhq/sessionkeeper/pkg/counter"
	"github.com/entrhq/sessionkeeper/pkg/session"
)

// compactionMessage asks the agent to recover state after the host
// summarized the conversation. path is empty when the record is missing.
func compactionMessage(path string) string {
	if path == "" {
		return "The conversation context was just summarized. Earlier details may be lost. " +
			"Check .sessionkeeper/sessions/ for this session's record before continuing."
	}
	return fmt.Sprintf("The conversation context was just summarized. Earlier details may be lost. "+
		"Re-read your session file at %s to restore the working state before continuing, "+
		"and bring it up to date if the summary covers work it does not mention.", path)
}

// setupMessage is sent at the first milestone while the record still has
// its placeholder slug.
func setupMessage(m counter.Milestone, path string) string {
	return fmt.Sprintf("Milestone %d: %d tool calls so far. Your session file %s is still an unfilled template. "+
		"Now that the task is clear, replace the title %q with a short description, "+
		"fill in Current State, and record what is Completed and In Progress. "+
		"Update Last Updated and add a timestamped Log entry.",
		m.Index, m.Count, path, session.PlaceholderTitle)
}

// progressMessage is the generic checkpoint reminder.
func progressMessage(m counter.Milestone, path string) string {
	if path == "" {
		return fmt.Sprintf("Milestone %d: %d tool calls so far. Checkpoint your progress in this session's record "+
			"under .sessionkeeper/sessions/.", m.Index, m.Count)
	}
	return fmt.Sprintf("Milestone %d: %d tool calls so far. Checkpoint your progress in %s: "+
		"update Current State, Completed, In Progress and Blockers, set Last Updated, "+
		"and add a timestamped Log entry. Move durable project facts to project memory.",
		m.Index, m.Count, path)
}

// compactionLogText is the record log entry for a consumed signal.
func compactionLogText(messages int, percent float64) string {
	if percent > 0 {
		return fmt.Sprintf("Context compacted: %d messages summarized (%.0f%% of context used)", messages, percent)
	}
	return fmt.Sprintf("Context compacted: %d messages summarized", messages)
}
