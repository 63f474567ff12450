package session

import (
	"fmt"
	"strings"
)

const (
	// PlaceholderFocus is the "current focus" sentence of a fresh record.
	// Its presence is one of the template signals.
	PlaceholderFocus = "[Describe the current focus once the task is clear]"

	// TimeLayout formats log entry timestamps (HH:MM).
	TimeLayout = "15:04"

	completedMarker = "- [x]"
	startedLabel    = "**Started:**"
	updatedLabel    = "**Last Updated:**"
)

// SectionNames lists the record sections in document order.
var SectionNames = []string{
	"Current State",
	"Completed",
	"In Progress",
	"Blockers",
	"Notes",
	"Context",
	"Log",
}

// NewTemplate produces the starter document for a new record.
func NewTemplate(id, date, clock, transcript string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Session: %s\n\n", PlaceholderTitle)
	fmt.Fprintf(&sb, "**Session ID:** %s\n", id)
	fmt.Fprintf(&sb, "**Date:** %s\n", date)
	fmt.Fprintf(&sb, "%s %s\n", startedLabel, clock)
	fmt.Fprintf(&sb, "%s %s\n", updatedLabel, clock)
	fmt.Fprintf(&sb, "**Transcript:** %s\n\n", transcript)
	sb.WriteString("---\n\n")

	for _, name := range SectionNames {
		fmt.Fprintf(&sb, "## %s\n\n", name)
		switch name {
		case "Current State":
			sb.WriteString(PlaceholderFocus + "\n\n")
		case "Log":
			sb.WriteString(LogLine(clock, "Session started"))
		}
	}

	return sb.String()
}

// LogLine formats one timestamped log entry, newline terminated.
func LogLine(clock, text string) string {
	return fmt.Sprintf("- **%s** %s\n", clock, text)
}

// IsTemplate reports whether a record was never meaningfully used. It is a
// heuristic over free-form markdown, true only when all of these hold:
//
//   - fewer than two **HH:MM** log entries
//   - no "- [x]" completed-item marker (case-insensitive x)
//   - Started and Last Updated are both present and equal, or either is missing
//   - PlaceholderFocus is still present verbatim
func IsTemplate(content string) bool {
	if countLogEntries(content) >= 2 {
		return false
	}
	if strings.Contains(strings.ToLower(content), completedMarker) {
		return false
	}
	started, okStarted := fieldValue(content, startedLabel)
	updated, okUpdated := fieldValue(content, updatedLabel)
	if okStarted && okUpdated && started != updated {
		return false
	}
	return strings.Contains(content, PlaceholderFocus)
}

// countLogEntries counts **HH:MM** occurrences anywhere in content.
func countLogEntries(content string) int {
	const width = len("**00:00**")
	n := 0
	for i := 0; i+width <= len(content); i++ {
		if isClockStamp(content[i : i+width]) {
			n++
			i += width - 1
		}
	}
	return n
}

func isClockStamp(s string) bool {
	return s[0] == '*' && s[1] == '*' &&
		isDigit(s[2]) && isDigit(s[3]) && s[4] == ':' && isDigit(s[5]) && isDigit(s[6]) &&
		s[7] == '*' && s[8] == '*'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// fieldValue returns the trimmed text after label on the first line that
// starts with it.
func fieldValue(content, label string) (string, bool) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, label) {
			return strings.TrimSpace(strings.TrimPrefix(line, label)), true
		}
	}
	return "", false
}
