// Package guard blocks the agent from scattering documentation files across
// the workspace. Notes belong in the session record and project memory, so
// writes to paths matching a denied pattern are refused unless an allowed
// pattern names them explicitly.
package guard

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/entrhq/sessionkeeper/pkg/hook"
)

// writeTools maps tool names that write files to the input field holding
// the target path.
var writeTools = map[string]string{
	"Write":        "file_path",
	"Edit":         "file_path",
	"MultiEdit":    "file_path",
	"NotebookEdit": "notebook_path",
	"write_file":   "path",
	"edit_file":    "path",
	"apply_diff":   "path",
}

// PatternMatcher decides whether a workspace-relative path may be written.
// Allowed patterns are exceptions to the denied ones.
type PatternMatcher struct {
	allowedPatterns []glob.Glob
	deniedPatterns  []glob.Glob
}

// NewPatternMatcher compiles the glob patterns. '/' is the separator, so '*'
// stays within one path segment and '**' spans any number. Matching ignores
// case.
func NewPatternMatcher(allowed, denied []string) (*PatternMatcher, error) {
	pm := &PatternMatcher{}

	for _, pattern := range allowed {
		g, err := glob.Compile(strings.ToLower(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		pm.allowedPatterns = append(pm.allowedPatterns, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(strings.ToLower(pattern), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		pm.deniedPatterns = append(pm.deniedPatterns, g)
	}

	return pm, nil
}

// IsAllowed reports whether path may be written.
func (pm *PatternMatcher) IsAllowed(path string) bool {
	path = strings.ToLower(filepath.ToSlash(filepath.Clean(path)))

	for _, pattern := range pm.allowedPatterns {
		if pattern.Match(path) {
			return true
		}
	}
	for _, pattern := range pm.deniedPatterns {
		if pattern.Match(path) {
			return false
		}
	}
	return true
}

// Guard checks pre-tool-use payloads.
type Guard struct {
	enabled bool
	matcher *PatternMatcher
}

// New builds a guard from pattern lists. A disabled guard allows everything.
func New(enabled bool, allowed, denied []string) (*Guard, error) {
	pm, err := NewPatternMatcher(allowed, denied)
	if err != nil {
		return nil, err
	}
	return &Guard{enabled: enabled, matcher: pm}, nil
}

// Check returns a *hook.DeniedError when the tool call creates or edits a
// blocked documentation file, nil otherwise. Payloads it cannot interpret are
// allowed.
func (g *Guard) Check(in *hook.Input) error {
	if !g.enabled {
		return nil
	}
	target := TargetPath(in.ToolName, in.ToolInput)
	if target == "" {
		return nil
	}

	rel, inside := relativeTo(in.WorkspaceRoot(), target)
	if !inside || g.matcher.IsAllowed(rel) {
		return nil
	}
	return &hook.DeniedError{
		Message: fmt.Sprintf("%s on documentation file %q is blocked: documentation files may not be created or edited here. "+
			"Record notes, plans and summaries in the current session file under .sessionkeeper/sessions/ "+
			"or in .sessionkeeper/memory/MEMORY.md instead.\n", in.ToolName, rel),
	}
}

// TargetPath extracts the file a write tool is about to touch. Unknown tools
// and unexpected input shapes yield "".
func TargetPath(toolName string, input json.RawMessage) string {
	field, ok := writeTools[toolName]
	if !ok || len(input) == 0 {
		return ""
	}

	var fields map[string]json.RawMessage
	if json.Unmarshal(input, &fields) != nil {
		return ""
	}
	raw, ok := fields[field]
	if !ok {
		return ""
	}
	var path string
	if json.Unmarshal(raw, &path) != nil {
		return ""
	}
	return path
}

// relativeTo expresses target relative to root. It reports false for paths
// outside the workspace, which the guard leaves alone. Without a root the
// path is checked as given.
func relativeTo(root, target string) (string, bool) {
	if root == "" {
		return filepath.Clean(target), true
	}
	abs := target
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, abs)
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(abs))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return rel, true
}
