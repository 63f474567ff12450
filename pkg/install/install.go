// Package install registers the sessionkeeper hooks in the host's hooks
// file. The file is read as JSONC (comments and trailing commas allowed),
// merged and written back as plain JSON, so comments do not survive an
// install.
package install

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/entrhq/sessionkeeper/pkg/hook"
)

// DefaultHooksFile is the hooks file location relative to the workspace.
var DefaultHooksFile = filepath.Join(".cursor", "hooks.json")

// HostEvents maps sessionkeeper event names to the host's hook keys.
var HostEvents = map[string]string{
	hook.EventSessionStart: "sessionStart",
	hook.EventStop:         "stop",
	hook.EventPreCompact:   "preCompact",
	hook.EventSessionEnd:   "sessionEnd",
	hook.EventPostToolUse:  "postToolUse",
	hook.EventPreToolUse:   "preToolUse",
}

// Options controls an install.
type Options struct {
	HooksFile string   // path of the hooks file
	Binary    string   // command used to invoke sessionkeeper
	Events    []string // events to register; empty means hook.Events
}

// Result lists the commands added, by host key. Commands already present
// are reported in Skipped.
type Result struct {
	Added   []string
	Skipped []string
}

// Install merges one command entry per event into the hooks file, creating
// it if needed. Unrelated entries and keys are preserved.
func Install(opts Options) (Result, error) {
	if opts.HooksFile == "" {
		return Result{}, errors.New("install: hooks file path is required")
	}
	if strings.TrimSpace(opts.Binary) == "" {
		return Result{}, errors.New("install: binary is required")
	}
	events := opts.Events
	if len(events) == 0 {
		events = hook.Events
	}

	doc, err := readHooksFile(opts.HooksFile)
	if err != nil {
		return Result{}, err
	}

	hooks, err := hooksTable(doc)
	if err != nil {
		return Result{}, fmt.Errorf("install: %s: %w", opts.HooksFile, err)
	}

	var res Result
	for _, event := range events {
		key, ok := HostEvents[event]
		if !ok {
			return Result{}, fmt.Errorf("install: unknown event %q", event)
		}
		command := Command(opts.Binary, event)

		entries, err := entryList(hooks[key])
		if err != nil {
			return Result{}, fmt.Errorf("install: %s: hooks.%s: %w", opts.HooksFile, key, err)
		}
		if hasCommand(entries, command) {
			res.Skipped = append(res.Skipped, key)
			continue
		}
		hooks[key] = append(entries, map[string]interface{}{"command": command})
		res.Added = append(res.Added, key)
	}

	if len(res.Added) == 0 {
		return res, nil
	}
	if err := writeHooksFile(opts.HooksFile, doc); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Command is the hook command line for event. The host runs it through a
// shell, so a binary path with spaces or shell metacharacters is quoted.
func Command(binary, event string) string {
	return fmt.Sprintf("%s hook %s", shellQuote(binary), event)
}

func shellQuote(s string) string {
	if !strings.ContainsAny(s, " \t\n'\"\\$`&|;<>()*?[]#~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func readHooksFile(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]interface{}{"version": 1}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("install: reading %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]interface{}{"version": 1}, nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("install: parsing %s: %w", path, err)
	}
	if doc == nil {
		doc = map[string]interface{}{"version": 1}
	}
	return doc, nil
}

func hooksTable(doc map[string]interface{}) (map[string]interface{}, error) {
	raw, ok := doc["hooks"]
	if !ok || raw == nil {
		hooks := map[string]interface{}{}
		doc["hooks"] = hooks
		return hooks, nil
	}
	hooks, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("\"hooks\" must be an object, got %T", raw)
	}
	return hooks, nil
}

func entryList(raw interface{}) ([]interface{}, error) {
	if raw == nil {
		return nil, nil
	}
	entries, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("must be an array, got %T", raw)
	}
	return entries, nil
}

func hasCommand(entries []interface{}, command string) bool {
	for _, e := range entries {
		m, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		if c, _ := m["command"].(string); strings.TrimSpace(c) == command {
			return true
		}
	}
	return false
}

func writeHooksFile(path string, doc map[string]interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("install: encoding hooks: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("install: creating %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("install: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install: replacing %s: %w", path, err)
	}
	return nil
}
