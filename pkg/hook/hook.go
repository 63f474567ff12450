// Package hook implements the process contract shared by every lifecycle
// hook: one JSON object on stdin, one JSON object on stdout, exit code 0.
// The only exception is a denial, which exits with ExitDenied and writes its
// reason to stderr for the host to show the agent.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/entrhq/sessionkeeper/pkg/logging"
	"github.com/entrhq/sessionkeeper/pkg/workspace"
)

// Event names accepted on the command line.
const (
	EventSessionStart = "session-start"
	EventStop         = "stop"
	EventPreCompact   = "pre-compact"
	EventSessionEnd   = "session-end"
	EventPostToolUse  = "post-tool-use"
	EventPreToolUse   = "pre-tool-use"
)

// Events lists every event in installation order.
var Events = []string{
	EventSessionStart,
	EventPostToolUse,
	EventPreToolUse,
	EventStop,
	EventPreCompact,
	EventSessionEnd,
}

const (
	// ExitOK is returned for every outcome except a denial.
	ExitOK = 0

	// ExitDenied tells the host to block the tool call and surface stderr.
	ExitDenied = 2
)

// Input is the payload the host sends. Every field is optional and unknown
// fields are ignored.
type Input struct {
	ConversationID      string          `json:"conversation_id"`
	SessionIDField      string          `json:"session_id"`
	GenerationID        string          `json:"generation_id"`
	HookEventName       string          `json:"hook_event_name"`
	WorkspaceRoots      []string        `json:"workspace_roots"`
	CWD                 string          `json:"cwd"`
	TranscriptPath      string          `json:"transcript_path"`
	LoopCount           int             `json:"loop_count"`
	ContextUsagePercent float64         `json:"context_usage_percent"`
	MessagesToCompact   int             `json:"messages_to_compact"`
	ToolName            string          `json:"tool_name"`
	ToolInput           json.RawMessage `json:"tool_input,omitempty"`
}

// SessionID returns the conversation identity, preferring conversation_id.
func (in *Input) SessionID() string {
	if in.ConversationID != "" {
		return in.ConversationID
	}
	return in.SessionIDField
}

// WorkspaceRoot returns the project root for the payload, or "".
func (in *Input) WorkspaceRoot() string {
	return workspace.SelectRoot(in.WorkspaceRoots, in.CWD)
}

// IsRepeatCycle reports whether the host is re-running an in-progress
// response cycle.
func (in *Input) IsRepeatCycle() bool {
	return in.LoopCount > 0
}

// Output is the response payload. Empty fields are omitted, so the zero
// value encodes as {}.
type Output struct {
	AdditionalContext string `json:"additional_context,omitempty"`
	FollowupMessage   string `json:"followup_message,omitempty"`
}

// Handler processes one decoded payload.
type Handler func(ctx context.Context, in *Input) (Output, error)

// DeniedError blocks the tool call. Message goes to stderr.
type DeniedError struct {
	Message string
}

func (e *DeniedError) Error() string {
	return e.Message
}

// Deny builds a DeniedError from a format string.
func Deny(format string, args ...interface{}) error {
	return &DeniedError{Message: fmt.Sprintf(format, args...)}
}

// Decode reads one payload. Empty input decodes to an empty Input.
func Decode(r io.Reader) (*Input, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return &Input{}, fmt.Errorf("hook: read stdin: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Input{}, nil
	}
	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return &Input{}, fmt.Errorf("hook: parse payload: %w", err)
	}
	return &in, nil
}

// Run decodes stdin, calls handler and writes the response. It is the single
// catch-all for a hook process: malformed input, handler errors and panics
// all produce {} and ExitOK. A *DeniedError produces ExitDenied with its
// message on stderr and nothing on stdout.
func Run(ctx context.Context, event string, handler Handler, stdin io.Reader, stdout, stderr io.Writer, logger *logging.Logger) int {
	in, err := Decode(stdin)
	if err != nil {
		logger.Warnf("%s: %v", event, err)
		writeOutput(stdout, Output{}, logger)
		return ExitOK
	}

	out, err := invoke(ctx, handler, in)

	var denied *DeniedError
	if errors.As(err, &denied) {
		logger.Infof("%s: denied: %s", event, denied.Message)
		fmt.Fprint(stderr, denied.Message)
		return ExitDenied
	}
	if err != nil {
		logger.Errorf("%s: %v", event, err)
		out = Output{}
	}

	writeOutput(stdout, out, logger)
	return ExitOK
}

// invoke calls handler, converting a panic into an error.
func invoke(ctx context.Context, handler Handler, in *Input) (out Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = Output{}
			err = fmt.Errorf("hook: panic: %v\n%s", r, debug.Stack())
		}
	}()
	return handler(ctx, in)
}

func writeOutput(w io.Writer, out Output, logger *logging.Logger) {
	b, err := json.Marshal(out)
	if err != nil {
		logger.Errorf("encode output: %v", err)
		b = []byte("{}")
	}
	b = append(b, '\n')
	if _, err := w.Write(b); err != nil {
		logger.Errorf("write output: %v", err)
	}
}
