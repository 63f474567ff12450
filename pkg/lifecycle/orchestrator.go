// Package lifecycle drives a conversation's session record through the host's
// lifecycle events. Each method handles one hook invocation and derives all
// state from disk; nothing is retained between calls.
//
// No method fails the host. Errors are logged and degrade the response to an
// empty or partial payload.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/sessionkeeper/pkg/compaction"
	"github.com/entrhq/sessionkeeper/pkg/config"
	"github.com/entrhq/sessionkeeper/pkg/counter"
	"github.com/entrhq/sessionkeeper/pkg/envinfo"
	"github.com/entrhq/sessionkeeper/pkg/hook"
	"github.com/entrhq/sessionkeeper/pkg/identity"
	"github.com/entrhq/sessionkeeper/pkg/logging"
	"github.com/entrhq/sessionkeeper/pkg/session"
	"github.com/entrhq/sessionkeeper/pkg/workspace"
)

// Orchestrator composes the identity store, session registry, milestone
// counter and compaction signal.
type Orchestrator struct {
	homeDir  string
	cfg      *config.Config
	logger   *logging.Logger
	now      func() time.Time
	envTools []string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithEnvTools sets the binaries probed for the environment block.
func WithEnvTools(tools []string) Option {
	return func(o *Orchestrator) {
		o.envTools = tools
	}
}

// New creates an orchestrator. A nil cfg uses defaults.
func New(homeDir string, cfg *config.Config, opts ...Option) *Orchestrator {
	if cfg == nil {
		cfg = config.Defaults()
	}
	o := &Orchestrator{
		homeDir: homeDir,
		cfg:     cfg,
		logger:  logging.Discard(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// stores is the per-workspace view of persisted state.
type stores struct {
	paths    workspace.Paths
	registry *session.Registry
	counters *counter.Store
	flags    *compaction.Store
}

func (o *Orchestrator) open(root string) stores {
	p := workspace.ResolvePaths(root, o.homeDir)
	return stores{
		paths:    p,
		registry: session.NewRegistry(p.SessionsDir, session.WithSlugMaxLength(o.cfg.Sessions.GetSlugMaxLength())),
		counters: counter.NewStore(p.ConfigDir),
		flags:    compaction.NewStore(p.ConfigDir),
	}
}

// target extracts the session id and workspace root. ok is false when
// either is unusable, which every event except Start treats as a no-op.
func target(in *hook.Input) (id, root string, ok bool) {
	id = strings.TrimSpace(in.SessionID())
	root = in.WorkspaceRoot()
	return id, root, root != "" && session.ValidID(id)
}

// Start prepares the workspace, creates or resumes the session record and
// returns the composed context.
func (o *Orchestrator) Start(ctx context.Context, in *hook.Input) (hook.Output, error) {
	id, root, ok := target(in)
	var st stores
	if root != "" {
		st = o.open(root)
	} else {
		st.paths = workspace.ResolvePaths("", o.homeDir)
	}

	if err := identity.EnsureSetup(st.paths); err != nil {
		o.logger.Warnf("start: workspace setup incomplete: %v", err)
	}
	docs := identity.Load(st.paths)

	builder := NewContextBuilder().
		WithIdentity(docs.Persona).
		WithUser(docs.User).
		WithMemory(docs.Memory)

	now := o.now()

	if ok {
		rec, created, err := o.findOrCreate(ctx, st.registry, id, now, in.TranscriptPath)
		if err != nil {
			o.logger.Errorf("start: session record for %s: %v", id, err)
		} else {
			builder.WithSession(id, rec.Path, created)
			o.logger.Infof("start: session %s (created=%t) at %s", id, created, rec.Path)
		}
		builder.WithRecent(o.recentSessions(ctx, st.registry, id))
	} else {
		o.logger.Infof("start: no usable session id or workspace (id=%q root=%q)", id, root)
	}

	env := envinfo.Collect(ctx, st.paths.WorkspaceRoot, now, o.envTools)
	builder.WithEnvironment(env.Render())

	return hook.Output{AdditionalContext: builder.Build()}, nil
}

func (o *Orchestrator) findOrCreate(ctx context.Context, reg *session.Registry, id string, now time.Time, transcript string) (session.Record, bool, error) {
	rec, err := reg.Find(ctx, id)
	if err == nil {
		return rec, false, nil
	}
	rec, err = reg.Create(ctx, id, now, transcript)
	if errors.Is(err, session.ErrAlreadyExists) {
		rec, err = reg.Find(ctx, id)
		return rec, false, err
	}
	return rec, err == nil, err
}

func (o *Orchestrator) recentSessions(ctx context.Context, reg *session.Registry, id string) []RecentSession {
	limit := o.cfg.Sessions.GetRecentLimit()
	if limit <= 0 {
		return nil
	}
	records := reg.List(ctx, session.ListOptions{
		ModifiedWithin:   o.cfg.Sessions.RecentWindow(),
		ExcludeID:        id,
		ExcludeTemplates: true,
		Limit:            limit,
	})

	out := make([]RecentSession, 0, len(records))
	for _, rec := range records {
		content, err := reg.Read(rec)
		if err != nil {
			continue
		}
		state, _ := session.ExtractSections(content).Get("Current State")
		out = append(out, RecentSession{
			Path:         rec.Path,
			Date:         rec.Name.Date,
			Title:        session.Title(content),
			CurrentState: state,
		})
	}
	return out
}

// Check runs after each turn. A pending compaction signal is handled first
// and ends the invocation; otherwise the milestone counter is evaluated.
func (o *Orchestrator) Check(ctx context.Context, in *hook.Input) (hook.Output, error) {
	id, root, ok := target(in)
	if !ok {
		return hook.Output{}, nil
	}
	st := o.open(root)

	if out, handled := o.handleCompaction(ctx, st, id); handled {
		return out, nil
	}

	if in.IsRepeatCycle() {
		return hook.Output{}, nil
	}

	count := st.counters.ToolCount(id)
	m := counter.Evaluate(count, st.counters.LastNotified(id), o.cfg.Milestones.GetInterval())
	if !m.Reached {
		return hook.Output{}, nil
	}

	if err := st.counters.SetLastNotified(id, count); err != nil {
		o.logger.Warnf("check: record milestone for %s: %v", id, err)
	}

	path := ""
	setup := false
	if rec, err := st.registry.Find(ctx, id); err == nil {
		path = rec.Path
		setup = m.Index == 1 && rec.Name.IsDefaultSlug()
	}
	o.logger.Infof("check: milestone %d for %s at %d tool calls", m.Index, id, count)

	if setup {
		return hook.Output{FollowupMessage: setupMessage(m, path)}, nil
	}
	return hook.Output{FollowupMessage: progressMessage(m, path)}, nil
}

// handleCompaction consumes the signal for id. handled is true whenever a
// flag existed. The follow-up message is sent only when the counters were
// reset and the record (if any) was logged; a failed or panicking handler
// yields an empty response.
func (o *Orchestrator) handleCompaction(ctx context.Context, st stores, id string) (hook.Output, bool) {
	path := ""
	applied := false
	consumed, err := st.flags.Consume(id, func(sig compaction.Signal) error {
		var errs []error
		if err := st.counters.Reset(id); err != nil {
			errs = append(errs, err)
		}

		if rec, err := st.registry.Find(ctx, id); err == nil {
			path = rec.Path
			line := session.LogLine(o.now().Format(session.TimeLayout), compactionLogText(sig.MessagesSummarized, sig.PercentUsed))
			if content, err := st.registry.Read(rec); err == nil && content != "" && !strings.HasSuffix(content, "\n") {
				line = "\n" + line
			}
			if !st.registry.Append(rec, line) {
				errs = append(errs, fmt.Errorf("append compaction entry to %s", rec.Path))
			}
		}

		applied = len(errs) == 0
		return errors.Join(errs...)
	})
	if err != nil {
		o.logger.Warnf("check: compaction handling for %s: %v", id, err)
	}
	if !consumed {
		return hook.Output{}, false
	}
	if !applied {
		o.logger.Warnf("check: compaction for %s consumed without follow-up", id)
		return hook.Output{}, true
	}
	o.logger.Infof("check: compaction consumed for %s", id)
	return hook.Output{FollowupMessage: compactionMessage(path)}, true
}

// PreCompact records that the host is about to summarize the conversation.
func (o *Orchestrator) PreCompact(_ context.Context, in *hook.Input) (hook.Output, error) {
	id, root, ok := target(in)
	if !ok {
		return hook.Output{}, nil
	}
	st := o.open(root)

	sig := compaction.Signal{
		Timestamp:          o.now(),
		PercentUsed:        in.ContextUsagePercent,
		MessagesSummarized: in.MessagesToCompact,
	}
	if st.flags.Pending(id) {
		o.logger.Warnf("pre-compact: replacing unconsumed signal for %s", id)
	}
	if err := st.flags.Write(id, sig); err != nil {
		o.logger.Errorf("pre-compact: write signal for %s: %v", id, err)
		return hook.Output{}, nil
	}
	o.logger.Infof("pre-compact: signal written for %s (%d messages)", id, sig.MessagesSummarized)
	return hook.Output{}, nil
}

// End retires the session record: an untouched template is deleted, and a
// used record still on the default slug is renamed after its title.
func (o *Orchestrator) End(ctx context.Context, in *hook.Input) (hook.Output, error) {
	id, root, ok := target(in)
	if !ok {
		return hook.Output{}, nil
	}
	st := o.open(root)

	rec, err := st.registry.Find(ctx, id)
	if err != nil {
		return hook.Output{}, nil
	}
	content, err := st.registry.Read(rec)
	if err != nil {
		o.logger.Warnf("end: read %s: %v", rec.Path, err)
		return hook.Output{}, nil
	}

	if session.IsTemplate(content) {
		if st.registry.Delete(rec) {
			o.logger.Infof("end: deleted unused session record %s", rec.Path)
		}
		return hook.Output{}, nil
	}

	if rec.Name.IsDefaultSlug() {
		if renamed, changed := st.registry.Rename(rec, session.Title(content)); changed {
			o.logger.Infof("end: renamed %s to %s", rec.Path, renamed.Path)
		}
	}
	return hook.Output{}, nil
}

// ToolUsed counts one tool invocation.
func (o *Orchestrator) ToolUsed(_ context.Context, in *hook.Input) (hook.Output, error) {
	id, root, ok := target(in)
	if !ok {
		return hook.Output{}, nil
	}
	st := o.open(root)

	if _, err := st.counters.Increment(id); err != nil {
		o.logger.Warnf("post-tool-use: increment for %s: %v", id, err)
	}
	return hook.Output{}, nil
}
