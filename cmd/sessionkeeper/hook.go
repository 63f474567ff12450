package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/entrhq/sessionkeeper/pkg/config"
	"github.com/entrhq/sessionkeeper/pkg/guard"
	"github.com/entrhq/sessionkeeper/pkg/hook"
	"github.com/entrhq/sessionkeeper/pkg/lifecycle"
	"github.com/entrhq/sessionkeeper/pkg/logging"
	"github.com/entrhq/sessionkeeper/pkg/workspace"
)

// runHook handles one host invocation. It always exits 0 except for a
// guard denial, because the host's own control flow depends on getting
// valid output back.
func runHook(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	event := ""
	if len(args) > 0 {
		event = args[0]
	}

	// Read the payload up front so the log file can be named after the
	// conversation before any logger exists.
	raw, _ := io.ReadAll(stdin)
	if in, err := hook.Decode(bytes.NewReader(raw)); err == nil {
		logging.SetSessionID(in.SessionID())
	}

	home := workspace.HomeDir()
	logging.SetLogDirectory(workspace.ResolvePaths("", home).LogDir)
	logger, _ := logging.NewLogger("hook")
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.DefaultPath(home))
	if err != nil {
		logger.Warnf("config: %v (using defaults where invalid)", err)
	}

	handler := handlerFor(event, home, cfg, logger)
	return hook.Run(ctx, event, handler, bytes.NewReader(raw), stdout, stderr, logger)
}

// handlerFor maps an event name to its handler. Unknown events get a
// handler that does nothing, so a misconfigured host still receives {}.
func handlerFor(event, home string, cfg *config.Config, logger *logging.Logger) hook.Handler {
	orch := lifecycle.New(home, cfg, lifecycle.WithLogger(logger))

	switch event {
	case hook.EventSessionStart:
		return orch.Start
	case hook.EventStop:
		return orch.Check
	case hook.EventPreCompact:
		return orch.PreCompact
	case hook.EventSessionEnd:
		return orch.End
	case hook.EventPostToolUse:
		return orch.ToolUsed
	case hook.EventPreToolUse:
		enabled, denied, allowed := cfg.Guard.Rules()
		g, err := guard.New(enabled, allowed, denied)
		if err != nil {
			logger.Errorf("guard: %v (allowing all writes)", err)
			return noop
		}
		return func(_ context.Context, in *hook.Input) (hook.Output, error) {
			return hook.Output{}, g.Check(in)
		}
	default:
		logger.Warnf("unknown hook event %q", event)
		return noop
	}
}

func noop(context.Context, *hook.Input) (hook.Output, error) {
	return hook.Output{}, nil
}
