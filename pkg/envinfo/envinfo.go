// Package envinfo describes the machine the agent is running on for the
// session-start context: date, platform, workspace and which common tools are
// on PATH.
package envinfo

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// LookupTimeout bounds each PATH lookup. Lookups on network filesystems can
// hang; an expired lookup counts as not found.
const LookupTimeout = 300 * time.Millisecond

// DefaultTools are probed when the caller passes none.
var DefaultTools = []string{"git", "go", "node"}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Tool is the result of one PATH probe.
type Tool struct {
	Name  string
	Path  string
	Found bool
}

// Info is the environment snapshot.
type Info struct {
	Date      string
	Time      string
	OS        string
	Arch      string
	Workspace string
	Tools     []Tool
}

// Collect probes the environment. Tools are looked up one at a time, each
// bounded by LookupTimeout and by ctx.
func Collect(ctx context.Context, workspaceRoot string, now time.Time, tools []string) Info {
	if len(tools) == 0 {
		tools = DefaultTools
	}
	info := Info{
		Date:      now.Format("2006-01-02 (Monday)"),
		Time:      now.Format("15:04 MST"),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Workspace: workspaceRoot,
	}
	for _, name := range tools {
		path, ok := lookup(ctx, name, LookupTimeout)
		info.Tools = append(info.Tools, Tool{Name: name, Path: path, Found: ok})
	}
	return info
}

// lookup runs lookPath in the background and gives up after timeout.
func lookup(ctx context.Context, name string, timeout time.Duration) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		path string
		err  error
	}
	find := lookPath
	done := make(chan result, 1)
	go func() {
		p, err := find(name)
		done <- result{p, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return "", false
		}
		return r.path, true
	case <-ctx.Done():
		return "", false
	}
}

// Render formats the snapshot as a markdown list.
func (i Info) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Date: %s\n", i.Date)
	fmt.Fprintf(&b, "- Time: %s\n", i.Time)
	fmt.Fprintf(&b, "- Platform: %s/%s\n", i.OS, i.Arch)
	if i.Workspace != "" {
		fmt.Fprintf(&b, "- Workspace: %s\n", i.Workspace)
	}
	var found, missing []string
	for _, t := range i.Tools {
		if t.Found {
			found = append(found, t.Name)
		} else {
			missing = append(missing, t.Name)
		}
	}
	if len(found) > 0 {
		fmt.Fprintf(&b, "- Available tools: %s\n", strings.Join(found, ", "))
	}
	if len(missing) > 0 {
		fmt.Fprintf(&b, "- Not found: %s\n", strings.Join(missing, ", "))
	}
	return b.String()
}
