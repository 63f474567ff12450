package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/pflag"

	"github.com/entrhq/sessionkeeper/pkg/session"
	"github.com/entrhq/sessionkeeper/pkg/workspace"
)

func runSessions(args []string, stdout, stderr io.Writer) error {
	var (
		workspaceDir string
		days         int
		all          bool
	)

	flagSet := pflag.NewFlagSet("sessions", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&workspaceDir, "workspace", ".", "workspace directory")
	flagSet.IntVar(&days, "days", 7, "only show records modified within this many days")
	flagSet.BoolVar(&all, "all", false, "show every record regardless of age")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	root, err := filepath.Abs(workspaceDir)
	if err != nil {
		return fmt.Errorf("resolving workspace: %w", err)
	}
	paths := workspace.ResolvePaths(root, workspace.HomeDir())
	registry := session.NewRegistry(paths.SessionsDir)

	opts := session.ListOptions{}
	if !all && days > 0 {
		opts.ModifiedWithin = time.Duration(days) * 24 * time.Hour
	}
	records := registry.List(context.Background(), opts)

	if len(records) == 0 {
		fmt.Fprintln(stdout, mutedStyle.Render("No session records in "+registry.Dir()))
		return nil
	}

	fmt.Fprintln(stdout, renderSessions(records, registry, time.Now()))
	return nil
}

// renderSessions formats records as an aligned table, newest first.
func renderSessions(records []session.Record, registry *session.Registry, now time.Time) string {
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			headerStyle.Width(12).Render("DATE"),
			headerStyle.Width(10).Render("ID"),
			headerStyle.Width(10).Render("STATE"),
			headerStyle.Width(10).Render("UPDATED"),
			headerStyle.Render("TITLE"),
		),
	}

	for _, rec := range records {
		title := rec.Name.Slug
		state := activeStyle.Width(10).Render("active")
		if content, err := registry.Read(rec); err == nil {
			if t := session.Title(content); t != "" && !session.IsPlaceholderTitle(t) {
				title = t
			}
			if session.IsTemplate(content) {
				state = mutedStyle.Width(10).Render("template")
			}
		}

		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			cellStyle.Width(12).Render(rec.Name.Date),
			mutedStyle.Width(10).Render(rec.ID()[:8]),
			state,
			mutedStyle.Width(10).Render(ago(now.Sub(rec.ModTime))),
			titleStyle.Render(title),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func ago(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
