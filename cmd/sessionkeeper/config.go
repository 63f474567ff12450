package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/sessionkeeper/pkg/config"
	"github.com/entrhq/sessionkeeper/pkg/workspace"
)

func runConfig(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New("config: expected a subcommand (init, show)")
	}
	path := config.DefaultPath(workspace.HomeDir())

	switch args[0] {
	case "init":
		return runConfigInit(path, args[1:], stdout, stderr)
	case "show":
		return runConfigShow(path, args[1:], stdout, stderr)
	default:
		return fmt.Errorf("config: unknown subcommand %q", args[0])
	}
}

// runConfigInit writes every section's defaults to the config file.
func runConfigInit(path string, args []string, stdout, stderr io.Writer) error {
	var force bool

	flagSet := pflag.NewFlagSet("config init", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVar(&force, "force", false, "overwrite an existing config file")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if _, err := os.Stat(path); err == nil {
		if !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		// A corrupt file would fail to load, so start from nothing.
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing %s: %w", path, err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.Manager.ResetAll()
	if err := cfg.Manager.SaveAll(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Fprintf(stdout, "%s %s\n", addedStyle.Render("wrote"), path)
	return nil
}

// runConfigShow prints the effective settings, section by section.
func runConfigShow(path string, args []string, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("config show", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := config.Load(path)
	if cfg.Manager == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v (showing defaults for invalid sections)\n", err)
	}

	fmt.Fprintln(stdout, mutedStyle.Render(path))
	for _, section := range cfg.Manager.GetSections() {
		out, err := yaml.Marshal(section.Data())
		if err != nil {
			return fmt.Errorf("encoding section %s: %w", section.ID(), err)
		}
		fmt.Fprintf(stdout, "\n%s %s\n", headerStyle.Render(section.Title()), mutedStyle.Render("("+section.ID()+")"))
		fmt.Fprintln(stdout, mutedStyle.Render(section.Description()))
		for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
			fmt.Fprintln(stdout, cellStyle.Render("  "+line))
		}
	}
	return nil
}
