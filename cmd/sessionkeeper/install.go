package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/entrhq/sessionkeeper/pkg/install"
)

func runInstall(args []string, stdout, stderr io.Writer) error {
	var (
		workspaceDir string
		hooksFile    string
		binary       string
	)

	flagSet := pflag.NewFlagSet("install", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&workspaceDir, "workspace", ".", "workspace directory")
	flagSet.StringVar(&hooksFile, "hooks-file", "", "hooks file to update (default: <workspace>/.cursor/hooks.json)")
	flagSet.StringVar(&binary, "binary", "", "command the host runs (default: this executable)")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if hooksFile == "" {
		hooksFile = filepath.Join(workspaceDir, install.DefaultHooksFile)
	}
	if binary == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating executable (pass --binary): %w", err)
		}
		binary = exe
	}

	res, err := install.Install(install.Options{HooksFile: hooksFile, Binary: binary})
	if err != nil {
		return err
	}

	for _, key := range res.Added {
		fmt.Fprintf(stdout, "%s %s\n", addedStyle.Render("added"), key)
	}
	for _, key := range res.Skipped {
		fmt.Fprintf(stdout, "%s %s\n", mutedStyle.Render("present"), key)
	}
	fmt.Fprintf(stdout, "%s\n", mutedStyle.Render(hooksFile))
	return nil
}
