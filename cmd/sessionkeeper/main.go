// Package main provides the sessionkeeper binary: lifecycle hooks that give a
// coding agent persistent memory across conversations.
//
// The host runs "sessionkeeper hook <event>" at each lifecycle point with a
// JSON payload on stdin. Everything else ("install", "sessions", "config") is
// for the person setting the hooks up.
package main

import (
	"fmt"
	"io"
	"os"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "hook":
		return runHook(args[1:], stdin, stdout, stderr)
	case "install":
		return exitCode(runInstall(args[1:], stdout, stderr), stderr)
	case "sessions":
		return exitCode(runSessions(args[1:], stdout, stderr), stderr)
	case "config":
		return exitCode(runConfig(args[1:], stdout, stderr), stderr)
	case "--version", "version":
		fmt.Fprintf(stdout, "sessionkeeper v%s\n", version)
		return 0
	case "-h", "--help", "help":
		printUsage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return 1
	}
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "sessionkeeper - persistent session memory for coding agents\n\n")
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  sessionkeeper hook <event>      Handle a lifecycle event (JSON on stdin)\n")
	fmt.Fprintf(w, "  sessionkeeper install [flags]   Register the hooks in the host hooks file\n")
	fmt.Fprintf(w, "  sessionkeeper sessions [flags]  List session records for a workspace\n")
	fmt.Fprintf(w, "  sessionkeeper config init|show  Write default settings or print the current ones\n")
	fmt.Fprintf(w, "  sessionkeeper --version         Show version and exit\n")
	fmt.Fprintf(w, "\nEvents:\n")
	fmt.Fprintf(w, "  session-start, stop, pre-compact, session-end, post-tool-use, pre-tool-use\n")
	fmt.Fprintf(w, "\nEnvironment Variables:\n")
	fmt.Fprintf(w, "  SESSIONKEEPER_CONFIG   Config file (default ~/.sessionkeeper/config.yaml)\n")
}
