// speckit-mcp: spec-kit workflow tracker.
//
// Serves the speckit tool over MCP (stdio) and exposes the same actions
// on the command line.
//
// Usage:
//
//	speckit-mcp serve                 # Start MCP server (stdio transport)
//	speckit-mcp run phase             # Print the current workflow phase
//	speckit-mcp run new --feature x   # Create a feature branch
//	speckit-mcp watch --format text   # Re-print the phase as documents change
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	repoPath   string
	logLevel   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "speckit-mcp",
		Short: "Track spec-kit workflow phases over MCP and the command line",
		Long: `speckit-mcp infers where a feature is in the spec-kit workflow
(constitution → specify → plan → tasks → implement) from the branch name
and the documents in the feature directory, and tells you which /speckit.*
command to run next.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&g.repoPath, "repo", "", "Repository path (default: git root of the current directory)")
	pf.StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(&g),
		newRunCmd(&g),
		newWatchCmd(&g),
		newVersionCmd(),
	)
	return root
}
