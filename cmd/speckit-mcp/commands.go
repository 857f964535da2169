package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/speckit-mcp/internal/config"
	"github.com/HendryAvila/speckit-mcp/internal/dispatch"
	"github.com/HendryAvila/speckit-mcp/internal/render"
	sksrv "github.com/HendryAvila/speckit-mcp/internal/server"
	"github.com/HendryAvila/speckit-mcp/internal/updater"
	"github.com/HendryAvila/speckit-mcp/internal/watch"
)

// doer is the part of the dispatcher the CLI commands need.
type doer interface {
	Do(ctx context.Context, worktree string, req dispatch.Request) *dispatch.Response
}

func newServeCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(g.logLevel)
			cfg, err := loadConfig(g, logger)
			if err != nil {
				return err
			}

			s, cleanup, err := sksrv.New(cfg, logger)
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			// Background version check. Notices go to stderr so they
			// don't interfere with MCP's stdio transport on stdout.
			go checkForUpdates(cmd.Context(), logger)

			logger.Info("Serving speckit over stdio", "repo", cfg.Repo.Path, "version", sksrv.Version)
			return server.ServeStdio(s)
		},
	}
}

type runFlags struct {
	feature  string
	testType string
	format   string
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var flags runFlags
	cmd := &cobra.Command{
		Use:   "run <action>",
		Short: "Run one speckit action and print the response",
		Long: "Run one speckit action against the repository and print the response.\n\n" +
			"Actions: " + strings.Join(dispatch.ActionValues(), ", ") + "\n\n" +
			"Exits 1 when the response reports success=false.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(flags.format)
			if err != nil {
				return codeError(2, "%s", err)
			}
			logger := newLogger(g.logLevel)
			cfg, err := loadConfig(g, logger)
			if err != nil {
				return err
			}

			d, cleanup, err := sksrv.NewDispatcher(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			req := dispatch.Request{
				Action:   dispatch.Action(args[0]),
				Feature:  flags.feature,
				TestType: flags.testType,
			}
			return runAction(cmd.Context(), cmd.OutOrStdout(), d, cfg.Repo.Path, req, format)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.feature, "feature", "", "Feature name for the 'new' action")
	f.StringVar(&flags.testType, "test-type", "", "Test command for the 'test' action (default: all)")
	f.StringVar(&flags.format, "format", "json", "Output format: json or text")
	return cmd
}

// runAction dispatches one request and prints the response. A failed
// response becomes exit code 1 after it has been printed.
func runAction(ctx context.Context, out io.Writer, d doer, worktree string, req dispatch.Request, format render.Format) error {
	if ctx == nil {
		ctx = context.Background()
	}
	resp := d.Do(ctx, worktree, req)
	if err := render.Write(out, format, resp); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	if !resp.Success {
		return codeError(1, "")
	}
	return nil
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the workflow phase and re-print it whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return codeError(2, "%s", err)
			}
			logger := newLogger(g.logLevel)
			cfg, err := loadConfig(g, logger)
			if err != nil {
				return err
			}

			d, cleanup, err := sksrv.NewDispatcher(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			w, err := watch.New(watch.Config{Worktree: cfg.Repo.Path, Logger: logger})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return w.Run(ctx, phasePrinter(cmd.OutOrStdout(), d, cfg.Repo.Path, f, logger))
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format: json or text")
	return cmd
}

// phasePrinter returns a watch callback that runs the phase action and
// prints the response only when the workflow state changed.
func phasePrinter(out io.Writer, d doer, worktree string, format render.Format, logger *slog.Logger) func(context.Context) {
	var dedup watch.Dedup
	return func(ctx context.Context) {
		resp := d.Do(ctx, worktree, dispatch.Request{Action: dispatch.ActionPhase})
		if !dedup.Changed(render.Fingerprint(resp)) {
			return
		}
		if err := render.Write(out, format, resp); err != nil {
			logger.Error("Failed to write phase report", "error", err)
		}
	}
}

func newVersionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "speckit-mcp v%s\n", sksrv.Version)
			if !check {
				return nil
			}
			result, err := updater.Check(cmd.Context(), sksrv.Version)
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}
			if notice := result.Notice(); notice != "" {
				fmt.Fprintln(out, notice)
			} else {
				fmt.Fprintln(out, "Already at the latest version.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Also check GitHub for a newer release")
	return cmd
}

// checkForUpdates runs a best-effort version check and logs a notice if
// an update is available. Network failures are only logged at debug.
func checkForUpdates(ctx context.Context, logger *slog.Logger) {
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := updater.Check(ctx, sksrv.Version)
	if err != nil {
		logger.Debug("Update check failed", "error", err)
		return
	}
	if notice := result.Notice(); notice != "" {
		logger.Warn(notice)
	}
}

// newLogger builds the stderr logger. stdout belongs to the MCP transport.
func newLogger(level string) *slog.Logger {
	lvl := slog.LevelWarn
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func loadConfig(g *globalFlags, logger *slog.Logger) (*config.Config, error) {
	cfg, err := config.NewLoader(logger).Load(g.repoPath, g.configPath)
	if err != nil {
		return nil, codeError(2, "%s", err)
	}
	return cfg, nil
}
