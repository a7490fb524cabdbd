// Package cmd provides the mosscap CLI commands.
//
// Commands:
//   - serve: HTTP API server exposing POST /api/v1/invoke
//   - invoke: run a single conversation turn from the terminal
//   - version: show build information
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mosscap/mosscap/internal/log"
)

// NewRootCmd builds the mosscap command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mosscap",
		Short: "Mosscap conversational assistant",
		Long: `Mosscap is a conversational assistant with persistent sessions.
It answers from the model's own knowledge, reaching for a web search
only when a question needs fresh information, and remembers each
conversation across restarts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newInvokeCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command. It is the entry point called from main.
func Execute() error {
	slog.SetDefault(initLogger())
	return NewRootCmd().Execute()
}

// initLogger builds the process-wide logger. DEBUG in the environment
// switches on debug-level output; MOSSCAP_LOG_JSON switches to JSON.
func initLogger() *slog.Logger {
	cfg := log.Config{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		cfg.Level = slog.LevelDebug
	}
	if os.Getenv("MOSSCAP_LOG_JSON") != "" {
		cfg.JSON = true
	}
	return log.New(cfg)
}
