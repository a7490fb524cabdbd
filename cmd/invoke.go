package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mosscap/mosscap/internal/app"
	"github.com/mosscap/mosscap/internal/config"
)

func newInvokeCmd() *cobra.Command {
	var userID, sessionID string

	cmd := &cobra.Command{
		Use:   "invoke [input]",
		Short: "Run a single conversation turn",
		Long: `Run one conversation turn and print the assistant's reply.

The turn joins the stored conversation for --user and --session; omit
--session to start a throwaway one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(cmd.Context(), userID, sessionID, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user identifier")
	cmd.Flags().StringVar(&sessionID, "session", "", "session identifier (default: a fresh random one)")

	return cmd
}

func runInvoke(ctx context.Context, userID, sessionID, input string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// A random session keeps one-shot invocations from growing the
	// default session indefinitely.
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	a, err := app.Setup(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			slog.Warn("shutdown error", "error", closeErr)
		}
	}()

	reply, err := a.Service.Run(ctx, userID, sessionID, input)
	if err != nil {
		return fmt.Errorf("running turn: %w", err)
	}

	fmt.Println(reply)
	return nil
}
