package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/ctxutil"
	"github.com/caburj/kwartrack/internal/ports/secondary"
	"github.com/caburj/kwartrack/internal/wire"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow invalidations broadcast by other sessions",
	Long: `Subscribe to the invalidation exchange and drop the matching cached
queries as other sessions change the ledger. With an acting user the
dashboard is loaded on start and reloaded after every message, so the
dropped count reflects what this session had cached. Runs until interrupted.

Needs AMQP_URL.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wire.Config().AMQPEnabled() {
			return fmt.Errorf("broadcasting is disabled\nHint: set AMQP_URL")
		}
		client := wire.AMQPClient()
		if client == nil {
			return fmt.Errorf("broker unreachable at %s", wire.Config().AMQPURL)
		}

		base, err := NewContext()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
		defer stop()

		sessionID := wire.SessionService().SessionID()
		userID := ctxutil.UserFromContext(ctx)
		executor := wire.Executor()
		if err := warmDashboard(ctx, userID); err != nil {
			return err
		}
		fmt.Printf("Watching invalidations (session %s). Press Ctrl-C to stop.\n", sessionID)

		err = client.Subscribe(ctx, sessionID, func(msg secondary.InvalidationMessage) error {
			dropped := executor.ApplyRemote(ctx, msg)
			patterns := make([]string, len(msg.Patterns))
			for i, p := range msg.Patterns {
				patterns[i] = p.String()
			}
			fmt.Printf("%s from %s: %s (%d dropped)\n", msg.Mutation, msg.SessionID, strings.Join(patterns, ", "), dropped)
			if dropped > 0 {
				if err := warmDashboard(ctx, userID); err != nil {
					fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
				}
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			return fmt.Errorf("subscription ended: %w", err)
		}
		return nil
	},
}

// warmDashboard loads the user's dashboard through the query cache.
func warmDashboard(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if _, err := wire.BrowseService().Dashboard(ctx, wire.SessionService().State(), userID); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}
	return nil
}

// WatchCmd returns the watch command.
func WatchCmd() *cobra.Command { return watchCmd }
