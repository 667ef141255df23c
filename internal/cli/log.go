package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/wire"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View ledger activity logs",
	Long:  "View the audit trail of changes made to the ledger",
}

var logTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show recent activity",
	Long:  "Show recent activity log entries (default 50)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		userID, _ := cmd.Flags().GetString("by")
		entityType, _ := cmd.Flags().GetString("type")
		if limit <= 0 {
			limit = 50
		}

		entries, err := wire.LogService().ListLogs(ctx, primary.LogFilters{
			UserID:     userID,
			EntityType: entityType,
			Limit:      limit,
		})
		if err != nil {
			return fmt.Errorf("failed to fetch logs: %w", err)
		}
		printLogEntries(entries)
		return nil
	},
}

var logShowCmd = &cobra.Command{
	Use:   "show [entity-id]",
	Short: "Show the history of one entity",
	Long:  "Show every change to one entity, oldest first (e.g., TX-004, LOAN-001, BP-001)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		entries, err := wire.LogService().EntityHistory(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch logs: %w", err)
		}
		if len(entries) == 0 {
			fmt.Printf("No activity recorded for %s.\n", args[0])
			return nil
		}
		for _, entry := range entries {
			printLogEntry(entry)
		}
		return nil
	},
}

func printLogEntries(entries []*primary.LogEntry) {
	if len(entries) == 0 {
		fmt.Println("No log entries found.")
		return
	}

	fmt.Printf("Found %d log entries:\n\n", len(entries))

	// oldest first
	for i := len(entries) - 1; i >= 0; i-- {
		printLogEntry(entries[i])
	}
}

func printLogEntry(entry *primary.LogEntry) {
	user := entry.UserID
	if user == "" {
		user = "-"
	}

	fmt.Printf("%s | %-8s | %s %s | %s/%s",
		formatTimestamp(entry.CreatedAt),
		user,
		actionIcon(entry.Action),
		entry.Action,
		entry.EntityType,
		entry.EntityID,
	)
	if entry.Action == "update" && entry.FieldName != "" {
		fmt.Printf(" | %s: %s -> %s", entry.FieldName, entry.OldValue, entry.NewValue)
	}
	fmt.Println()
}

func actionIcon(action string) string {
	switch action {
	case "create":
		return "+"
	case "update":
		return "~"
	case "delete":
		return "-"
	default:
		return "?"
	}
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// LogCmd returns the log command with all subcommands attached.
func LogCmd() *cobra.Command {
	logTailCmd.Flags().IntP("limit", "n", 50, "Number of entries to show")
	logTailCmd.Flags().String("by", "", "Filter by user ID")
	logTailCmd.Flags().String("type", "", "Filter by entity type (transaction, loan, account, ...)")

	logCmd.AddCommand(logTailCmd)
	logCmd.AddCommand(logShowCmd)
	return logCmd
}
