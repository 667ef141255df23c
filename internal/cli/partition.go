package cli

import (
	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/wire"
)

var partitionCmd = &cobra.Command{
	Use:   "partition",
	Short: "Manage partitions (buckets of money within an account)",
}

var partitionCreateCmd = &cobra.Command{
	Use:   "create [account-id] [name]",
	Short: "Add a partition to an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		private, _ := cmd.Flags().GetBool("private")
		return wire.LedgerAdapter().CreatePartition(ctx, args[0], args[1], private)
	},
}

var partitionListCmd = &cobra.Command{
	Use:   "list [account-id]",
	Short: "List the partitions of an account with their balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, userID, err := userContext()
		if err != nil {
			return err
		}
		return wire.BrowseAdapter().Partitions(ctx, userID, args[0])
	},
}

var partitionUpdateCmd = &cobra.Command{
	Use:   "update [partition-id]",
	Short: "Rename, hide or archive a partition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().UpdatePartition(ctx, primary.UpdatePartitionRequest{
			PartitionID: args[0],
			Name:        changedString(cmd, "name"),
			IsPrivate:   changedBool(cmd, "private"),
			Archived:    changedBool(cmd, "archived"),
		})
	},
}

var partitionDeleteCmd = &cobra.Command{
	Use:   "delete [partition-id]",
	Short: "Delete a partition without transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().DeletePartition(ctx, args[0])
	},
}

// PartitionCmd returns the partition command with all subcommands attached.
func PartitionCmd() *cobra.Command {
	partitionCreateCmd.Flags().Bool("private", false, "Hide from users who do not own the account")
	partitionUpdateCmd.Flags().StringP("name", "n", "", "New name")
	partitionUpdateCmd.Flags().Bool("private", false, "Hide from users who do not own the account")
	partitionUpdateCmd.Flags().Bool("archived", false, "Archive the partition")

	partitionCmd.AddCommand(partitionCreateCmd)
	partitionCmd.AddCommand(partitionListCmd)
	partitionCmd.AddCommand(partitionUpdateCmd)
	partitionCmd.AddCommand(partitionDeleteCmd)
	return partitionCmd
}
