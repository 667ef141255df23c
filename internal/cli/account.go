package cli

import (
	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/wire"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
	Long:  "Create, rename, share and delete accounts. Balances are shown by 'kwartrack balance'.",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new account",
	Long: `Create a new account owned by the acting user, or by the users given
with --owner. With --partition, a first partition is created in it.

Examples:
  kwartrack account create "Wallet" --partition Cash
  kwartrack account create "Household" --owner USER-001 --owner USER-002`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		owners, _ := cmd.Flags().GetStringSlice("owner")
		partition, _ := cmd.Flags().GetString("partition")
		return wire.LedgerAdapter().CreateAccount(ctx, args[0], owners, partition)
	},
}

var accountRenameCmd = &cobra.Command{
	Use:   "rename [account-id] [name]",
	Short: "Rename an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().RenameAccount(ctx, args[0], args[1])
	},
}

var accountOwnersCmd = &cobra.Command{
	Use:   "owners [account-id] [user-id...]",
	Short: "Replace the owners of an account",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().SetAccountOwners(ctx, args[0], args[1:])
	},
}

var accountDeleteCmd = &cobra.Command{
	Use:   "delete [account-id]",
	Short: "Delete an account without transactions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().DeleteAccount(ctx, args[0])
	},
}

// AccountCmd returns the account command with all subcommands attached.
func AccountCmd() *cobra.Command {
	accountCreateCmd.Flags().StringSlice("owner", nil, "Owner user ID (repeatable, default: acting user)")
	accountCreateCmd.Flags().StringP("partition", "p", "", "Name of a first partition")

	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountRenameCmd)
	accountCmd.AddCommand(accountOwnersCmd)
	accountCmd.AddCommand(accountDeleteCmd)
	return accountCmd
}
