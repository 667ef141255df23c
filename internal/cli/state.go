package cli

import (
	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/wire"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the session selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		wire.BrowseAdapter().State()
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show account and partition balances for the current window",
	Long: `Show the balance of every visible account and partition. With the
overall balance on, every transaction counts; otherwise only those in the
date window. Selected partitions are marked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, userID, err := userContext()
		if err != nil {
			return err
		}
		return wire.BrowseAdapter().Dashboard(ctx, userID)
	},
}

// StateCmd returns the state command.
func StateCmd() *cobra.Command { return stateCmd }

// BalanceCmd returns the balance command.
func BalanceCmd() *cobra.Command { return balanceCmd }
