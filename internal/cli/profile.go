package cli

import (
	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/wire"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage budget profiles (saved partition selections with budgets)",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create [name] [partition-id...]",
	Short: "Save a named partition selection",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := userContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().CreateBudgetProfile(ctx, args[0], args[1:])
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budget profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, userID, err := userContext()
		if err != nil {
			return err
		}
		return wire.BrowseAdapter().Profiles(ctx, userID)
	},
}

var profileToggleCmd = &cobra.Command{
	Use:   "toggle [profile-id] [partition-id]",
	Short: "Add a partition to a profile, or remove it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := userContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().ToggleProfilePartition(ctx, args[0], args[1])
	},
}

var profileBudgetCmd = &cobra.Command{
	Use:   "budget [profile-id] [category-id] [amount]",
	Short: "Set the budget of a category under a profile",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := userContext()
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[2])
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().SetBudget(ctx, primary.SetBudgetRequest{
			ProfileID:  args[0],
			CategoryID: args[1],
			Amount:     amount,
		})
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use [profile-id]",
	Short: "Activate a profile in the session, or deactivate it",
	Long: `Select the partitions of a budget profile and show its budgets. Running
it again on the active profile deactivates it. Needs the overall balance off.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, userID, err := userContext()
		if err != nil {
			return err
		}
		return wire.SelectionAdapter().ToggleProfile(ctx, userID, args[0])
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete [profile-id]",
	Short: "Delete a profile and its budgets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := userContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().DeleteBudgetProfile(ctx, args[0])
	},
}

// ProfileCmd returns the profile command with all subcommands attached.
func ProfileCmd() *cobra.Command {
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileToggleCmd)
	profileCmd.AddCommand(profileBudgetCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileDeleteCmd)
	return profileCmd
}
