package cli

import (
	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/wire"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage categories (income, expense, transfer)",
}

var categoryCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a category for the acting user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := userContext()
		if err != nil {
			return err
		}
		kind, _ := cmd.Flags().GetString("kind")
		private, _ := cmd.Flags().GetBool("private")
		return wire.LedgerAdapter().CreateCategory(ctx, args[0], kind, private)
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories with balances and budgets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, userID, err := userContext()
		if err != nil {
			return err
		}
		return wire.BrowseAdapter().Categories(ctx, userID)
	},
}

var categoryUpdateCmd = &cobra.Command{
	Use:   "update [category-id]",
	Short: "Rename, hide or archive a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().UpdateCategory(ctx, primary.UpdateCategoryRequest{
			CategoryID: args[0],
			Name:       changedString(cmd, "name"),
			IsPrivate:  changedBool(cmd, "private"),
			Archived:   changedBool(cmd, "archived"),
		})
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete [category-id]",
	Short: "Delete a category no transaction uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().DeleteCategory(ctx, args[0])
	},
}

// CategoryCmd returns the category command with all subcommands attached.
func CategoryCmd() *cobra.Command {
	categoryCreateCmd.Flags().StringP("kind", "k", "Expense", "Category kind: Income, Expense or Transfer")
	categoryCreateCmd.Flags().Bool("private", false, "Hide from other users")
	categoryUpdateCmd.Flags().StringP("name", "n", "", "New name")
	categoryUpdateCmd.Flags().Bool("private", false, "Hide from other users")
	categoryUpdateCmd.Flags().Bool("archived", false, "Archive the category")

	categoryCmd.AddCommand(categoryCreateCmd)
	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryUpdateCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
	return categoryCmd
}
