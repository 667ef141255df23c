package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/wire"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		return wire.LedgerAdapter().CreateUser(context.Background(), args[0], email)
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().ListUsers(context.Background())
	},
}

// UserCmd returns the user command with all subcommands attached.
func UserCmd() *cobra.Command {
	userCreateCmd.Flags().StringP("email", "e", "", "Email address")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	return userCmd
}
