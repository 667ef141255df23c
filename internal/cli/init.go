package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/db"
	"github.com/caburj/kwartrack/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the kwartrack database",
		Long: `Initialize the kwartrack database with the required schema.

With --seed, the database is filled with demo data: two users (ana, ben)
sharing a household account, one private account each, categories and a
month of transactions including a transfer and a loan.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetBool("seed")
			cfg := wire.Config()

			fmt.Printf("Initializing kwartrack database at %s\n", cfg.DBPath)
			conn := wire.DB()
			fmt.Printf("✓ Schema at version %d\n", db.LatestVersion())

			if seed {
				if err := db.SeedFixtures(conn); err != nil {
					return fmt.Errorf("failed to seed database: %w", err)
				}
				fmt.Println("✓ Demo data created")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			if seed {
				fmt.Println("  kwartrack --user ana balance")
				fmt.Println("  kwartrack --user ana tx list")
			} else {
				fmt.Println("  kwartrack user create ana")
				fmt.Println("  kwartrack --user ana account create \"Wallet\" --partition Cash")
			}
			return nil
		},
	}
	cmd.Flags().Bool("seed", false, "Fill the database with demo data")
	return cmd
}
