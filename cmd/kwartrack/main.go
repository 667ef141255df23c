package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/cli"
	"github.com/caburj/kwartrack/internal/version"
	"github.com/caburj/kwartrack/internal/wire"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "kwartrack",
		Short:   "kwartrack - shared personal finance tracking",
		Version: version.String(),
		Long: `kwartrack tracks money across shared accounts split into partitions.
Each session keeps a selection (partitions, categories, loans, date window,
page) that every browsing command reads.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			wire.Shutdown()
		},
	}
	cli.BindGlobalFlags(rootCmd)

	// Setup
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.UserCmd())

	// Ledger
	rootCmd.AddCommand(cli.AccountCmd())
	rootCmd.AddCommand(cli.PartitionCmd())
	rootCmd.AddCommand(cli.CategoryCmd())
	rootCmd.AddCommand(cli.TxCmd())
	rootCmd.AddCommand(cli.LoanCmd())
	rootCmd.AddCommand(cli.ProfileCmd())

	// Session selection
	rootCmd.AddCommand(cli.StateCmd())
	rootCmd.AddCommand(cli.BalanceCmd())
	rootCmd.AddCommand(cli.SelectCmd())
	rootCmd.AddCommand(cli.ClearCmd())
	rootCmd.AddCommand(cli.MonthCmd())
	rootCmd.AddCommand(cli.RangeCmd())
	rootCmd.AddCommand(cli.OverallCmd())
	rootCmd.AddCommand(cli.PageCmd())
	rootCmd.AddCommand(cli.PerPageCmd())

	rootCmd.AddCommand(cli.LogCmd())
	rootCmd.AddCommand(cli.WatchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		wire.Shutdown()
		os.Exit(1)
	}
}
