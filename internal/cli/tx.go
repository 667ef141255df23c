package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/wire"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record and browse transactions",
}

var txAddCmd = &cobra.Command{
	Use:   "add [value]",
	Short: "Record an income, an expense or a transfer",
	Long: `Record a transaction. Enter the value as a positive amount; the sign
follows the category kind. A transfer needs --to.

--from and --category default to the partition and category picked with
'kwartrack select source' and 'kwartrack select form-category'.

Examples:
  kwartrack tx add 84.20 --from PART-001 --category CAT-002 --desc market
  kwartrack tx add 500 --from PART-003 --to PART-001 --category CAT-004`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := userContext()
		if err != nil {
			return err
		}
		value, err := parseAmount(args[0])
		if err != nil {
			return err
		}
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		category, _ := cmd.Flags().GetString("category")
		desc, _ := cmd.Flags().GetString("desc")
		date, _ := cmd.Flags().GetString("date")
		at, err := parseDate(date)
		if err != nil {
			return err
		}

		state := wire.SessionService().State()
		if from == "" {
			from = state.SelectedSourceID
		}
		if category == "" {
			category = state.SelectedCategoryID
		}
		if from == "" || category == "" {
			return fmt.Errorf("a transaction needs --from and --category\nHint: or pick defaults with 'kwartrack select source' and 'kwartrack select form-category'")
		}

		return wire.LedgerAdapter().AddTransaction(ctx, primary.CreateTransactionRequest{
			SourcePartitionID:      from,
			DestinationPartitionID: to,
			CategoryID:             category,
			Value:                  value,
			Description:            desc,
			CreatedAt:              at,
		})
	},
}

var txEditCmd = &cobra.Command{
	Use:   "edit [transaction-id]",
	Short: "Edit a transaction and its counterpart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := userContext()
		if err != nil {
			return err
		}
		req := primary.UpdateTransactionRequest{
			TransactionID: args[0],
			CategoryID:    changedString(cmd, "category"),
			Description:   changedString(cmd, "desc"),
		}
		if raw := changedString(cmd, "value"); raw != nil {
			value, err := parseAmount(*raw)
			if err != nil {
				return err
			}
			req.Value = &value
		}
		if raw := changedString(cmd, "date"); raw != nil {
			if req.CreatedAt, err = parseDate(*raw); err != nil {
				return err
			}
		}
		return wire.LedgerAdapter().EditTransaction(ctx, req)
	},
}

var txDeleteCmd = &cobra.Command{
	Use:   "delete [transaction-id]",
	Short: "Delete a transaction and its counterpart",
	Long: `Delete a transaction and its counterpart. Deleting the transaction that
made a loan also deletes the loan and every payment made on it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := userContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().DeleteTransaction(ctx, args[0])
	},
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the selected transactions, one page at a time",
	Long:  "List the transactions matching the session selection. Move between pages with 'kwartrack page'.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, userID, err := userContext()
		if err != nil {
			return err
		}
		return wire.BrowseAdapter().Transactions(ctx, userID)
	},
}

var txGroupedCmd = &cobra.Command{
	Use:   "grouped",
	Short: "Total the selected transactions per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, userID, err := userContext()
		if err != nil {
			return err
		}
		return wire.BrowseAdapter().Grouped(ctx, userID)
	},
}

// TxCmd returns the tx command with all subcommands attached.
func TxCmd() *cobra.Command {
	txAddCmd.Flags().String("from", "", "Source partition ID")
	txAddCmd.Flags().String("to", "", "Destination partition ID (transfers only)")
	txAddCmd.Flags().StringP("category", "c", "", "Category ID")
	txAddCmd.Flags().StringP("desc", "d", "", "Description")
	txAddCmd.Flags().String("date", "", "Date as YYYY-MM-DD (default: now)")

	txEditCmd.Flags().StringP("category", "c", "", "New category ID")
	txEditCmd.Flags().String("value", "", "New positive amount")
	txEditCmd.Flags().StringP("desc", "d", "", "New description")
	txEditCmd.Flags().String("date", "", "New date as YYYY-MM-DD")

	txCmd.AddCommand(txAddCmd)
	txCmd.AddCommand(txEditCmd)
	txCmd.AddCommand(txDeleteCmd)
	txCmd.AddCommand(txListCmd)
	txCmd.AddCommand(txGroupedCmd)
	return txCmd
}
