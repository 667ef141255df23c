package cli

import (
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/ports/primary"
	"github.com/caburj/kwartrack/internal/wire"
)

var loanCmd = &cobra.Command{
	Use:   "loan",
	Short: "Lend money between partitions and record payments",
}

var loanMakeCmd = &cobra.Command{
	Use:   "make [lender-id] [borrower-id] [category-id] [amount]",
	Short: "Lend money from one partition to another",
	Long: `Lend money from one partition to another through a transfer category.
--to-pay sets the amount expected back (default: the amount lent).

Example:
  kwartrack loan make PART-003 PART-005 CAT-004 200 --desc "bike repair"`,
	Args: cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := userContext()
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[3])
		if err != nil {
			return err
		}
		toPay := decimal.Zero
		if raw := changedString(cmd, "to-pay"); raw != nil {
			if toPay, err = parseAmount(*raw); err != nil {
				return err
			}
		}
		desc, _ := cmd.Flags().GetString("desc")
		date, _ := cmd.Flags().GetString("date")
		at, err := parseDate(date)
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().MakeLoan(ctx, primary.MakeLoanRequest{
			LenderPartitionID:   args[0],
			BorrowerPartitionID: args[1],
			CategoryID:          args[2],
			Amount:              amount,
			ToPay:               toPay,
			Description:         desc,
			CreatedAt:           at,
		})
	},
}

var loanPayCmd = &cobra.Command{
	Use:   "pay [loan-id] [amount]",
	Short: "Pay back part of a loan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, _, err := userContext()
		if err != nil {
			return err
		}
		amount, err := parseAmount(args[1])
		if err != nil {
			return err
		}
		desc, _ := cmd.Flags().GetString("desc")
		date, _ := cmd.Flags().GetString("date")
		at, err := parseDate(date)
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().MakePayment(ctx, primary.MakePaymentRequest{
			LoanID:      args[0],
			Amount:      amount,
			Description: desc,
			CreatedAt:   at,
		})
	},
}

var loanShowCmd = &cobra.Command{
	Use:   "show [loan-id]",
	Short: "Show a loan with its paid amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().ShowLoan(ctx, args[0])
	},
}

var loanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List unpaid loans by lender",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, userID, err := userContext()
		if err != nil {
			return err
		}
		return wire.BrowseAdapter().Loans(ctx, userID)
	},
}

// LoanCmd returns the loan command with all subcommands attached.
func LoanCmd() *cobra.Command {
	loanMakeCmd.Flags().String("to-pay", "", "Amount expected back (default: the amount lent)")
	loanMakeCmd.Flags().StringP("desc", "d", "", "Description")
	loanMakeCmd.Flags().String("date", "", "Date as YYYY-MM-DD (default: now)")
	loanPayCmd.Flags().StringP("desc", "d", "", "Description (default: payment for LOAN-ID)")
	loanPayCmd.Flags().String("date", "", "Date as YYYY-MM-DD (default: now)")

	loanCmd.AddCommand(loanMakeCmd)
	loanCmd.AddCommand(loanPayCmd)
	loanCmd.AddCommand(loanShowCmd)
	loanCmd.AddCommand(loanListCmd)
	return loanCmd
}
