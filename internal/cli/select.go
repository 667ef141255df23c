package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/core/selection"
	"github.com/caburj/kwartrack/internal/wire"
)

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Change what the session shows",
	Long: `Change the session selection. Toggling ids that are all selected
deselects them; otherwise the missing ones are added.

Examples:
  kwartrack select partition PART-001 PART-002
  kwartrack select account ACC-001
  kwartrack select kind expense`,
}

func toggleFieldCmd(use, short string, field selection.Field) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [id...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := NewContext()
			if err != nil {
				return err
			}
			return wire.SelectionAdapter().Toggle(ctx, field, args)
		},
	}
}

var selectAccountCmd = &cobra.Command{
	Use:   "account [account-id]",
	Short: "Toggle every visible partition of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, userID, err := userContext()
		if err != nil {
			return err
		}
		return wire.SelectionAdapter().ToggleAccount(ctx, userID, args[0])
	},
}

var selectKindCmd = &cobra.Command{
	Use:   "kind [income|expense|transfer]",
	Short: "Toggle every category of a kind",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, userID, err := userContext()
		if err != nil {
			return err
		}
		return wire.SelectionAdapter().ToggleCategoryKind(ctx, userID, args[0])
	},
}

var selectSourceCmd = &cobra.Command{
	Use:   "source [partition-id]",
	Short: "Pick the default source partition for 'tx add'",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		var id string
		if len(args) > 0 {
			id = args[0]
		}
		return wire.SelectionAdapter().Source(ctx, id)
	},
}

var selectFormCategoryCmd = &cobra.Command{
	Use:   "form-category [category-id]",
	Short: "Pick the default category for 'tx add'",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		var id string
		if len(args) > 0 {
			id = args[0]
		}
		return wire.SelectionAdapter().Category(ctx, id)
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear [partitions|categories|loans|all]",
	Short: "Clear a selection, or reset the session with 'all'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		return wire.SelectionAdapter().Clear(ctx, args[0])
	},
}

var monthCmd = &cobra.Command{
	Use:   "month [prev|next|this]",
	Short: "Move the date window by calendar month",
	Long: `Move the date window by calendar month. From the overall balance, prev
and next start from the month before or after the current one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		direction := "this"
		if len(args) > 0 {
			direction = args[0]
		}
		return wire.SelectionAdapter().Month(ctx, direction)
	},
}

var rangeCmd = &cobra.Command{
	Use:   "range [start] [end]",
	Short: "Set the date window to whole days (YYYY-MM-DD)",
	Long:  "Set the date window. Both days are inclusive; pass an empty string to leave a side open.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		start, err := parseDate(args[0])
		if err != nil {
			return err
		}
		end, err := parseDate(args[1])
		if err != nil {
			return err
		}
		return wire.SelectionAdapter().Range(ctx, start, endOfDay(end))
	},
}

var overallCmd = &cobra.Command{
	Use:   "overall",
	Short: "Switch between overall and windowed balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		return wire.SelectionAdapter().Overall(ctx)
	},
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return n, nil
}

var pageCmd = &cobra.Command{
	Use:   "page [n]",
	Short: "Jump to a page of the transaction list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		n, err := parsePositive(args[0])
		if err != nil {
			return err
		}
		return wire.SelectionAdapter().Page(ctx, n)
	},
}

var perPageCmd = &cobra.Command{
	Use:   "per-page [n]",
	Short: "Change how many transactions a page holds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := NewContext()
		if err != nil {
			return err
		}
		n, err := parsePositive(args[0])
		if err != nil {
			return err
		}
		reset, _ := cmd.Flags().GetBool("reset")
		return wire.SelectionAdapter().PerPage(ctx, n, reset)
	},
}

// SelectCmd returns the select command with all subcommands attached.
func SelectCmd() *cobra.Command {
	selectCmd.AddCommand(toggleFieldCmd("partition", "Toggle partitions", selection.FieldPartitions))
	selectCmd.AddCommand(toggleFieldCmd("category", "Toggle categories", selection.FieldCategories))
	selectCmd.AddCommand(toggleFieldCmd("loan", "Toggle loans", selection.FieldLoans))
	selectCmd.AddCommand(selectAccountCmd)
	selectCmd.AddCommand(selectKindCmd)
	selectCmd.AddCommand(selectSourceCmd)
	selectCmd.AddCommand(selectFormCategoryCmd)
	return selectCmd
}

// ClearCmd returns the clear command.
func ClearCmd() *cobra.Command { return clearCmd }

// MonthCmd returns the month command.
func MonthCmd() *cobra.Command { return monthCmd }

// RangeCmd returns the range command.
func RangeCmd() *cobra.Command { return rangeCmd }

// OverallCmd returns the overall command.
func OverallCmd() *cobra.Command { return overallCmd }

// PageCmd returns the page command.
func PageCmd() *cobra.Command { return pageCmd }

// PerPageCmd returns the per-page command.
func PerPageCmd() *cobra.Command {
	perPageCmd.Flags().Bool("reset", false, "Go back to the first page")
	return perPageCmd
}
