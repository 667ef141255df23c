// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
)

var (
	positive = color.New(color.FgGreen)
	negative = color.New(color.FgRed)
	marked   = color.New(color.FgHiMagenta)
	muted    = color.New(color.FgHiBlack)
)

// money renders a signed amount with two decimals, green when positive and
// red when negative.
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	switch {
	case d.IsPositive():
		return positive.Sprint(s)
	case d.IsNegative():
		return negative.Sprint(s)
	default:
		return s
	}
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func check(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "✓ "+format+"\n", args...)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
