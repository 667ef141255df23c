// Package cli holds the cobra commands of kwartrack.
package cli

import (
	gocontext "context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/caburj/kwartrack/internal/core/ledger"
	"github.com/caburj/kwartrack/internal/ctxutil"
	"github.com/caburj/kwartrack/internal/wire"
)

// globalUser is set by the --user persistent flag.
var globalUser string

// dateLayout is the date format accepted by every --date style flag.
const dateLayout = "2006-01-02"

// BindGlobalFlags registers the flags shared by every command.
func BindGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVarP(&globalUser, "user", "u", "", "Acting user name or ID (default: $KWARTRACK_USER)")
}

// NewContext creates a context carrying the acting user and the session.
// The user comes from --user, then KWARTRACK_USER; a name is resolved to its ID.
func NewContext() (gocontext.Context, error) {
	ctx := gocontext.Background()
	ctx = ctxutil.WithSessionID(ctx, wire.SessionService().SessionID())

	user := globalUser
	if user == "" {
		user = wire.Config().User
	}
	if user == "" {
		return ctx, nil
	}
	if ledger.ParseNumber(ledger.PrefixUser, user) > 0 {
		return ctxutil.WithUserID(ctx, user), nil
	}
	found, err := wire.LedgerService().GetUserByName(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("unknown user %q: %w", user, err)
	}
	return ctxutil.WithUserID(ctx, found.ID), nil
}

// userContext is NewContext for commands that need an acting user.
func userContext() (gocontext.Context, string, error) {
	ctx, err := NewContext()
	if err != nil {
		return nil, "", err
	}
	userID := ctxutil.UserFromContext(ctx)
	if userID == "" {
		return nil, "", fmt.Errorf("no acting user\nHint: pass --user or set KWARTRACK_USER")
	}
	return ctx, userID, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// parseDate reads a calendar day as midnight UTC.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return &t, nil
}

// endOfDay moves a parsed day to its last instant, for inclusive range ends.
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return &end
}

// changedString returns the flag value only if the user set it.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// changedBool returns the flag value only if the user set it.
func changedBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}
