package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caburj/kwartrack/internal/core/selection"
	"github.com/caburj/kwartrack/internal/ports/primary"
)

// SelectionAdapter translates selection commands to session actions. Actions
// that name a group (an account, a category kind, a budget profile) are
// resolved to ids through the browse service first.
type SelectionAdapter struct {
	session primary.SessionService
	browse  primary.BrowseService
	out     io.Writer
	now     func() time.Time
}

// NewSelectionAdapter creates a new SelectionAdapter.
func NewSelectionAdapter(session primary.SessionService, browse primary.BrowseService, out io.Writer) *SelectionAdapter {
	return &SelectionAdapter{
		session: session,
		browse:  browse,
		out:     out,
		now:     time.Now,
	}
}

func (a *SelectionAdapter) dispatch(ctx context.Context, action selection.Action) error {
	state, err := a.session.Dispatch(ctx, action)
	if err != nil {
		return err
	}
	printState(a.out, state)
	return nil
}

// Toggle toggles ids of one field as a batch.
func (a *SelectionAdapter) Toggle(ctx context.Context, field selection.Field, ids []string) error {
	return a.dispatch(ctx, selection.ToggleIDs{Field: field, IDs: ids})
}

// ToggleAccount toggles every visible partition of an account.
func (a *SelectionAdapter) ToggleAccount(ctx context.Context, userID, accountID string) error {
	partitions, err := a.browse.Partitions(ctx, userID, accountID)
	if err != nil {
		return fmt.Errorf("failed to list partitions: %w", err)
	}
	ids := make([]string, len(partitions))
	for i, p := range partitions {
		ids[i] = p.ID
	}
	return a.dispatch(ctx, selection.ToggleAccount{PartitionIDs: ids})
}

// ToggleCategoryKind toggles every category of a kind owned by the user.
func (a *SelectionAdapter) ToggleCategoryKind(ctx context.Context, userID, kind string) error {
	categories, err := a.browse.Categories(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	var ids []string
	for _, c := range categories {
		if strings.EqualFold(c.Kind, kind) {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no %s categories found", strings.ToLower(kind))
	}
	return a.dispatch(ctx, selection.ToggleCategoryKind{CategoryIDs: ids})
}

// ToggleProfile activates a budget profile, or deactivates the active one.
func (a *SelectionAdapter) ToggleProfile(ctx context.Context, userID, profileID string) error {
	profiles, err := a.browse.BudgetProfiles(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list budget profiles: %w", err)
	}
	for _, p := range profiles {
		if p.ID == profileID {
			return a.dispatch(ctx, selection.ToggleBudgetProfile{ProfileID: p.ID, PartitionIDs: p.PartitionIDs})
		}
	}
	return fmt.Errorf("budget profile %s not found", profileID)
}

// Month moves the window: prev, next or this.
func (a *SelectionAdapter) Month(ctx context.Context, direction string) error {
	now := a.now()
	switch direction {
	case "prev":
		return a.dispatch(ctx, selection.SetPrevMonth{Now: now})
	case "next":
		return a.dispatch(ctx, selection.SetNextMonth{Now: now})
	case "this", "":
		return a.dispatch(ctx, selection.SetThisMonth{Now: now})
	default:
		return fmt.Errorf("invalid month direction %q (want prev, next or this)", direction)
	}
}

// Range sets absolute window bounds. Either may be nil.
func (a *SelectionAdapter) Range(ctx context.Context, start, end *time.Time) error {
	return a.dispatch(ctx, selection.SetDateRange{Start: start, End: end})
}

// Overall flips between overall and windowed balances.
func (a *SelectionAdapter) Overall(ctx context.Context) error {
	return a.dispatch(ctx, selection.ToggleOverallBalance{})
}

// Page jumps to a page.
func (a *SelectionAdapter) Page(ctx context.Context, n int) error {
	return a.dispatch(ctx, selection.SetCurrentPage{N: n})
}

// PerPage changes the page size.
func (a *SelectionAdapter) PerPage(ctx context.Context, n int, resetPage bool) error {
	return a.dispatch(ctx, selection.SetItemsPerPage{N: n, ResetPage: resetPage})
}

// Source picks the default source partition for new transactions.
func (a *SelectionAdapter) Source(ctx context.Context, partitionID string) error {
	return a.dispatch(ctx, selection.SelectSource{PartitionID: partitionID})
}

// Category picks the default category for new transactions.
func (a *SelectionAdapter) Category(ctx context.Context, categoryID string) error {
	return a.dispatch(ctx, selection.SelectCategory{CategoryID: categoryID})
}

// Clear empties one field, or resets the whole session for "all".
func (a *SelectionAdapter) Clear(ctx context.Context, what string) error {
	switch what {
	case "partitions":
		return a.dispatch(ctx, selection.ClearPartitionSelection{})
	case "categories":
		return a.dispatch(ctx, selection.ClearCategorySelection{})
	case "loans":
		return a.dispatch(ctx, selection.ClearLoanSelection{})
	case "all":
		state, err := a.session.Reset(ctx)
		if err != nil {
			return err
		}
		printState(a.out, state)
		return nil
	default:
		return fmt.Errorf("invalid selection %q (want partitions, categories, loans or all)", what)
	}
}
