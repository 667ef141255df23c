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

// BrowseAdapter renders read-side queries for the state of one session.
type BrowseAdapter struct {
	browse  primary.BrowseService
	session primary.SessionService
	out     io.Writer
}

// NewBrowseAdapter creates a new BrowseAdapter.
func NewBrowseAdapter(browse primary.BrowseService, session primary.SessionService, out io.Writer) *BrowseAdapter {
	return &BrowseAdapter{
		browse:  browse,
		session: session,
		out:     out,
	}
}

// Dashboard prints every account with its partitions and balances. Selected
// partitions are marked.
func (a *BrowseAdapter) Dashboard(ctx context.Context, userID string) error {
	state := a.session.State()
	dashboard, err := a.browse.Dashboard(ctx, state, userID)
	if err != nil {
		return fmt.Errorf("failed to load balances: %w", err)
	}
	if len(dashboard.Accounts) == 0 {
		fmt.Fprintln(a.out, "No accounts found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%s\n\n", windowLabel(state))
	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tNAME\tGROUP\tBALANCE")
	for _, summary := range dashboard.Accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", summary.Account.ID, summary.Account.Name, summary.Account.Group, money(summary.Balance))
		for _, p := range summary.Partitions {
			name := "  " + p.Partition.Name
			if p.Selected {
				name += marked.Sprint(" ←")
			}
			if p.Partition.IsPrivate {
				name += muted.Sprint(" (private)")
			}
			fmt.Fprintf(w, "  %s\t%s\t\t%s\n", p.Partition.ID, name, money(p.Balance))
		}
	}
	fmt.Fprintf(w, "\tTOTAL\t\t%s\n", money(dashboard.Total))
	return w.Flush()
}

// Transactions prints the current page of selected transactions.
func (a *BrowseAdapter) Transactions(ctx context.Context, userID string) error {
	state := a.session.State()
	page, err := a.browse.Transactions(ctx, state, userID)
	if err != nil {
		return fmt.Errorf("failed to list transactions: %w", err)
	}
	if len(page.Transactions) == 0 {
		fmt.Fprintln(a.out, "No transactions found")
		return nil
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tDATE\tPARTITION\tCATEGORY\tVALUE\tDESCRIPTION")
	for _, tx := range page.Transactions {
		desc := tx.Description
		if tx.LoanID != "" {
			desc = strings.TrimSpace(desc + " " + muted.Sprintf("[%s]", tx.LoanID))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, tx.CreatedAt.Format("2006-01-02"), tx.SourcePartitionID, tx.CategoryID, money(tx.Value), desc)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "\npage %d of %d (%d transactions)\n", page.Page, page.Pages(), page.Total)
	return nil
}

// Grouped prints the selected transactions totalled per category.
func (a *BrowseAdapter) Grouped(ctx context.Context, userID string) error {
	totals, err := a.browse.GroupedTransactions(ctx, a.session.State(), userID)
	if err != nil {
		return fmt.Errorf("failed to group transactions: %w", err)
	}
	if len(totals) == 0 {
		fmt.Fprintln(a.out, "No transactions found")
		return nil
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "CATEGORY\tKIND\tCOUNT\tTOTAL")
	for _, t := range totals {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.CategoryName, t.Kind, t.Count, money(t.Total))
	}
	return w.Flush()
}

// Categories prints the categories of the user with their balances and, when
// a budget profile is active, their budgets.
func (a *BrowseAdapter) Categories(ctx context.Context, userID string) error {
	state := a.session.State()
	categories, err := a.browse.Categories(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	if len(categories) == 0 {
		fmt.Fprintln(a.out, "No categories found")
		return nil
	}

	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	budgets, err := a.browse.BudgetAmounts(ctx, state, ids)
	if err != nil {
		return fmt.Errorf("failed to load budgets: %w", err)
	}

	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tBALANCE\tBUDGET")
	for _, c := range categories {
		balance, err := a.browse.CategoryBalance(ctx, state, c.ID)
		if err != nil {
			return fmt.Errorf("failed to load balance of %s: %w", c.ID, err)
		}
		name := c.Name
		if state.IsSelected(selection.FieldCategories, c.ID) {
			name += marked.Sprint(" ←")
		}
		if c.Archived {
			name += muted.Sprint(" (archived)")
		}
		budget := "-"
		if amount, ok := budgets[c.ID]; ok && !amount.IsZero() {
			budget = amount.StringFixed(2)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.ID, name, c.Kind, money(balance), budget)
	}
	return w.Flush()
}

// Partitions prints the partitions of an account visible to the user.
func (a *BrowseAdapter) Partitions(ctx context.Context, userID, accountID string) error {
	partitions, err := a.browse.Partitions(ctx, userID, accountID)
	if err != nil {
		return fmt.Errorf("failed to list partitions: %w", err)
	}
	if len(partitions) == 0 {
		fmt.Fprintln(a.out, "No partitions found")
		return nil
	}

	state := a.session.State()
	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tNAME\tBALANCE\tDELETABLE")
	for _, p := range partitions {
		balance, err := a.browse.PartitionBalance(ctx, state, p.ID)
		if err != nil {
			return fmt.Errorf("failed to load balance of %s: %w", p.ID, err)
		}
		deletable, err := a.browse.PartitionCanBeDeleted(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to check %s: %w", p.ID, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", p.ID, p.Name, money(balance), deletable)
	}
	return w.Flush()
}

// Loans prints every lender partition with its unpaid loans.
func (a *BrowseAdapter) Loans(ctx context.Context, userID string) error {
	lenders, err := a.browse.PartitionsWithLoans(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list lenders: %w", err)
	}
	if len(lenders) == 0 {
		fmt.Fprintln(a.out, "No unpaid loans")
		return nil
	}

	state := a.session.State()
	w := newTable(a.out)
	fmt.Fprintln(w, "LOAN\tLENDER\tBORROWER\tTO PAY\tPAID\tREMAINING")
	for _, lender := range lenders {
		loans, err := a.browse.UnpaidLoans(ctx, lender.ID)
		if err != nil {
			return fmt.Errorf("failed to list loans of %s: %w", lender.ID, err)
		}
		for _, loan := range loans {
			id := loan.ID
			if state.IsSelected(selection.FieldLoans, loan.ID) {
				id += marked.Sprint(" ←")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", id, lender.Name, loan.BorrowerPartitionID,
				loan.ToPay.StringFixed(2), loan.Paid.StringFixed(2), loan.Remaining.StringFixed(2))
		}
	}
	return w.Flush()
}

// Profiles prints the budget profiles of the user.
func (a *BrowseAdapter) Profiles(ctx context.Context, userID string) error {
	profiles, err := a.browse.BudgetProfiles(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list budget profiles: %w", err)
	}
	if len(profiles) == 0 {
		fmt.Fprintln(a.out, "No budget profiles found")
		return nil
	}

	active := a.session.State().ActiveBudgetProfileID
	w := newTable(a.out)
	fmt.Fprintln(w, "ID\tNAME\tPARTITIONS")
	for _, p := range profiles {
		name := p.Name
		if p.ID == active {
			name += marked.Sprint(" [active]")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, name, strings.Join(p.PartitionIDs, ", "))
	}
	return w.Flush()
}

// State prints the selection of the session.
func (a *BrowseAdapter) State() {
	printState(a.out, a.session.State())
}

func printState(out io.Writer, state selection.State) {
	fmt.Fprintf(out, "\nWindow:     %s\n", windowLabel(state))
	fmt.Fprintf(out, "Partitions: %s\n", idList(state.PartitionIDs))
	fmt.Fprintf(out, "Categories: %s\n", idList(state.CategoryIDs))
	fmt.Fprintf(out, "Loans:      %s\n", idList(state.LoanIDs))
	fmt.Fprintf(out, "Profile:    %s\n", orDash(state.ActiveBudgetProfileID))
	fmt.Fprintf(out, "Page:       %d (%d per page)\n", state.CurrentPage, state.ItemsPerPage)
	if state.SelectedSourceID != "" || state.SelectedCategoryID != "" {
		fmt.Fprintf(out, "Form:       source %s, category %s\n", orDash(state.SelectedSourceID), orDash(state.SelectedCategoryID))
	}
	fmt.Fprintln(out)
}

func windowLabel(state selection.State) string {
	if state.ShowOverallBalance {
		return "overall"
	}
	return fmt.Sprintf("%s to %s", dateOf(state.DateRangeStart), dateOf(state.DateRangeEnd))
}

func dateOf(t *time.Time) string {
	if t == nil {
		return "…"
	}
	return t.Format("2006-01-02")
}

func idList(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
