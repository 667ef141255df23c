package db

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is the fixed-width layout transaction timestamps are stored in.
// Fixed width keeps textual comparison in SQL equal to chronological order.
const TimeLayout = "2006-01-02 15:04:05.000000000"

// FormatTime formats t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// SeedFixtures populates the database with demo data: two users sharing a
// household account, one private account each, categories and a month of
// transactions including a transfer and a loan.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 9, 0, 0, 0, time.UTC)

	users := []struct{ id, name, email string }{
		{"USER-001", "ana", "ana@example.com"},
		{"USER-002", "ben", "ben@example.com"},
	}
	for _, u := range users {
		if _, err := database.Exec(
			"INSERT INTO users (id, name, email) VALUES (?, ?, ?)",
			u.id, u.name, u.email,
		); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	accounts := []struct {
		id, name string
		owners   []string
	}{
		{"ACC-001", "Household", []string{"USER-001", "USER-002"}},
		{"ACC-002", "Ana Savings", []string{"USER-001"}},
		{"ACC-003", "Ben Wallet", []string{"USER-002"}},
	}
	for _, a := range accounts {
		if _, err := database.Exec("INSERT INTO accounts (id, name) VALUES (?, ?)", a.id, a.name); err != nil {
			return fmt.Errorf("seed accounts: %w", err)
		}
		for _, owner := range a.owners {
			if _, err := database.Exec(
				"INSERT INTO account_owners (account_id, user_id) VALUES (?, ?)", a.id, owner,
			); err != nil {
				return fmt.Errorf("seed account owners: %w", err)
			}
		}
	}

	partitions := []struct {
		id, accountID, name string
		private             bool
	}{
		{"PART-001", "ACC-001", "Groceries Fund", false},
		{"PART-002", "ACC-001", "Bills", false},
		{"PART-003", "ACC-002", "Emergency", false},
		{"PART-004", "ACC-002", "Gifts", true},
		{"PART-005", "ACC-003", "Cash", false},
	}
	for _, p := range partitions {
		if _, err := database.Exec(
			"INSERT INTO partitions (id, account_id, name, is_private) VALUES (?, ?, ?, ?)",
			p.id, p.accountID, p.name, p.private,
		); err != nil {
			return fmt.Errorf("seed partitions: %w", err)
		}
	}

	categories := []struct{ id, owner, name, kind string }{
		{"CAT-001", "USER-001", "Salary", "Income"},
		{"CAT-002", "USER-001", "Food", "Expense"},
		{"CAT-003", "USER-001", "Utilities", "Expense"},
		{"CAT-004", "USER-001", "Move Money", "Transfer"},
		{"CAT-005", "USER-002", "Salary", "Income"},
		{"CAT-006", "USER-002", "Transport", "Expense"},
	}
	for _, c := range categories {
		if _, err := database.Exec(
			"INSERT INTO categories (id, owner_id, name, kind) VALUES (?, ?, ?, ?)",
			c.id, c.owner, c.name, c.kind,
		); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}

	if _, err := database.Exec(
		`INSERT INTO loans (id, transaction_id, lender_partition_id, borrower_partition_id, category_id, amount, to_pay, description)
		 VALUES ('LOAN-001', 'TX-006', 'PART-003', 'PART-005', 'CAT-004', '200', '200', 'bike repair')`,
	); err != nil {
		return fmt.Errorf("seed loans: %w", err)
	}

	type seedTx struct {
		id, partition, category, value, desc string
		day                                  int
		counterpart                          string
		isCounterpart                        bool
		loan                                 string
	}
	txs := []seedTx{
		{id: "TX-001", partition: "PART-003", category: "CAT-001", value: "3000", desc: "payday", day: 0},
		{id: "TX-002", partition: "PART-001", category: "CAT-002", value: "-84.20", desc: "market", day: 1},
		{id: "TX-003", partition: "PART-002", category: "CAT-003", value: "-120", desc: "electricity", day: 2},
		{id: "TX-004", partition: "PART-003", category: "CAT-004", value: "-500", desc: "fund groceries", day: 3, counterpart: "TX-005"},
		{id: "TX-005", partition: "PART-001", category: "CAT-004", value: "500", desc: "fund groceries", day: 3, counterpart: "TX-004", isCounterpart: true},
		{id: "TX-006", partition: "PART-003", category: "CAT-004", value: "-200", desc: "bike repair", day: 4, counterpart: "TX-007", loan: "LOAN-001"},
		{id: "TX-007", partition: "PART-005", category: "CAT-004", value: "200", desc: "bike repair", day: 4, counterpart: "TX-006", isCounterpart: true, loan: "LOAN-001"},
		{id: "TX-008", partition: "PART-005", category: "CAT-006", value: "-15.50", desc: "bus pass", day: 5},
	}
	for _, t := range txs {
		var counterpart, loan sql.NullString
		if t.counterpart != "" {
			counterpart = sql.NullString{String: t.counterpart, Valid: true}
		}
		if t.loan != "" {
			loan = sql.NullString{String: t.loan, Valid: true}
		}
		if _, err := database.Exec(
			`INSERT INTO transactions (id, source_partition_id, category_id, value, description, created_at, counterpart_id, is_counterpart, loan_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.id, t.partition, t.category, t.value, t.desc, FormatTime(monthStart.AddDate(0, 0, t.day)), counterpart, t.isCounterpart, loan,
		); err != nil {
			return fmt.Errorf("seed transactions: %w", err)
		}
	}

	profiles := []struct{ id, user, name string }{
		{"BP-001", "USER-001", "Household"},
	}
	for _, p := range profiles {
		if _, err := database.Exec(
			"INSERT INTO budget_profiles (id, user_id, name) VALUES (?, ?, ?)", p.id, p.user, p.name,
		); err != nil {
			return fmt.Errorf("seed budget profiles: %w", err)
		}
	}
	for i, partitionID := range []string{"PART-001", "PART-002"} {
		if _, err := database.Exec(
			"INSERT INTO budget_profile_partitions (profile_id, partition_id, position) VALUES ('BP-001', ?, ?)", partitionID, i,
		); err != nil {
			return fmt.Errorf("seed budget profile partitions: %w", err)
		}
	}
	if _, err := database.Exec(
		"INSERT INTO budgets (profile_id, category_id, amount) VALUES ('BP-001', 'CAT-002', '400'), ('BP-001', 'CAT-003', '150')",
	); err != nil {
		return fmt.Errorf("seed budgets: %w", err)
	}

	return nil
}
