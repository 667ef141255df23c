package db

// SchemaSQL is the complete schema for fresh kwartrack installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All repository
// tests load it through GetSchemaSQL(), so a column referenced by repository
// code but missing here fails the tests with "no such column".
//
// Monetary values are stored as decimal TEXT and summed with shopspring/decimal
// in the adapters, never with SQLite's floating point SUM.
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run `make test` to verify alignment
const SchemaSQL = `
-- Users
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	email TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Accounts (ownership containers of partitions)
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS account_owners (
	account_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	PRIMARY KEY (account_id, user_id),
	FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);

-- Partitions (subdivisions of an account that transactions post against)
CREATE TABLE IF NOT EXISTS partitions (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	name TEXT NOT NULL,
	is_private INTEGER NOT NULL DEFAULT 0,
	archived INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_partitions_account ON partitions(account_id);

-- Categories
CREATE TABLE IF NOT EXISTS categories (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('Income', 'Expense', 'Transfer')),
	is_private INTEGER NOT NULL DEFAULT 0,
	archived INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_categories_owner ON categories(owner_id);

-- Loans (a transfer marked as borrowed funds)
CREATE TABLE IF NOT EXISTS loans (
	id TEXT PRIMARY KEY,
	transaction_id TEXT NOT NULL UNIQUE,
	lender_partition_id TEXT NOT NULL,
	borrower_partition_id TEXT NOT NULL,
	category_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	to_pay TEXT NOT NULL,
	description TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (lender_partition_id) REFERENCES partitions(id),
	FOREIGN KEY (borrower_partition_id) REFERENCES partitions(id),
	FOREIGN KEY (category_id) REFERENCES categories(id)
);

CREATE INDEX IF NOT EXISTS idx_loans_lender ON loans(lender_partition_id);

-- Transactions (one row per posting; a transfer is a pair of rows)
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	source_partition_id TEXT NOT NULL,
	category_id TEXT NOT NULL,
	value TEXT NOT NULL,
	description TEXT,
	created_at DATETIME NOT NULL,
	counterpart_id TEXT,
	is_counterpart INTEGER NOT NULL DEFAULT 0,
	loan_id TEXT,
	FOREIGN KEY (source_partition_id) REFERENCES partitions(id),
	FOREIGN KEY (category_id) REFERENCES categories(id),
	FOREIGN KEY (loan_id) REFERENCES loans(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_transactions_partition ON transactions(source_partition_id);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id);
CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions(created_at);
CREATE INDEX IF NOT EXISTS idx_transactions_loan ON transactions(loan_id);

-- Budget profiles (saved partition selections with per-category budgets)
CREATE TABLE IF NOT EXISTS budget_profiles (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
	UNIQUE(user_id, name)
);

CREATE TABLE IF NOT EXISTS budget_profile_partitions (
	profile_id TEXT NOT NULL,
	partition_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (profile_id, partition_id),
	FOREIGN KEY (profile_id) REFERENCES budget_profiles(id) ON DELETE CASCADE,
	FOREIGN KEY (partition_id) REFERENCES partitions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS budgets (
	profile_id TEXT NOT NULL,
	category_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	PRIMARY KEY (profile_id, category_id),
	FOREIGN KEY (profile_id) REFERENCES budget_profiles(id) ON DELETE CASCADE,
	FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE
);

-- Activity log (who changed what)
CREATE TABLE IF NOT EXISTS activity_logs (
	id TEXT PRIMARY KEY,
	user_id TEXT,
	entity_type TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete')),
	field_name TEXT,
	old_value TEXT,
	new_value TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_activity_logs_entity ON activity_logs(entity_type, entity_id);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
