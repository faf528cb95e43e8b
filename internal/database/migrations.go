package database

// SQL migrations for the wealth manager database.
// All migrations use IF NOT EXISTS to be idempotent.

const migrationUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    name TEXT NOT NULL,
    currency TEXT DEFAULT 'CNY',
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    expires_at DATETIME NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationAssetAccounts = `
CREATE TABLE IF NOT EXISTS asset_accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('bank', 'fund', 'pension', 'insurance', 'other')),
    balance REAL NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    notes TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationFunds = `
CREATE TABLE IF NOT EXISTS funds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    code TEXT UNIQUE NOT NULL,
    name TEXT NOT NULL,
    nav REAL,
    nav_date DATE,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationFundHoldings = `
CREATE TABLE IF NOT EXISTS fund_holdings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    fund_id INTEGER NOT NULL REFERENCES funds(id),
    account_id INTEGER REFERENCES asset_accounts(id) ON DELETE SET NULL,
    shares REAL NOT NULL DEFAULT 0,
    cost_basis REAL NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationFundTransactions = `
CREATE TABLE IF NOT EXISTS fund_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    fund_id INTEGER NOT NULL REFERENCES funds(id),
    account_id INTEGER REFERENCES asset_accounts(id) ON DELETE SET NULL,
    type TEXT NOT NULL CHECK (type IN ('buy', 'sell', 'dividend', 'split')),
    shares REAL,
    nav REAL,
    amount REAL NOT NULL,
    fee REAL NOT NULL DEFAULT 0,
    transaction_date DATE NOT NULL,
    notes TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationCashflowCategories = `
CREATE TABLE IF NOT EXISTS cashflow_categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
    parent_id INTEGER REFERENCES cashflow_categories(id) ON DELETE SET NULL,
    is_system INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationCashflowTransactions = `
CREATE TABLE IF NOT EXISTS cashflow_transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    account_id INTEGER REFERENCES asset_accounts(id) ON DELETE SET NULL,
    category_id INTEGER REFERENCES cashflow_categories(id) ON DELETE SET NULL,
    type TEXT NOT NULL CHECK (type IN ('income', 'expense', 'transfer')),
    amount REAL NOT NULL,
    description TEXT,
    transaction_date DATE NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationBudgets = `
CREATE TABLE IF NOT EXISTS budgets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    category_id INTEGER REFERENCES cashflow_categories(id) ON DELETE CASCADE,
    amount REAL NOT NULL,
    period TEXT NOT NULL DEFAULT 'monthly',
    alert_threshold REAL NOT NULL DEFAULT 0.8,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationFinancialGoals = `
CREATE TABLE IF NOT EXISTS financial_goals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    target_amount REAL NOT NULL,
    current_amount REAL NOT NULL DEFAULT 0,
    deadline DATE,
    status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'cancelled')),
    priority INTEGER NOT NULL DEFAULT 3,
    notes TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationInvestmentPlans = `
CREATE TABLE IF NOT EXISTS investment_plans (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    fund_id INTEGER NOT NULL REFERENCES funds(id),
    account_id INTEGER REFERENCES asset_accounts(id) ON DELETE SET NULL,
    amount REAL NOT NULL,
    frequency TEXT NOT NULL CHECK (frequency IN ('daily', 'weekly', 'biweekly', 'monthly')),
    day_of_month INTEGER,
    day_of_week INTEGER,
    next_date DATE NOT NULL,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationNetWorthSnapshots = `
CREATE TABLE IF NOT EXISTS net_worth_snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    snapshot_date DATE NOT NULL,
    total_assets REAL NOT NULL,
    total_liabilities REAL NOT NULL DEFAULT 0,
    net_worth REAL NOT NULL,
    breakdown TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const migrationReminders = `
CREATE TABLE IF NOT EXISTS reminders (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT,
    remind_at DATETIME NOT NULL,
    type TEXT DEFAULT 'other',
    reference_id INTEGER,
    is_read INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// Shared system categories, available to every user. The unique index
// below keeps the seed idempotent.
const migrationSeedCategories = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_cashflow_categories_system
    ON cashflow_categories(name, type) WHERE is_system = 1;
INSERT OR IGNORE INTO cashflow_categories (user_id, name, type, is_system) VALUES
    (NULL, 'salary', 'income', 1),
    (NULL, 'bonus', 'income', 1),
    (NULL, 'investment income', 'income', 1),
    (NULL, 'other income', 'income', 1),
    (NULL, 'food', 'expense', 1),
    (NULL, 'housing', 'expense', 1),
    (NULL, 'transport', 'expense', 1),
    (NULL, 'utilities', 'expense', 1),
    (NULL, 'healthcare', 'expense', 1),
    (NULL, 'entertainment', 'expense', 1),
    (NULL, 'shopping', 'expense', 1),
    (NULL, 'education', 'expense', 1),
    (NULL, 'other expense', 'expense', 1);
`

const migrationIndexes = `
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);
CREATE INDEX IF NOT EXISTS idx_asset_accounts_user ON asset_accounts(user_id);
CREATE INDEX IF NOT EXISTS idx_fund_holdings_user ON fund_holdings(user_id);
CREATE INDEX IF NOT EXISTS idx_fund_transactions_user ON fund_transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_fund_transactions_fund ON fund_transactions(fund_id);
CREATE INDEX IF NOT EXISTS idx_fund_transactions_date ON fund_transactions(transaction_date);
CREATE INDEX IF NOT EXISTS idx_cashflow_transactions_user ON cashflow_transactions(user_id);
CREATE INDEX IF NOT EXISTS idx_cashflow_transactions_date ON cashflow_transactions(transaction_date);
CREATE INDEX IF NOT EXISTS idx_cashflow_categories_parent ON cashflow_categories(parent_id);
CREATE INDEX IF NOT EXISTS idx_budgets_user ON budgets(user_id);
CREATE INDEX IF NOT EXISTS idx_financial_goals_user ON financial_goals(user_id);
CREATE INDEX IF NOT EXISTS idx_investment_plans_user ON investment_plans(user_id);
CREATE INDEX IF NOT EXISTS idx_investment_plans_next ON investment_plans(next_date);
CREATE INDEX IF NOT EXISTS idx_net_worth_snapshots_user_date ON net_worth_snapshots(user_id, snapshot_date);
CREATE INDEX IF NOT EXISTS idx_reminders_user ON reminders(user_id);
CREATE INDEX IF NOT EXISTS idx_reminders_remind_at ON reminders(remind_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_fund_holdings_user_fund_account
    ON fund_holdings(user_id, fund_id, COALESCE(account_id, 0));
`
