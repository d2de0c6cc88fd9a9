package store

// Schema is the SQLite schema for the standup document store.
// Date columns hold YYYY-MM-DD strings, so lexical ordering is
// chronological ordering.
const Schema = `
CREATE TABLE IF NOT EXISTS standup_entries (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	entry_date TEXT NOT NULL,
	yesterday TEXT NOT NULL DEFAULT '',
	today TEXT NOT NULL DEFAULT '',
	blockers TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	is_day_off BOOLEAN NOT NULL DEFAULT 0,
	day_off_start TEXT NOT NULL DEFAULT '',
	day_off_end TEXT NOT NULL DEFAULT '',
	day_off_reason TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(user_id, entry_date)
);
CREATE INDEX IF NOT EXISTS idx_entries_user_date ON standup_entries(user_id, entry_date);
CREATE INDEX IF NOT EXISTS idx_entries_date ON standup_entries(entry_date);

CREATE TABLE IF NOT EXISTS standup_threads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	thread_date TEXT UNIQUE NOT NULL,
	channel_id TEXT NOT NULL,
	thread_ts TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS performance_metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	period_kind TEXT NOT NULL,
	period_start TEXT NOT NULL,
	overall_score REAL NOT NULL DEFAULT 0,
	consistency_score REAL NOT NULL DEFAULT 0,
	submissions INTEGER NOT NULL DEFAULT 0,
	expected_submissions INTEGER NOT NULL DEFAULT 0,
	velocity REAL NOT NULL DEFAULT 0,
	percentile REAL NOT NULL DEFAULT 0,
	risk_level TEXT NOT NULL DEFAULT '',
	risk_factors TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(user_id, period_kind, period_start)
);
CREATE INDEX IF NOT EXISTS idx_metrics_user_kind ON performance_metrics(user_id, period_kind, period_start);

CREATE TABLE IF NOT EXISTS achievements (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	achievement_type TEXT NOT NULL,
	level INTEGER NOT NULL DEFAULT 1,
	title TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT 1,
	earned_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(user_id, achievement_type, level)
);
CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id);

CREATE TABLE IF NOT EXISTS alerts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	severity TEXT NOT NULL DEFAULT 'info',
	status TEXT NOT NULL DEFAULT 'active',
	title TEXT NOT NULL DEFAULT '',
	detail TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	expires_at DATETIME
);
CREATE INDEX IF NOT EXISTS idx_alerts_user_status ON alerts(user_id, status);
`
