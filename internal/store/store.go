// Package store implements the SQLite-backed document store for standup
// entries, daily threads, and the read-only analytics collections.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DateFormat is the canonical entry-date layout.
const DateFormat = "2006-01-02"

// StandupEntry is one submission per (user, calendar date). Upsert-only:
// re-submitting for the same date replaces the sections.
type StandupEntry struct {
	ID           int64
	UserID       string
	Date         string
	Yesterday    string
	Today        string
	Blockers     string
	Notes        string
	IsDayOff     bool
	DayOffStart  string // "HH:MM", empty means start of day
	DayOffEnd    string // "HH:MM", empty means end of day
	DayOffReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StandupThread links a calendar date to the Slack thread collecting that
// day's replies. Created by the daily reminder trigger; read-only here.
type StandupThread struct {
	ID        int64
	Date      string
	ChannelID string
	ThreadTS  string
	CreatedAt time.Time
}

// PerformanceMetrics is one row per (user, period kind, period start),
// produced by an external batch job and consumed read-only.
type PerformanceMetrics struct {
	ID                  int64
	UserID              string
	PeriodKind          string // "week" or "month"
	PeriodStart         string
	OverallScore        float64
	ConsistencyScore    float64
	Submissions         int
	ExpectedSubmissions int
	Velocity            float64
	Percentile          float64
	RiskLevel           string
	RiskFactors         string // JSON array of strings
	CreatedAt           time.Time
}

// Achievement is a badge record; IsActive false soft-revokes it.
type Achievement struct {
	ID              string
	UserID          string
	AchievementType string
	Level           int
	Title           string
	IsActive        bool
	EarnedAt        time.Time
}

// Alert is an advisory record with a status lifecycle.
type Alert struct {
	ID        string
	UserID    string
	Severity  string
	Status    string // active | acknowledged | resolved | dismissed
	Title     string
	Detail    string
	CreatedAt time.Time
	ExpiresAt *time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the store at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open store db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	// Best-effort migration for dbs created before avatar caching moved out
	// of the store (no-op on fresh dbs).
	_, _ = db.Exec(`DROP TABLE IF EXISTS user_profiles`)
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// ---------------------------------------------------------------------------
// Standup entries
// ---------------------------------------------------------------------------

// UpsertEntry inserts or replaces the entry for (UserID, Date).
func (s *Store) UpsertEntry(e *StandupEntry) error {
	_, err := s.db.Exec(`
		INSERT INTO standup_entries
			(user_id, entry_date, yesterday, today, blockers, notes,
			 is_day_off, day_off_start, day_off_end, day_off_reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, entry_date) DO UPDATE SET
			yesterday = excluded.yesterday,
			today = excluded.today,
			blockers = excluded.blockers,
			notes = excluded.notes,
			is_day_off = excluded.is_day_off,
			day_off_start = excluded.day_off_start,
			day_off_end = excluded.day_off_end,
			day_off_reason = excluded.day_off_reason,
			updated_at = CURRENT_TIMESTAMP`,
		e.UserID, e.Date, e.Yesterday, e.Today, e.Blockers, e.Notes,
		e.IsDayOff, e.DayOffStart, e.DayOffEnd, e.DayOffReason)
	if err != nil {
		return fmt.Errorf("upsert entry: %w", err)
	}
	return nil
}

const entryColumns = `id, user_id, entry_date, yesterday, today, blockers, notes,
	is_day_off, day_off_start, day_off_end, day_off_reason, created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (*StandupEntry, error) {
	var e StandupEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Yesterday, &e.Today,
		&e.Blockers, &e.Notes, &e.IsDayOff, &e.DayOffStart, &e.DayOffEnd,
		&e.DayOffReason, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Entry returns the entry for (userID, date). ok is false when none exists.
func (s *Store) Entry(userID, date string) (*StandupEntry, bool, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM standup_entries
		WHERE user_id = ? AND entry_date = ?`, userID, date)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get entry: %w", err)
	}
	return e, true, nil
}

// LatestEntryBefore returns the most recent entry strictly before date.
func (s *Store) LatestEntryBefore(userID, date string) (*StandupEntry, bool, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM standup_entries
		WHERE user_id = ? AND entry_date < ?
		ORDER BY entry_date DESC LIMIT 1`, userID, date)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("latest entry before: %w", err)
	}
	return e, true, nil
}

// NextDayOffAfter returns the nearest day-off entry strictly after date.
func (s *Store) NextDayOffAfter(userID, date string) (*StandupEntry, bool, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM standup_entries
		WHERE user_id = ? AND entry_date > ? AND is_day_off = 1
		ORDER BY entry_date ASC LIMIT 1`, userID, date)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("next day off after: %w", err)
	}
	return e, true, nil
}

// EntriesBetween returns entries for userID with from <= date <= to,
// ascending by date.
func (s *Store) EntriesBetween(userID, from, to string) ([]StandupEntry, error) {
	rows, err := s.db.Query(`SELECT `+entryColumns+` FROM standup_entries
		WHERE user_id = ? AND entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date ASC`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("entries between: %w", err)
	}
	defer rows.Close()
	var out []StandupEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// EntriesOn returns every user's entry for the given date.
func (s *Store) EntriesOn(date string) ([]StandupEntry, error) {
	rows, err := s.db.Query(`SELECT `+entryColumns+` FROM standup_entries
		WHERE entry_date = ? ORDER BY user_id ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("entries on date: %w", err)
	}
	defer rows.Close()
	var out []StandupEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// ---------------------------------------------------------------------------
// Standup threads
// ---------------------------------------------------------------------------

// UpsertThread records the thread for a date (written by the reminder
// trigger, read by the engine).
func (s *Store) UpsertThread(t *StandupThread) error {
	_, err := s.db.Exec(`
		INSERT INTO standup_threads (thread_date, channel_id, thread_ts)
		VALUES (?, ?, ?)
		ON CONFLICT(thread_date) DO UPDATE SET
			channel_id = excluded.channel_id,
			thread_ts = excluded.thread_ts`,
		t.Date, t.ChannelID, t.ThreadTS)
	if err != nil {
		return fmt.Errorf("upsert thread: %w", err)
	}
	return nil
}

// ThreadForDate returns the standup thread for a date.
func (s *Store) ThreadForDate(date string) (*StandupThread, bool, error) {
	var t StandupThread
	err := s.db.QueryRow(`SELECT id, thread_date, channel_id, thread_ts, created_at
		FROM standup_threads WHERE thread_date = ?`, date).
		Scan(&t.ID, &t.Date, &t.ChannelID, &t.ThreadTS, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("thread for date: %w", err)
	}
	return &t, true, nil
}

// ---------------------------------------------------------------------------
// Performance metrics, achievements, alerts (batch-job write, engine read)
// ---------------------------------------------------------------------------

// UpsertMetrics inserts or replaces one metrics row.
func (s *Store) UpsertMetrics(m *PerformanceMetrics) error {
	_, err := s.db.Exec(`
		INSERT INTO performance_metrics
			(user_id, period_kind, period_start, overall_score, consistency_score,
			 submissions, expected_submissions, velocity, percentile, risk_level, risk_factors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, period_kind, period_start) DO UPDATE SET
			overall_score = excluded.overall_score,
			consistency_score = excluded.consistency_score,
			submissions = excluded.submissions,
			expected_submissions = excluded.expected_submissions,
			velocity = excluded.velocity,
			percentile = excluded.percentile,
			risk_level = excluded.risk_level,
			risk_factors = excluded.risk_factors`,
		m.UserID, m.PeriodKind, m.PeriodStart, m.OverallScore, m.ConsistencyScore,
		m.Submissions, m.ExpectedSubmissions, m.Velocity, m.Percentile,
		m.RiskLevel, m.RiskFactors)
	if err != nil {
		return fmt.Errorf("upsert metrics: %w", err)
	}
	return nil
}

// LatestMetrics returns the most recent metrics row of the given period kind.
func (s *Store) LatestMetrics(userID, periodKind string) (*PerformanceMetrics, bool, error) {
	var m PerformanceMetrics
	err := s.db.QueryRow(`SELECT id, user_id, period_kind, period_start,
			overall_score, consistency_score, submissions, expected_submissions,
			velocity, percentile, risk_level, risk_factors, created_at
		FROM performance_metrics
		WHERE user_id = ? AND period_kind = ?
		ORDER BY period_start DESC LIMIT 1`, userID, periodKind).
		Scan(&m.ID, &m.UserID, &m.PeriodKind, &m.PeriodStart,
			&m.OverallScore, &m.ConsistencyScore, &m.Submissions, &m.ExpectedSubmissions,
			&m.Velocity, &m.Percentile, &m.RiskLevel, &m.RiskFactors, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("latest metrics: %w", err)
	}
	return &m, true, nil
}

// SaveAchievement inserts a badge, generating an ID when empty. A duplicate
// (user, type, level) reactivates the existing badge.
func (s *Store) SaveAchievement(a *Achievement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO achievements (id, user_id, achievement_type, level, title, is_active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, achievement_type, level) DO UPDATE SET
			title = excluded.title,
			is_active = excluded.is_active`,
		a.ID, a.UserID, a.AchievementType, a.Level, a.Title, a.IsActive)
	if err != nil {
		return fmt.Errorf("save achievement: %w", err)
	}
	return nil
}

// ActiveAchievements returns up to limit active badges, most recent first.
func (s *Store) ActiveAchievements(userID string, limit int) ([]Achievement, error) {
	rows, err := s.db.Query(`SELECT id, user_id, achievement_type, level, title, is_active, earned_at
		FROM achievements
		WHERE user_id = ? AND is_active = 1
		ORDER BY earned_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("active achievements: %w", err)
	}
	defer rows.Close()
	var out []Achievement
	for rows.Next() {
		var a Achievement
		if err := rows.Scan(&a.ID, &a.UserID, &a.AchievementType, &a.Level,
			&a.Title, &a.IsActive, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SaveAlert inserts an advisory record, generating an ID when empty.
func (s *Store) SaveAlert(a *Alert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.Exec(`
		INSERT INTO alerts (id, user_id, severity, status, title, detail, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Severity, a.Status, a.Title, a.Detail, a.ExpiresAt)
	if err != nil {
		return fmt.Errorf("save alert: %w", err)
	}
	return nil
}

// UpdateAlertStatus moves an alert through its lifecycle.
func (s *Store) UpdateAlertStatus(alertID, status string) error {
	res, err := s.db.Exec(`UPDATE alerts SET status = ? WHERE id = ?`, status, alertID)
	if err != nil {
		return fmt.Errorf("update alert status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("alert not found: %s", alertID)
	}
	return nil
}

// RecentAlerts returns up to limit alerts with status in (active,
// acknowledged) created within the last `days` days, newest first.
func (s *Store) RecentAlerts(userID string, days, limit int) ([]Alert, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.Query(`SELECT id, user_id, severity, status, title, detail, created_at, expires_at
		FROM alerts
		WHERE user_id = ? AND status IN ('active', 'acknowledged') AND created_at >= ?
		ORDER BY created_at DESC LIMIT ?`, userID, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("recent alerts: %w", err)
	}
	defer rows.Close()
	var out []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.UserID, &a.Severity, &a.Status,
			&a.Title, &a.Detail, &a.CreatedAt, &a.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
