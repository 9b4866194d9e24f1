/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every persistence interface (month records, calculation models,
  users, refresh sessions) on a single SQLite database.

INTERFACES IMPLEMENTED:
  overtime.TxMonthStore: Month records and model registries, with WithTx
  auth.UserStore:        Accounts
  auth.SessionStore:     Refresh sessions

REPLACE SEMANTICS:
  A month is always written whole: ReplaceMonth upserts the monthly_records
  row and then deletes and re-inserts all of its day_entries inside one SQL
  transaction. Day order is preserved through the position column.

KEY TABLES:
  users:              Accounts, unique email
  refresh_sessions:   One row per signed-in device, sha256 of the refresh token
  monthly_records:    Salary per user and month, unique (user_id, month)
  day_entries:        Worked intervals with precomputed worked_hours
  calculation_models: Stored registry per user and month, in order

DECIMALS:
  salary, worked_hours and multiplier are TEXT columns holding decimal
  strings, so no value passes through a float on the way in or out.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Views handed out by WithTx run under
  the write lock and only touch the SQL transaction.

WAL MODE:
  SQLite is opened with WAL and foreign keys on. ":memory:" databases are
  pinned to one connection so every query sees the same database.

MIGRATION:
  Versioned migrations under migrations/ are embedded and applied by
  golang-migrate on New().

USAGE:
  store, err := sqlite.New("./horas-extras.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - overtime/store.go: Month store interfaces
  - auth/types.go: User and session store interfaces
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/MatheSouzaF/horas-extras/auth"
	"github.com/MatheSouzaF/horas-extras/overtime"
)

const timeLayout = time.RFC3339

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// =============================================================================
// MONTH RECORDS (overtime.RecordStore interface)
// =============================================================================

// GetMonth returns the record for a user and month, or nil when none exists.
func (s *Store) GetMonth(ctx context.Context, userID, month string) (*overtime.MonthRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getMonth(ctx, s.db, userID, month)
}

func getMonth(ctx context.Context, q querier, userID, month string) (*overtime.MonthRecord, error) {
	var recordID, salary, updatedAt string
	err := q.QueryRowContext(ctx,
		"SELECT id, salary, updated_at FROM monthly_records WHERE user_id = ? AND month = ?",
		userID, month,
	).Scan(&recordID, &salary, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load month: %w", err)
	}

	record := &overtime.MonthRecord{
		UserID: userID,
		Month:  month,
		Salary: parseDecimal(salary),
		Days:   []overtime.DayEntry{},
	}
	record.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)

	rows, err := q.QueryContext(ctx, `
		SELECT id, date, start_time, end_time, project_worked, calculation_model_id
		FROM day_entries
		WHERE monthly_record_id = ?
		ORDER BY date ASC, position ASC
	`, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to query day entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			d       overtime.DayEntry
			project sql.NullString
			modelID sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Date, &d.StartTime, &d.EndTime, &project, &modelID); err != nil {
			return nil, fmt.Errorf("failed to scan day entry: %w", err)
		}
		d.ProjectWorked = project.String
		d.CalculationModelID = overtime.ModelID(modelID.String)
		record.Days = append(record.Days, d)
	}
	return record, rows.Err()
}

// ReplaceMonth upserts the salary and replaces all day entries atomically.
func (s *Store) ReplaceMonth(ctx context.Context, userID, month string, salary decimal.Decimal, days []overtime.StoredDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := replaceMonth(ctx, sqlTx, userID, month, salary, days); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func replaceMonth(ctx context.Context, q querier, userID, month string, salary decimal.Decimal, days []overtime.StoredDay) error {
	now := time.Now().UTC().Format(timeLayout)

	_, err := q.ExecContext(ctx, `
		INSERT INTO monthly_records (id, user_id, month, salary, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, month) DO UPDATE SET
			salary = excluded.salary,
			updated_at = excluded.updated_at
	`, uuid.NewString(), userID, month, salary.String(), now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert month: %w", err)
	}

	var recordID string
	if err := q.QueryRowContext(ctx,
		"SELECT id FROM monthly_records WHERE user_id = ? AND month = ?",
		userID, month,
	).Scan(&recordID); err != nil {
		return fmt.Errorf("failed to load month id: %w", err)
	}

	if _, err := q.ExecContext(ctx, "DELETE FROM day_entries WHERE monthly_record_id = ?", recordID); err != nil {
		return fmt.Errorf("failed to clear day entries: %w", err)
	}

	for i, d := range days {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO day_entries
			(monthly_record_id, id, position, date, start_time, end_time,
			 project_worked, calculation_model_id, worked_hours)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			recordID, id, i, d.Date, d.StartTime, d.EndTime,
			nullString(d.ProjectWorked),
			nullString(string(d.CalculationModelID)),
			d.WorkedHours.String(),
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("duplicate day entry id %q: %w", id, err)
			}
			return fmt.Errorf("failed to insert day entry: %w", err)
		}
	}
	return nil
}

// StoredHours returns the persisted worked_hours column of a month, in
// stored order. Used by tests.
func (s *Store) StoredHours(ctx context.Context, userID, month string) ([]decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT d.worked_hours
		FROM day_entries d
		JOIN monthly_records r ON r.id = d.monthly_record_id
		WHERE r.user_id = ? AND r.month = ?
		ORDER BY d.position ASC
	`, userID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []decimal.Decimal
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, err
		}
		hours = append(hours, parseDecimal(h))
	}
	return hours, rows.Err()
}

// =============================================================================
// CALCULATION MODELS (overtime.ModelStore interface)
// =============================================================================

// GetModels returns the stored models in order, or nil when none.
func (s *Store) GetModels(ctx context.Context, userID, month string) ([]overtime.CalculationModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getModels(ctx, s.db, userID, month)
}

func getModels(ctx context.Context, q querier, userID, month string) ([]overtime.CalculationModel, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT model_id, name, multiplier
		FROM calculation_models
		WHERE user_id = ? AND month = ?
		ORDER BY position ASC
	`, userID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer rows.Close()

	var models []overtime.CalculationModel
	for rows.Next() {
		var id, name, multiplier string
		if err := rows.Scan(&id, &name, &multiplier); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		models = append(models, overtime.FlatModel(overtime.ModelID(id), name, parseDecimal(multiplier)))
	}
	return models, rows.Err()
}

// SaveModels replaces the stored models for a user and month.
func (s *Store) SaveModels(ctx context.Context, userID, month string, models []overtime.CalculationModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := saveModels(ctx, sqlTx, userID, month, models); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func saveModels(ctx context.Context, q querier, userID, month string, models []overtime.CalculationModel) error {
	if _, err := q.ExecContext(ctx,
		"DELETE FROM calculation_models WHERE user_id = ? AND month = ?",
		userID, month,
	); err != nil {
		return fmt.Errorf("failed to clear models: %w", err)
	}

	for i, m := range models {
		_, err := q.ExecContext(ctx, `
			INSERT INTO calculation_models (user_id, month, model_id, name, multiplier, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, userID, month, string(m.ID), m.Name, m.Multiplier.String(), i)
		if err != nil {
			return fmt.Errorf("failed to insert model: %w", err)
		}
	}
	return nil
}

// =============================================================================
// TRANSACTIONAL STORE (overtime.TxMonthStore interface)
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store overtime.MonthStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) GetMonth(ctx context.Context, userID, month string) (*overtime.MonthRecord, error) {
	return getMonth(ctx, ts.tx, userID, month)
}

func (ts *txStore) ReplaceMonth(ctx context.Context, userID, month string, salary decimal.Decimal, days []overtime.StoredDay) error {
	return replaceMonth(ctx, ts.tx, userID, month, salary, days)
}

func (ts *txStore) GetModels(ctx context.Context, userID, month string) ([]overtime.CalculationModel, error) {
	return getModels(ctx, ts.tx, userID, month)
}

func (ts *txStore) SaveModels(ctx context.Context, userID, month string, models []overtime.CalculationModel) error {
	return saveModels(ctx, ts.tx, userID, month, models)
}

// =============================================================================
// USER STORE (auth.UserStore interface)
// =============================================================================

// CreateUser inserts a new account.
func (s *Store) CreateUser(ctx context.Context, u auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt.UTC().Format(timeLayout),
	)
	if isUniqueConstraintError(err) {
		return auth.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves an account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.getUser(ctx, "email", email)
}

// GetUserByID retrieves an account by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) getUser(ctx context.Context, column, value string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u auth.User
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE "+column+" = ?",
		value,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return &u, nil
}

// =============================================================================
// SESSION STORE (auth.SessionStore interface)
// =============================================================================

// CreateSession inserts a refresh session.
func (s *Store) CreateSession(ctx context.Context, sess auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions
		(id, user_id, token_hash, device_name, user_agent, ip_address,
		 expires_at, last_used_at, revoked_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?)
	`,
		sess.ID, sess.UserID, sess.TokenHash,
		nullString(sess.DeviceName), nullString(sess.UserAgent), nullString(sess.IPAddress),
		sess.ExpiresAt.UTC().Format(timeLayout),
		sess.LastUsedAt.UTC().Format(timeLayout),
		sess.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetSession retrieves a refresh session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		sess                             auth.Session
		device, agent, ip, revokedAt     sql.NullString
		expiresAt, lastUsedAt, createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, device_name, user_agent, ip_address,
		       expires_at, last_used_at, revoked_at, created_at
		FROM refresh_sessions WHERE id = ?
	`, id).Scan(
		&sess.ID, &sess.UserID, &sess.TokenHash, &device, &agent, &ip,
		&expiresAt, &lastUsedAt, &revokedAt, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	sess.DeviceName = device.String
	sess.UserAgent = agent.String
	sess.IPAddress = ip.String
	sess.ExpiresAt, _ = time.Parse(timeLayout, expiresAt)
	sess.LastUsedAt, _ = time.Parse(timeLayout, lastUsedAt)
	sess.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if revokedAt.Valid {
		t, _ := time.Parse(timeLayout, revokedAt.String)
		sess.RevokedAt = &t
	}
	return &sess, nil
}

// RotateSession stores a new token hash and expiry.
func (s *Store) RotateSession(ctx context.Context, id, tokenHash string, expiresAt, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE refresh_sessions SET token_hash = ?, expires_at = ?, last_used_at = ? WHERE id = ?",
		tokenHash, expiresAt.UTC().Format(timeLayout), usedAt.UTC().Format(timeLayout), id,
	)
	if err != nil {
		return fmt.Errorf("failed to rotate session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}

// RevokeSession revokes one active session owned by userID.
func (s *Store) RevokeSession(ctx context.Context, id, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"UPDATE refresh_sessions SET revoked_at = ? WHERE id = ? AND user_id = ? AND revoked_at IS NULL",
		at.UTC().Format(timeLayout), id, userID,
	)
	return err
}

// RevokeUserSessions revokes every active session of a user.
func (s *Store) RevokeUserSessions(ctx context.Context, userID string, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE refresh_sessions SET revoked_at = ? WHERE user_id = ? AND revoked_at IS NULL",
		at.UTC().Format(timeLayout), userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// DeleteStaleSessions removes revoked sessions and sessions expired at now.
func (s *Store) DeleteStaleSessions(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM refresh_sessions WHERE revoked_at IS NOT NULL OR expires_at <= ?",
		now.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var (
	_ overtime.TxMonthStore = (*Store)(nil)
	_ auth.UserStore        = (*Store)(nil)
	_ auth.SessionStore     = (*Store)(nil)
)
