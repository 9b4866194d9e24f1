// Package memory provides in-memory store implementations for tests and
// local runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MatheSouzaF/horas-extras/auth"
	"github.com/MatheSouzaF/horas-extras/overtime"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements overtime.MonthStore, auth.UserStore and auth.SessionStore.
type Memory struct {
	mu       sync.RWMutex
	months   map[key]monthRow
	models   map[key][]overtime.CalculationModel
	users    map[string]auth.User
	emails   map[string]string
	sessions map[string]auth.Session
}

type key struct {
	UserID string
	Month  string
}

type monthRow struct {
	salary    decimal.Decimal
	days      []overtime.StoredDay
	updatedAt time.Time
}

func NewMemory() *Memory {
	return &Memory{
		months:   make(map[key]monthRow),
		models:   make(map[key][]overtime.CalculationModel),
		users:    make(map[string]auth.User),
		emails:   make(map[string]string),
		sessions: make(map[string]auth.Session),
	}
}

// =============================================================================
// MONTH RECORDS
// =============================================================================

func (m *Memory) GetMonth(_ context.Context, userID, month string) (*overtime.MonthRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getMonthLocked(userID, month), nil
}

func (m *Memory) getMonthLocked(userID, month string) *overtime.MonthRecord {
	row, ok := m.months[key{UserID: userID, Month: month}]
	if !ok {
		return nil
	}
	days := make([]overtime.DayEntry, len(row.days))
	for i, d := range row.days {
		days[i] = d.DayEntry
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return &overtime.MonthRecord{
		UserID:    userID,
		Month:     month,
		Salary:    row.salary,
		Days:      days,
		UpdatedAt: row.updatedAt,
	}
}

// ReplaceMonth upserts the salary and swaps all day entries.
func (m *Memory) ReplaceMonth(_ context.Context, userID, month string, salary decimal.Decimal, days []overtime.StoredDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceMonthLocked(userID, month, salary, days)
	return nil
}

func (m *Memory) replaceMonthLocked(userID, month string, salary decimal.Decimal, days []overtime.StoredDay) {
	stored := make([]overtime.StoredDay, len(days))
	for i, d := range days {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		stored[i] = d
	}
	m.months[key{UserID: userID, Month: month}] = monthRow{
		salary:    salary,
		days:      stored,
		updatedAt: time.Now().UTC(),
	}
}

// StoredDays returns the persisted rows of a month, including the
// precomputed hours. Used by tests.
func (m *Memory) StoredDays(userID, month string) []overtime.StoredDay {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row := m.months[key{UserID: userID, Month: month}]
	return append([]overtime.StoredDay(nil), row.days...)
}

// =============================================================================
// CALCULATION MODELS
// =============================================================================

func (m *Memory) GetModels(_ context.Context, userID, month string) ([]overtime.CalculationModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getModelsLocked(userID, month), nil
}

func (m *Memory) getModelsLocked(userID, month string) []overtime.CalculationModel {
	models, ok := m.models[key{UserID: userID, Month: month}]
	if !ok {
		return nil
	}
	return append([]overtime.CalculationModel(nil), models...)
}

func (m *Memory) SaveModels(_ context.Context, userID, month string, models []overtime.CalculationModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveModelsLocked(userID, month, models)
	return nil
}

func (m *Memory) saveModelsLocked(userID, month string, models []overtime.CalculationModel) {
	m.models[key{UserID: userID, Month: month}] = append([]overtime.CalculationModel(nil), models...)
}

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) CreateUser(_ context.Context, u auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.emails[u.Email]; taken {
		return auth.ErrEmailTaken
	}
	m.users[u.ID] = u
	m.emails[u.Email] = u.ID
	return nil
}

func (m *Memory) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *Memory) GetUserByID(_ context.Context, id string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return &u, nil
}

// =============================================================================
// SESSIONS
// =============================================================================

func (m *Memory) CreateSession(_ context.Context, s auth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *Memory) GetSession(_ context.Context, id string) (*auth.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	return &s, nil
}

func (m *Memory) RotateSession(_ context.Context, id, tokenHash string, expiresAt, usedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return auth.ErrSessionNotFound
	}
	s.TokenHash = tokenHash
	s.ExpiresAt = expiresAt
	s.LastUsedAt = usedAt
	m.sessions[id] = s
	return nil
}

func (m *Memory) RevokeSession(_ context.Context, id, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID || s.RevokedAt != nil {
		return nil
	}
	s.RevokedAt = &at
	m.sessions[id] = s
	return nil
}

func (m *Memory) RevokeUserSessions(_ context.Context, userID string, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.UserID != userID || s.RevokedAt != nil {
			continue
		}
		revokedAt := at
		s.RevokedAt = &revokedAt
		m.sessions[id] = s
		n++
	}
	return n, nil
}

func (m *Memory) DeleteStaleSessions(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if !s.Active(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

// WithTx executes fn within a transaction.
// For memory store, this is simulated with a snapshot + rollback on error.
func (tm *TxMemory) WithTx(ctx context.Context, fn func(overtime.MonthStore) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()
	view := &txMemoryView{parent: tm}

	if err := fn(view); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

func (tm *TxMemory) snapshot() memorySnapshot {
	months := make(map[key]monthRow, len(tm.months))
	for k, v := range tm.months {
		v.days = append([]overtime.StoredDay(nil), v.days...)
		months[k] = v
	}
	models := make(map[key][]overtime.CalculationModel, len(tm.models))
	for k, v := range tm.models {
		models[k] = append([]overtime.CalculationModel(nil), v...)
	}
	return memorySnapshot{months: months, models: models}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.months = s.months
	tm.models = s.models
}

type memorySnapshot struct {
	months map[key]monthRow
	models map[key][]overtime.CalculationModel
}

// txMemoryView runs under the parent's write lock and must not re-lock.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) GetMonth(_ context.Context, userID, month string) (*overtime.MonthRecord, error) {
	return tv.parent.getMonthLocked(userID, month), nil
}

func (tv *txMemoryView) ReplaceMonth(_ context.Context, userID, month string, salary decimal.Decimal, days []overtime.StoredDay) error {
	tv.parent.replaceMonthLocked(userID, month, salary, days)
	return nil
}

func (tv *txMemoryView) GetModels(_ context.Context, userID, month string) ([]overtime.CalculationModel, error) {
	return tv.parent.getModelsLocked(userID, month), nil
}

func (tv *txMemoryView) SaveModels(_ context.Context, userID, month string, models []overtime.CalculationModel) error {
	tv.parent.saveModelsLocked(userID, month, models)
	return nil
}

var (
	_ overtime.TxMonthStore = (*TxMemory)(nil)
	_ auth.UserStore        = (*Memory)(nil)
	_ auth.SessionStore     = (*Memory)(nil)
)
