// Package session owns per-browser application state. Each browser gets one
// Session holding its transaction and budget stores; the Manager creates
// sessions on first visit and closes their stores when they go idle.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/backend"
	"spendwise/internal/cache"
	"spendwise/internal/core"
	"spendwise/internal/report"
	"spendwise/internal/store"
)

// CookieName is the cookie carrying the session id.
const CookieName = "spendwise_session"

// Session is the root state for one browser. Lock serializes actions so a
// session only ever sees one logical actor.
type Session struct {
	ID         string
	Stores     store.Stores
	MonthOrder report.MonthOrder

	mu     sync.Mutex
	closed bool
}

// Lock acquires the session for one user action.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Snapshot is the session state plus the report derived from it.
type Snapshot struct {
	Transactions []core.Transaction
	Budgets      map[core.Category]core.BudgetEntry
	Report       report.Report
}

// Snapshot reads both stores and runs the derivation engine over them. The
// caller must hold the session lock.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	txs, err := s.Stores.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list transactions: %w", err)
	}
	budgets, err := s.Stores.All(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list budgets: %w", err)
	}
	return Snapshot{
		Transactions: txs,
		Budgets:      budgets,
		Report:       report.Build(txs, report.Entries(budgets), s.MonthOrder),
	}, nil
}

// Report runs the derivation engine over the current store contents. The
// caller must hold the session lock.
func (s *Session) Report(ctx context.Context) (report.Report, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return report.Report{}, err
	}
	return snap.Report, nil
}

// Config controls session lifetime.
type Config struct {
	TTL         time.Duration
	MaxSessions int
	MonthOrder  report.MonthOrder
	// SecureCookie sets the Secure attribute on the session cookie.
	SecureCookie bool
}

// Manager maps session ids to sessions.
type Manager struct {
	factory  backend.Factory
	sessions *cache.LRUCache[*Session]
	config   Config
	logger   *slog.Logger
}

// NewManager creates a session manager. Idle sessions expire after
// config.TTL; once MaxSessions is reached the least recently used session is
// dropped.
func NewManager(factory backend.Factory, config Config, logger *slog.Logger) (*Manager, error) {
	if factory == nil {
		return nil, errors.New("session: factory is required")
	}
	if config.TTL <= 0 {
		return nil, fmt.Errorf("session: invalid TTL %v", config.TTL)
	}
	if config.MaxSessions < 1 {
		return nil, fmt.Errorf("session: invalid max sessions %d", config.MaxSessions)
	}
	if config.MonthOrder == "" {
		config.MonthOrder = report.OrderFirstSeen
	}
	if !config.MonthOrder.IsValid() {
		return nil, fmt.Errorf("session: invalid month order %q", config.MonthOrder)
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &Manager{
		factory: factory,
		config:  config,
		logger:  logger,
	}
	m.sessions = cache.NewLRUCache[*Session](config.MaxSessions, config.TTL,
		cache.WithSlidingExpiry[*Session](),
		cache.WithOnEvict(m.release),
	)
	return m, nil
}

// release closes an evicted session's stores. It waits for any in-flight
// action on the session to finish first.
func (m *Manager) release(id string, s *Session) {
	s.Lock()
	defer s.Unlock()
	s.closed = true
	if err := s.Stores.Close(); err != nil {
		m.logger.Warn("Failed to close session stores", "session_id", shortID(id), "error", err)
		return
	}
	m.logger.Debug("Session released", "session_id", shortID(id))
}

// Get returns the live session with the given id.
func (m *Manager) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	return m.sessions.Get(id)
}

// Create opens a new session with empty stores.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	st, err := m.factory.Open(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open session stores: %w", err)
	}
	s := &Session{ID: id, Stores: st, MonthOrder: m.config.MonthOrder}
	m.sessions.Set(id, s)
	m.logger.InfoContext(ctx, "Session created", "session_id", shortID(id), "active_sessions", m.sessions.Size())
	return s, nil
}

// Resolve returns the session named by the request cookie, creating one and
// setting the cookie when there is none or it has expired.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if c, err := r.Cookie(CookieName); err == nil {
		if s, ok := m.Get(c.Value); ok {
			return s, nil
		}
	}

	s, err := m.Create(r.Context())
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.config.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Acquire resolves the request's session and locks it. A session released
// between lookup and lock is replaced by a fresh one. Callers must Unlock.
func (m *Manager) Acquire(w http.ResponseWriter, r *http.Request) (*Session, error) {
	for attempt := 0; attempt < 2; attempt++ {
		s, err := m.Resolve(w, r)
		if err != nil {
			return nil, err
		}
		s.Lock()
		if !s.closed {
			return s, nil
		}
		s.Unlock()
		// Drop the stale cookie value so Resolve creates a new session.
		r.Header.Del("Cookie")
	}
	return nil, errors.New("session: could not acquire a live session")
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	return m.sessions.Size()
}

// Cache exposes the session cache so a cache.Manager can sweep it.
func (m *Manager) Cache() cache.Cleaner {
	return m.sessions
}

// Close drops every session and closes its stores.
func (m *Manager) Close() {
	m.sessions.Purge()
}

// shortID keeps full session ids out of logs.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
