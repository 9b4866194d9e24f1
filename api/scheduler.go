/*
scheduler.go - Background pruning of refresh sessions

PURPOSE:
  Refresh sessions are revoked on logout and expire after the refresh TTL,
  but the rows stay behind. The sweeper periodically deletes them so the
  refresh_sessions table only holds sessions that can still be used.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Sweeps once immediately on start
  - Errors are logged and retried on the next tick

USAGE:
  sweeper := NewSessionSweeper(authService, time.Hour)
  sweeper.Start()
  // ... later
  sweeper.Stop()

  // or, under an errgroup:
  g.Go(func() error { return sweeper.Run(ctx) })

SEE ALSO:
  - auth/service.go: PruneSessions
  - cmd/server/main.go: Starts the sweeper
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SessionPruner deletes stale refresh sessions. Implemented by *auth.Service.
type SessionPruner interface {
	PruneSessions(ctx context.Context) (int, error)
}

// SessionSweeper periodically removes expired and revoked sessions.
type SessionSweeper struct {
	Pruner        SessionPruner
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSessionSweeper creates a new sweeper. A non-positive interval means
// one hour.
func NewSessionSweeper(pruner SessionPruner, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SessionSweeper{
		Pruner:        pruner,
		CheckInterval: interval,
		Enabled:       true,
	}
}

// Start begins the sweeper.
func (s *SessionSweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		slog.Info("Session sweeper disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run()

	slog.Info("Session sweeper started", "interval", s.CheckInterval)
}

// Stop stops the sweeper and waits for an in-flight sweep.
func (s *SessionSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		slog.Info("Session sweeper stopped")
	}
}

// Run starts the sweeper and stops it when ctx is done.
func (s *SessionSweeper) Run(ctx context.Context) error {
	s.Start()
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *SessionSweeper) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweep()

	for {
		select {
		case <-s.ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *SessionSweeper) sweep() {
	if _, err := s.RunNow(context.Background()); err != nil {
		slog.Error("Session sweep failed", "error", err)
	}
}

// RunNow prunes immediately and returns how many sessions were removed.
func (s *SessionSweeper) RunNow(ctx context.Context) (int, error) {
	n, err := s.Pruner.PruneSessions(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.InfoContext(ctx, "Pruned refresh sessions", "count", n)
	}
	return n, nil
}
