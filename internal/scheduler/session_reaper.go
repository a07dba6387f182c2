package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/userbrowser/internal/logger"
)

const (
	// DefaultIdleTTL is how long a session may stay unused before it is ended
	DefaultIdleTTL = 30 * time.Minute
)

// IdleReaper ends sessions unused for longer than a TTL.
type IdleReaper interface {
	ReapIdle(ctx context.Context, ttl time.Duration) []string
}

// SessionReaper periodically ends idle sessions
type SessionReaper struct {
	sessions IdleReaper
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewSessionReaper creates a new session reaper
func NewSessionReaper(
	sessions IdleReaper,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
) *SessionReaper {
	if ttl == 0 {
		ttl = DefaultIdleTTL
	}
	if interval == 0 {
		interval = ttl / 2
	}

	return &SessionReaper{
		sessions: sessions,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic reaping
func (sr *SessionReaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(sr.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sr.Collect(ctx)
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	sr.logger.Info("session reaper started",
		logger.Duration("interval", sr.interval),
		logger.Duration("idle_ttl", sr.ttl))
	return nil
}

// Stop stops the reaper
func (sr *SessionReaper) Stop() {
	close(sr.stopCh)
}

// Collect ends idle sessions and returns how many were ended
func (sr *SessionReaper) Collect(ctx context.Context) int {
	reaped := sr.sessions.ReapIdle(ctx, sr.ttl)
	if len(reaped) == 0 {
		sr.logger.Debug("no idle sessions")
		return 0
	}

	for _, id := range reaped {
		sr.logger.Info("reaped idle session", logger.String("session_id", id))
	}
	return len(reaped)
}
