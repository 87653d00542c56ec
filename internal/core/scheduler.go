package core

// scheduler.go runs periodic maintenance: expiring idle upload sessions and
// auto-hiding tips. It is long-running and stops when its context is
// cancelled; a failed sweep is logged and the next tick tries again.

import (
	"context"
	"log/slog"
	"time"
)

const defaultSweepInterval = time.Second

// StartSweeper expires idle sessions and stale tips every interval until ctx
// is done. tips may be nil. Blocks; run it in a goroutine.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration, tips *TipCenter) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	slog.Info("sweeper started",
		"interval", interval,
		"session_ttl", s.opts.SessionTTL,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(tips)
		}
	}
}

// sweep performs one expiry pass.
func (s *Service) sweep(tips *TipCenter) {
	if n := s.ExpireSessions(); n > 0 {
		slog.Info("expired upload sessions", "count", n, "open", s.SessionCount())
	}
	if tips != nil {
		if n := tips.Expire(); n > 0 {
			slog.Debug("hid tips", "count", n)
		}
	}
}
