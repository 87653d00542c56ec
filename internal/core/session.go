package core

// session.go holds the upload dialog state. A session walks
// init → loading → end; choosing another file while loading supersedes the
// running enrichment. Every new file bumps the session generation and
// cancels the previous enrichment context, and a finishing enrichment only
// writes back if its generation is still current.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type uploadSession struct {
	id       string
	clientID string

	mu         sync.Mutex
	account    Account
	step       UploadStep
	fileName   string
	rowCount   int
	generation uint64
	cancel     context.CancelFunc
	result     *EnrichmentResult
	confirming bool
	confirmed  bool
	updatedAt  time.Time

	// changed is closed and replaced on every state change so waiters wake.
	changed chan struct{}
}

// snapshotLocked copies the session; caller holds mu.
func (u *uploadSession) snapshotLocked() SessionSnapshot {
	return SessionSnapshot{
		ID:         u.id,
		Step:       u.step,
		FileName:   u.fileName,
		RowCount:   u.rowCount,
		Generation: u.generation,
		Confirmed:  u.confirmed,
		Result:     u.result,
		Account:    u.account,
		UpdatedAt:  u.updatedAt,
	}
}

// transitionLocked records a state change and wakes waiters; caller holds mu.
func (u *uploadSession) transitionLocked(step UploadStep, now time.Time) {
	u.step = step
	u.updatedAt = now
	close(u.changed)
	u.changed = make(chan struct{})
}

// discardLocked cancels any enrichment and drops results; caller holds mu.
func (u *uploadSession) discardLocked() {
	if u.cancel != nil {
		u.cancel()
		u.cancel = nil
	}
	u.generation++
	u.result = nil
	u.confirmed = false
	u.rowCount = 0
	u.fileName = ""
}

// markConfirmed records that the result of generation gen went to a list.
// A file chosen meanwhile has its own generation and stays confirmable.
func (u *uploadSession) markConfirmed(gen uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.generation == gen {
		u.confirmed = true
	}
}

// OpenSession creates an upload session at step init. An empty currency
// falls back to the configured default; a non-B2B account without a channel
// gets the default channel.
func (s *Service) OpenSession(ctx context.Context, account Account) (string, error) {
	if account.CurrencyCode == "" {
		account.CurrencyCode = s.opts.DefaultCurrency
	}
	code, err := normalizeCurrency(account.CurrencyCode)
	if err != nil {
		return "", err
	}
	account.CurrencyCode = code
	if !account.IsB2BUser && account.ChannelID == 0 {
		account.ChannelID = s.opts.DefaultChannelID
	}
	if account.IsB2BUser {
		account.ChannelID = 0
	}

	sess := &uploadSession{
		id:        uuid.NewString(),
		clientID:  ClientIDFromContext(ctx),
		account:   account,
		step:      StepInit,
		updatedAt: s.now(),
		changed:   make(chan struct{}),
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return sess.id, nil
}

func (s *Service) getSession(id string) (*uploadSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Session returns a snapshot of the session without blocking.
func (s *Service) Session(id string) (SessionSnapshot, error) {
	sess, err := s.getSession(id)
	if err != nil {
		return SessionSnapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

// WaitSession blocks while the session is loading and returns the first
// snapshot taken outside that step.
func (s *Service) WaitSession(ctx context.Context, id string) (SessionSnapshot, error) {
	sess, err := s.getSession(id)
	if err != nil {
		return SessionSnapshot{}, err
	}

	for {
		sess.mu.Lock()
		if sess.step != StepLoading {
			snap := sess.snapshotLocked()
			sess.mu.Unlock()
			return snap, nil
		}
		changed := sess.changed
		sess.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return SessionSnapshot{}, ctx.Err()
		}
	}
}

// ResetSession returns the session to init (the user chose to re-upload).
// Any running enrichment is cancelled and its response will be ignored.
func (s *Service) ResetSession(id string) (SessionSnapshot, error) {
	sess, err := s.getSession(id)
	if err != nil {
		return SessionSnapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.discardLocked()
	sess.transitionLocked(StepInit, s.now())
	return sess.snapshotLocked(), nil
}

// CloseSession discards the session and everything it holds.
func (s *Service) CloseSession(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sess.mu.Lock()
	sess.discardLocked()
	sess.transitionLocked(StepInit, s.now())
	sess.mu.Unlock()
	return nil
}

// ExpireSessions closes sessions untouched for longer than the session TTL
// and returns how many were removed. Sessions mid-enrichment are kept.
func (s *Service) ExpireSessions() int {
	cutoff := s.now().Add(-s.opts.SessionTTL)

	s.mu.RLock()
	var stale []string
	for id, sess := range s.sessions {
		sess.mu.Lock()
		if sess.step != StepLoading && sess.updatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
		sess.mu.Unlock()
	}
	s.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if s.CloseSession(id) == nil {
			removed++
		}
	}
	return removed
}

// SessionCount returns the number of open sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
