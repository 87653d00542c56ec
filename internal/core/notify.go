package core

// notify.go is the transient notification ("tip") center. Anything that
// needs to tell the user something short-lived takes a Notifier; the process
// has exactly one TipCenter, built in main and passed down.

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TipType is the severity shown on a tip.
type TipType string

const (
	TipSuccess TipType = "success"
	TipError   TipType = "error"
	TipInfo    TipType = "info"
	TipWarning TipType = "warning"
)

// DefaultAutoHide is how long a non-closable tip stays visible.
const DefaultAutoHide = 3 * time.Second

// Tip is one notification. Closable tips stay until dismissed; the rest
// auto-hide.
type Tip struct {
	ID        string    `json:"id"`
	Type      TipType   `json:"type"`
	Message   string    `json:"message"`
	IsClose   bool      `json:"isClose"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier raises tips for the client found in ctx.
type Notifier interface {
	Notify(ctx context.Context, tip Tip)
}

// NotifyError raises an error tip.
func NotifyError(ctx context.Context, n Notifier, message string) {
	if n == nil {
		return
	}
	n.Notify(ctx, Tip{Type: TipError, Message: message})
}

// NotifySuccess raises a success tip.
func NotifySuccess(ctx context.Context, n Notifier, message string) {
	if n == nil {
		return
	}
	n.Notify(ctx, Tip{Type: TipSuccess, Message: message})
}

// TipCenter keeps tips per client in memory.
type TipCenter struct {
	autoHide time.Duration
	now      func() time.Time

	mu   sync.Mutex
	tips map[string][]Tip
}

// NewTipCenter creates a center; autoHide <= 0 uses DefaultAutoHide.
func NewTipCenter(autoHide time.Duration) *TipCenter {
	if autoHide <= 0 {
		autoHide = DefaultAutoHide
	}
	return &TipCenter{
		autoHide: autoHide,
		now:      time.Now,
		tips:     make(map[string][]Tip),
	}
}

// Notify implements Notifier. Missing ID and CreatedAt are filled in.
func (c *TipCenter) Notify(ctx context.Context, tip Tip) {
	if tip.ID == "" {
		tip.ID = uuid.NewString()
	}
	if tip.CreatedAt.IsZero() {
		tip.CreatedAt = c.now()
	}
	if tip.Type == "" {
		tip.Type = TipInfo
	}
	client := ClientIDFromContext(ctx)

	c.mu.Lock()
	c.tips[client] = append(c.tips[client], tip)
	c.mu.Unlock()

	slog.Debug("tip raised", "client_id", client, "type", tip.Type, "message", tip.Message)
}

// Tips returns the client's current tips, oldest first.
func (c *TipCenter) Tips(client string) []Tip {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Tip, len(c.tips[client]))
	copy(out, c.tips[client])
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Dismiss removes one tip. Returns false if it was not there.
func (c *TipCenter) Dismiss(client, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	tips := c.tips[client]
	for i, t := range tips {
		if t.ID == id {
			c.tips[client] = append(tips[:i:i], tips[i+1:]...)
			if len(c.tips[client]) == 0 {
				delete(c.tips, client)
			}
			return true
		}
	}
	return false
}

// Expire drops non-closable tips older than the auto-hide duration and
// returns how many were removed.
func (c *TipCenter) Expire() int {
	cutoff := c.now().Add(-c.autoHide)

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for client, tips := range c.tips {
		kept := tips[:0]
		for _, t := range tips {
			if !t.IsClose && !t.CreatedAt.After(cutoff) {
				removed++
				continue
			}
			kept = append(kept, t)
		}
		if len(kept) == 0 {
			delete(c.tips, client)
		} else {
			c.tips[client] = kept
		}
	}
	return removed
}

var _ Notifier = (*TipCenter)(nil)
