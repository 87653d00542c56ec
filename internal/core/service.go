package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	db "github.com/JonMunkholm/bulkorder/internal/database"
	"golang.org/x/text/currency"
)

// Enricher resolves parsed rows against the catalog. Implementations pick
// the B2B or storefront endpoint from req.IsB2BUser.
type Enricher interface {
	BulkUpload(ctx context.Context, req EnrichmentRequest) (*EnrichmentResult, error)
}

// ReportArchiver stores a rejection report and returns where it went.
type ReportArchiver interface {
	Archive(ctx context.Context, sessionID string, c Classification) (string, error)
}

// Dependencies are the collaborators a Service talks to. Reports is
// optional; a nil Store or Quotes disables the features that need them.
type Dependencies struct {
	Enricher Enricher
	Store    db.Store
	Quotes   QuoteStore
	Notifier Notifier
	Tokens   TokenIssuer
	Reports  ReportArchiver
}

// Options tune upload handling. Zero values fall back to defaults.
type Options struct {
	MaxFileSize      int64
	MaxConcurrent    int
	MaxWaitTime      time.Duration
	UploadTimeout    time.Duration
	SessionTTL       time.Duration
	DefaultCurrency  string
	DefaultChannelID int
}

const (
	defaultUploadTimeout = 2 * time.Minute
	defaultSessionTTL    = 30 * time.Minute
	defaultCurrency      = "USD"
)

// Service provides the storefront operations: bulk upload sessions, list
// targets, shopping list editing, quote notes and masquerade.
type Service struct {
	deps    Dependencies
	opts    Options
	limiter *UploadLimiter
	targets *TargetRegistry
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*uploadSession

	inflight sync.WaitGroup

	// quoteMu serializes quote read-modify-write cycles.
	quoteMu sync.Mutex
}

// NewService wires a Service and registers the built-in list targets.
func NewService(deps Dependencies, opts Options) (*Service, error) {
	if deps.Enricher == nil {
		return nil, fmt.Errorf("new service: enricher is required")
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = MaxFileSize
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = defaultUploadTimeout
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = defaultCurrency
	}
	code, err := normalizeCurrency(opts.DefaultCurrency)
	if err != nil {
		return nil, fmt.Errorf("new service: %w", err)
	}
	opts.DefaultCurrency = code

	s := &Service{
		deps:     deps,
		opts:     opts,
		limiter:  NewUploadLimiter(opts.MaxConcurrent, opts.MaxWaitTime),
		targets:  NewTargetRegistry(),
		now:      time.Now,
		sessions: make(map[string]*uploadSession),
	}

	if deps.Store != nil {
		s.targets.Register(&shoppingListTarget{svc: s})
	}
	if deps.Quotes != nil {
		s.targets.Register(&quoteDraftTarget{svc: s})
	}
	return s, nil
}

// Targets returns the list target registry.
func (s *Service) Targets() *TargetRegistry {
	return s.targets
}

// MaxFileSize is the largest upload StartUpload accepts.
func (s *Service) MaxFileSize() int64 {
	return s.opts.MaxFileSize
}

// LimiterStatus reports enrichment slot usage.
func (s *Service) LimiterStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight enrichments finish or ctx is done.
// Call after the HTTP server stops accepting requests.
func (s *Service) WaitForUploads(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) notify(ctx context.Context, typ TipType, message string) {
	if s.deps.Notifier == nil {
		return
	}
	s.deps.Notifier.Notify(ctx, Tip{Type: typ, Message: message})
}

// normalizeCurrency upper-cases code and checks it is an ISO 4217 currency.
func normalizeCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return unit.String(), nil
}
