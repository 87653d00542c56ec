package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	db "github.com/JonMunkholm/bulkorder/internal/database"
	"github.com/JonMunkholm/bulkorder/internal/logging"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// StartUpload verifies and parses a file, then enriches its rows in the
// background. The returned snapshot is in step loading; use WaitSession or
// Session to see the outcome.
//
// Verification failures raise an error tip and leave the session as it was.
// A file chosen while a previous one is still loading supersedes it.
func (s *Service) StartUpload(ctx context.Context, sessionID, fileName, contentType string, size int64, r io.Reader) (SessionSnapshot, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionSnapshot{}, err
	}
	if r == nil {
		return SessionSnapshot{}, ErrNoFile
	}

	if err := VerifyFile(size, contentType, s.opts.MaxFileSize); err != nil {
		s.notify(ctx, TipError, MapError(err).Message)
		return SessionSnapshot{}, err
	}

	rows, err := ParseCSV(io.LimitReader(r, s.opts.MaxFileSize))
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("start upload %s: %w", sessionID, err)
	}

	enrichCtx, cancel := context.WithTimeout(context.Background(), s.opts.UploadTimeout)
	enrichCtx = ContextWithClientID(enrichCtx, sess.clientID)

	sess.mu.Lock()
	sess.discardLocked()
	sess.fileName = fileName
	sess.rowCount = len(rows)
	sess.cancel = cancel
	gen := sess.generation
	req := EnrichmentRequest{
		CurrencyCode: sess.account.CurrencyCode,
		ProductList:  rows,
		IsB2BUser:    sess.account.IsB2BUser,
	}
	if !sess.account.IsB2BUser {
		channel := sess.account.ChannelID
		req.ChannelID = &channel
	}
	sess.transitionLocked(StepLoading, s.now())
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	log := logging.WithFields(ctx, "session_id", sess.id, "generation", gen)
	log.Info("upload started",
		"file", fileName,
		"rows", len(rows),
		"b2b", req.IsB2BUser,
	)

	s.inflight.Add(1)
	go s.runEnrichment(enrichCtx, cancel, log, sess, gen, req)

	return snap, nil
}

// runEnrichment calls the enricher and applies the result if gen is still
// the session's current generation.
func (s *Service) runEnrichment(ctx context.Context, cancel context.CancelFunc, log *slog.Logger, sess *uploadSession, gen uint64, req EnrichmentRequest) {
	defer s.inflight.Done()
	defer cancel()

	apply := func(result *EnrichmentResult, err error) {
		if err := s.applyEnrichment(log, sess, gen, result, err); err != nil {
			log.Info("discarding stale enrichment response", "error", err)
		}
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic in enrichment", "panic", r)
			apply(nil, fmt.Errorf("%w: internal error: %v", ErrEnrichment, r))
		}
	}()

	if err := s.limiter.Acquire(ctx); err != nil {
		apply(nil, err)
		return
	}
	defer s.limiter.Release()

	result, err := s.deps.Enricher.BulkUpload(ctx, req)
	apply(result, err)
}

// applyEnrichment stores an enrichment outcome on the session. It returns
// ErrSuperseded, and changes nothing, when gen is no longer current.
func (s *Service) applyEnrichment(log *slog.Logger, sess *uploadSession, gen uint64, result *EnrichmentResult, err error) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.generation != gen {
		return fmt.Errorf("%w: generation %d, current %d", ErrSuperseded, gen, sess.generation)
	}
	sess.cancel = nil

	if err == nil && result == nil {
		err = fmt.Errorf("%w: empty response", ErrEnrichment)
	}
	if err != nil {
		// back to the file picker with nothing retained
		log.Error("enrichment failed", "error", err)
		sess.result = nil
		sess.rowCount = 0
		sess.transitionLocked(StepInit, s.now())
		return nil
	}

	if result.ValidProduct == nil {
		result.ValidProduct = []EnrichedRow{}
	}
	if result.StockErrorSkus == nil {
		result.StockErrorSkus = []string{}
	}
	sess.result = result
	sess.transitionLocked(StepEnd, s.now())
	log.Info("enrichment complete",
		"valid_products", len(result.ValidProduct),
		"stock_error_skus", len(result.StockErrorSkus),
	)
	return nil
}

// SessionClassification classifies the session's current result.
func (s *Service) SessionClassification(sessionID string) (Classification, string, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return Classification{}, "", err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.step != StepEnd || sess.result == nil {
		return Classification{}, "", ErrNotReady
	}
	return ClassifyResult(sess.result), sess.fileName, nil
}

// ConfirmUpload hands the accepted rows to the chosen list target and
// returns the full classification for review. An upload that came back with
// no products is a no-op: nothing is classified into the target and the
// target is not called.
func (s *Service) ConfirmUpload(ctx context.Context, sessionID, targetKey, ref string) (ConfirmResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return ConfirmResult{}, err
	}
	target, ok := s.targets.Get(targetKey)
	if !ok {
		return ConfirmResult{}, fmt.Errorf("%w: %s", ErrUnknownTarget, targetKey)
	}

	sess.mu.Lock()
	if sess.step != StepEnd || sess.result == nil {
		sess.mu.Unlock()
		return ConfirmResult{}, ErrNotReady
	}
	if sess.confirmed {
		sess.mu.Unlock()
		return ConfirmResult{}, fmt.Errorf("confirm upload %s: %w", sessionID, ErrConfirmed)
	}
	if sess.confirming {
		sess.mu.Unlock()
		return ConfirmResult{}, ErrSessionBusy
	}
	sess.confirming = true
	result := sess.result
	fileName := sess.fileName
	gen := sess.generation
	sess.mu.Unlock()

	defer func() {
		sess.mu.Lock()
		sess.confirming = false
		sess.mu.Unlock()
	}()

	out := ConfirmResult{SessionID: sessionID, Target: targetKey}
	if len(result.ValidProduct) == 0 {
		out.Classification = Classify(nil)
		sess.markConfirmed(gen)
		return out, nil
	}

	c := ClassifyResult(result)
	out.Classification = c

	added, err := target.AddItems(ctx, ref, ListAddition{
		Items:          c.Accepted,
		StockErrorFile: c.StockErrorFile,
	})
	if err != nil {
		s.notify(ctx, TipError, MapError(err).Message)
		return out, fmt.Errorf("add to %s: %w", targetKey, err)
	}
	out.Added = added
	sess.markConfirmed(gen)

	if s.deps.Reports != nil && c.Rejected() > 0 {
		loc, err := s.deps.Reports.Archive(ctx, sessionID, c)
		if err != nil {
			slog.Warn("archive rejection report failed", "session_id", sessionID, "error", err)
		} else {
			out.ReportLocation = loc
		}
	}

	s.recordUpload(ctx, sess, fileName, target, ref, out)
	s.notify(ctx, TipSuccess, fmt.Sprintf("%d products were added to your %s", added, target.Label()))

	slog.Info("upload confirmed",
		"session_id", sessionID,
		"target", targetKey,
		"accepted", len(c.Accepted),
		"rejected", c.Rejected(),
	)
	return out, nil
}

// UploadRecord is one confirmed upload from history.
type UploadRecord struct {
	ID             string    `json:"id"`
	FileName       string    `json:"fileName"`
	Target         string    `json:"target"`
	TargetRef      string    `json:"targetRef,omitempty"`
	TotalRows      int       `json:"totalRows"`
	AcceptedRows   int       `json:"acceptedRows"`
	RejectedRows   int       `json:"rejectedRows"`
	ReportLocation string    `json:"reportLocation,omitempty"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

// recordUpload writes the history row. Failures are logged, not returned:
// the items are already on the list.
func (s *Service) recordUpload(ctx context.Context, sess *uploadSession, fileName string, target ListTarget, ref string, out ConfirmResult) {
	if s.deps.Store == nil {
		return
	}
	c := out.Classification
	err := s.deps.Store.InsertBulkUpload(ctx, db.InsertBulkUploadParams{
		ID:             pgtype.UUID{Bytes: uuid.New(), Valid: true},
		SessionID:      sess.id,
		ClientID:       ClientIDFromContext(ctx),
		FileName:       fileName,
		Target:         target.Key(),
		TargetRef:      ref,
		TotalRows:      int32(c.Total()),
		AcceptedRows:   int32(len(c.Accepted)),
		RejectedRows:   int32(c.Rejected()),
		ReportLocation: ToPgText(out.ReportLocation),
	})
	if err != nil {
		slog.Warn("record upload history failed",
			"session_id", sess.id,
			"ip", GetIPAddressFromContext(ctx),
			"user_agent", GetUserAgentFromContext(ctx),
			"error", err,
		)
	}
}

// UploadHistory returns the client's most recent confirmed uploads.
func (s *Service) UploadHistory(ctx context.Context, limit int) ([]UploadRecord, error) {
	if s.deps.Store == nil {
		return []UploadRecord{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := s.deps.Store.ListBulkUploads(ctx, db.ListBulkUploadsParams{
		ClientID: ClientIDFromContext(ctx),
		Limit:    int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("upload history: %w", err)
	}

	records := make([]UploadRecord, 0, len(rows))
	for _, row := range rows {
		rec := UploadRecord{
			FileName:       row.FileName,
			Target:         row.Target,
			TargetRef:      row.TargetRef,
			TotalRows:      int(row.TotalRows),
			AcceptedRows:   int(row.AcceptedRows),
			RejectedRows:   int(row.RejectedRows),
			ReportLocation: row.ReportLocation.String,
		}
		if row.ID.Valid {
			rec.ID = uuid.UUID(row.ID.Bytes).String()
		}
		if row.UploadedAt.Valid {
			rec.UploadedAt = row.UploadedAt.Time
		}
		records = append(records, rec)
	}
	return records, nil
}
