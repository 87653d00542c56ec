package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/JonMunkholm/bulkorder/internal/logging"
	"github.com/JonMunkholm/bulkorder/internal/report"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is headroom above the file size limit for the form
// boundaries and headers, so an exactly-max file still parses.
const multipartOverhead = 1 << 20

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type openSessionRequest struct {
	IsB2BUser    bool   `json:"isB2BUser"`
	ChannelID    int    `json:"channelId" validate:"gte=0"`
	CurrencyCode string `json:"currencyCode" validate:"omitempty,len=3,alpha"`
}

type confirmRequest struct {
	Target string `json:"target" validate:"required"`
	Ref    string `json:"ref" validate:"max=64"`
}

// handleOpenSession starts an upload dialog for the caller.
func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.service.OpenSession(r.Context(), core.Account{
		IsB2BUser:    req.IsB2BUser,
		ChannelID:    req.ChannelID,
		CurrencyCode: req.CurrencyCode,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	snap, err := s.service.Session(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Session(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleUploadFile accepts the multipart "file" field and starts
// enrichment. The response is the session in step loading; poll or call
// /wait for the result.
func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	ctx := r.Context()
	maxSize := s.service.MaxFileSize()

	// The body cap only guards the transport. The file part is read up to one
	// byte past the limit so StartUpload judges its type before its size.
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	part, err := filePart(r)
	if err != nil {
		s.fail(w, r, s.uploadReadError(ctx, err))
		return
	}
	defer part.Close()

	data, err := io.ReadAll(io.LimitReader(part, maxSize+1))
	if err != nil {
		s.fail(w, r, s.uploadReadError(ctx, err))
		return
	}

	snap, err := s.service.StartUpload(ctx, sessionID, part.FileName(), part.Header.Get("Content-Type"), int64(len(data)), bytes.NewReader(data))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, snap)
}

// filePart advances the multipart body to the "file" field.
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, http.ErrMissingFile
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

// uploadReadError maps a failure to read the upload body. A body past the
// transport cap raises the same tip as an oversized file.
func (s *Server) uploadReadError(ctx context.Context, err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		core.NotifyError(ctx, s.tips, core.MapError(core.ErrFileTooLarge).Message)
		return core.ErrFileTooLarge
	case errors.Is(err, http.ErrMissingFile):
		return core.ErrNoFile
	default:
		return fmt.Errorf("%w: read form: %v", core.ErrInvalidInput, err)
	}
}

// handleWaitSession blocks until the session is no longer loading or the
// request times out.
func (s *Server) handleWaitSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.WaitSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.ResetSession(chi.URLParam(r, "sessionID"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleConfirmUpload adds the accepted rows to a list target and returns
// the classification.
func (s *Server) handleConfirmUpload(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := s.service.ConfirmUpload(r.Context(), chi.URLParam(r, "sessionID"), req.Target, req.Ref)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUploadReport downloads the classification as an XLSX workbook.
func (s *Server) handleUploadReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	c, fileName, err := s.service.SessionClassification(sessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	data, err := report.Bytes(c, fileName)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reportName(fileName, sessionID)))
	w.WriteHeader(http.StatusOK)
	if _, err := bytes.NewReader(data).WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Error("report write error", "session_id", sessionID, "error", err)
	}
}

// reportName derives "<upload>-report.xlsx" from the uploaded file name.
func reportName(fileName, sessionID string) string {
	base := strings.TrimSuffix(path.Base(fileName), path.Ext(fileName))
	base = strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return '_'
		}
		return r
	}, base)
	if base == "" || base == "." || base == "/" {
		base = sessionID
	}
	return base + "-report.xlsx"
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.CloseSession(chi.URLParam(r, "sessionID")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadStatus reports enrichment slot usage.
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"limiter":  s.service.LimiterStatus(),
		"sessions": s.service.SessionCount(),
	})
}

// handleUploadHistory lists the caller's confirmed uploads, newest first.
func (s *Server) handleUploadHistory(w http.ResponseWriter, r *http.Request) {
	limit := min(parseIntParam(r, "limit", defaultHistoryLimit, 1), maxHistoryLimit)
	records, err := s.service.UploadHistory(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Targets().All())
}
