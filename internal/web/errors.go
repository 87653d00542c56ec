package web

// errors.go turns service errors into responses.
//
// Every error is:
//   - logged with the technical detail and the chi request id
//   - mapped by core.MapError to a message, an action and a support code
//   - rendered as JSON for API calls or as an HTML fragment for HTMX
//
// The status code comes from statusFor unless the handler already knows
// better (for example 400 for a malformed path parameter).

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/JonMunkholm/bulkorder/internal/logging"
	"github.com/JonMunkholm/bulkorder/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// fail responds with the status statusFor picks for err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.respondError(w, r, err, statusFor(err))
}

// respondError logs err and writes the user-facing version of it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	// Unmapped errors reach users as ERR000; those need a look too.
	if statusCode >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request error", attrs...)
	}

	if isHTMX(r) && !strings.HasPrefix(r.URL.Path, "/api/") {
		renderErrorPartial(r.Context(), w, userMsg, statusCode)
		return
	}
	respondErrorJSON(w, userMsg, statusCode)
}

// statusFor maps service sentinels to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound),
		errors.Is(err, core.ErrListNotFound),
		errors.Is(err, core.ErrItemNotFound),
		errors.Is(err, core.ErrCompanyNotFound),
		errors.Is(err, core.ErrTipNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrFileStructure),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrInvalidInput),
		errors.Is(err, core.ErrInvalidCurrency),
		errors.Is(err, core.ErrNoteTooLong),
		errors.Is(err, core.ErrUnknownTarget):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrSessionBusy),
		errors.Is(err, core.ErrNotReady),
		errors.Is(err, core.ErrSuperseded),
		errors.Is(err, core.ErrListReadOnly):
		return http.StatusConflict
	case errors.Is(err, core.ErrNoSalesRep):
		return http.StatusForbidden
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrEnrichment):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func renderErrorPartial(ctx context.Context, w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(ctx, w)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
