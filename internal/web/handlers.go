package web

import (
	"net/http"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/go-chi/chi/v5"
)

// handleHealth is the liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
	})
}

// handleListTips returns the caller's current tips, oldest first.
func (s *Server) handleListTips(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tips.Tips(core.ClientIDFromContext(r.Context())))
}

func (s *Server) handleDismissTip(w http.ResponseWriter, r *http.Request) {
	client := core.ClientIDFromContext(r.Context())
	if !s.tips.Dismiss(client, chi.URLParam(r, "tipID")) {
		s.fail(w, r, core.ErrTipNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
