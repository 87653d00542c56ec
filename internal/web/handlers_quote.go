package web

import (
	"net/http"

	"github.com/JonMunkholm/bulkorder/internal/core"
)

type noteRequest struct {
	Note string `json:"note"`
}

type noteResponse struct {
	Note string `json:"note"`
}

func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.Quote(r.Context(), core.ClientIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleGetQuoteNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.service.QuoteNote(r.Context(), core.ClientIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, noteResponse{Note: note})
}

// handleSetQuoteNote saves the note; the quote's products are untouched.
func (s *Server) handleSetQuoteNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	info, err := s.service.SetQuoteNote(r.Context(), core.ClientIDFromContext(r.Context()), req.Note)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
