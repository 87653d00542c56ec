package web

import (
	"net/http"
	"strings"

	"github.com/JonMunkholm/bulkorder/internal/core"
	"github.com/JonMunkholm/bulkorder/internal/web/templates"
)

type companiesResponse struct {
	Companies []core.CompanyCard `json:"companies"`
	Selected  int64              `json:"selected"`
}

// companiesWithSelection loads the companies and which one the caller's
// sales rep is acting as.
func (s *Server) companiesWithSelection(r *http.Request) (companiesResponse, error) {
	ctx := r.Context()
	cards, err := s.service.Companies(ctx, strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		return companiesResponse{}, err
	}
	selected, err := s.service.ActingCompany(ctx, core.SalesRepIDFromContext(ctx))
	if err != nil {
		return companiesResponse{}, err
	}
	return companiesResponse{Companies: cards, Selected: selected}, nil
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	resp, err := s.companiesWithSelection(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDashboardCards renders the masquerade dashboard cards as HTML.
func (s *Server) handleDashboardCards(w http.ResponseWriter, r *http.Request) {
	resp, err := s.companiesWithSelection(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.DashboardCards(resp.Companies, resp.Selected).Render(r.Context(), w)
}

// handleStartMasquerade makes the sales rep act as {companyID} and returns
// the signed token for subsequent requests.
func (s *Server) handleStartMasquerade(w http.ResponseWriter, r *http.Request) {
	companyID, err := pathID(r, "companyID")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := r.Context()
	grant, err := s.service.StartMasquerade(ctx, core.SalesRepIDFromContext(ctx), companyID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

func (s *Server) handleEndMasquerade(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.service.EndMasquerade(ctx, core.SalesRepIDFromContext(ctx)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
