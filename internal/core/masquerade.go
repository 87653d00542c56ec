package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	db "github.com/JonMunkholm/bulkorder/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// TokenIssuer signs the credential a sales rep uses while acting as a
// company.
type TokenIssuer interface {
	Issue(salesRepID, companyID int64) (string, time.Time, error)
}

// CompanyCard is what the masquerade dashboard shows per company.
type CompanyCard struct {
	CompanyID        int64  `json:"companyId"`
	CompanyName      string `json:"companyName"`
	CompanyAdminName string `json:"companyAdminName"`
	CompanyEmail     string `json:"companyEmail"`
}

// MasqueradeGrant is returned when a sales rep starts acting as a company.
type MasqueradeGrant struct {
	CompanyID int64     `json:"companyId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Companies lists the companies a sales rep can act as, optionally filtered
// by name or email.
func (s *Service) Companies(ctx context.Context, search string) ([]CompanyCard, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	rows, err := store.ListCompanies(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	cards := make([]CompanyCard, 0, len(rows))
	for _, c := range rows {
		cards = append(cards, CompanyCard{
			CompanyID:        c.ID,
			CompanyName:      c.Name,
			CompanyAdminName: c.AdminName,
			CompanyEmail:     c.Email,
		})
	}
	return cards, nil
}

// StartMasquerade ends any open masquerade of the rep, opens one for
// companyID and returns a signed token for it.
func (s *Service) StartMasquerade(ctx context.Context, salesRepID, companyID int64) (MasqueradeGrant, error) {
	if salesRepID <= 0 {
		return MasqueradeGrant{}, ErrNoSalesRep
	}
	if s.deps.Tokens == nil {
		return MasqueradeGrant{}, errors.New("masquerade tokens are not configured")
	}
	store, err := s.store()
	if err != nil {
		return MasqueradeGrant{}, err
	}

	err = store.ExecTx(ctx, func(q db.Querier) error {
		if _, err := q.GetCompany(ctx, companyID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %d", ErrCompanyNotFound, companyID)
			}
			return fmt.Errorf("get company %d: %w", companyID, err)
		}
		if _, err := q.EndMasqueradeSessions(ctx, salesRepID); err != nil {
			return fmt.Errorf("end masquerade for rep %d: %w", salesRepID, err)
		}
		_, err := q.StartMasqueradeSession(ctx, db.StartMasqueradeSessionParams{
			ID:         pgtype.UUID{Bytes: uuid.New(), Valid: true},
			SalesRepID: salesRepID,
			CompanyID:  companyID,
		})
		if err != nil {
			return fmt.Errorf("start masquerade for rep %d: %w", salesRepID, err)
		}
		return nil
	})
	if err != nil {
		return MasqueradeGrant{}, err
	}

	token, expires, err := s.deps.Tokens.Issue(salesRepID, companyID)
	if err != nil {
		return MasqueradeGrant{}, fmt.Errorf("issue masquerade token: %w", err)
	}

	slog.Info("masquerade started", "sales_rep_id", salesRepID, "company_id", companyID)
	return MasqueradeGrant{CompanyID: companyID, Token: token, ExpiresAt: expires}, nil
}

// EndMasquerade closes the rep's open masquerade, if any.
func (s *Service) EndMasquerade(ctx context.Context, salesRepID int64) error {
	if salesRepID <= 0 {
		return ErrNoSalesRep
	}
	store, err := s.store()
	if err != nil {
		return err
	}
	n, err := store.EndMasqueradeSessions(ctx, salesRepID)
	if err != nil {
		return fmt.Errorf("end masquerade for rep %d: %w", salesRepID, err)
	}
	if n > 0 {
		slog.Info("masquerade ended", "sales_rep_id", salesRepID)
	}
	return nil
}

// ActingCompany returns the company the rep is acting as, or 0.
func (s *Service) ActingCompany(ctx context.Context, salesRepID int64) (int64, error) {
	if salesRepID <= 0 {
		return 0, nil
	}
	store, err := s.store()
	if err != nil {
		return 0, err
	}
	m, err := store.GetActiveMasquerade(ctx, salesRepID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("active masquerade for rep %d: %w", salesRepID, err)
	}
	return m.CompanyID, nil
}
