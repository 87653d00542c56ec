package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listCompanies = `-- name: ListCompanies :many
SELECT id, name, admin_name, email, created_at
FROM companies
WHERE $1::text = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
ORDER BY name, id
`

func (q *Queries) ListCompanies(ctx context.Context, search string) ([]Company, error) {
	rows, err := q.db.Query(ctx, listCompanies, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Company{}
	for rows.Next() {
		var i Company
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.AdminName,
			&i.Email,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCompany = `-- name: GetCompany :one
SELECT id, name, admin_name, email, created_at
FROM companies
WHERE id = $1
`

func (q *Queries) GetCompany(ctx context.Context, id int64) (Company, error) {
	row := q.db.QueryRow(ctx, getCompany, id)
	var i Company
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.AdminName,
		&i.Email,
		&i.CreatedAt,
	)
	return i, err
}

const endMasqueradeSessions = `-- name: EndMasqueradeSessions :execrows
UPDATE masquerade_sessions
SET ended_at = now()
WHERE sales_rep_id = $1 AND ended_at IS NULL
`

func (q *Queries) EndMasqueradeSessions(ctx context.Context, salesRepID int64) (int64, error) {
	result, err := q.db.Exec(ctx, endMasqueradeSessions, salesRepID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const startMasqueradeSession = `-- name: StartMasqueradeSession :one
INSERT INTO masquerade_sessions (id, sales_rep_id, company_id)
VALUES ($1, $2, $3)
RETURNING id, sales_rep_id, company_id, started_at, ended_at
`

type StartMasqueradeSessionParams struct {
	ID         pgtype.UUID `json:"id"`
	SalesRepID int64       `json:"sales_rep_id"`
	CompanyID  int64       `json:"company_id"`
}

func (q *Queries) StartMasqueradeSession(ctx context.Context, arg StartMasqueradeSessionParams) (MasqueradeSession, error) {
	row := q.db.QueryRow(ctx, startMasqueradeSession, arg.ID, arg.SalesRepID, arg.CompanyID)
	var i MasqueradeSession
	err := row.Scan(
		&i.ID,
		&i.SalesRepID,
		&i.CompanyID,
		&i.StartedAt,
		&i.EndedAt,
	)
	return i, err
}

const getActiveMasquerade = `-- name: GetActiveMasquerade :one
SELECT id, sales_rep_id, company_id, started_at, ended_at
FROM masquerade_sessions
WHERE sales_rep_id = $1 AND ended_at IS NULL
ORDER BY started_at DESC
LIMIT 1
`

func (q *Queries) GetActiveMasquerade(ctx context.Context, salesRepID int64) (MasqueradeSession, error) {
	row := q.db.QueryRow(ctx, getActiveMasquerade, salesRepID)
	var i MasqueradeSession
	err := row.Scan(
		&i.ID,
		&i.SalesRepID,
		&i.CompanyID,
		&i.StartedAt,
		&i.EndedAt,
	)
	return i, err
}
