package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertBulkUpload = `-- name: InsertBulkUpload :exec
INSERT INTO bulk_uploads (
	id, session_id, client_id, file_name, target, target_ref,
	total_rows, accepted_rows, rejected_rows, report_location
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type InsertBulkUploadParams struct {
	ID             pgtype.UUID `json:"id"`
	SessionID      string      `json:"session_id"`
	ClientID       string      `json:"client_id"`
	FileName       string      `json:"file_name"`
	Target         string      `json:"target"`
	TargetRef      string      `json:"target_ref"`
	TotalRows      int32       `json:"total_rows"`
	AcceptedRows   int32       `json:"accepted_rows"`
	RejectedRows   int32       `json:"rejected_rows"`
	ReportLocation pgtype.Text `json:"report_location"`
}

func (q *Queries) InsertBulkUpload(ctx context.Context, arg InsertBulkUploadParams) error {
	_, err := q.db.Exec(ctx, insertBulkUpload,
		arg.ID,
		arg.SessionID,
		arg.ClientID,
		arg.FileName,
		arg.Target,
		arg.TargetRef,
		arg.TotalRows,
		arg.AcceptedRows,
		arg.RejectedRows,
		arg.ReportLocation,
	)
	return err
}

const listBulkUploads = `-- name: ListBulkUploads :many
SELECT id, session_id, client_id, file_name, target, target_ref,
	total_rows, accepted_rows, rejected_rows, report_location, uploaded_at
FROM bulk_uploads
WHERE client_id = $1
ORDER BY uploaded_at DESC
LIMIT $2
`

type ListBulkUploadsParams struct {
	ClientID string `json:"client_id"`
	Limit    int32  `json:"limit"`
}

func (q *Queries) ListBulkUploads(ctx context.Context, arg ListBulkUploadsParams) ([]BulkUpload, error) {
	rows, err := q.db.Query(ctx, listBulkUploads, arg.ClientID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BulkUpload{}
	for rows.Next() {
		var i BulkUpload
		if err := rows.Scan(
			&i.ID,
			&i.SessionID,
			&i.ClientID,
			&i.FileName,
			&i.Target,
			&i.TargetRef,
			&i.TotalRows,
			&i.AcceptedRows,
			&i.RejectedRows,
			&i.ReportLocation,
			&i.UploadedAt,
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
