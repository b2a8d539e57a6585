package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adotai/adotai-backend/internal/model"
)

// ErrReportNotFound is returned when a report cannot be found in the DB.
var ErrReportNotFound = errors.New("report not found")

// ReportRepo persists moderation reports. Reports are written by any
// authenticated user and consumed only by the admin surface.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a new repo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// Create files a report against an animal or a user.
func (r *ReportRepo) Create(ctx context.Context, rep *model.Report) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reports (reporter_id, target_type, target_id, reason, details, status) VALUES (?,?,?,?,?,?)",
		rep.ReporterID, rep.TargetType, rep.TargetID, rep.Reason, rep.Details, model.ReportPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = uint64(id)
	rep.Status = model.ReportPending
	return nil
}

// List returns reports, optionally filtered by status, newest first.
func (r *ReportRepo) List(ctx context.Context, status string) ([]model.Report, error) {
	q := `SELECT id, reporter_id, target_type, target_id, reason, details, status, created_at, updated_at
		FROM reports`
	args := []any{}
	if status != "" {
		q += " WHERE status=?"
		args = append(args, status)
	}
	q += " ORDER BY created_at DESC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Report
	for rows.Next() {
		var rep model.Report
		if err := rows.Scan(&rep.ID, &rep.ReporterID, &rep.TargetType, &rep.TargetID,
			&rep.Reason, &rep.Details, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// SetStatus resolves or dismisses a report.
func (r *ReportRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE reports SET status=?, updated_at=CURRENT_TIMESTAMP WHERE id=?", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReportNotFound
	}
	return nil
}
