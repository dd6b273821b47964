package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/eventmate-api/internal/model"
)

const applicationColumns = "id, user_id, message, status, reviewed_by, created_at, updated_at"

// HostApplicationRepo reads and writes host_applications.
type HostApplicationRepo struct {
	q    dbtx
	lock bool
}

func scanApplication(rs rowScanner) (model.HostApplication, error) {
	var (
		a        model.HostApplication
		status   string
		reviewer sql.NullString
	)
	if err := rs.Scan(&a.ID, &a.UserID, &a.Message, &status, &reviewer, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return model.HostApplication{}, err
	}
	a.Status, a.ReviewedBy = model.ApplicationStatus(status), stringPtr(reviewer)
	return a, nil
}

func (r *HostApplicationRepo) Create(ctx context.Context, a *model.HostApplication) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO host_applications ("+applicationColumns+") VALUES (?,?,?,?,?,?,?)",
		a.ID, a.UserID, a.Message, string(a.Status), nullString(a.ReviewedBy), now, now)
	if err != nil {
		return mapErr(err)
	}
	a.CreatedAt, a.UpdatedAt = now, now
	return nil
}

func (r *HostApplicationRepo) GetForUpdate(ctx context.Context, id string) (model.HostApplication, error) {
	a, err := scanApplication(r.q.QueryRowContext(ctx,
		"SELECT "+applicationColumns+" FROM host_applications WHERE id=? LIMIT 1"+forUpdate(r.lock), id))
	return a, mapErr(err)
}

func (r *HostApplicationRepo) FindPendingByUser(ctx context.Context, userID string) (model.HostApplication, error) {
	a, err := scanApplication(r.q.QueryRowContext(ctx,
		"SELECT "+applicationColumns+" FROM host_applications WHERE user_id=? AND status=? LIMIT 1",
		userID, string(model.ApplicationPending)))
	return a, mapErr(err)
}

func (r *HostApplicationRepo) query(ctx context.Context, q string, args ...any) ([]model.HostApplication, error) {
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.HostApplication{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// List returns applications newest first; an empty status matches all.
func (r *HostApplicationRepo) List(ctx context.Context, status model.ApplicationStatus) ([]model.HostApplication, error) {
	if status == "" {
		return r.query(ctx, "SELECT "+applicationColumns+" FROM host_applications ORDER BY created_at DESC")
	}
	return r.query(ctx,
		"SELECT "+applicationColumns+" FROM host_applications WHERE status=? ORDER BY created_at DESC",
		string(status))
}

func (r *HostApplicationRepo) ListByUser(ctx context.Context, userID string) ([]model.HostApplication, error) {
	return r.query(ctx,
		"SELECT "+applicationColumns+" FROM host_applications WHERE user_id=? ORDER BY created_at DESC", userID)
}

func (r *HostApplicationRepo) Decide(ctx context.Context, id string, status model.ApplicationStatus, reviewedBy string) error {
	return mustAffect(r.q.ExecContext(ctx,
		"UPDATE host_applications SET status=?, reviewed_by=?, updated_at=? WHERE id=?",
		string(status), reviewedBy, time.Now().UTC(), id))
}
