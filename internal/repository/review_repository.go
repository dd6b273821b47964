package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/eventmate-api/internal/model"
	"github.com/iliyamo/eventmate-api/internal/store"
)

const reviewColumns = "r.id, r.event_id, r.reviewer_id, r.host_id, r.rating, r.comment, r.created_at, r.updated_at"

// ReviewRepo reads and writes the reviews table.  (event_id, reviewer_id)
// is unique.
type ReviewRepo struct{ q dbtx }

func scanReview(rs rowScanner, extra ...any) (model.Review, error) {
	var (
		rv      model.Review
		comment sql.NullString
	)
	dest := append([]any{&rv.ID, &rv.EventID, &rv.ReviewerID, &rv.HostID, &rv.Rating, &comment,
		&rv.CreatedAt, &rv.UpdatedAt}, extra...)
	if err := rs.Scan(dest...); err != nil {
		return model.Review{}, err
	}
	rv.Comment = stringPtr(comment)
	return rv, nil
}

func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO reviews (id, event_id, reviewer_id, host_id, rating, comment, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		rv.ID, rv.EventID, rv.ReviewerID, rv.HostID, rv.Rating, nullString(rv.Comment), now, now)
	if err != nil {
		return mapErr(err)
	}
	rv.CreatedAt, rv.UpdatedAt = now, now
	return nil
}

func (r *ReviewRepo) GetByID(ctx context.Context, id string) (model.Review, error) {
	rv, err := scanReview(r.q.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews r WHERE r.id=? LIMIT 1", id))
	return rv, mapErr(err)
}

func (r *ReviewRepo) Get(ctx context.Context, eventID, reviewerID string) (model.Review, error) {
	rv, err := scanReview(r.q.QueryRowContext(ctx,
		"SELECT "+reviewColumns+" FROM reviews r WHERE r.event_id=? AND r.reviewer_id=? LIMIT 1",
		eventID, reviewerID))
	return rv, mapErr(err)
}

// Update writes rating and comment.
func (r *ReviewRepo) Update(ctx context.Context, rv *model.Review) error {
	now := time.Now().UTC()
	err := mustAffect(r.q.ExecContext(ctx,
		"UPDATE reviews SET rating=?, comment=?, updated_at=? WHERE id=?",
		rv.Rating, nullString(rv.Comment), now, rv.ID))
	if err != nil {
		return err
	}
	rv.UpdatedAt = now
	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	return mustAffect(r.q.ExecContext(ctx, "DELETE FROM reviews WHERE id=?", id))
}

// List returns reviews newest first, each with reviewer and event summaries.
func (r *ReviewRepo) List(ctx context.Context, f store.ReviewFilter) ([]model.ReviewDetail, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.EventID != "" {
		where = append(where, "r.event_id = ?")
		args = append(args, f.EventID)
	}
	if f.HostID != "" {
		where = append(where, "r.host_id = ?")
		args = append(args, f.HostID)
	}
	rows, err := r.q.QueryContext(ctx,
		"SELECT "+reviewColumns+", u.name, u.email, u.image, e.name, e.date_time, e.status"+
			" FROM reviews r JOIN users u ON u.id = r.reviewer_id JOIN events e ON e.id = r.event_id"+
			" WHERE "+strings.Join(where, " AND ")+" ORDER BY r.created_at DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ReviewDetail{}
	for rows.Next() {
		var (
			d           model.ReviewDetail
			image       sql.NullString
			eventStatus string
		)
		rv, err := scanReview(rows, &d.Reviewer.Name, &d.Reviewer.Email, &image,
			&d.Event.Name, &d.Event.DateTime, &eventStatus)
		if err != nil {
			return nil, err
		}
		d.Review = rv
		d.Reviewer.ID, d.Reviewer.Image = rv.ReviewerID, stringPtr(image)
		d.Event.ID, d.Event.Status = rv.EventID, model.EventStatus(eventStatus)
		out = append(out, d)
	}
	return out, rows.Err()
}

// HostAggregate returns the mean rating and review count of a host.
func (r *ReviewRepo) HostAggregate(ctx context.Context, hostID string) (float64, int, error) {
	var (
		avg sql.NullFloat64
		n   int
	)
	err := r.q.QueryRowContext(ctx,
		"SELECT AVG(rating), COUNT(*) FROM reviews WHERE host_id=?", hostID).Scan(&avg, &n)
	if err != nil {
		return 0, 0, err
	}
	return avg.Float64, n, nil
}
