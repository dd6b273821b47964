package repository

import (
	"context"
	"time"

	"github.com/iliyamo/eventmate-api/internal/model"
)

// SavedEventRepo reads and writes saved_events bookmarks.
type SavedEventRepo struct{ q dbtx }

func (r *SavedEventRepo) Create(ctx context.Context, s model.SavedEvent) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO saved_events (event_id, user_id, created_at) VALUES (?,?,?)",
		s.EventID, s.UserID, s.CreatedAt)
	return mapErr(err)
}

func (r *SavedEventRepo) Delete(ctx context.Context, eventID, userID string) error {
	return mustAffect(r.q.ExecContext(ctx,
		"DELETE FROM saved_events WHERE event_id=? AND user_id=?", eventID, userID))
}

func (r *SavedEventRepo) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	var ok bool
	err := r.q.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM saved_events WHERE event_id=? AND user_id=?)", eventID, userID).Scan(&ok)
	return ok, err
}

func (r *SavedEventRepo) ListByUser(ctx context.Context, userID string) ([]model.SavedEvent, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT s.event_id, s.user_id, s.created_at, e.name, e.date_time, e.status
		 FROM saved_events s JOIN events e ON e.id = s.event_id
		 WHERE s.user_id=? ORDER BY s.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.SavedEvent{}
	for rows.Next() {
		var (
			s      model.SavedEvent
			status string
		)
		if err := rows.Scan(&s.EventID, &s.UserID, &s.CreatedAt, &s.Event.Name, &s.Event.DateTime, &status); err != nil {
			return nil, err
		}
		s.Event.ID, s.Event.Status = s.EventID, model.EventStatus(status)
		out = append(out, s)
	}
	return out, rows.Err()
}
