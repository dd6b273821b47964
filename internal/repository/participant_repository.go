package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/eventmate-api/internal/model"
)

// ParticipantRepo reads and writes event_participants.  The primary key
// (event_id, user_id) is what turns a lost join race into ErrDuplicate.
type ParticipantRepo struct{ q dbtx }

func (r *ParticipantRepo) Create(ctx context.Context, p model.Participant) error {
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO event_participants (event_id, user_id, joined_at) VALUES (?,?,?)",
		p.EventID, p.UserID, p.JoinedAt)
	return mapErr(err)
}

func (r *ParticipantRepo) Get(ctx context.Context, eventID, userID string) (model.Participant, error) {
	var p model.Participant
	err := r.q.QueryRowContext(ctx,
		"SELECT event_id, user_id, joined_at FROM event_participants WHERE event_id=? AND user_id=?",
		eventID, userID).Scan(&p.EventID, &p.UserID, &p.JoinedAt)
	return p, mapErr(err)
}

func (r *ParticipantRepo) Delete(ctx context.Context, eventID, userID string) error {
	return mustAffect(r.q.ExecContext(ctx,
		"DELETE FROM event_participants WHERE event_id=? AND user_id=?", eventID, userID))
}

func (r *ParticipantRepo) Count(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM event_participants WHERE event_id=?", eventID).Scan(&n)
	return n, err
}

// ListByEvent returns participants in join order with a user summary each.
func (r *ParticipantRepo) ListByEvent(ctx context.Context, eventID string) ([]model.ParticipantDetail, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT ep.event_id, ep.user_id, ep.joined_at, u.name, u.email, u.image
		 FROM event_participants ep JOIN users u ON u.id = ep.user_id
		 WHERE ep.event_id=? ORDER BY ep.joined_at, ep.user_id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ParticipantDetail{}
	for rows.Next() {
		var (
			d     model.ParticipantDetail
			image sql.NullString
		)
		if err := rows.Scan(&d.EventID, &d.UserID, &d.JoinedAt, &d.User.Name, &d.User.Email, &image); err != nil {
			return nil, err
		}
		d.User.ID, d.User.Image = d.UserID, stringPtr(image)
		out = append(out, d)
	}
	return out, rows.Err()
}
