package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/eventmate-api/internal/model"
	"github.com/iliyamo/eventmate-api/internal/store"
)

const eventColumns = `e.id, e.name, e.type_id, e.description, e.date_time, e.location, e.image,
	e.min_participants, e.max_participants, e.joining_fee, e.status, e.created_by,
	e.created_at, e.updated_at,
	(SELECT COUNT(*) FROM event_participants ep WHERE ep.event_id = e.id) AS participant_count`

// eventSort maps the accepted sortBy values to columns.
var eventSort = map[string]string{
	"name":       "e.name",
	"dateTime":   "e.date_time",
	"joiningFee": "e.joining_fee",
	"createdAt":  "e.created_at",
}

// EventRepo reads and writes the events table.  lock is set for
// repositories bound to a transaction.
type EventRepo struct {
	q    dbtx
	lock bool
}

func scanEvent(rs rowScanner) (model.Event, error) {
	var (
		e      model.Event
		image  sql.NullString
		limit  sql.NullInt64
		status string
	)
	err := rs.Scan(&e.ID, &e.Name, &e.TypeID, &e.Description, &e.DateTime, &e.Location, &image,
		&e.MinParticipants, &limit, &e.JoiningFee, &status, &e.CreatedBy,
		&e.CreatedAt, &e.UpdatedAt, &e.ParticipantCount)
	if err != nil {
		return model.Event{}, err
	}
	e.Image = stringPtr(image)
	if limit.Valid {
		n := int(limit.Int64)
		e.MaxParticipants = &n
	}
	e.Status = model.EventStatus(status)
	return e, nil
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO events (id, name, type_id, description, date_time, location, image,
		 min_participants, max_participants, joining_fee, status, created_by, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.Name, e.TypeID, e.Description, e.DateTime.UTC(), e.Location, nullString(e.Image),
		e.MinParticipants, nullInt(e.MaxParticipants), e.JoiningFee, string(e.Status), e.CreatedBy, now, now)
	if err != nil {
		return mapErr(err)
	}
	e.CreatedAt, e.UpdatedAt = now, now
	return nil
}

func (r *EventRepo) get(ctx context.Context, id string, lock bool) (model.Event, error) {
	e, err := scanEvent(r.q.QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events e WHERE e.id=? LIMIT 1"+forUpdate(lock), id))
	return e, mapErr(err)
}

func (r *EventRepo) GetByID(ctx context.Context, id string) (model.Event, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate takes a row lock on the event when running in a transaction.
// Concurrent joins on the same event queue here.
func (r *EventRepo) GetForUpdate(ctx context.Context, id string) (model.Event, error) {
	return r.get(ctx, id, r.lock)
}

// List builds the WHERE clause from f, counts the matches and returns the
// requested page.
func (r *EventRepo) List(ctx context.Context, f store.EventFilter, p store.Page) ([]model.Event, int, error) {
	if f.RelatedTo != nil && len(f.RelatedTo) == 0 {
		return []model.Event{}, 0, nil
	}
	where := []string{"1=1"}
	args := []any{}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(e.name LIKE ? OR e.description LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	if f.TypeID != "" {
		where = append(where, "e.type_id = ?")
		args = append(args, f.TypeID)
	}
	if s := strings.TrimSpace(f.Location); s != "" {
		where = append(where, "e.location LIKE ?")
		args = append(args, "%"+s+"%")
	}
	if f.Status != "" {
		where = append(where, "e.status = ?")
		args = append(args, string(f.Status))
	}
	if f.CreatedBy != "" {
		where = append(where, "e.created_by = ?")
		args = append(args, f.CreatedBy)
	}
	if f.ParticipantID != "" {
		where = append(where, "EXISTS (SELECT 1 FROM event_participants jp WHERE jp.event_id = e.id AND jp.user_id = ?)")
		args = append(args, f.ParticipantID)
	}
	if len(f.RelatedTo) > 0 {
		in := placeholders(len(f.RelatedTo))
		where = append(where, "(e.created_by IN ("+in+") OR EXISTS (SELECT 1 FROM event_participants rp WHERE rp.event_id = e.id AND rp.user_id IN ("+in+")))")
		for i := 0; i < 2; i++ {
			for _, id := range f.RelatedTo {
				args = append(args, id)
			}
		}
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM events e WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := eventSort[p.SortBy]
	if !ok {
		col = "e.created_at"
	}
	q := fmt.Sprintf("SELECT %s FROM events e WHERE %s ORDER BY %s %s, e.id LIMIT ? OFFSET ?",
		eventColumns, cond, col, direction(p))
	rows, err := r.q.QueryContext(ctx, q, append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	now := time.Now().UTC()
	err := mustAffect(r.q.ExecContext(ctx,
		`UPDATE events SET name=?, type_id=?, description=?, date_time=?, location=?, image=?,
		 min_participants=?, max_participants=?, joining_fee=?, status=?, updated_at=? WHERE id=?`,
		e.Name, e.TypeID, e.Description, e.DateTime.UTC(), e.Location, nullString(e.Image),
		e.MinParticipants, nullInt(e.MaxParticipants), e.JoiningFee, string(e.Status), now, e.ID))
	if err != nil {
		return err
	}
	e.UpdatedAt = now
	return nil
}

func (r *EventRepo) UpdateStatus(ctx context.Context, id string, status model.EventStatus) error {
	return mustAffect(r.q.ExecContext(ctx,
		"UPDATE events SET status=?, updated_at=? WHERE id=?", string(status), time.Now().UTC(), id))
}

// Delete removes the event; participants, saved rows, reviews and payments
// go with it through ON DELETE CASCADE.
func (r *EventRepo) Delete(ctx context.Context, id string) error {
	return mustAffect(r.q.ExecContext(ctx, "DELETE FROM events WHERE id=?", id))
}

func (r *EventRepo) CountByType(ctx context.Context, typeID string) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM events WHERE type_id=?", typeID).Scan(&n)
	return n, err
}

func (r *EventRepo) CountByStatus(ctx context.Context) (map[model.EventStatus]int, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT status, COUNT(*) FROM events GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[model.EventStatus]int{}
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[model.EventStatus(status)] = n
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
