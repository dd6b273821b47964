package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/eventmate-api/internal/model"
)

// EventTypeRepo reads and writes the event_types table.
type EventTypeRepo struct{ q dbtx }

func (r *EventTypeRepo) Create(ctx context.Context, t *model.EventType) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO event_types (id, name, created_at, updated_at) VALUES (?,?,?,?)",
		t.ID, t.Name, now, now)
	if err != nil {
		return mapErr(err)
	}
	t.CreatedAt, t.UpdatedAt = now, now
	return nil
}

func (r *EventTypeRepo) GetByID(ctx context.Context, id string) (model.EventType, error) {
	var t model.EventType
	err := r.q.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at FROM event_types WHERE id=? LIMIT 1", id).
		Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	return t, mapErr(err)
}

// List returns every type ordered by name.
func (r *EventTypeRepo) List(ctx context.Context) ([]model.EventType, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at FROM event_types ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.EventType{}
	for rows.Next() {
		var t model.EventType
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *EventTypeRepo) Rename(ctx context.Context, id, name string) error {
	return mustAffect(r.q.ExecContext(ctx,
		"UPDATE event_types SET name=?, updated_at=? WHERE id=?", name, time.Now().UTC(), id))
}

func (r *EventTypeRepo) Delete(ctx context.Context, id string) error {
	return mustAffect(r.q.ExecContext(ctx, "DELETE FROM event_types WHERE id=?", id))
}
