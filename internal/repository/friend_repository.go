package repository

import (
	"context"
	"time"

	"github.com/iliyamo/eventmate-api/internal/model"
)

// FriendRepo reads and writes the directed friends table.
type FriendRepo struct{ q dbtx }

func (r *FriendRepo) Create(ctx context.Context, f model.Friend) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx,
		"INSERT INTO friends (user_id, friend_id, status, created_at) VALUES (?,?,?,?)",
		f.UserID, f.FriendID, string(f.Status), f.CreatedAt)
	return mapErr(err)
}

func (r *FriendRepo) Get(ctx context.Context, userID, friendID string) (model.Friend, error) {
	var (
		f      model.Friend
		status string
	)
	err := r.q.QueryRowContext(ctx,
		"SELECT user_id, friend_id, status, created_at FROM friends WHERE user_id=? AND friend_id=?",
		userID, friendID).Scan(&f.UserID, &f.FriendID, &status, &f.CreatedAt)
	f.Status = model.FriendStatus(status)
	return f, mapErr(err)
}

func (r *FriendRepo) UpdateStatus(ctx context.Context, userID, friendID string, status model.FriendStatus) error {
	return mustAffect(r.q.ExecContext(ctx,
		"UPDATE friends SET status=? WHERE user_id=? AND friend_id=?", string(status), userID, friendID))
}

func (r *FriendRepo) DeleteBetween(ctx context.Context, a, b string) error {
	_, err := r.q.ExecContext(ctx,
		"DELETE FROM friends WHERE (user_id=? AND friend_id=?) OR (user_id=? AND friend_id=?)",
		a, b, b, a)
	return mapErr(err)
}

func (r *FriendRepo) list(ctx context.Context, column, id string, status model.FriendStatus) ([]model.Friend, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT user_id, friend_id, status, created_at FROM friends WHERE "+column+"=? AND status=? ORDER BY created_at",
		id, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Friend{}
	for rows.Next() {
		var (
			f model.Friend
			s string
		)
		if err := rows.Scan(&f.UserID, &f.FriendID, &s, &f.CreatedAt); err != nil {
			return nil, err
		}
		f.Status = model.FriendStatus(s)
		out = append(out, f)
	}
	return out, rows.Err()
}

// ListFrom returns rows the user created with the given status.
func (r *FriendRepo) ListFrom(ctx context.Context, userID string, status model.FriendStatus) ([]model.Friend, error) {
	return r.list(ctx, "user_id", userID, status)
}

// ListTo returns rows pointing at the user.
func (r *FriendRepo) ListTo(ctx context.Context, friendID string, status model.FriendStatus) ([]model.Friend, error) {
	return r.list(ctx, "friend_id", friendID, status)
}
