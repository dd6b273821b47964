package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/eventmate-api/internal/model"
	"github.com/iliyamo/eventmate-api/internal/store"
)

const userColumns = "id, name, email, password_hash, role, bio, interests, location, image, created_at, updated_at"

// userSort maps the accepted sortBy values to columns.
var userSort = map[string]string{
	"name":      "name",
	"email":     "email",
	"createdAt": "created_at",
}

// UserRepo reads and writes the users table.
type UserRepo struct{ q dbtx }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(rs rowScanner) (model.User, error) {
	var (
		u         model.User
		role      string
		bio       sql.NullString
		interests []byte
		location  sql.NullString
		image     sql.NullString
	)
	if err := rs.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &bio, &interests,
		&location, &image, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	u.Bio, u.Location, u.Image = stringPtr(bio), stringPtr(location), stringPtr(image)
	u.Interests = []string{}
	if len(interests) > 0 {
		if err := json.Unmarshal(interests, &u.Interests); err != nil {
			return model.User{}, fmt.Errorf("decode interests of user %s: %w", u.ID, err)
		}
	}
	return u, nil
}

func encodeInterests(in []string) ([]byte, error) {
	if in == nil {
		in = []string{}
	}
	return json.Marshal(in)
}

// Create inserts u, assigning its id and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Interests == nil {
		u.Interests = []string{}
	}
	interests, err := encodeInterests(u.Interests)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = r.q.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), nullString(u.Bio), interests,
		nullString(u.Location), nullString(u.Image), now, now)
	if err != nil {
		return mapErr(err)
	}
	u.CreatedAt, u.UpdatedAt = now, now
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	return u, mapErr(err)
}

// GetByEmail expects an already normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.q.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	return u, mapErr(err)
}

// Update writes every mutable column of u.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	interests, err := encodeInterests(u.Interests)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	err = mustAffect(r.q.ExecContext(ctx,
		`UPDATE users SET name=?, email=?, password_hash=?, role=?, bio=?, interests=?,
		 location=?, image=?, updated_at=? WHERE id=?`,
		u.Name, u.Email, u.PasswordHash, string(u.Role), nullString(u.Bio), interests,
		nullString(u.Location), nullString(u.Image), now, u.ID))
	if err != nil {
		return err
	}
	u.UpdatedAt = now
	return nil
}

// List returns one page of users plus the total number of matches.
func (r *UserRepo) List(ctx context.Context, f store.UserFilter, p store.Page) ([]model.User, int, error) {
	where := []string{"1=1"}
	args := []any{}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(name LIKE ? OR email LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like)
	}
	if f.Role != "" {
		where = append(where, "role = ?")
		args = append(args, string(f.Role))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM users WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := userSort[p.SortBy]
	if !ok {
		col = "created_at"
	}
	q := fmt.Sprintf("SELECT %s FROM users WHERE %s ORDER BY %s %s, id LIMIT ? OFFSET ?",
		userColumns, cond, col, direction(p))
	rows, err := r.q.QueryContext(ctx, q, append(args, p.Limit, p.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *UserRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

func (r *UserRepo) ExistsWithRole(ctx context.Context, role model.Role) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx, "SELECT 1 FROM users WHERE role=? LIMIT 1", string(role)).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func direction(p store.Page) string {
	if p.Desc() {
		return "DESC"
	}
	return "ASC"
}
