package service

import (
    "context"
    "strings"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// ProfilePatch lists the fields a user may change on their own profile.
// A nil Interests slice leaves interests alone; an empty one clears them.
type ProfilePatch struct {
    Name      *string
    Bio       *string
    Interests []string
    Location  *string
    Image     *string
}

// UserService covers profiles and the admin user listing.
type UserService struct {
    store store.Store
}

func NewUserService(st store.Store) *UserService {
    return &UserService{store: st}
}

// List returns one page of users for administrators.
func (s *UserService) List(ctx context.Context, f store.UserFilter, p store.Page) ([]model.User, int, error) {
    list, total, err := s.store.Repos().Users.List(ctx, f, p)
    return list, total, storeErr(err, "")
}

// Profile returns a user by id.
func (s *UserService) Profile(ctx context.Context, id string) (model.User, error) {
    u, err := s.store.Repos().Users.GetByID(ctx, id)
    return u, storeErr(err, "user not found")
}

// UpdateProfile applies patch to the caller's own record.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (model.User, error) {
    return s.update(ctx, userID, func(u *model.User) error {
        applyProfile(u, patch)
        return nil
    })
}

// AdminUpdate applies patch and, when role is set, changes the role.
func (s *UserService) AdminUpdate(ctx context.Context, id string, patch ProfilePatch, role *model.Role) (model.User, error) {
    return s.update(ctx, id, func(u *model.User) error {
        applyProfile(u, patch)
        if role != nil {
            if !role.Valid() {
                return apperr.Validation("role must be USER, HOST or ADMIN")
            }
            u.Role = *role
        }
        return nil
    })
}

func (s *UserService) update(ctx context.Context, id string, mutate func(u *model.User) error) (model.User, error) {
    r := s.store.Repos()
    u, err := r.Users.GetByID(ctx, id)
    if err != nil {
        return model.User{}, storeErr(err, "user not found")
    }
    if err := mutate(&u); err != nil {
        return model.User{}, err
    }
    if u.Name == "" {
        return model.User{}, apperr.Validation("name cannot be empty")
    }
    if err := r.Users.Update(ctx, &u); err != nil {
        return model.User{}, storeErr(err, "user not found")
    }
    return u, nil
}

func applyProfile(u *model.User, p ProfilePatch) {
    if p.Name != nil {
        u.Name = strings.TrimSpace(*p.Name)
    }
    if p.Bio != nil {
        u.Bio = trimPtr(p.Bio)
    }
    if p.Interests != nil {
        tags := make([]string, 0, len(p.Interests))
        for _, t := range p.Interests {
            if t = strings.TrimSpace(t); t != "" {
                tags = append(tags, t)
            }
        }
        u.Interests = tags
    }
    if p.Location != nil {
        u.Location = trimPtr(p.Location)
    }
    if p.Image != nil {
        u.Image = trimPtr(p.Image)
    }
}
