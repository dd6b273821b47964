package service

import (
    "context"
    "strings"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store"
    "github.com/iliyamo/eventmate-api/internal/utils"
)

// AuthConfig carries token and hashing settings.
type AuthConfig struct {
    JWTSecret      string
    AccessTTLMin   int
    RefreshTTLDays int
    BcryptCost     int
}

// RegisterInput is the sign-up payload.  Role may be USER or HOST.
type RegisterInput struct {
    Name     string
    Email    string
    Password string
    Role     model.Role
}

// Session is the token pair returned by register, login and refresh.
type Session struct {
    User         model.User `json:"user"`
    AccessToken  string     `json:"accessToken"`
    RefreshToken string     `json:"refreshToken"`
    ExpiresIn    int        `json:"expiresIn"`
}

// AuthService issues access tokens and rotating refresh tokens.
type AuthService struct {
    store store.Store
    cfg   AuthConfig
    log   *zap.Logger
}

func NewAuthService(st store.Store, cfg AuthConfig, log *zap.Logger) *AuthService {
    return &AuthService{store: st, cfg: cfg, log: log}
}

func normalizeEmail(email string) string {
    return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a USER or HOST account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
    role := in.Role
    if role == "" {
        role = model.RoleUser
    }
    if role != model.RoleUser && role != model.RoleHost {
        return Session{}, apperr.Validation("role must be USER or HOST")
    }
    hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
    if err != nil {
        return Session{}, apperr.Upstream("could not hash password", err)
    }
    u := &model.User{
        ID:           uuid.NewString(),
        Name:         strings.TrimSpace(in.Name),
        Email:        normalizeEmail(in.Email),
        PasswordHash: hash,
        Role:         role,
        Interests:    []string{},
    }
    if err := s.store.Repos().Users.Create(ctx, u); err != nil {
        return Session{}, storeErr(err, "", "email already registered")
    }
    return s.issue(ctx, *u)
}

// Login checks credentials.  Unknown email and wrong password fail the
// same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
    u, err := s.store.Repos().Users.GetByEmail(ctx, normalizeEmail(email))
    if err != nil {
        if isNotFound(err) {
            return Session{}, apperr.Unauthenticated("invalid email or password")
        }
        return Session{}, storeErr(err, "")
    }
    if !utils.VerifyPassword(u.PasswordHash, password) {
        return Session{}, apperr.Unauthenticated("invalid email or password")
    }
    return s.issue(ctx, u)
}

// Refresh exchanges a refresh token for a new pair and revokes the old one.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Session, error) {
    r := s.store.Repos()
    hash := utils.HashRefreshRaw(raw)
    userID, err := r.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        if isNotFound(err) {
            return Session{}, apperr.Unauthenticated("invalid or expired refresh token")
        }
        return Session{}, storeErr(err, "")
    }
    u, err := r.Users.GetByID(ctx, userID)
    if err != nil {
        if isNotFound(err) {
            return Session{}, apperr.Unauthenticated("invalid or expired refresh token")
        }
        return Session{}, storeErr(err, "")
    }
    if err := r.Tokens.RevokeByHash(ctx, hash); err != nil {
        return Session{}, storeErr(err, "")
    }
    return s.issue(ctx, u)
}

// Logout revokes one refresh token, or all of the user's tokens when all
// is set.
func (s *AuthService) Logout(ctx context.Context, userID, raw string, all bool) error {
    r := s.store.Repos()
    if all {
        return storeErr(r.Tokens.RevokeAllForUser(ctx, userID), "")
    }
    if raw == "" {
        return apperr.Validation("refreshToken is required")
    }
    return storeErr(r.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)), "")
}

// Me returns the caller's own record.
func (s *AuthService) Me(ctx context.Context, userID string) (model.User, error) {
    u, err := s.store.Repos().Users.GetByID(ctx, userID)
    return u, storeErr(err, "user not found")
}

// ChangePassword replaces the password and revokes every refresh token.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
    return s.store.WithTx(ctx, func(r store.Repos) error {
        u, err := r.Users.GetByID(ctx, userID)
        if err != nil {
            return storeErr(err, "user not found")
        }
        if !utils.VerifyPassword(u.PasswordHash, current) {
            return apperr.Validation("current password is incorrect")
        }
        hash, err := utils.HashPassword(next, s.cfg.BcryptCost)
        if err != nil {
            return apperr.Upstream("could not hash password", err)
        }
        u.PasswordHash = hash
        if err := r.Users.Update(ctx, &u); err != nil {
            return storeErr(err, "user not found")
        }
        return storeErr(r.Tokens.RevokeAllForUser(ctx, userID), "")
    })
}

// SeedAdmin creates the first ADMIN account when none exists.  It does
// nothing when email or password is empty.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
    if email == "" || password == "" {
        return nil
    }
    r := s.store.Repos()
    exists, err := r.Users.ExistsWithRole(ctx, model.RoleAdmin)
    if err != nil {
        return storeErr(err, "")
    }
    if exists {
        return nil
    }
    hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
    if err != nil {
        return err
    }
    u := &model.User{
        ID:           uuid.NewString(),
        Name:         "Administrator",
        Email:        normalizeEmail(email),
        PasswordHash: hash,
        Role:         model.RoleAdmin,
        Interests:    []string{},
    }
    if err := r.Users.Create(ctx, u); err != nil {
        return storeErr(err, "", "admin email already registered to a non-admin account")
    }
    s.log.Info("admin account seeded", zap.String("email", u.Email))
    return nil
}

func (s *AuthService) issue(ctx context.Context, u model.User) (Session, error) {
    at, err := utils.NewAccessToken(s.cfg.JWTSecret, u.ID, u.Email, string(u.Role), s.cfg.AccessTTLMin)
    if err != nil {
        return Session{}, apperr.Upstream("could not sign access token", err)
    }
    rt, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
    if err != nil {
        return Session{}, apperr.Upstream("could not create refresh token", err)
    }
    if err := s.store.Repos().Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(rt.Raw), rt.Exp); err != nil {
        return Session{}, storeErr(err, "")
    }
    return Session{
        User:         u,
        AccessToken:  at.Token,
        RefreshToken: rt.Raw,
        ExpiresIn:    s.cfg.AccessTTLMin * 60,
    }, nil
}
