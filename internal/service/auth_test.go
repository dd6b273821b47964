package service

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/utils"
)

func newAuthService(f *fixture) *AuthService {
    return NewAuthService(f.st, AuthConfig{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: bcrypt.MinCost}, f.log)
}

func TestRegisterAndLogin(t *testing.T) {
    f := newFixture(t)
    svc := newAuthService(f)
    ctx := context.Background()

    sess, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: " Alice@Example.com ", Password: "password1"})
    require.NoError(t, err)
    assert.Equal(t, "alice@example.com", sess.User.Email)
    assert.Equal(t, model.RoleUser, sess.User.Role)
    assert.Equal(t, 900, sess.ExpiresIn)

    claims, err := utils.ParseAccessToken("test-secret", sess.AccessToken)
    require.NoError(t, err)
    assert.Equal(t, sess.User.ID, claims.Subject)
    assert.Equal(t, "USER", claims.Role)

    _, err = svc.Register(ctx, RegisterInput{Name: "Alice 2", Email: "alice@example.com", Password: "password1"})
    assert.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))

    _, err = svc.Register(ctx, RegisterInput{Name: "Eve", Email: "eve@example.com", Password: "password1", Role: model.RoleAdmin})
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

    _, err = svc.Login(ctx, "alice@example.com", "wrong")
    assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
    _, err = svc.Login(ctx, "nobody@example.com", "password1")
    assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

    login, err := svc.Login(ctx, "ALICE@example.com", "password1")
    require.NoError(t, err)
    assert.Equal(t, sess.User.ID, login.User.ID)
}

func TestRefreshRotatesAndLogout(t *testing.T) {
    f := newFixture(t)
    svc := newAuthService(f)
    ctx := context.Background()

    sess, err := svc.Register(ctx, RegisterInput{Name: "Host", Email: "host@example.com", Password: "password1", Role: model.RoleHost})
    require.NoError(t, err)

    next, err := svc.Refresh(ctx, sess.RefreshToken)
    require.NoError(t, err)
    assert.NotEqual(t, sess.RefreshToken, next.RefreshToken)

    _, err = svc.Refresh(ctx, sess.RefreshToken)
    assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

    require.NoError(t, svc.Logout(ctx, sess.User.ID, next.RefreshToken, false))
    _, err = svc.Refresh(ctx, next.RefreshToken)
    assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))

    err = svc.Logout(ctx, sess.User.ID, "", false)
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

    third, err := svc.Login(ctx, "host@example.com", "password1")
    require.NoError(t, err)
    require.NoError(t, svc.Logout(ctx, sess.User.ID, "", true))
    _, err = svc.Refresh(ctx, third.RefreshToken)
    assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestChangePasswordAndMe(t *testing.T) {
    f := newFixture(t)
    svc := newAuthService(f)
    ctx := context.Background()

    sess, err := svc.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "password1"})
    require.NoError(t, err)

    err = svc.ChangePassword(ctx, sess.User.ID, "nope", "password2")
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

    require.NoError(t, svc.ChangePassword(ctx, sess.User.ID, "password1", "password2"))
    _, err = svc.Refresh(ctx, sess.RefreshToken)
    assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
    _, err = svc.Login(ctx, "alice@example.com", "password2")
    require.NoError(t, err)

    me, err := svc.Me(ctx, sess.User.ID)
    require.NoError(t, err)
    assert.Equal(t, "Alice", me.Name)
    _, err = svc.Me(ctx, "missing")
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSeedAdmin(t *testing.T) {
    f := newFixture(t)
    svc := newAuthService(f)
    ctx := context.Background()

    require.NoError(t, svc.SeedAdmin(ctx, "", ""))
    require.NoError(t, svc.SeedAdmin(ctx, "admin@example.com", "adminpass"))
    require.NoError(t, svc.SeedAdmin(ctx, "other@example.com", "adminpass"))

    u, err := f.st.Repos().Users.GetByEmail(ctx, "admin@example.com")
    require.NoError(t, err)
    assert.Equal(t, model.RoleAdmin, u.Role)
    _, err = f.st.Repos().Users.GetByEmail(ctx, "other@example.com")
    assert.Error(t, err)
}
