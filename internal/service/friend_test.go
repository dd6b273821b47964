package service

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
)

func TestFriendRequestLifecycle(t *testing.T) {
    f := newFixture(t)
    svc := NewFriendService(f.st)
    ctx := context.Background()
    a := f.user(t, "alice", model.RoleUser)
    b := f.user(t, "bob", model.RoleUser)
    c := f.user(t, "carol", model.RoleUser)

    _, err := svc.Request(ctx, a.ID, a.ID)
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
    _, err = svc.Request(ctx, a.ID, "missing")
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

    req, err := svc.Request(ctx, a.ID, b.ID)
    require.NoError(t, err)
    assert.Equal(t, model.FriendPending, req.Status)
    assert.Equal(t, "bob", req.Target.Name)

    _, err = svc.Request(ctx, a.ID, b.ID)
    assert.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))
    _, err = svc.Request(ctx, b.ID, a.ID)
    assert.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))

    incoming, err := svc.Incoming(ctx, b.ID)
    require.NoError(t, err)
    require.Len(t, incoming, 1)
    assert.Equal(t, a.ID, incoming[0].User.ID)

    _, err = svc.Accept(ctx, b.ID, c.ID)
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
    _, err = svc.Accept(ctx, b.ID, a.ID)
    require.NoError(t, err)
    _, err = svc.Accept(ctx, b.ID, a.ID)
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

    for _, pair := range [][2]string{{a.ID, b.ID}, {b.ID, a.ID}} {
        ok, err := svc.AreFriends(ctx, pair[0], pair[1])
        require.NoError(t, err)
        assert.True(t, ok)
    }

    _, err = svc.Request(ctx, a.ID, c.ID)
    require.NoError(t, err)
    ov, err := svc.Overview(ctx, a.ID)
    require.NoError(t, err)
    assert.Len(t, ov.Friends, 1)
    assert.Empty(t, ov.Requests)
    require.Len(t, ov.SentRequests, 1)
    assert.Equal(t, c.ID, ov.SentRequests[0].Target.ID)

    require.NoError(t, svc.Remove(ctx, b.ID, a.ID))
    ok, err := svc.AreFriends(ctx, a.ID, b.ID)
    require.NoError(t, err)
    assert.False(t, ok)
    err = svc.Remove(ctx, b.ID, a.ID)
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
