package service

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
)

func TestDashboard(t *testing.T) {
    f := newFixture(t)
    gw := &mockGateway{}
    pay := newPaymentService(f, gw)
    svc := NewAdminService(f.st)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    b := f.user(t, "bob", model.RoleUser)
    ev := f.event(t, host.ID, nil, "25.50")
    cancelled := f.event(t, host.ID, nil, "0")
    f.setStatus(t, cancelled.ID, model.EventCancelled)

    openCheckout(t, pay, gw, ev, a, "cs_a")
    openCheckout(t, pay, gw, ev, b, "cs_b")
    _, err := pay.Reconcile(ctx, "cs_a", ptr(paidSession("cs_a")), "", SourceWebhook)
    require.NoError(t, err)

    stats, err := svc.Dashboard(ctx)
    require.NoError(t, err)
    assert.Equal(t, 3, stats.TotalUsers)
    assert.Equal(t, 2, stats.TotalEvents)
    assert.Equal(t, "25.50", stats.TotalRevenue)
    assert.Len(t, stats.RecentUsers, 3)
    assert.Equal(t, "bob", stats.RecentUsers[0].Name)
    assert.Equal(t, 1, stats.EventsByStatus[model.EventOpen])
    assert.Equal(t, 1, stats.EventsByStatus[model.EventCancelled])
}

func TestManageUser(t *testing.T) {
    f := newFixture(t)
    svc := NewAdminService(f.st)
    ctx := context.Background()
    admin := f.user(t, "root", model.RoleAdmin)
    a := f.user(t, "alice", model.RoleUser)

    u, err := svc.ManageUser(ctx, a.ID, "promote", identity(admin))
    require.NoError(t, err)
    assert.Equal(t, model.RoleHost, u.Role)
    u, err = svc.ManageUser(ctx, a.ID, "promote", identity(admin))
    require.NoError(t, err)
    assert.Equal(t, model.RoleAdmin, u.Role)
    _, err = svc.ManageUser(ctx, a.ID, "promote", identity(admin))
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

    u, err = svc.ManageUser(ctx, a.ID, "demote", identity(admin))
    require.NoError(t, err)
    assert.Equal(t, model.RoleHost, u.Role)

    _, err = svc.ManageUser(ctx, a.ID, "ban", identity(admin))
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
    _, err = svc.ManageUser(ctx, admin.ID, "demote", identity(admin))
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestModerateEvent(t *testing.T) {
    f := newFixture(t)
    svc := NewAdminService(f.st)
    ctx := context.Background()
    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    ev := f.event(t, host.ID, intPtr(1), "0")
    require.NoError(t, f.st.Repos().Participants.Create(ctx, model.Participant{EventID: ev.ID, UserID: a.ID}))

    got, err := svc.ModerateEvent(ctx, ev.ID, "cancel")
    require.NoError(t, err)
    assert.Equal(t, model.EventCancelled, got.Status)

    got, err = svc.ModerateEvent(ctx, ev.ID, "approve")
    require.NoError(t, err)
    assert.Equal(t, model.EventFull, got.Status)

    _, err = svc.ModerateEvent(ctx, ev.ID, "archive")
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

    f.setStatus(t, ev.ID, model.EventCompleted)
    _, err = svc.ModerateEvent(ctx, ev.ID, "approve")
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
    _, err = svc.ModerateEvent(ctx, "missing", "cancel")
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestHostApplications(t *testing.T) {
    f := newFixture(t)
    svc := NewHostApplicationService(f.st)
    ctx := context.Background()
    admin := f.user(t, "root", model.RoleAdmin)
    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    b := f.user(t, "bob", model.RoleUser)

    _, err := svc.Apply(ctx, identity(host), "me too")
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

    app, err := svc.Apply(ctx, identity(a), " I run a book club ")
    require.NoError(t, err)
    assert.Equal(t, "I run a book club", app.Message)
    _, err = svc.Apply(ctx, identity(a), "again")
    assert.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))

    other, err := svc.Apply(ctx, identity(b), "please")
    require.NoError(t, err)

    pending, err := svc.List(ctx, model.ApplicationPending)
    require.NoError(t, err)
    assert.Len(t, pending, 2)
    _, err = svc.List(ctx, "WHATEVER")
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

    decided, err := svc.Approve(ctx, app.ID, identity(admin))
    require.NoError(t, err)
    assert.Equal(t, model.ApplicationApproved, decided.Status)
    assert.Equal(t, admin.ID, *decided.ReviewedBy)
    u, err := f.st.Repos().Users.GetByID(ctx, a.ID)
    require.NoError(t, err)
    assert.Equal(t, model.RoleHost, u.Role)

    _, err = svc.Reject(ctx, app.ID, identity(admin))
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

    _, err = svc.Reject(ctx, other.ID, identity(admin))
    require.NoError(t, err)
    u, err = f.st.Repos().Users.GetByID(ctx, b.ID)
    require.NoError(t, err)
    assert.Equal(t, model.RoleUser, u.Role)

    mine, err := svc.Mine(ctx, a.ID)
    require.NoError(t, err)
    require.Len(t, mine, 1)
    assert.Equal(t, model.ApplicationApproved, mine[0].Status)
}
