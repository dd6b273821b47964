package service

import (
    "context"
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store"
)

func TestEventCreateValidation(t *testing.T) {
    f := newFixture(t)
    svc := NewEventService(f.st)
    ctx := context.Background()
    host := f.user(t, "host", model.RoleHost)

    in := EventInput{
        Name:       " Picnic ",
        TypeID:     f.typ.ID,
        DateTime:   time.Now().Add(24 * time.Hour),
        Location:   "Park",
        JoiningFee: decimal.Zero,
    }
    ev, err := svc.Create(ctx, host.ID, in)
    require.NoError(t, err)
    assert.Equal(t, "Picnic", ev.Name)
    assert.Equal(t, 1, ev.MinParticipants)
    assert.Nil(t, ev.MaxParticipants)
    assert.Equal(t, model.EventOpen, ev.Status)

    bad := in
    bad.MinParticipants, bad.MaxParticipants = intPtr(5), intPtr(2)
    _, err = svc.Create(ctx, host.ID, bad)
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

    bad = in
    bad.JoiningFee = decimal.NewFromInt(-1)
    _, err = svc.Create(ctx, host.ID, bad)
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

    bad = in
    bad.TypeID = "missing"
    _, err = svc.Create(ctx, host.ID, bad)
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

    zero := in
    zero.MaxParticipants = intPtr(0)
    ev, err = svc.Create(ctx, host.ID, zero)
    require.NoError(t, err)
    assert.Nil(t, ev.MaxParticipants)
}

func TestEventUpdateCapacity(t *testing.T) {
    f := newFixture(t)
    svc := NewEventService(f.st)
    ledger := NewParticipationService(f.st, f.pub, f.log)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    other := f.user(t, "other", model.RoleHost)
    admin := f.user(t, "root", model.RoleAdmin)
    a := f.user(t, "alice", model.RoleUser)
    b := f.user(t, "bob", model.RoleUser)
    ev := f.event(t, host.ID, intPtr(5), "0")
    for _, u := range []model.User{a, b} {
        _, err := ledger.Join(ctx, ev.ID, u.ID)
        require.NoError(t, err)
    }

    _, err := svc.Update(ctx, ev.ID, identity(other), EventPatch{Name: ptr("x")})
    assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

    _, err = svc.Update(ctx, ev.ID, identity(host), EventPatch{MaxParticipants: intPtr(1)})
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

    got, err := svc.Update(ctx, ev.ID, identity(host), EventPatch{MaxParticipants: intPtr(2)})
    require.NoError(t, err)
    assert.Equal(t, model.EventFull, got.Status)

    got, err = svc.Update(ctx, ev.ID, identity(admin), EventPatch{MaxParticipants: intPtr(0), Location: ptr("Hamburg")})
    require.NoError(t, err)
    assert.Equal(t, model.EventOpen, got.Status)
    assert.Nil(t, got.MaxParticipants)
    assert.Equal(t, "Hamburg", got.Location)
}

func TestEventTransitionsAndDelete(t *testing.T) {
    f := newFixture(t)
    svc := NewEventService(f.st)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    stranger := f.user(t, "stranger", model.RoleUser)
    ev := f.event(t, host.ID, nil, "0")

    _, err := svc.Cancel(ctx, ev.ID, identity(stranger))
    assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

    got, err := svc.Complete(ctx, ev.ID, identity(host))
    require.NoError(t, err)
    assert.Equal(t, model.EventCompleted, got.Status)

    _, err = svc.Cancel(ctx, ev.ID, identity(host))
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

    err = svc.Delete(ctx, ev.ID, identity(stranger))
    assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
    require.NoError(t, svc.Delete(ctx, ev.ID, identity(host)))
    _, err = svc.Detail(ctx, ev.ID, "")
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestEventListingsAndDetail(t *testing.T) {
    f := newFixture(t)
    svc := NewEventService(f.st)
    ledger := NewParticipationService(f.st, f.pub, f.log)
    friends := NewFriendService(f.st)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    b := f.user(t, "bob", model.RoleUser)
    e1 := f.event(t, host.ID, nil, "0")
    f.event(t, host.ID, nil, "0")
    f.event(t, b.ID, nil, "0")

    _, err := ledger.Join(ctx, e1.ID, a.ID)
    require.NoError(t, err)

    page := store.Page{Page: 1, Limit: 10}
    hosted, total, err := svc.Hosted(ctx, host.ID, page)
    require.NoError(t, err)
    assert.Equal(t, 2, total)
    assert.Len(t, hosted, 2)

    joined, total, err := svc.Joined(ctx, a.ID, page)
    require.NoError(t, err)
    assert.Equal(t, 1, total)
    assert.Equal(t, e1.ID, joined[0].ID)

    all, total, err := svc.List(ctx, store.EventFilter{}, store.Page{Page: 2, Limit: 2})
    require.NoError(t, err)
    assert.Equal(t, 3, total)
    assert.Len(t, all, 1)

    // no friends yet
    evs, total, err := svc.FriendsEvents(ctx, b.ID, page)
    require.NoError(t, err)
    assert.Zero(t, total)
    assert.Empty(t, evs)

    _, _, err = svc.FriendJoined(ctx, b.ID, a.ID, page)
    assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

    _, err = friends.Request(ctx, b.ID, a.ID)
    require.NoError(t, err)
    _, err = friends.Accept(ctx, a.ID, b.ID)
    require.NoError(t, err)

    evs, total, err = svc.FriendsEvents(ctx, b.ID, page)
    require.NoError(t, err)
    assert.Equal(t, 1, total)
    assert.Equal(t, e1.ID, evs[0].ID)

    evs, _, err = svc.FriendJoined(ctx, b.ID, a.ID, page)
    require.NoError(t, err)
    assert.Len(t, evs, 1)

    d, err := svc.Detail(ctx, e1.ID, "")
    require.NoError(t, err)
    assert.Equal(t, "host", d.Creator.Name)
    require.NotNil(t, d.Type)
    assert.Equal(t, f.typ.Name, d.Type.Name)
    assert.Equal(t, 1, d.ParticipantCount)
    assert.Len(t, d.Participants, 1)
    assert.Empty(t, d.Reviews)
    assert.Nil(t, d.Viewer)
}

func TestEventDetailViewerState(t *testing.T) {
    f := newFixture(t)
    svc := NewEventService(f.st)
    ledger := NewParticipationService(f.st, f.pub, f.log)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    b := f.user(t, "bob", model.RoleUser)
    ev := f.event(t, host.ID, nil, "0")

    _, err := ledger.Join(ctx, ev.ID, a.ID)
    require.NoError(t, err)
    _, err = ledger.Save(ctx, ev.ID, b.ID)
    require.NoError(t, err)

    d, err := svc.Detail(ctx, ev.ID, a.ID)
    require.NoError(t, err)
    require.NotNil(t, d.Viewer)
    assert.Equal(t, model.EventViewer{Joined: true}, *d.Viewer)

    d, err = svc.Detail(ctx, ev.ID, b.ID)
    require.NoError(t, err)
    require.NotNil(t, d.Viewer)
    assert.Equal(t, model.EventViewer{Saved: true}, *d.Viewer)

    d, err = svc.Detail(ctx, ev.ID, host.ID)
    require.NoError(t, err)
    assert.Equal(t, model.EventViewer{}, *d.Viewer)
}

func TestEventTypes(t *testing.T) {
    f := newFixture(t)
    svc := NewEventTypeService(f.st)
    ctx := context.Background()

    _, err := svc.Create(ctx, "Meetup")
    assert.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))
    _, err = svc.Create(ctx, "  ")
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

    sport, err := svc.Create(ctx, "Sport")
    require.NoError(t, err)
    renamed, err := svc.Rename(ctx, sport.ID, "Sports")
    require.NoError(t, err)
    assert.Equal(t, "Sports", renamed.Name)
    _, err = svc.Rename(ctx, sport.ID, "Meetup")
    assert.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))

    host := f.user(t, "host", model.RoleHost)
    f.event(t, host.ID, nil, "0")
    err = svc.Delete(ctx, f.typ.ID)
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
    require.NoError(t, svc.Delete(ctx, sport.ID))

    list, err := svc.List(ctx)
    require.NoError(t, err)
    assert.Len(t, list, 1)
}
