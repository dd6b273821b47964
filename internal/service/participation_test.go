package service

import (
    "context"
    "sync"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/queue"
)

func TestJoinLeaveCapacityScenario(t *testing.T) {
    f := newFixture(t)
    svc := NewParticipationService(f.st, f.pub, f.log)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    b := f.user(t, "bob", model.RoleUser)
    c := f.user(t, "carol", model.RoleUser)
    ev := f.event(t, host.ID, intPtr(2), "0")

    d, err := svc.Join(ctx, ev.ID, a.ID)
    require.NoError(t, err)
    assert.Equal(t, a.ID, d.User.ID)
    assert.Equal(t, model.EventOpen, d.Event.Status)
    st, n := f.status(t, ev.ID)
    assert.Equal(t, model.EventOpen, st)
    assert.Equal(t, 1, n)

    d, err = svc.Join(ctx, ev.ID, b.ID)
    require.NoError(t, err)
    assert.Equal(t, model.EventFull, d.Event.Status)
    st, n = f.status(t, ev.ID)
    assert.Equal(t, model.EventFull, st)
    assert.Equal(t, 2, n)

    _, err = svc.Join(ctx, ev.ID, c.ID)
    assert.Equal(t, apperr.KindCapacityExceeded, apperr.KindOf(err))

    require.NoError(t, svc.Leave(ctx, ev.ID, a.ID))
    st, n = f.status(t, ev.ID)
    assert.Equal(t, model.EventOpen, st)
    assert.Equal(t, 1, n)

    assert.Equal(t, 3, f.pub.count(queue.ParticipationQueue))
}

func TestJoinCapacityExceededWhileOpen(t *testing.T) {
    f := newFixture(t)
    svc := NewParticipationService(f.st, f.pub, f.log)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    b := f.user(t, "bob", model.RoleUser)
    ev := f.event(t, host.ID, intPtr(1), "0")
    require.NoError(t, f.st.Repos().Participants.Create(ctx, model.Participant{EventID: ev.ID, UserID: a.ID}))

    // Occupancy reached capacity without the status following, e.g. after
    // a paid reconcile raced a free join.
    _, err := svc.Join(ctx, ev.ID, b.ID)
    assert.Equal(t, apperr.KindCapacityExceeded, apperr.KindOf(err))
}

func TestJoinTwiceAndLeaveUnknown(t *testing.T) {
    f := newFixture(t)
    svc := NewParticipationService(f.st, f.pub, f.log)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    b := f.user(t, "bob", model.RoleUser)
    ev := f.event(t, host.ID, nil, "0")

    _, err := svc.Join(ctx, ev.ID, a.ID)
    require.NoError(t, err)
    _, err = svc.Join(ctx, ev.ID, a.ID)
    assert.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))

    err = svc.Leave(ctx, ev.ID, b.ID)
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

    _, err = svc.Join(ctx, "missing", a.ID)
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestJoinRejectsTerminalEvents(t *testing.T) {
    f := newFixture(t)
    svc := NewParticipationService(f.st, f.pub, f.log)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    for _, status := range []model.EventStatus{model.EventCancelled, model.EventCompleted} {
        ev := f.event(t, host.ID, nil, "0")
        f.setStatus(t, ev.ID, status)
        _, err := svc.Join(ctx, ev.ID, a.ID)
        assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err), status)
    }
}

func TestLeaveRejectsTerminalEvents(t *testing.T) {
    f := newFixture(t)
    svc := NewParticipationService(f.st, f.pub, f.log)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    for _, status := range []model.EventStatus{model.EventCancelled, model.EventCompleted} {
        ev := f.event(t, host.ID, intPtr(1), "0")
        _, err := svc.Join(ctx, ev.ID, a.ID)
        require.NoError(t, err)
        f.setStatus(t, ev.ID, status)

        err = svc.Leave(ctx, ev.ID, a.ID)
        assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err), status)
        st, n := f.status(t, ev.ID)
        assert.Equal(t, status, st)
        assert.Equal(t, 1, n)
    }
}

func TestLeaveKeepsPaidParticipation(t *testing.T) {
    f := newFixture(t)
    svc := NewParticipationService(f.st, f.pub, f.log)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    ev := f.event(t, host.ID, intPtr(5), "15")
    require.NoError(t, f.st.Repos().Participants.Create(ctx, model.Participant{EventID: ev.ID, UserID: a.ID}))
    require.NoError(t, f.st.Repos().Payments.Create(ctx, &model.Payment{
        Amount: ev.JoiningFee, EventID: ev.ID, UserID: a.ID, SessionID: "cs_kept", Status: model.PaymentPaid,
    }))

    err := svc.Leave(ctx, ev.ID, a.ID)
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
    _, err = f.st.Repos().Participants.Get(ctx, ev.ID, a.ID)
    assert.NoError(t, err)
    assert.Equal(t, 0, f.pub.count(queue.ParticipationQueue))
}

func TestConcurrentJoinsNeverExceedCapacity(t *testing.T) {
    f := newFixture(t)
    svc := NewParticipationService(f.st, f.pub, f.log)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    ev := f.event(t, host.ID, intPtr(3), "0")
    users := make([]model.User, 10)
    for i := range users {
        users[i] = f.user(t, "user"+string(rune('a'+i)), model.RoleUser)
    }

    var (
        wg sync.WaitGroup
        mu sync.Mutex
        ok int
    )
    for _, u := range users {
        wg.Add(1)
        go func(id string) {
            defer wg.Done()
            if _, err := svc.Join(ctx, ev.ID, id); err == nil {
                mu.Lock()
                ok++
                mu.Unlock()
            }
        }(u.ID)
    }
    wg.Wait()

    st, n := f.status(t, ev.ID)
    assert.Equal(t, 3, ok)
    assert.Equal(t, 3, n)
    assert.Equal(t, model.EventFull, st)
}

func TestParticipantsAndSavedEvents(t *testing.T) {
    f := newFixture(t)
    svc := NewParticipationService(f.st, f.pub, f.log)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    ev := f.event(t, host.ID, nil, "0")
    _, err := svc.Join(ctx, ev.ID, a.ID)
    require.NoError(t, err)

    list, err := svc.Participants(ctx, ev.ID)
    require.NoError(t, err)
    require.Len(t, list, 1)
    assert.Equal(t, "alice", list[0].User.Name)

    _, err = svc.Participants(ctx, "missing")
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

    sv, err := svc.Save(ctx, ev.ID, a.ID)
    require.NoError(t, err)
    assert.Equal(t, ev.Name, sv.Event.Name)
    _, err = svc.Save(ctx, ev.ID, a.ID)
    assert.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))

    saved, err := svc.Saved(ctx, a.ID)
    require.NoError(t, err)
    assert.Len(t, saved, 1)

    require.NoError(t, svc.Unsave(ctx, ev.ID, a.ID))
    err = svc.Unsave(ctx, ev.ID, a.ID)
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
