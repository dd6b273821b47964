package service

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
)

func TestReviewGate(t *testing.T) {
    f := newFixture(t)
    ledger := NewParticipationService(f.st, f.pub, f.log)
    svc := NewReviewService(f.st)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    a := f.user(t, "alice", model.RoleUser)
    outsider := f.user(t, "olga", model.RoleUser)
    ev := f.event(t, host.ID, nil, "0")
    _, err := ledger.Join(ctx, ev.ID, a.ID)
    require.NoError(t, err)

    _, err = svc.Create(ctx, ev.ID, a.ID, ReviewInput{Rating: 5})
    assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

    f.setStatus(t, ev.ID, model.EventCompleted)

    _, err = svc.Create(ctx, ev.ID, outsider.ID, ReviewInput{Rating: 5})
    assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

    _, err = svc.Create(ctx, ev.ID, a.ID, ReviewInput{Rating: 6})
    assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

    _, err = svc.Create(ctx, "missing", a.ID, ReviewInput{Rating: 4})
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

    comment := "  great night  "
    d, err := svc.Create(ctx, ev.ID, a.ID, ReviewInput{Rating: 4, Comment: &comment})
    require.NoError(t, err)
    assert.Equal(t, host.ID, d.HostID)
    assert.Equal(t, "alice", d.Reviewer.Name)
    assert.Equal(t, ev.ID, d.Event.ID)
    require.NotNil(t, d.Comment)
    assert.Equal(t, "great night", *d.Comment)

    _, err = svc.Create(ctx, ev.ID, a.ID, ReviewInput{Rating: 3})
    assert.Equal(t, apperr.KindAlreadyExists, apperr.KindOf(err))
}

func TestReviewUpdateDeleteAndAggregates(t *testing.T) {
    f := newFixture(t)
    svc := NewReviewService(f.st)
    ctx := context.Background()

    host := f.user(t, "host", model.RoleHost)
    admin := f.user(t, "root", model.RoleAdmin)
    a := f.user(t, "alice", model.RoleUser)
    b := f.user(t, "bob", model.RoleUser)
    ev := f.event(t, host.ID, nil, "0")
    for _, u := range []model.User{a, b} {
        require.NoError(t, f.st.Repos().Participants.Create(ctx, model.Participant{EventID: ev.ID, UserID: u.ID}))
    }
    f.setStatus(t, ev.ID, model.EventCompleted)

    ra, err := svc.Create(ctx, ev.ID, a.ID, ReviewInput{Rating: 5})
    require.NoError(t, err)
    rb, err := svc.Create(ctx, ev.ID, b.ID, ReviewInput{Rating: 2})
    require.NoError(t, err)

    _, err = svc.Update(ctx, ra.ID, identity(b), ReviewInput{Rating: 1})
    assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
    updated, err := svc.Update(ctx, ra.ID, identity(a), ReviewInput{Rating: 4})
    require.NoError(t, err)
    assert.Equal(t, 4, updated.Rating)

    rating, err := svc.ForHost(ctx, host.ID)
    require.NoError(t, err)
    assert.Equal(t, 2, rating.TotalReviews)
    assert.InDelta(t, 3.0, rating.AverageRating, 0.001)
    assert.Len(t, rating.Reviews, 2)

    byEvent, err := svc.ForEvent(ctx, ev.ID)
    require.NoError(t, err)
    assert.Len(t, byEvent, 2)

    err = svc.Delete(ctx, rb.ID, identity(a))
    assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
    require.NoError(t, svc.Delete(ctx, rb.ID, identity(admin)))
    require.NoError(t, svc.Delete(ctx, ra.ID, identity(a)))

    all, err := svc.List(ctx)
    require.NoError(t, err)
    assert.Empty(t, all)

    err = svc.Delete(ctx, ra.ID, identity(a))
    assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
