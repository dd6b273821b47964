package service

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store/memstore"
)

type published struct {
    queue string
    msg   any
}

type recordingPublisher struct {
    mu   sync.Mutex
    msgs []published
}

func (p *recordingPublisher) Publish(_ context.Context, queue string, msg any) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.msgs = append(p.msgs, published{queue: queue, msg: msg})
    return nil
}

func (p *recordingPublisher) count(queue string) int {
    p.mu.Lock()
    defer p.mu.Unlock()
    n := 0
    for _, m := range p.msgs {
        if m.queue == queue {
            n++
        }
    }
    return n
}

type fixture struct {
    st  *memstore.Store
    pub *recordingPublisher
    log *zap.Logger
    typ model.EventType
}

func newFixture(t *testing.T) *fixture {
    t.Helper()
    f := &fixture{st: memstore.New(), pub: &recordingPublisher{}, log: zap.NewNop()}
    f.typ = model.EventType{Name: "Meetup"}
    require.NoError(t, f.st.Repos().EventTypes.Create(context.Background(), &f.typ))
    return f
}

func (f *fixture) user(t *testing.T, name string, role model.Role) model.User {
    t.Helper()
    u := model.User{Name: name, Email: name + "@example.com", Role: role, PasswordHash: "x"}
    require.NoError(t, f.st.Repos().Users.Create(context.Background(), &u))
    return u
}

func (f *fixture) event(t *testing.T, hostID string, capacity *int, fee string) model.Event {
    t.Helper()
    ev := model.Event{
        Name:            "Board games night",
        TypeID:          f.typ.ID,
        Description:     "Bring your own games",
        DateTime:        time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC),
        Location:        "Berlin",
        MinParticipants: 1,
        MaxParticipants: capacity,
        JoiningFee:      decimal.RequireFromString(fee),
        Status:          model.EventOpen,
        CreatedBy:       hostID,
    }
    require.NoError(t, f.st.Repos().Events.Create(context.Background(), &ev))
    return ev
}

func (f *fixture) setStatus(t *testing.T, eventID string, status model.EventStatus) {
    t.Helper()
    require.NoError(t, f.st.Repos().Events.UpdateStatus(context.Background(), eventID, status))
}

func (f *fixture) status(t *testing.T, eventID string) (model.EventStatus, int) {
    t.Helper()
    ev, err := f.st.Repos().Events.GetByID(context.Background(), eventID)
    require.NoError(t, err)
    return ev.Status, ev.ParticipantCount
}

func identity(u model.User) model.Identity {
    return model.Identity{ID: u.ID, Email: u.Email, Role: u.Role}
}
