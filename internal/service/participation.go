package service

import (
    "context"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/metrics"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/queue"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// publishTimeout bounds a best-effort domain message after commit.
const publishTimeout = 500 * time.Millisecond

// ParticipationService is the participation ledger: joins, leaves and the
// status projection that follows them.  Every mutation runs in one
// transaction with the event row locked, so the capacity check and the
// insert cannot interleave with another join on the same event.
type ParticipationService struct {
    store store.Store
    pub   queue.Publisher
    log   *zap.Logger
}

func NewParticipationService(st store.Store, pub queue.Publisher, log *zap.Logger) *ParticipationService {
    return &ParticipationService{store: st, pub: pub, log: log}
}

// Join adds userID to the event.  Checks run in a fixed order so each
// failure has one kind: missing event, event CANCELLED or COMPLETED,
// capacity reached (a FULL event included), already joined.
func (s *ParticipationService) Join(ctx context.Context, eventID, userID string) (model.ParticipantDetail, error) {
    var (
        detail    model.ParticipantDetail
        occupancy int
    )
    err := s.store.WithTx(ctx, func(r store.Repos) error {
        ev, err := r.Events.GetForUpdate(ctx, eventID)
        if err != nil {
            return storeErr(err, "event not found")
        }
        if ev.Status != model.EventOpen && ev.Status != model.EventFull {
            return apperr.InvalidState("event is not open for joining")
        }
        n, err := r.Participants.Count(ctx, eventID)
        if err != nil {
            return storeErr(err, "")
        }
        if ev.Status == model.EventFull || (ev.MaxParticipants != nil && n >= *ev.MaxParticipants) {
            return apperr.CapacityExceeded("event has reached its maximum participants")
        }
        if _, err := r.Participants.Get(ctx, eventID, userID); err == nil {
            return apperr.AlreadyExists("you have already joined this event")
        } else if !isNotFound(err) {
            return storeErr(err, "")
        }
        user, err := r.Users.GetByID(ctx, userID)
        if err != nil {
            return storeErr(err, "user not found")
        }

        p := model.Participant{EventID: eventID, UserID: userID, JoinedAt: time.Now().UTC()}
        if err := r.Participants.Create(ctx, p); err != nil {
            return storeErr(err, "", "you have already joined this event")
        }
        occupancy = n + 1
        next := DeriveStatus(ev.Status, occupancy, ev.MaxParticipants)
        if next != ev.Status {
            if err := r.Events.UpdateStatus(ctx, eventID, next); err != nil {
                return storeErr(err, "event not found")
            }
            ev.Status = next
        }
        summary := ev.Summary()
        detail = model.ParticipantDetail{Participant: p, User: user.Summary(), Event: &summary}
        return nil
    })
    metrics.Participation("join", outcome(err))
    if err != nil {
        return model.ParticipantDetail{}, err
    }
    s.announce(ctx, "join", eventID, userID, detail.Event.Status, occupancy)
    return detail, nil
}

// Leave removes userID from the event and re-derives the status from the
// occupancy left behind.  CANCELLED and COMPLETED events keep their
// participants, and so does a participation backed by a PAID payment.
func (s *ParticipationService) Leave(ctx context.Context, eventID, userID string) error {
    var (
        status    model.EventStatus
        occupancy int
    )
    err := s.store.WithTx(ctx, func(r store.Repos) error {
        ev, err := r.Events.GetForUpdate(ctx, eventID)
        if err != nil {
            return storeErr(err, "event not found")
        }
        if _, err := r.Participants.Get(ctx, eventID, userID); err != nil {
            return storeErr(err, "you have not joined this event")
        }
        if ev.Status == model.EventCancelled || ev.Status == model.EventCompleted {
            return apperr.InvalidState("event is no longer open")
        }
        if _, err := r.Payments.Find(ctx, eventID, userID, model.PaymentPaid); err == nil {
            return apperr.InvalidState("a paid participation cannot be left, ask the host for a refund")
        } else if !isNotFound(err) {
            return storeErr(err, "")
        }
        if err := r.Participants.Delete(ctx, eventID, userID); err != nil {
            return storeErr(err, "you have not joined this event")
        }
        occupancy, err = r.Participants.Count(ctx, eventID)
        if err != nil {
            return storeErr(err, "")
        }
        status = DeriveStatus(ev.Status, occupancy, ev.MaxParticipants)
        if status != ev.Status {
            if err := r.Events.UpdateStatus(ctx, eventID, status); err != nil {
                return storeErr(err, "event not found")
            }
        }
        return nil
    })
    metrics.Participation("leave", outcome(err))
    if err != nil {
        return err
    }
    s.announce(ctx, "leave", eventID, userID, status, occupancy)
    return nil
}

// Participants lists the users who joined the event, oldest first.
func (s *ParticipationService) Participants(ctx context.Context, eventID string) ([]model.ParticipantDetail, error) {
    r := s.store.Repos()
    if _, err := r.Events.GetByID(ctx, eventID); err != nil {
        return nil, storeErr(err, "event not found")
    }
    list, err := r.Participants.ListByEvent(ctx, eventID)
    return list, storeErr(err, "")
}

// Save bookmarks an event for the user.
func (s *ParticipationService) Save(ctx context.Context, eventID, userID string) (model.SavedEvent, error) {
    r := s.store.Repos()
    ev, err := r.Events.GetByID(ctx, eventID)
    if err != nil {
        return model.SavedEvent{}, storeErr(err, "event not found")
    }
    sv := model.SavedEvent{EventID: eventID, UserID: userID, CreatedAt: time.Now().UTC(), Event: ev.Summary()}
    if err := r.SavedEvents.Create(ctx, sv); err != nil {
        return model.SavedEvent{}, storeErr(err, "", "event already saved")
    }
    return sv, nil
}

// Unsave removes a bookmark.
func (s *ParticipationService) Unsave(ctx context.Context, eventID, userID string) error {
    return storeErr(s.store.Repos().SavedEvents.Delete(ctx, eventID, userID), "saved event not found")
}

// Saved lists the user's bookmarks, newest first.
func (s *ParticipationService) Saved(ctx context.Context, userID string) ([]model.SavedEvent, error) {
    list, err := s.store.Repos().SavedEvents.ListByUser(ctx, userID)
    return list, storeErr(err, "")
}

func (s *ParticipationService) announce(ctx context.Context, action, eventID, userID string, status model.EventStatus, occupancy int) {
    publish(ctx, s.pub, s.log, queue.ParticipationQueue, queue.ParticipationChanged{
        EventID:    eventID,
        UserID:     userID,
        Action:     action,
        Status:     string(status),
        Occupancy:  occupancy,
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    })
}

// publish is best effort: a broker outage never fails the request.
func publish(ctx context.Context, pub queue.Publisher, log *zap.Logger, name string, msg any) {
    ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
    defer cancel()
    if err := pub.Publish(ctx, name, msg); err != nil {
        log.Warn("domain message not published", zap.String("queue", name), zap.Error(err))
    }
}

// outcome is the metrics label for an operation result.
func outcome(err error) string {
    if err == nil {
        return "ok"
    }
    if k := apperr.KindOf(err); k != "" {
        return string(k)
    }
    return "error"
}
