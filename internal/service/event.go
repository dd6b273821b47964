package service

import (
    "context"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/shopspring/decimal"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// EventInput is the payload for creating an event.  A nil or zero
// MaxParticipants means unlimited; a nil MinParticipants defaults to 1.
type EventInput struct {
    Name            string
    TypeID          string
    Description     string
    DateTime        time.Time
    Location        string
    Image           *string
    MinParticipants *int
    MaxParticipants *int
    JoiningFee      decimal.Decimal
}

// EventPatch lists the fields an owner may change.  Nil fields are left
// alone; MaxParticipants set to 0 removes the capacity.
type EventPatch struct {
    Name            *string
    TypeID          *string
    Description     *string
    DateTime        *time.Time
    Location        *string
    Image           *string
    MinParticipants *int
    MaxParticipants *int
    JoiningFee      *decimal.Decimal
}

// EventService manages events around the participation lifecycle.
type EventService struct {
    store store.Store
}

func NewEventService(st store.Store) *EventService {
    return &EventService{store: st}
}

func capacity(limit *int) *int {
    if limit == nil || *limit == 0 {
        return nil
    }
    v := *limit
    return &v
}

func checkBounds(minimum int, limit *int, fee decimal.Decimal) error {
    if minimum < 1 {
        return apperr.Validation("minParticipants must be at least 1")
    }
    if limit != nil && *limit < minimum {
        return apperr.Validation("maxParticipants must be greater than or equal to minParticipants")
    }
    if fee.IsNegative() {
        return apperr.Validation("joiningFee cannot be negative")
    }
    return nil
}

// Create stores a new OPEN event hosted by hostID.
func (s *EventService) Create(ctx context.Context, hostID string, in EventInput) (model.Event, error) {
    minimum := 1
    if in.MinParticipants != nil {
        minimum = *in.MinParticipants
    }
    limit := capacity(in.MaxParticipants)
    if err := checkBounds(minimum, limit, in.JoiningFee); err != nil {
        return model.Event{}, err
    }
    r := s.store.Repos()
    if _, err := r.EventTypes.GetByID(ctx, in.TypeID); err != nil {
        return model.Event{}, storeErr(err, "event type not found")
    }
    ev := &model.Event{
        ID:              uuid.NewString(),
        Name:            strings.TrimSpace(in.Name),
        TypeID:          in.TypeID,
        Description:     strings.TrimSpace(in.Description),
        DateTime:        in.DateTime.UTC(),
        Location:        strings.TrimSpace(in.Location),
        Image:           trimPtr(in.Image),
        MinParticipants: minimum,
        MaxParticipants: limit,
        JoiningFee:      in.JoiningFee,
        Status:          model.EventOpen,
        CreatedBy:       hostID,
    }
    if err := r.Events.Create(ctx, ev); err != nil {
        return model.Event{}, storeErr(err, "")
    }
    return *ev, nil
}

// List returns one page of events matching f and the total match count.
func (s *EventService) List(ctx context.Context, f store.EventFilter, p store.Page) ([]model.Event, int, error) {
    list, total, err := s.store.Repos().Events.List(ctx, f, p)
    return list, total, storeErr(err, "")
}

// Hosted lists the events created by hostID.
func (s *EventService) Hosted(ctx context.Context, hostID string, p store.Page) ([]model.Event, int, error) {
    return s.List(ctx, store.EventFilter{CreatedBy: hostID}, p)
}

// Joined lists the events userID participates in.
func (s *EventService) Joined(ctx context.Context, userID string, p store.Page) ([]model.Event, int, error) {
    return s.List(ctx, store.EventFilter{ParticipantID: userID}, p)
}

// FriendsEvents lists events hosted or joined by any accepted friend.
func (s *EventService) FriendsEvents(ctx context.Context, userID string, p store.Page) ([]model.Event, int, error) {
    rows, err := s.store.Repos().Friends.ListFrom(ctx, userID, model.FriendAccepted)
    if err != nil {
        return nil, 0, storeErr(err, "")
    }
    if len(rows) == 0 {
        return []model.Event{}, 0, nil
    }
    ids := make([]string, 0, len(rows))
    for _, f := range rows {
        ids = append(ids, f.FriendID)
    }
    return s.List(ctx, store.EventFilter{RelatedTo: ids}, p)
}

// FriendJoined lists the events a friend participates in.  Only accepted
// friends may look.
func (s *EventService) FriendJoined(ctx context.Context, userID, friendID string, p store.Page) ([]model.Event, int, error) {
    f, err := s.store.Repos().Friends.Get(ctx, userID, friendID)
    if err != nil && !isNotFound(err) {
        return nil, 0, storeErr(err, "")
    }
    if err != nil || f.Status != model.FriendAccepted {
        return nil, 0, apperr.Forbidden("you can only view events of your friends")
    }
    return s.Joined(ctx, friendID, p)
}

// Detail returns the event with its type, host, participants and reviews.
func (s *EventService) Detail(ctx context.Context, id, viewerID string) (model.EventDetail, error) {
    r := s.store.Repos()
    ev, err := r.Events.GetByID(ctx, id)
    if err != nil {
        return model.EventDetail{}, storeErr(err, "event not found")
    }
    d := model.EventDetail{Event: ev}
    if t, err := r.EventTypes.GetByID(ctx, ev.TypeID); err == nil {
        d.Type = &t
    } else if !isNotFound(err) {
        return model.EventDetail{}, storeErr(err, "")
    }
    if host, err := r.Users.GetByID(ctx, ev.CreatedBy); err == nil {
        d.Creator = host.Summary()
    } else if !isNotFound(err) {
        return model.EventDetail{}, storeErr(err, "")
    }
    if d.Participants, err = r.Participants.ListByEvent(ctx, id); err != nil {
        return model.EventDetail{}, storeErr(err, "")
    }
    if d.Reviews, err = r.Reviews.List(ctx, store.ReviewFilter{EventID: id}); err != nil {
        return model.EventDetail{}, storeErr(err, "")
    }
    d.ParticipantCount = len(d.Participants)
    if viewerID != "" {
        v := &model.EventViewer{}
        for _, p := range d.Participants {
            if p.UserID == viewerID {
                v.Joined = true
                break
            }
        }
        if v.Saved, err = r.SavedEvents.Exists(ctx, id, viewerID); err != nil {
            return model.EventDetail{}, storeErr(err, "")
        }
        d.Viewer = v
    }
    return d, nil
}

func canManage(ev model.Event, caller model.Identity) bool {
    return ev.CreatedBy == caller.ID || caller.IsAdmin()
}

// Update applies patch.  A capacity change re-derives the status and may
// not drop below the current occupancy.
func (s *EventService) Update(ctx context.Context, id string, caller model.Identity, patch EventPatch) (model.Event, error) {
    var out model.Event
    err := s.store.WithTx(ctx, func(r store.Repos) error {
        ev, err := r.Events.GetForUpdate(ctx, id)
        if err != nil {
            return storeErr(err, "event not found")
        }
        if !canManage(ev, caller) {
            return apperr.Forbidden("you can only update your own events")
        }
        if patch.Name != nil {
            ev.Name = strings.TrimSpace(*patch.Name)
        }
        if patch.TypeID != nil && *patch.TypeID != ev.TypeID {
            if _, err := r.EventTypes.GetByID(ctx, *patch.TypeID); err != nil {
                return storeErr(err, "event type not found")
            }
            ev.TypeID = *patch.TypeID
        }
        if patch.Description != nil {
            ev.Description = strings.TrimSpace(*patch.Description)
        }
        if patch.DateTime != nil {
            ev.DateTime = patch.DateTime.UTC()
        }
        if patch.Location != nil {
            ev.Location = strings.TrimSpace(*patch.Location)
        }
        if patch.Image != nil {
            ev.Image = trimPtr(patch.Image)
        }
        if patch.MinParticipants != nil {
            ev.MinParticipants = *patch.MinParticipants
        }
        if patch.MaxParticipants != nil {
            ev.MaxParticipants = capacity(patch.MaxParticipants)
        }
        if patch.JoiningFee != nil {
            ev.JoiningFee = *patch.JoiningFee
        }
        if err := checkBounds(ev.MinParticipants, ev.MaxParticipants, ev.JoiningFee); err != nil {
            return err
        }

        n, err := r.Participants.Count(ctx, id)
        if err != nil {
            return storeErr(err, "")
        }
        if ev.MaxParticipants != nil && *ev.MaxParticipants < n {
            return apperr.InvalidState("maxParticipants cannot be lower than the current number of participants")
        }
        ev.Status = DeriveStatus(ev.Status, n, ev.MaxParticipants)
        if err := r.Events.Update(ctx, &ev); err != nil {
            return storeErr(err, "event not found")
        }
        ev.ParticipantCount = n
        out = ev
        return nil
    })
    return out, err
}

// Delete removes the event together with its participants, reviews,
// payments and bookmarks.
func (s *EventService) Delete(ctx context.Context, id string, caller model.Identity) error {
    r := s.store.Repos()
    ev, err := r.Events.GetByID(ctx, id)
    if err != nil {
        return storeErr(err, "event not found")
    }
    if !canManage(ev, caller) {
        return apperr.Forbidden("you can only delete your own events")
    }
    return storeErr(r.Events.Delete(ctx, id), "event not found")
}

// Cancel moves an OPEN or FULL event to CANCELLED.
func (s *EventService) Cancel(ctx context.Context, id string, caller model.Identity) (model.Event, error) {
    return s.transition(ctx, id, caller, model.EventCancelled)
}

// Complete marks an OPEN or FULL event as ended.
func (s *EventService) Complete(ctx context.Context, id string, caller model.Identity) (model.Event, error) {
    return s.transition(ctx, id, caller, model.EventCompleted)
}

func (s *EventService) transition(ctx context.Context, id string, caller model.Identity, to model.EventStatus) (model.Event, error) {
    var out model.Event
    err := s.store.WithTx(ctx, func(r store.Repos) error {
        ev, err := r.Events.GetForUpdate(ctx, id)
        if err != nil {
            return storeErr(err, "event not found")
        }
        if !canManage(ev, caller) {
            return apperr.Forbidden("you can only manage your own events")
        }
        if !CanTransition(ev.Status, to) {
            return apperr.InvalidState("cannot change event status from " + string(ev.Status) + " to " + string(to))
        }
        if err := r.Events.UpdateStatus(ctx, id, to); err != nil {
            return storeErr(err, "event not found")
        }
        ev.Status = to
        out = ev
        return nil
    })
    return out, err
}
