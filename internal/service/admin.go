package service

import (
    "context"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// AdminService backs the admin dashboard and moderation actions.
type AdminService struct {
    store store.Store
}

func NewAdminService(st store.Store) *AdminService {
    return &AdminService{store: st}
}

// Dashboard aggregates platform totals.  Revenue counts PAID payments only.
func (s *AdminService) Dashboard(ctx context.Context) (model.DashboardStats, error) {
    r := s.store.Repos()
    users, err := r.Users.Count(ctx)
    if err != nil {
        return model.DashboardStats{}, storeErr(err, "")
    }
    byStatus, err := r.Events.CountByStatus(ctx)
    if err != nil {
        return model.DashboardStats{}, storeErr(err, "")
    }
    events := 0
    for _, n := range byStatus {
        events += n
    }
    revenue, err := r.Payments.SumPaid(ctx)
    if err != nil {
        return model.DashboardStats{}, storeErr(err, "")
    }
    recent, _, err := r.Users.List(ctx, store.UserFilter{}, store.Page{Page: 1, Limit: 5, SortBy: "createdAt", SortOrder: "desc"})
    if err != nil {
        return model.DashboardStats{}, storeErr(err, "")
    }
    summaries := make([]model.UserSummary, 0, len(recent))
    for _, u := range recent {
        summaries = append(summaries, u.Summary())
    }
    return model.DashboardStats{
        TotalUsers:     users,
        TotalEvents:    events,
        TotalRevenue:   revenue.StringFixed(2),
        RecentUsers:    summaries,
        EventsByStatus: byStatus,
    }, nil
}

var promotions = map[model.Role]model.Role{model.RoleUser: model.RoleHost, model.RoleHost: model.RoleAdmin}
var demotions = map[model.Role]model.Role{model.RoleAdmin: model.RoleHost, model.RoleHost: model.RoleUser}

// ManageUser promotes or demotes a user one role step.
func (s *AdminService) ManageUser(ctx context.Context, userID, action string, admin model.Identity) (model.User, error) {
    var ladder map[model.Role]model.Role
    switch action {
    case "promote":
        ladder = promotions
    case "demote":
        ladder = demotions
    default:
        return model.User{}, apperr.Validation("unsupported action " + action)
    }
    r := s.store.Repos()
    u, err := r.Users.GetByID(ctx, userID)
    if err != nil {
        return model.User{}, storeErr(err, "user not found")
    }
    if u.ID == admin.ID && action == "demote" {
        return model.User{}, apperr.InvalidState("you cannot demote yourself")
    }
    next, ok := ladder[u.Role]
    if !ok {
        return model.User{}, apperr.InvalidState("user cannot be " + action + "d from " + string(u.Role))
    }
    u.Role = next
    if err := r.Users.Update(ctx, &u); err != nil {
        return model.User{}, storeErr(err, "user not found")
    }
    return u, nil
}

// ModerateEvent approves or cancels an event.  Approve re-opens a cancelled
// event with its status derived from occupancy.
func (s *AdminService) ModerateEvent(ctx context.Context, eventID, action string) (model.Event, error) {
    if action != "approve" && action != "cancel" {
        return model.Event{}, apperr.Validation("unsupported action " + action)
    }
    var out model.Event
    err := s.store.WithTx(ctx, func(r store.Repos) error {
        ev, err := r.Events.GetForUpdate(ctx, eventID)
        if err != nil {
            return storeErr(err, "event not found")
        }
        var next model.EventStatus
        if action == "cancel" {
            if !CanTransition(ev.Status, model.EventCancelled) {
                return apperr.InvalidState("event cannot be cancelled from " + string(ev.Status))
            }
            next = model.EventCancelled
        } else {
            if ev.Status == model.EventCompleted {
                return apperr.InvalidState("completed events cannot be re-opened")
            }
            n, err := r.Participants.Count(ctx, eventID)
            if err != nil {
                return storeErr(err, "")
            }
            next = DeriveStatus(model.EventOpen, n, ev.MaxParticipants)
            ev.ParticipantCount = n
        }
        if next != ev.Status {
            if err := r.Events.UpdateStatus(ctx, eventID, next); err != nil {
                return storeErr(err, "event not found")
            }
        }
        ev.Status = next
        out = ev
        return nil
    })
    return out, err
}
