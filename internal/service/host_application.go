package service

import (
    "context"
    "strings"

    "github.com/google/uuid"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// HostApplicationService handles requests to be promoted to HOST.
type HostApplicationService struct {
    store store.Store
}

func NewHostApplicationService(st store.Store) *HostApplicationService {
    return &HostApplicationService{store: st}
}

// Apply files an application.  Only a USER without a pending application
// may apply.
func (s *HostApplicationService) Apply(ctx context.Context, caller model.Identity, message string) (model.HostApplication, error) {
    r := s.store.Repos()
    u, err := r.Users.GetByID(ctx, caller.ID)
    if err != nil {
        return model.HostApplication{}, storeErr(err, "user not found")
    }
    if u.Role != model.RoleUser {
        return model.HostApplication{}, apperr.InvalidState("only regular users can apply to become hosts")
    }
    if _, err := r.HostApplications.FindPendingByUser(ctx, caller.ID); err == nil {
        return model.HostApplication{}, apperr.AlreadyExists("you already have a pending application")
    } else if !isNotFound(err) {
        return model.HostApplication{}, storeErr(err, "")
    }
    a := &model.HostApplication{
        ID:      uuid.NewString(),
        UserID:  caller.ID,
        Message: strings.TrimSpace(message),
        Status:  model.ApplicationPending,
    }
    if err := r.HostApplications.Create(ctx, a); err != nil {
        return model.HostApplication{}, storeErr(err, "")
    }
    return *a, nil
}

// Mine lists the caller's applications, newest first.
func (s *HostApplicationService) Mine(ctx context.Context, userID string) ([]model.HostApplication, error) {
    list, err := s.store.Repos().HostApplications.ListByUser(ctx, userID)
    return list, storeErr(err, "")
}

// List returns applications with the given status, or all when empty.
func (s *HostApplicationService) List(ctx context.Context, status model.ApplicationStatus) ([]model.HostApplication, error) {
    if status != "" && status != model.ApplicationPending && status != model.ApplicationApproved && status != model.ApplicationRejected {
        return nil, apperr.Validation("status must be PENDING, APPROVED or REJECTED")
    }
    list, err := s.store.Repos().HostApplications.List(ctx, status)
    return list, storeErr(err, "")
}

// Approve marks the application APPROVED and promotes its user to HOST in
// one transaction.
func (s *HostApplicationService) Approve(ctx context.Context, id string, admin model.Identity) (model.HostApplication, error) {
    return s.decide(ctx, id, admin, model.ApplicationApproved)
}

// Reject marks the application REJECTED.
func (s *HostApplicationService) Reject(ctx context.Context, id string, admin model.Identity) (model.HostApplication, error) {
    return s.decide(ctx, id, admin, model.ApplicationRejected)
}

func (s *HostApplicationService) decide(ctx context.Context, id string, admin model.Identity, status model.ApplicationStatus) (model.HostApplication, error) {
    var out model.HostApplication
    err := s.store.WithTx(ctx, func(r store.Repos) error {
        a, err := r.HostApplications.GetForUpdate(ctx, id)
        if err != nil {
            return storeErr(err, "application not found")
        }
        if a.Status != model.ApplicationPending {
            return apperr.InvalidState("application has already been decided")
        }
        if err := r.HostApplications.Decide(ctx, id, status, admin.ID); err != nil {
            return storeErr(err, "application not found")
        }
        if status == model.ApplicationApproved {
            u, err := r.Users.GetByID(ctx, a.UserID)
            if err != nil {
                return storeErr(err, "user not found")
            }
            if u.Role == model.RoleUser {
                u.Role = model.RoleHost
                if err := r.Users.Update(ctx, &u); err != nil {
                    return storeErr(err, "user not found")
                }
            }
        }
        a.Status = status
        a.ReviewedBy = &admin.ID
        out = a
        return nil
    })
    return out, err
}
