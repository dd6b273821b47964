package service

import (
    "context"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// FriendService keeps directed friendship rows.  A request is one PENDING
// row from requester to target.  Accepting flips it and adds the reverse
// ACCEPTED row in the same transaction.
type FriendService struct {
    store store.Store
}

func NewFriendService(st store.Store) *FriendService {
    return &FriendService{store: st}
}

// Request sends a friend request from userID to targetID.
func (s *FriendService) Request(ctx context.Context, userID, targetID string) (model.FriendRequest, error) {
    if userID == targetID {
        return model.FriendRequest{}, apperr.Validation("you cannot send a friend request to yourself")
    }
    var out model.FriendRequest
    err := s.store.WithTx(ctx, func(r store.Repos) error {
        target, err := r.Users.GetByID(ctx, targetID)
        if err != nil {
            return storeErr(err, "user not found")
        }
        for _, pair := range [][2]string{{userID, targetID}, {targetID, userID}} {
            f, err := r.Friends.Get(ctx, pair[0], pair[1])
            if err == nil {
                if f.Status == model.FriendAccepted {
                    return apperr.AlreadyExists("you are already friends")
                }
                return apperr.AlreadyExists("a friend request already exists")
            }
            if !isNotFound(err) {
                return storeErr(err, "")
            }
        }
        f := model.Friend{UserID: userID, FriendID: targetID, Status: model.FriendPending}
        if err := r.Friends.Create(ctx, f); err != nil {
            return storeErr(err, "", "a friend request already exists")
        }
        created, err := r.Friends.Get(ctx, userID, targetID)
        if err != nil {
            return storeErr(err, "")
        }
        summary := target.Summary()
        out = model.FriendRequest{Friend: created, Target: &summary}
        return nil
    })
    return out, err
}

// Accept accepts the pending request sent by requesterID to userID.
func (s *FriendService) Accept(ctx context.Context, userID, requesterID string) (model.Friend, error) {
    var out model.Friend
    err := s.store.WithTx(ctx, func(r store.Repos) error {
        f, err := r.Friends.Get(ctx, requesterID, userID)
        if err != nil {
            return storeErr(err, "friend request not found")
        }
        if f.Status != model.FriendPending {
            return apperr.InvalidState("friend request is not pending")
        }
        if err := r.Friends.UpdateStatus(ctx, requesterID, userID, model.FriendAccepted); err != nil {
            return storeErr(err, "friend request not found")
        }
        reverse := model.Friend{UserID: userID, FriendID: requesterID, Status: model.FriendAccepted}
        if err := r.Friends.Create(ctx, reverse); err != nil {
            return storeErr(err, "", "you are already friends")
        }
        out, err = r.Friends.Get(ctx, userID, requesterID)
        return storeErr(err, "")
    })
    return out, err
}

// Overview lists accepted friends, incoming requests and sent requests.
func (s *FriendService) Overview(ctx context.Context, userID string) (model.FriendOverview, error) {
    r := s.store.Repos()
    out := model.FriendOverview{Friends: []model.UserSummary{}, Requests: []model.UserSummary{}, SentRequests: []model.FriendRequest{}}

    accepted, err := r.Friends.ListFrom(ctx, userID, model.FriendAccepted)
    if err != nil {
        return out, storeErr(err, "")
    }
    for _, f := range accepted {
        u, err := s.summary(ctx, r, f.FriendID)
        if err != nil {
            return out, err
        }
        if u != nil {
            out.Friends = append(out.Friends, *u)
        }
    }

    incoming, err := s.Incoming(ctx, userID)
    if err != nil {
        return out, err
    }
    for _, req := range incoming {
        out.Requests = append(out.Requests, *req.User)
    }

    sent, err := r.Friends.ListFrom(ctx, userID, model.FriendPending)
    if err != nil {
        return out, storeErr(err, "")
    }
    for _, f := range sent {
        u, err := s.summary(ctx, r, f.FriendID)
        if err != nil {
            return out, err
        }
        if u != nil {
            out.SentRequests = append(out.SentRequests, model.FriendRequest{Friend: f, Target: u})
        }
    }
    return out, nil
}

// Incoming lists pending requests sent to userID.
func (s *FriendService) Incoming(ctx context.Context, userID string) ([]model.FriendRequest, error) {
    r := s.store.Repos()
    rows, err := r.Friends.ListTo(ctx, userID, model.FriendPending)
    if err != nil {
        return nil, storeErr(err, "")
    }
    out := make([]model.FriendRequest, 0, len(rows))
    for _, f := range rows {
        u, err := s.summary(ctx, r, f.UserID)
        if err != nil {
            return nil, err
        }
        if u != nil {
            out = append(out, model.FriendRequest{Friend: f, User: u})
        }
    }
    return out, nil
}

// Remove deletes the friendship or pending request in both directions.
func (s *FriendService) Remove(ctx context.Context, userID, otherID string) error {
    r := s.store.Repos()
    _, errA := r.Friends.Get(ctx, userID, otherID)
    _, errB := r.Friends.Get(ctx, otherID, userID)
    if isNotFound(errA) && isNotFound(errB) {
        return apperr.NotFound("friendship not found")
    }
    if errA != nil && !isNotFound(errA) {
        return storeErr(errA, "")
    }
    if errB != nil && !isNotFound(errB) {
        return storeErr(errB, "")
    }
    return storeErr(r.Friends.DeleteBetween(ctx, userID, otherID), "")
}

// AreFriends reports whether an ACCEPTED row links a to b.
func (s *FriendService) AreFriends(ctx context.Context, a, b string) (bool, error) {
    f, err := s.store.Repos().Friends.Get(ctx, a, b)
    if isNotFound(err) {
        return false, nil
    }
    if err != nil {
        return false, storeErr(err, "")
    }
    return f.Status == model.FriendAccepted, nil
}

func (s *FriendService) summary(ctx context.Context, r store.Repos, id string) (*model.UserSummary, error) {
    u, err := r.Users.GetByID(ctx, id)
    if isNotFound(err) {
        return nil, nil
    }
    if err != nil {
        return nil, storeErr(err, "")
    }
    sum := u.Summary()
    return &sum, nil
}
