package service

import (
    "context"
    "strings"

    "github.com/google/uuid"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/metrics"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// ReviewInput is the allow-listed review payload.
type ReviewInput struct {
    Rating  int
    Comment *string
}

func (in ReviewInput) check() error {
    if in.Rating < 1 || in.Rating > 5 {
        return apperr.Validation("rating must be between 1 and 5")
    }
    return nil
}

// ReviewService gates reviews on the event lifecycle and participation.
type ReviewService struct {
    store store.Store
}

func NewReviewService(st store.Store) *ReviewService {
    return &ReviewService{store: st}
}

// Create adds a review by reviewerID.  The event must be COMPLETED and the
// reviewer one of its participants; one review per (event, reviewer).
func (s *ReviewService) Create(ctx context.Context, eventID, reviewerID string, in ReviewInput) (model.ReviewDetail, error) {
    if err := in.check(); err != nil {
        return model.ReviewDetail{}, err
    }
    r := s.store.Repos()
    ev, err := r.Events.GetByID(ctx, eventID)
    if err != nil {
        return model.ReviewDetail{}, storeErr(err, "event not found")
    }
    if ev.Status != model.EventCompleted {
        return model.ReviewDetail{}, apperr.InvalidState("only completed events can be reviewed")
    }
    if _, err := r.Participants.Get(ctx, eventID, reviewerID); err != nil {
        if isNotFound(err) {
            return model.ReviewDetail{}, apperr.Forbidden("only participants can review this event")
        }
        return model.ReviewDetail{}, storeErr(err, "")
    }
    if _, err := r.Reviews.Get(ctx, eventID, reviewerID); err == nil {
        return model.ReviewDetail{}, apperr.AlreadyExists("you have already reviewed this event")
    } else if !isNotFound(err) {
        return model.ReviewDetail{}, storeErr(err, "")
    }
    reviewer, err := r.Users.GetByID(ctx, reviewerID)
    if err != nil {
        return model.ReviewDetail{}, storeErr(err, "user not found")
    }

    rv := &model.Review{
        ID:         uuid.NewString(),
        EventID:    eventID,
        ReviewerID: reviewerID,
        HostID:     ev.CreatedBy,
        Rating:     in.Rating,
        Comment:    trimPtr(in.Comment),
    }
    if err := r.Reviews.Create(ctx, rv); err != nil {
        return model.ReviewDetail{}, storeErr(err, "", "you have already reviewed this event")
    }
    metrics.ReviewCreated()
    return model.ReviewDetail{Review: *rv, Reviewer: reviewer.Summary(), Event: ev.Summary()}, nil
}

// Update changes rating and comment.  Only the author may update.
func (s *ReviewService) Update(ctx context.Context, id string, caller model.Identity, in ReviewInput) (model.Review, error) {
    if err := in.check(); err != nil {
        return model.Review{}, err
    }
    r := s.store.Repos()
    rv, err := r.Reviews.GetByID(ctx, id)
    if err != nil {
        return model.Review{}, storeErr(err, "review not found")
    }
    if rv.ReviewerID != caller.ID {
        return model.Review{}, apperr.Forbidden("you can only update your own reviews")
    }
    rv.Rating = in.Rating
    rv.Comment = trimPtr(in.Comment)
    if err := r.Reviews.Update(ctx, &rv); err != nil {
        return model.Review{}, storeErr(err, "review not found")
    }
    return rv, nil
}

// Delete removes a review.  The author or an ADMIN may delete.
func (s *ReviewService) Delete(ctx context.Context, id string, caller model.Identity) error {
    r := s.store.Repos()
    rv, err := r.Reviews.GetByID(ctx, id)
    if err != nil {
        return storeErr(err, "review not found")
    }
    if rv.ReviewerID != caller.ID && !caller.IsAdmin() {
        return apperr.Forbidden("you can only delete your own reviews")
    }
    return storeErr(r.Reviews.Delete(ctx, id), "review not found")
}

// List returns every review, newest first.
func (s *ReviewService) List(ctx context.Context) ([]model.ReviewDetail, error) {
    list, err := s.store.Repos().Reviews.List(ctx, store.ReviewFilter{})
    return list, storeErr(err, "")
}

// ForEvent lists the reviews of one event.
func (s *ReviewService) ForEvent(ctx context.Context, eventID string) ([]model.ReviewDetail, error) {
    r := s.store.Repos()
    if _, err := r.Events.GetByID(ctx, eventID); err != nil {
        return nil, storeErr(err, "event not found")
    }
    list, err := r.Reviews.List(ctx, store.ReviewFilter{EventID: eventID})
    return list, storeErr(err, "")
}

// ForHost lists the reviews left on a host's events with the aggregate.
func (s *ReviewService) ForHost(ctx context.Context, hostID string) (model.HostRating, error) {
    r := s.store.Repos()
    if _, err := r.Users.GetByID(ctx, hostID); err != nil {
        return model.HostRating{}, storeErr(err, "host not found")
    }
    list, err := r.Reviews.List(ctx, store.ReviewFilter{HostID: hostID})
    if err != nil {
        return model.HostRating{}, storeErr(err, "")
    }
    avg, n, err := r.Reviews.HostAggregate(ctx, hostID)
    if err != nil {
        return model.HostRating{}, storeErr(err, "")
    }
    return model.HostRating{Reviews: list, AverageRating: avg, TotalReviews: n}, nil
}

func trimPtr(s *string) *string {
    if s == nil {
        return nil
    }
    t := strings.TrimSpace(*s)
    if t == "" {
        return nil
    }
    return &t
}
