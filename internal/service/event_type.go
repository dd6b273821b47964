package service

import (
    "context"
    "strings"

    "github.com/google/uuid"

    "github.com/iliyamo/eventmate-api/internal/apperr"
    "github.com/iliyamo/eventmate-api/internal/model"
    "github.com/iliyamo/eventmate-api/internal/store"
)

// EventTypeService manages event categories.
type EventTypeService struct {
    store store.Store
}

func NewEventTypeService(st store.Store) *EventTypeService {
    return &EventTypeService{store: st}
}

func (s *EventTypeService) Create(ctx context.Context, name string) (model.EventType, error) {
    name = strings.TrimSpace(name)
    if name == "" {
        return model.EventType{}, apperr.Validation("name is required")
    }
    t := &model.EventType{ID: uuid.NewString(), Name: name}
    if err := s.store.Repos().EventTypes.Create(ctx, t); err != nil {
        return model.EventType{}, storeErr(err, "", "event type already exists")
    }
    return *t, nil
}

func (s *EventTypeService) List(ctx context.Context) ([]model.EventType, error) {
    list, err := s.store.Repos().EventTypes.List(ctx)
    return list, storeErr(err, "")
}

func (s *EventTypeService) Get(ctx context.Context, id string) (model.EventType, error) {
    t, err := s.store.Repos().EventTypes.GetByID(ctx, id)
    return t, storeErr(err, "event type not found")
}

func (s *EventTypeService) Rename(ctx context.Context, id, name string) (model.EventType, error) {
    name = strings.TrimSpace(name)
    if name == "" {
        return model.EventType{}, apperr.Validation("name is required")
    }
    r := s.store.Repos()
    if err := r.EventTypes.Rename(ctx, id, name); err != nil {
        return model.EventType{}, storeErr(err, "event type not found", "event type already exists")
    }
    t, err := r.EventTypes.GetByID(ctx, id)
    return t, storeErr(err, "event type not found")
}

// Delete removes a type that no event uses.
func (s *EventTypeService) Delete(ctx context.Context, id string) error {
    r := s.store.Repos()
    if _, err := r.EventTypes.GetByID(ctx, id); err != nil {
        return storeErr(err, "event type not found")
    }
    n, err := r.Events.CountByType(ctx, id)
    if err != nil {
        return storeErr(err, "")
    }
    if n > 0 {
        return apperr.InvalidState("event type is used by existing events")
    }
    return storeErr(r.EventTypes.Delete(ctx, id), "event type not found")
}
