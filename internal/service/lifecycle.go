package service

import "github.com/iliyamo/eventmate-api/internal/model"

// DeriveStatus is the single place where an event's status follows its
// occupancy.  CANCELLED and COMPLETED never change here.  Otherwise the
// event is FULL when a capacity is set and occupancy has reached it, and
// OPEN in every other case.
func DeriveStatus(current model.EventStatus, occupancy int, capacity *int) model.EventStatus {
    if current.Terminal() {
        return current
    }
    if capacity != nil && occupancy >= *capacity {
        return model.EventFull
    }
    return model.EventOpen
}

// CanTransition reports whether a host or admin may move an event from one
// status to another by hand.  OPEN and FULL are never targets: they are
// derived from occupancy.
func CanTransition(from, to model.EventStatus) bool {
    switch to {
    case model.EventCancelled, model.EventCompleted:
        return from == model.EventOpen || from == model.EventFull
    }
    return false
}
