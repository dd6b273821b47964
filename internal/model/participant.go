package model

import "time"

// Participant links a user to an event they joined (`event_participants`).
// The (EventID, UserID) pair is unique.
type Participant struct {
    EventID  string    `json:"eventId"`
    UserID   string    `json:"userId"`
    JoinedAt time.Time `json:"joinedAt"`
}

// ParticipantDetail is a participant joined with minimal user and event
// projections.
type ParticipantDetail struct {
    Participant
    User  UserSummary   `json:"user"`
    Event *EventSummary `json:"event,omitempty"`
}

// SavedEvent is a bookmark of an event by a user (`saved_events`).
type SavedEvent struct {
    EventID   string       `json:"eventId"`
    UserID    string       `json:"userId"`
    CreatedAt time.Time    `json:"createdAt"`
    Event     EventSummary `json:"event"`
}
