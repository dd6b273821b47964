package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// EventStatus is the lifecycle state of an event.  OPEN and FULL are a
// projection of occupancy vs capacity; CANCELLED and COMPLETED are terminal
// with respect to joining and leaving.
type EventStatus string

const (
    EventOpen      EventStatus = "OPEN"
    EventFull      EventStatus = "FULL"
    EventCancelled EventStatus = "CANCELLED"
    EventCompleted EventStatus = "COMPLETED"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
    switch s {
    case EventOpen, EventFull, EventCancelled, EventCompleted:
        return true
    }
    return false
}

// Terminal reports whether joins and leaves no longer affect the status.
func (s EventStatus) Terminal() bool {
    return s == EventCancelled || s == EventCompleted
}

// Event represents a row of the `events` table.
//
// Fields:
//  ID               – UUID primary key.
//  Name             – event title.
//  TypeID           – reference to event_types.id.
//  Description      – free text.
//  DateTime         – when the event takes place (UTC).
//  Location         – where the event takes place.
//  Image            – optional image URL.
//  MinParticipants  – lower bound, at least 1.
//  MaxParticipants  – optional upper bound; nil means unlimited.
//  JoiningFee       – fee in major currency units, 0 for free events.
//  Status           – OPEN, FULL, CANCELLED or COMPLETED.
//  CreatedBy        – hosting user.
//  ParticipantCount – occupancy, filled by list/detail queries only.
type Event struct {
    ID               string          `json:"id"`
    Name             string          `json:"name"`
    TypeID           string          `json:"typeId"`
    Description      string          `json:"description"`
    DateTime         time.Time       `json:"dateTime"`
    Location         string          `json:"location"`
    Image            *string         `json:"image,omitempty"`
    MinParticipants  int             `json:"minParticipants"`
    MaxParticipants  *int            `json:"maxParticipants"`
    JoiningFee       decimal.Decimal `json:"joiningFee"`
    Status           EventStatus     `json:"status"`
    CreatedBy        string          `json:"createdBy"`
    CreatedAt        time.Time       `json:"createdAt"`
    UpdatedAt        time.Time       `json:"updatedAt"`
    ParticipantCount int             `json:"participantCount"`
}

// IsFree reports whether joining requires no payment.
func (e Event) IsFree() bool { return !e.JoiningFee.IsPositive() }

// Summary returns the minimal event projection.
func (e Event) Summary() EventSummary {
    return EventSummary{ID: e.ID, Name: e.Name, DateTime: e.DateTime, Status: e.Status}
}

// EventSummary is the minimal event projection embedded in other responses.
type EventSummary struct {
    ID       string      `json:"id"`
    Name     string      `json:"name"`
    DateTime time.Time   `json:"dateTime"`
    Status   EventStatus `json:"status,omitempty"`
}

// EventType groups events into categories (`event_types` table).
type EventType struct {
    ID        string    `json:"id"`
    Name      string    `json:"name"`
    CreatedAt time.Time `json:"createdAt"`
    UpdatedAt time.Time `json:"updatedAt"`
}

// EventDetail is the full event view: type, host, participants and reviews.
type EventDetail struct {
    Event
    Type         *EventType          `json:"type,omitempty"`
    Creator      UserSummary         `json:"creator"`
    Participants []ParticipantDetail `json:"participants"`
    Reviews      []ReviewDetail      `json:"reviews"`
    Viewer       *EventViewer        `json:"viewer,omitempty"`
}

// EventViewer is the signed-in caller's relation to an event.
type EventViewer struct {
    Joined bool `json:"joined"`
    Saved  bool `json:"saved"`
}
