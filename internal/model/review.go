package model

import "time"

// Review is a rating left by a participant on a completed event (`reviews`).
// HostID is copied from the event at creation for host aggregates.
type Review struct {
    ID         string    `json:"id"`
    EventID    string    `json:"eventId"`
    ReviewerID string    `json:"reviewerId"`
    HostID     string    `json:"hostId"`
    Rating     int       `json:"rating"`
    Comment    *string   `json:"comment,omitempty"`
    CreatedAt  time.Time `json:"createdAt"`
    UpdatedAt  time.Time `json:"updatedAt"`
}

// ReviewDetail is a review joined with reviewer and event projections.
type ReviewDetail struct {
    Review
    Reviewer UserSummary  `json:"reviewer"`
    Event    EventSummary `json:"event"`
}

// HostRating aggregates all reviews of a host.
type HostRating struct {
    Reviews       []ReviewDetail `json:"reviews"`
    AverageRating float64        `json:"averageRating"`
    TotalReviews  int            `json:"totalReviews"`
}
