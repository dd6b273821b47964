package model

import "time"

// FriendStatus is the state of a directed friendship row.
type FriendStatus string

const (
    FriendPending  FriendStatus = "PENDING"
    FriendAccepted FriendStatus = "ACCEPTED"
)

// Friend is a directed row of the `friends` table.  A request is a single
// PENDING row from requester to target; acceptance flips it to ACCEPTED and
// adds the reverse ACCEPTED row.
type Friend struct {
    UserID    string       `json:"userId"`
    FriendID  string       `json:"friendId"`
    Status    FriendStatus `json:"status"`
    CreatedAt time.Time    `json:"createdAt"`
}

// FriendRequest is a pending row together with the other party's summary.
type FriendRequest struct {
    Friend
    User   *UserSummary `json:"user,omitempty"`
    Target *UserSummary `json:"friend,omitempty"`
}

// FriendOverview is the response of the friends listing.
type FriendOverview struct {
    Friends      []UserSummary   `json:"friends"`
    Requests     []UserSummary   `json:"requests"`
    SentRequests []FriendRequest `json:"sentRequests"`
}
