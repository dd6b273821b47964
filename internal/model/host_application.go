package model

import "time"

// ApplicationStatus is the state of a host application.
type ApplicationStatus string

const (
    ApplicationPending  ApplicationStatus = "PENDING"
    ApplicationApproved ApplicationStatus = "APPROVED"
    ApplicationRejected ApplicationStatus = "REJECTED"
)

// HostApplication is a user's request to be promoted to HOST
// (`host_applications`).  Only PENDING applications can be decided.
type HostApplication struct {
    ID         string            `json:"id"`
    UserID     string            `json:"userId"`
    Message    string            `json:"message"`
    Status     ApplicationStatus `json:"status"`
    ReviewedBy *string           `json:"reviewedBy,omitempty"`
    CreatedAt  time.Time         `json:"createdAt"`
    UpdatedAt  time.Time         `json:"updatedAt"`
}

// DashboardStats is the admin overview.
type DashboardStats struct {
    TotalUsers     int                 `json:"totalUsers"`
    TotalEvents    int                 `json:"totalEvents"`
    TotalRevenue   string              `json:"totalRevenue"`
    RecentUsers    []UserSummary       `json:"recentUsers"`
    EventsByStatus map[EventStatus]int `json:"eventsByStatus"`
}
