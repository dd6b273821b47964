package model

import "time"

// Role is the authorization role carried by every user and embedded in
// access tokens.
type Role string

const (
    RoleUser  Role = "USER"
    RoleHost  Role = "HOST"
    RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
    switch r {
    case RoleUser, RoleHost, RoleAdmin:
        return true
    }
    return false
}

// User represents an application user record as stored in the `users`
// table.  The password hash never leaves the server.
//
// Fields:
//  ID           – UUID primary key.
//  Name         – display name.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hash of the password.
//  Role         – USER, HOST or ADMIN.
//  Bio          – optional free-text profile blurb.
//  Interests    – list of interest tags (stored as JSON).
//  Location     – optional city / region.
//  Image        – optional profile image URL.
type User struct {
    ID           string    `json:"id"`
    Name         string    `json:"name"`
    Email        string    `json:"email"`
    PasswordHash string    `json:"-"`
    Role         Role      `json:"role"`
    Bio          *string   `json:"bio,omitempty"`
    Interests    []string  `json:"interests"`
    Location     *string   `json:"location,omitempty"`
    Image        *string   `json:"image,omitempty"`
    CreatedAt    time.Time `json:"createdAt"`
    UpdatedAt    time.Time `json:"updatedAt"`
}

// Summary returns the minimal public projection of the user.
func (u User) Summary() UserSummary {
    return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image}
}

// UserSummary is the minimal user projection embedded in other responses.
type UserSummary struct {
    ID    string  `json:"id"`
    Name  string  `json:"name"`
    Email string  `json:"email,omitempty"`
    Image *string `json:"image,omitempty"`
}

// Identity is the authenticated caller established by the JWT middleware.
type Identity struct {
    ID    string `json:"id"`
    Email string `json:"email"`
    Role  Role   `json:"role"`
}

// IsAdmin reports whether the caller has the ADMIN role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
