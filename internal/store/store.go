// Package store defines the persistence port used by the service layer.
// The MySQL adapter lives in internal/repository and an in-memory adapter
// for tests lives in store/memstore.  Both enforce the same unique keys, so
// ErrDuplicate is the final race guard behind every check-then-insert.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/eventmate-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when an insert violates a unique key.
	ErrDuplicate = errors.New("store: duplicate key")
)

// Page describes offset pagination and ordering.  SortBy must already be
// allow-listed by the caller.
type Page struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// Desc reports whether results are ordered descending.
func (p Page) Desc() bool { return p.SortOrder != "asc" }

// EventFilter narrows event listings.  Empty fields are ignored.
type EventFilter struct {
	Search        string
	TypeID        string
	Location      string
	Status        model.EventStatus
	CreatedBy     string
	ParticipantID string
	// RelatedTo matches events created by, or joined by, any of these users.
	RelatedTo []string
}

// UserFilter narrows user listings.
type UserFilter struct {
	Search string
	Role   model.Role
}

// ReviewFilter narrows review listings.
type ReviewFilter struct {
	EventID string
	HostID  string
}

type Users interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Update(ctx context.Context, u *model.User) error
	List(ctx context.Context, f UserFilter, p Page) ([]model.User, int, error)
	Count(ctx context.Context) (int, error)
	ExistsWithRole(ctx context.Context, role model.Role) (bool, error)
}

type Tokens interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type EventTypes interface {
	Create(ctx context.Context, t *model.EventType) error
	GetByID(ctx context.Context, id string) (model.EventType, error)
	List(ctx context.Context) ([]model.EventType, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

type Events interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (model.Event, error)
	// GetForUpdate reads the event and, inside a transaction, locks its row
	// until commit.
	GetForUpdate(ctx context.Context, id string) (model.Event, error)
	List(ctx context.Context, f EventFilter, p Page) ([]model.Event, int, error)
	Update(ctx context.Context, e *model.Event) error
	UpdateStatus(ctx context.Context, id string, status model.EventStatus) error
	Delete(ctx context.Context, id string) error
	CountByType(ctx context.Context, typeID string) (int, error)
	CountByStatus(ctx context.Context) (map[model.EventStatus]int, error)
}

type Participants interface {
	Create(ctx context.Context, p model.Participant) error
	Get(ctx context.Context, eventID, userID string) (model.Participant, error)
	Delete(ctx context.Context, eventID, userID string) error
	Count(ctx context.Context, eventID string) (int, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.ParticipantDetail, error)
}

type Payments interface {
	Create(ctx context.Context, p *model.Payment) error
	GetBySessionID(ctx context.Context, sessionID string) (model.Payment, error)
	// GetBySessionIDForUpdate locks the payment row inside a transaction.
	GetBySessionIDForUpdate(ctx context.Context, sessionID string) (model.Payment, error)
	// Find returns the newest payment of userID for eventID in status.
	Find(ctx context.Context, eventID, userID string, status model.PaymentStatus) (model.Payment, error)
	UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, gatewayData json.RawMessage) error
	ListByUser(ctx context.Context, userID string) ([]model.PaymentDetail, error)
	SumPaid(ctx context.Context) (decimal.Decimal, error)
}

type Reviews interface {
	Create(ctx context.Context, r *model.Review) error
	GetByID(ctx context.Context, id string) (model.Review, error)
	Get(ctx context.Context, eventID, reviewerID string) (model.Review, error)
	Update(ctx context.Context, r *model.Review) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ReviewFilter) ([]model.ReviewDetail, error)
	HostAggregate(ctx context.Context, hostID string) (avg float64, count int, err error)
}

type Friends interface {
	Create(ctx context.Context, f model.Friend) error
	Get(ctx context.Context, userID, friendID string) (model.Friend, error)
	UpdateStatus(ctx context.Context, userID, friendID string, status model.FriendStatus) error
	// DeleteBetween removes rows in both directions.
	DeleteBetween(ctx context.Context, a, b string) error
	ListFrom(ctx context.Context, userID string, status model.FriendStatus) ([]model.Friend, error)
	ListTo(ctx context.Context, friendID string, status model.FriendStatus) ([]model.Friend, error)
}

type SavedEvents interface {
	Create(ctx context.Context, s model.SavedEvent) error
	Delete(ctx context.Context, eventID, userID string) error
	Exists(ctx context.Context, eventID, userID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.SavedEvent, error)
}

type HostApplications interface {
	Create(ctx context.Context, a *model.HostApplication) error
	GetForUpdate(ctx context.Context, id string) (model.HostApplication, error)
	FindPendingByUser(ctx context.Context, userID string) (model.HostApplication, error)
	List(ctx context.Context, status model.ApplicationStatus) ([]model.HostApplication, error)
	ListByUser(ctx context.Context, userID string) ([]model.HostApplication, error)
	Decide(ctx context.Context, id string, status model.ApplicationStatus, reviewedBy string) error
}

// Repos bundles the per-entity repositories bound to one connection or
// transaction.
type Repos struct {
	Users            Users
	Tokens           Tokens
	EventTypes       EventTypes
	Events           Events
	Participants     Participants
	Payments         Payments
	Reviews          Reviews
	Friends          Friends
	SavedEvents      SavedEvents
	HostApplications HostApplications
}

// Store is the persistence port.  WithTx runs fn atomically: it commits when
// fn returns nil and rolls back otherwise.
type Store interface {
	Repos() Repos
	WithTx(ctx context.Context, fn func(r Repos) error) error
}
