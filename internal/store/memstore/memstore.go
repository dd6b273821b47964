// Package memstore is an in-memory store.Store.  It enforces the same
// unique keys as the MySQL schema and serialises transactions, which makes
// it a faithful stand-in for service and handler tests.
package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/eventmate-api/internal/model"
	"github.com/iliyamo/eventmate-api/internal/store"
)

type pair struct{ a, b string }

type tokenRow struct {
	userID  string
	exp     time.Time
	revoked bool
}

type state struct {
	users        map[string]model.User
	tokens       map[string]tokenRow
	types        map[string]model.EventType
	events       map[string]model.Event
	participants map[pair]model.Participant
	payments     map[string]model.Payment
	reviews      map[string]model.Review
	friends      map[pair]model.Friend
	saved        map[pair]model.SavedEvent
	apps         map[string]model.HostApplication
}

func newState() *state {
	return &state{
		users:        map[string]model.User{},
		tokens:       map[string]tokenRow{},
		types:        map[string]model.EventType{},
		events:       map[string]model.Event{},
		participants: map[pair]model.Participant{},
		payments:     map[string]model.Payment{},
		reviews:      map[string]model.Review{},
		friends:      map[pair]model.Friend{},
		saved:        map[pair]model.SavedEvent{},
		apps:         map[string]model.HostApplication{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		users:        cloneMap(s.users),
		tokens:       cloneMap(s.tokens),
		types:        cloneMap(s.types),
		events:       cloneMap(s.events),
		participants: cloneMap(s.participants),
		payments:     cloneMap(s.payments),
		reviews:      cloneMap(s.reviews),
		friends:      cloneMap(s.friends),
		saved:        cloneMap(s.saved),
		apps:         cloneMap(s.apps),
	}
}

// Store is the in-memory store.  The zero value is not usable; call New.
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	data  *state
	clock time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{data: newState(), clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// tick returns a strictly increasing timestamp so ordering by creation time
// is deterministic.  Callers must hold mu.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

// Repos implements store.Store.
func (s *Store) Repos() store.Repos {
	return store.Repos{
		Users:            users{s},
		Tokens:           tokens{s},
		EventTypes:       eventTypes{s},
		Events:           events{s},
		Participants:     participants{s},
		Payments:         payments{s},
		Reviews:          reviews{s},
		Friends:          friends{s},
		SavedEvents:      savedEvents{s},
		HostApplications: hostApps{s},
	}
}

// WithTx implements store.Store.  Transactions are serialised and a failed
// fn restores the snapshot taken on entry.
func (s *Store) WithTx(ctx context.Context, fn func(r store.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) lock() *state {
	s.mu.Lock()
	return s.data
}

func (s *Store) unlock() { s.mu.Unlock() }

func paginate[T any](items []T, p store.Page) []T {
	if p.Limit <= 0 {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// ---- users ----

type users struct{ s *Store }

func (r users) Create(ctx context.Context, u *model.User) error {
	d := r.s.lock()
	defer r.s.unlock()
	for _, x := range d.users {
		if x.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.s.tick()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Interests == nil {
		u.Interests = []string{}
	}
	d.users[u.ID] = *u
	return nil
}

func (r users) GetByID(ctx context.Context, id string) (model.User, error) {
	d := r.s.lock()
	defer r.s.unlock()
	u, ok := d.users[id]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return u, nil
}

func (r users) GetByEmail(ctx context.Context, email string) (model.User, error) {
	d := r.s.lock()
	defer r.s.unlock()
	for _, u := range d.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, store.ErrNotFound
}

func (r users) Update(ctx context.Context, u *model.User) error {
	d := r.s.lock()
	defer r.s.unlock()
	if _, ok := d.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	u.UpdatedAt = r.s.tick()
	d.users[u.ID] = *u
	return nil
}

func (r users) List(ctx context.Context, f store.UserFilter, p store.Page) ([]model.User, int, error) {
	d := r.s.lock()
	defer r.s.unlock()
	var out []model.User
	for _, u := range d.users {
		if f.Search != "" && !containsFold(u.Name, f.Search) && !containsFold(u.Email, f.Search) {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch p.SortBy {
		case "name":
			less = out[i].Name < out[j].Name
		case "email":
			less = out[i].Email < out[j].Email
		default:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if p.Desc() {
			return !less
		}
		return less
	})
	return paginate(out, p), len(out), nil
}

func (r users) Count(ctx context.Context) (int, error) {
	d := r.s.lock()
	defer r.s.unlock()
	return len(d.users), nil
}

func (r users) ExistsWithRole(ctx context.Context, role model.Role) (bool, error) {
	d := r.s.lock()
	defer r.s.unlock()
	for _, u := range d.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

// ---- tokens ----

type tokens struct{ s *Store }

func (r tokens) StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	d := r.s.lock()
	defer r.s.unlock()
	d.tokens[tokenHash] = tokenRow{userID: userID, exp: exp}
	return nil
}

func (r tokens) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	d := r.s.lock()
	defer r.s.unlock()
	t, ok := d.tokens[tokenHash]
	if !ok || t.revoked || time.Now().UTC().After(t.exp) {
		return "", store.ErrNotFound
	}
	return t.userID, nil
}

func (r tokens) RevokeByHash(ctx context.Context, tokenHash string) error {
	d := r.s.lock()
	defer r.s.unlock()
	if t, ok := d.tokens[tokenHash]; ok {
		t.revoked = true
		d.tokens[tokenHash] = t
	}
	return nil
}

func (r tokens) RevokeAllForUser(ctx context.Context, userID string) error {
	d := r.s.lock()
	defer r.s.unlock()
	for h, t := range d.tokens {
		if t.userID == userID {
			t.revoked = true
			d.tokens[h] = t
		}
	}
	return nil
}

// ---- event types ----

type eventTypes struct{ s *Store }

func (r eventTypes) Create(ctx context.Context, t *model.EventType) error {
	d := r.s.lock()
	defer r.s.unlock()
	for _, x := range d.types {
		if x.Name == t.Name {
			return store.ErrDuplicate
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := r.s.tick()
	t.CreatedAt, t.UpdatedAt = now, now
	d.types[t.ID] = *t
	return nil
}

func (r eventTypes) GetByID(ctx context.Context, id string) (model.EventType, error) {
	d := r.s.lock()
	defer r.s.unlock()
	t, ok := d.types[id]
	if !ok {
		return model.EventType{}, store.ErrNotFound
	}
	return t, nil
}

func (r eventTypes) List(ctx context.Context) ([]model.EventType, error) {
	d := r.s.lock()
	defer r.s.unlock()
	out := make([]model.EventType, 0, len(d.types))
	for _, t := range d.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r eventTypes) Rename(ctx context.Context, id, name string) error {
	d := r.s.lock()
	defer r.s.unlock()
	t, ok := d.types[id]
	if !ok {
		return store.ErrNotFound
	}
	for _, x := range d.types {
		if x.ID != id && x.Name == name {
			return store.ErrDuplicate
		}
	}
	t.Name = name
	t.UpdatedAt = r.s.tick()
	d.types[id] = t
	return nil
}

func (r eventTypes) Delete(ctx context.Context, id string) error {
	d := r.s.lock()
	defer r.s.unlock()
	if _, ok := d.types[id]; !ok {
		return store.ErrNotFound
	}
	delete(d.types, id)
	return nil
}

// ---- events ----

type events struct{ s *Store }

func occupancy(d *state, eventID string) int {
	n := 0
	for k := range d.participants {
		if k.a == eventID {
			n++
		}
	}
	return n
}

func (r events) Create(ctx context.Context, e *model.Event) error {
	d := r.s.lock()
	defer r.s.unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := r.s.tick()
	e.CreatedAt, e.UpdatedAt = now, now
	d.events[e.ID] = *e
	return nil
}

func (r events) GetByID(ctx context.Context, id string) (model.Event, error) {
	d := r.s.lock()
	defer r.s.unlock()
	e, ok := d.events[id]
	if !ok {
		return model.Event{}, store.ErrNotFound
	}
	e.ParticipantCount = occupancy(d, id)
	return e, nil
}

func (r events) GetForUpdate(ctx context.Context, id string) (model.Event, error) {
	return r.GetByID(ctx, id)
}

func (r events) List(ctx context.Context, f store.EventFilter, p store.Page) ([]model.Event, int, error) {
	d := r.s.lock()
	defer r.s.unlock()
	related := map[string]bool{}
	for _, id := range f.RelatedTo {
		related[id] = true
	}
	var out []model.Event
	for _, e := range d.events {
		if f.Search != "" && !containsFold(e.Name, f.Search) && !containsFold(e.Description, f.Search) {
			continue
		}
		if f.TypeID != "" && e.TypeID != f.TypeID {
			continue
		}
		if f.Location != "" && !containsFold(e.Location, f.Location) {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.CreatedBy != "" && e.CreatedBy != f.CreatedBy {
			continue
		}
		if f.ParticipantID != "" {
			if _, ok := d.participants[pair{e.ID, f.ParticipantID}]; !ok {
				continue
			}
		}
		if f.RelatedTo != nil {
			match := related[e.CreatedBy]
			for k := range d.participants {
				if k.a == e.ID && related[k.b] {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		e.ParticipantCount = occupancy(d, e.ID)
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		var less bool
		switch p.SortBy {
		case "name":
			less = out[i].Name < out[j].Name
		case "dateTime":
			less = out[i].DateTime.Before(out[j].DateTime)
		case "joiningFee":
			less = out[i].JoiningFee.LessThan(out[j].JoiningFee)
		default:
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if p.Desc() {
			return !less
		}
		return less
	})
	return paginate(out, p), len(out), nil
}

func (r events) Update(ctx context.Context, e *model.Event) error {
	d := r.s.lock()
	defer r.s.unlock()
	if _, ok := d.events[e.ID]; !ok {
		return store.ErrNotFound
	}
	e.UpdatedAt = r.s.tick()
	d.events[e.ID] = *e
	return nil
}

func (r events) UpdateStatus(ctx context.Context, id string, status model.EventStatus) error {
	d := r.s.lock()
	defer r.s.unlock()
	e, ok := d.events[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = r.s.tick()
	d.events[id] = e
	return nil
}

func (r events) Delete(ctx context.Context, id string) error {
	d := r.s.lock()
	defer r.s.unlock()
	if _, ok := d.events[id]; !ok {
		return store.ErrNotFound
	}
	delete(d.events, id)
	for k := range d.participants {
		if k.a == id {
			delete(d.participants, k)
		}
	}
	for k := range d.saved {
		if k.a == id {
			delete(d.saved, k)
		}
	}
	for rid, rv := range d.reviews {
		if rv.EventID == id {
			delete(d.reviews, rid)
		}
	}
	for pid, pm := range d.payments {
		if pm.EventID == id {
			delete(d.payments, pid)
		}
	}
	return nil
}

func (r events) CountByType(ctx context.Context, typeID string) (int, error) {
	d := r.s.lock()
	defer r.s.unlock()
	n := 0
	for _, e := range d.events {
		if e.TypeID == typeID {
			n++
		}
	}
	return n, nil
}

func (r events) CountByStatus(ctx context.Context) (map[model.EventStatus]int, error) {
	d := r.s.lock()
	defer r.s.unlock()
	out := map[model.EventStatus]int{}
	for _, e := range d.events {
		out[e.Status]++
	}
	return out, nil
}

// ---- participants ----

type participants struct{ s *Store }

func (r participants) Create(ctx context.Context, p model.Participant) error {
	d := r.s.lock()
	defer r.s.unlock()
	k := pair{p.EventID, p.UserID}
	if _, ok := d.participants[k]; ok {
		return store.ErrDuplicate
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = r.s.tick()
	}
	d.participants[k] = p
	return nil
}

func (r participants) Get(ctx context.Context, eventID, userID string) (model.Participant, error) {
	d := r.s.lock()
	defer r.s.unlock()
	p, ok := d.participants[pair{eventID, userID}]
	if !ok {
		return model.Participant{}, store.ErrNotFound
	}
	return p, nil
}

func (r participants) Delete(ctx context.Context, eventID, userID string) error {
	d := r.s.lock()
	defer r.s.unlock()
	k := pair{eventID, userID}
	if _, ok := d.participants[k]; !ok {
		return store.ErrNotFound
	}
	delete(d.participants, k)
	return nil
}

func (r participants) Count(ctx context.Context, eventID string) (int, error) {
	d := r.s.lock()
	defer r.s.unlock()
	return occupancy(d, eventID), nil
}

func (r participants) ListByEvent(ctx context.Context, eventID string) ([]model.ParticipantDetail, error) {
	d := r.s.lock()
	defer r.s.unlock()
	out := []model.ParticipantDetail{}
	for k, p := range d.participants {
		if k.a != eventID {
			continue
		}
		out = append(out, model.ParticipantDetail{Participant: p, User: d.users[p.UserID].Summary()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

// ---- payments ----

type payments struct{ s *Store }

func (r payments) Create(ctx context.Context, p *model.Payment) error {
	d := r.s.lock()
	defer r.s.unlock()
	for _, x := range d.payments {
		if x.SessionID == p.SessionID {
			return store.ErrDuplicate
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := r.s.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	d.payments[p.ID] = *p
	return nil
}

func (r payments) GetBySessionID(ctx context.Context, sessionID string) (model.Payment, error) {
	d := r.s.lock()
	defer r.s.unlock()
	for _, p := range d.payments {
		if p.SessionID == sessionID {
			return p, nil
		}
	}
	return model.Payment{}, store.ErrNotFound
}

func (r payments) GetBySessionIDForUpdate(ctx context.Context, sessionID string) (model.Payment, error) {
	return r.GetBySessionID(ctx, sessionID)
}

func (r payments) Find(ctx context.Context, eventID, userID string, status model.PaymentStatus) (model.Payment, error) {
	d := r.s.lock()
	defer r.s.unlock()
	var (
		out   model.Payment
		found bool
	)
	for _, p := range d.payments {
		if p.EventID == eventID && p.UserID == userID && p.Status == status {
			if !found || p.CreatedAt.After(out.CreatedAt) {
				out, found = p, true
			}
		}
	}
	if !found {
		return model.Payment{}, store.ErrNotFound
	}
	return out, nil
}

func (r payments) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus, gatewayData json.RawMessage) error {
	d := r.s.lock()
	defer r.s.unlock()
	p, ok := d.payments[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Status = status
	if gatewayData != nil {
		p.GatewayData = gatewayData
	}
	p.UpdatedAt = r.s.tick()
	d.payments[id] = p
	return nil
}

func (r payments) ListByUser(ctx context.Context, userID string) ([]model.PaymentDetail, error) {
	d := r.s.lock()
	defer r.s.unlock()
	out := []model.PaymentDetail{}
	for _, p := range d.payments {
		if p.UserID == userID {
			out = append(out, model.PaymentDetail{Payment: p, Event: d.events[p.EventID].Summary()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r payments) SumPaid(ctx context.Context) (decimal.Decimal, error) {
	d := r.s.lock()
	defer r.s.unlock()
	sum := decimal.Zero
	for _, p := range d.payments {
		if p.Status == model.PaymentPaid {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

// ---- reviews ----

type reviews struct{ s *Store }

func (r reviews) Create(ctx context.Context, rv *model.Review) error {
	d := r.s.lock()
	defer r.s.unlock()
	for _, x := range d.reviews {
		if x.EventID == rv.EventID && x.ReviewerID == rv.ReviewerID {
			return store.ErrDuplicate
		}
	}
	if rv.ID == "" {
		rv.ID = uuid.NewString()
	}
	now := r.s.tick()
	rv.CreatedAt, rv.UpdatedAt = now, now
	d.reviews[rv.ID] = *rv
	return nil
}

func (r reviews) GetByID(ctx context.Context, id string) (model.Review, error) {
	d := r.s.lock()
	defer r.s.unlock()
	rv, ok := d.reviews[id]
	if !ok {
		return model.Review{}, store.ErrNotFound
	}
	return rv, nil
}

func (r reviews) Get(ctx context.Context, eventID, reviewerID string) (model.Review, error) {
	d := r.s.lock()
	defer r.s.unlock()
	for _, rv := range d.reviews {
		if rv.EventID == eventID && rv.ReviewerID == reviewerID {
			return rv, nil
		}
	}
	return model.Review{}, store.ErrNotFound
}

func (r reviews) Update(ctx context.Context, rv *model.Review) error {
	d := r.s.lock()
	defer r.s.unlock()
	if _, ok := d.reviews[rv.ID]; !ok {
		return store.ErrNotFound
	}
	rv.UpdatedAt = r.s.tick()
	d.reviews[rv.ID] = *rv
	return nil
}

func (r reviews) Delete(ctx context.Context, id string) error {
	d := r.s.lock()
	defer r.s.unlock()
	if _, ok := d.reviews[id]; !ok {
		return store.ErrNotFound
	}
	delete(d.reviews, id)
	return nil
}

func (r reviews) List(ctx context.Context, f store.ReviewFilter) ([]model.ReviewDetail, error) {
	d := r.s.lock()
	defer r.s.unlock()
	out := []model.ReviewDetail{}
	for _, rv := range d.reviews {
		if f.EventID != "" && rv.EventID != f.EventID {
			continue
		}
		if f.HostID != "" && rv.HostID != f.HostID {
			continue
		}
		out = append(out, model.ReviewDetail{
			Review:   rv,
			Reviewer: d.users[rv.ReviewerID].Summary(),
			Event:    d.events[rv.EventID].Summary(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r reviews) HostAggregate(ctx context.Context, hostID string) (float64, int, error) {
	d := r.s.lock()
	defer r.s.unlock()
	sum, n := 0, 0
	for _, rv := range d.reviews {
		if rv.HostID == hostID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(n), n, nil
}

// ---- friends ----

type friends struct{ s *Store }

func (r friends) Create(ctx context.Context, f model.Friend) error {
	d := r.s.lock()
	defer r.s.unlock()
	k := pair{f.UserID, f.FriendID}
	if _, ok := d.friends[k]; ok {
		return store.ErrDuplicate
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = r.s.tick()
	}
	d.friends[k] = f
	return nil
}

func (r friends) Get(ctx context.Context, userID, friendID string) (model.Friend, error) {
	d := r.s.lock()
	defer r.s.unlock()
	f, ok := d.friends[pair{userID, friendID}]
	if !ok {
		return model.Friend{}, store.ErrNotFound
	}
	return f, nil
}

func (r friends) UpdateStatus(ctx context.Context, userID, friendID string, status model.FriendStatus) error {
	d := r.s.lock()
	defer r.s.unlock()
	k := pair{userID, friendID}
	f, ok := d.friends[k]
	if !ok {
		return store.ErrNotFound
	}
	f.Status = status
	d.friends[k] = f
	return nil
}

func (r friends) DeleteBetween(ctx context.Context, a, b string) error {
	d := r.s.lock()
	defer r.s.unlock()
	delete(d.friends, pair{a, b})
	delete(d.friends, pair{b, a})
	return nil
}

func (r friends) list(match func(model.Friend) bool) []model.Friend {
	d := r.s.lock()
	defer r.s.unlock()
	out := []model.Friend{}
	for _, f := range d.friends {
		if match(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r friends) ListFrom(ctx context.Context, userID string, status model.FriendStatus) ([]model.Friend, error) {
	return r.list(func(f model.Friend) bool { return f.UserID == userID && f.Status == status }), nil
}

func (r friends) ListTo(ctx context.Context, friendID string, status model.FriendStatus) ([]model.Friend, error) {
	return r.list(func(f model.Friend) bool { return f.FriendID == friendID && f.Status == status }), nil
}

// ---- saved events ----

type savedEvents struct{ s *Store }

func (r savedEvents) Create(ctx context.Context, sv model.SavedEvent) error {
	d := r.s.lock()
	defer r.s.unlock()
	k := pair{sv.EventID, sv.UserID}
	if _, ok := d.saved[k]; ok {
		return store.ErrDuplicate
	}
	if sv.CreatedAt.IsZero() {
		sv.CreatedAt = r.s.tick()
	}
	d.saved[k] = sv
	return nil
}

func (r savedEvents) Delete(ctx context.Context, eventID, userID string) error {
	d := r.s.lock()
	defer r.s.unlock()
	k := pair{eventID, userID}
	if _, ok := d.saved[k]; !ok {
		return store.ErrNotFound
	}
	delete(d.saved, k)
	return nil
}

func (r savedEvents) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	d := r.s.lock()
	defer r.s.unlock()
	_, ok := d.saved[pair{eventID, userID}]
	return ok, nil
}

func (r savedEvents) ListByUser(ctx context.Context, userID string) ([]model.SavedEvent, error) {
	d := r.s.lock()
	defer r.s.unlock()
	out := []model.SavedEvent{}
	for k, sv := range d.saved {
		if k.b == userID {
			sv.Event = d.events[sv.EventID].Summary()
			out = append(out, sv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---- host applications ----

type hostApps struct{ s *Store }

func (r hostApps) Create(ctx context.Context, a *model.HostApplication) error {
	d := r.s.lock()
	defer r.s.unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := r.s.tick()
	a.CreatedAt, a.UpdatedAt = now, now
	d.apps[a.ID] = *a
	return nil
}

func (r hostApps) GetForUpdate(ctx context.Context, id string) (model.HostApplication, error) {
	d := r.s.lock()
	defer r.s.unlock()
	a, ok := d.apps[id]
	if !ok {
		return model.HostApplication{}, store.ErrNotFound
	}
	return a, nil
}

func (r hostApps) FindPendingByUser(ctx context.Context, userID string) (model.HostApplication, error) {
	d := r.s.lock()
	defer r.s.unlock()
	for _, a := range d.apps {
		if a.UserID == userID && a.Status == model.ApplicationPending {
			return a, nil
		}
	}
	return model.HostApplication{}, store.ErrNotFound
}

func (r hostApps) list(match func(model.HostApplication) bool) []model.HostApplication {
	d := r.s.lock()
	defer r.s.unlock()
	out := []model.HostApplication{}
	for _, a := range d.apps {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r hostApps) List(ctx context.Context, status model.ApplicationStatus) ([]model.HostApplication, error) {
	return r.list(func(a model.HostApplication) bool { return status == "" || a.Status == status }), nil
}

func (r hostApps) ListByUser(ctx context.Context, userID string) ([]model.HostApplication, error) {
	return r.list(func(a model.HostApplication) bool { return a.UserID == userID }), nil
}

func (r hostApps) Decide(ctx context.Context, id string, status model.ApplicationStatus, reviewedBy string) error {
	d := r.s.lock()
	defer r.s.unlock()
	a, ok := d.apps[id]
	if !ok {
		return store.ErrNotFound
	}
	a.Status = status
	a.ReviewedBy = &reviewedBy
	a.UpdatedAt = r.s.tick()
	d.apps[id] = a
	return nil
}
