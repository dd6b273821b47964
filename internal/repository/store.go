package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/eventmate-api/internal/store"
)

// Store implements store.Store over a MySQL connection pool.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the pool for health checks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Repos() store.Repos { return repos(s.db, false) }

// WithTx begins a transaction, hands fn repositories bound to it and
// commits when fn returns nil.  Row locks taken through GetForUpdate are
// held until then.
func (s *Store) WithTx(ctx context.Context, fn func(r store.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(repos(tx, true)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func repos(q dbtx, inTx bool) store.Repos {
	return store.Repos{
		Users:            &UserRepo{q: q},
		Tokens:           &TokenRepo{q: q},
		EventTypes:       &EventTypeRepo{q: q},
		Events:           &EventRepo{q: q, lock: inTx},
		Participants:     &ParticipantRepo{q: q},
		Payments:         &PaymentRepo{q: q, lock: inTx},
		Reviews:          &ReviewRepo{q: q},
		Friends:          &FriendRepo{q: q},
		SavedEvents:      &SavedEventRepo{q: q},
		HostApplications: &HostApplicationRepo{q: q, lock: inTx},
	}
}
