// Package store is the local persisted cache of conventions, attendees and
// the sync watermark.
//
// All writes go through Update, which runs the callback inside one SQLite
// transaction and publishes a Change to subscribers after a successful
// commit. The underlying pool holds a single connection, so callers must use
// only the *Tx handed to the callback while it runs; calling back into the
// Store's read methods from inside Update would wait for the connection the
// transaction already holds.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/migrations"
	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/dmitrijs2005/conops/internal/client/repositories/attendees"
	"github.com/dmitrijs2005/conops/internal/client/repositories/conventions"
	"github.com/dmitrijs2005/conops/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/conops/internal/dbx"
	"github.com/dmitrijs2005/conops/internal/logging"
)

// KeyLastSyncTime is the metadata key holding SyncState.LastSyncTime.
const KeyLastSyncTime = "sync.last_sync_time"

const subscriberBuffer = 16

// Store owns the cache database.
type Store struct {
	db     *sql.DB
	logger logging.Logger

	mu     sync.Mutex
	subs   map[int]chan Change
	nextID int
}

// Open opens (creating if needed) the cache at dsn and migrates it to the
// latest schema.
func Open(ctx context.Context, dsn string, logger logging.Logger) (*Store, error) {
	db, err := dbx.OpenSQLite(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{db: db, logger: logger.With("component", "store"), subs: map[int]chan Change{}}, nil
}

// Close closes every subscription channel and the database.
func (s *Store) Close() error {
	s.mu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()
	return s.db.Close()
}

// Update runs fn in a single transaction. Either every change fn makes is
// committed or none is.
func (s *Store) Update(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	var tx *Tx
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, dbtx dbx.DBTX) error {
		tx = newTx(dbtx)
		return fn(ctx, tx)
	})
	if err != nil {
		return err
	}
	if tx.changed != 0 {
		s.publish(Change{Scope: tx.changed, At: time.Now()})
	}
	return nil
}

func (s *Store) Conventions(ctx context.Context) ([]models.Convention, error) {
	return conventions.NewSQLiteRepository(s.db).GetAll(ctx)
}

func (s *Store) ConventionCount(ctx context.Context) (int, error) {
	return conventions.NewSQLiteRepository(s.db).Count(ctx)
}

func (s *Store) Convention(ctx context.Context, id int64) (*models.Convention, error) {
	return conventions.NewSQLiteRepository(s.db).GetByID(ctx, id)
}

func (s *Store) ConventionByShortName(ctx context.Context, shortName string) (*models.Convention, error) {
	return conventions.NewSQLiteRepository(s.db).GetByShortName(ctx, shortName)
}

func (s *Store) Attendees(ctx context.Context, conventionID int64) ([]models.Attendee, error) {
	return attendees.NewSQLiteRepository(s.db).GetByConvention(ctx, conventionID)
}

func (s *Store) Attendee(ctx context.Context, conventionID, id int64) (*models.Attendee, error) {
	return attendees.NewSQLiteRepository(s.db).GetByID(ctx, conventionID, id)
}

func (s *Store) AttendeeByBadge(ctx context.Context, conventionID int64, badge string) (*models.Attendee, error) {
	return attendees.NewSQLiteRepository(s.db).GetByBadgeNumber(ctx, conventionID, badge)
}

func (s *Store) LastSyncTime(ctx context.Context) (*time.Time, error) {
	return metadata.NewSQLiteRepository(s.db).GetTime(ctx, KeyLastSyncTime)
}

// Metadata gives read access to raw metadata outside a transaction. Writes
// belong in Update so subscribers are notified.
func (s *Store) Metadata() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

// Wipe removes all cached conventions, attendees and transactions and resets
// the watermark to nil. Settings are kept.
func (s *Store) Wipe(ctx context.Context) error {
	return s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		return tx.Wipe(ctx)
	})
}

// ClearAll wipes the cache and every stored setting, including the token.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		if err := tx.Wipe(ctx); err != nil {
			return err
		}
		return tx.ClearMetadata(ctx)
	})
}

// AdvanceLastSyncTime stores t as the watermark unless the stored one is
// already later.
func (s *Store) AdvanceLastSyncTime(ctx context.Context, t time.Time) error {
	return s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		return tx.AdvanceLastSyncTime(ctx, t)
	})
}

// IsNotFound reports whether err is a missing convention or attendee.
func IsNotFound(err error) bool {
	return errors.Is(err, conventions.ErrNotFound) || errors.Is(err, attendees.ErrNotFound)
}

func (s *Store) publish(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- c:
		default:
			s.logger.Debug(context.Background(), "subscriber lagging, change dropped",
				"subscriber", id, "scope", c.Scope.String())
		}
	}
}

// Subscribe registers for Change notifications. The returned func
// unsubscribes and closes the channel; it is safe to call more than once.
// Slow subscribers miss notifications rather than block writers.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Change, subscriberBuffer)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
