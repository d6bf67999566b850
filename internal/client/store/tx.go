package store

import (
	"context"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/dmitrijs2005/conops/internal/client/repositories/attendees"
	"github.com/dmitrijs2005/conops/internal/client/repositories/conventions"
	"github.com/dmitrijs2005/conops/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/conops/internal/dbx"
)

// Tx is the transactional view handed to Update callbacks.
type Tx struct {
	conventions conventions.Repository
	attendees   attendees.Repository
	metadata    metadata.Repository
	changed     Scope
}

func newTx(db dbx.DBTX) *Tx {
	return &Tx{
		conventions: conventions.NewSQLiteRepository(db),
		attendees:   attendees.NewSQLiteRepository(db),
		metadata:    metadata.NewSQLiteRepository(db),
	}
}

func (tx *Tx) mark(s Scope, err error) error {
	if err == nil {
		tx.changed |= s
	}
	return err
}

func (tx *Tx) Conventions(ctx context.Context) ([]models.Convention, error) {
	return tx.conventions.GetAll(ctx)
}

func (tx *Tx) Convention(ctx context.Context, id int64) (*models.Convention, error) {
	return tx.conventions.GetByID(ctx, id)
}

// UpsertConvention inserts c or replaces every field of the stored record
// with the same id.
func (tx *Tx) UpsertConvention(ctx context.Context, c *models.Convention) error {
	return tx.mark(ScopeConventions, wrap("upsert convention", tx.conventions.Upsert(ctx, c)))
}

// DeleteConvention deletes a convention and its attendees.
func (tx *Tx) DeleteConvention(ctx context.Context, id int64) error {
	return tx.mark(ScopeConventions|ScopeAttendees, wrap("delete convention", tx.conventions.DeleteByID(ctx, id)))
}

func (tx *Tx) Attendee(ctx context.Context, conventionID, id int64) (*models.Attendee, error) {
	return tx.attendees.GetByID(ctx, conventionID, id)
}

// UpsertAttendee merges a into conventionID's attendees. a.ConventionID is
// set to conventionID first, so records can only land in the convention the
// caller is syncing.
func (tx *Tx) UpsertAttendee(ctx context.Context, conventionID int64, a *models.Attendee) error {
	a.ConventionID = conventionID
	return tx.mark(ScopeAttendees, wrap("upsert attendee", tx.attendees.Upsert(ctx, a)))
}

// Wipe removes attendees, transactions and conventions and resets the
// watermark.
func (tx *Tx) Wipe(ctx context.Context) error {
	if err := tx.attendees.DeleteAll(ctx); err != nil {
		return wrap("wipe attendees", err)
	}
	if err := tx.conventions.DeleteAll(ctx); err != nil {
		return wrap("wipe conventions", err)
	}
	if err := tx.metadata.Delete(ctx, KeyLastSyncTime); err != nil {
		return wrap("reset watermark", err)
	}
	tx.changed |= ScopeConventions | ScopeAttendees | ScopeSyncState
	return nil
}

func (tx *Tx) LastSyncTime(ctx context.Context) (*time.Time, error) {
	return tx.metadata.GetTime(ctx, KeyLastSyncTime)
}

// AdvanceLastSyncTime moves the watermark to t. A stored watermark later
// than t is left untouched.
func (tx *Tx) AdvanceLastSyncTime(ctx context.Context, t time.Time) error {
	cur, err := tx.metadata.GetTime(ctx, KeyLastSyncTime)
	if err != nil {
		return wrap("read watermark", err)
	}
	if cur != nil && !t.After(*cur) {
		return nil
	}
	return tx.mark(ScopeSyncState, wrap("advance watermark", tx.metadata.SetTime(ctx, KeyLastSyncTime, t)))
}

// GetString reads a metadata value inside the transaction. The write
// helpers below mark ScopeSettings.
func (tx *Tx) GetString(ctx context.Context, key, def string) (string, error) {
	return tx.metadata.GetString(ctx, key, def)
}

func (tx *Tx) SetString(ctx context.Context, key, value string) error {
	return tx.mark(ScopeSettings, wrap("set "+key, tx.metadata.SetString(ctx, key, value)))
}

func (tx *Tx) DeleteKey(ctx context.Context, key string) error {
	return tx.mark(ScopeSettings, wrap("delete "+key, tx.metadata.Delete(ctx, key)))
}

func (tx *Tx) DeletePrefix(ctx context.Context, prefix string) error {
	return tx.mark(ScopeSettings, wrap("delete "+prefix+"*", tx.metadata.DeleteByPrefix(ctx, prefix)))
}

// ClearMetadata removes every metadata key, settings and token included.
func (tx *Tx) ClearMetadata(ctx context.Context) error {
	return tx.mark(ScopeSettings|ScopeSyncState, wrap("clear metadata", tx.metadata.Clear(ctx)))
}
