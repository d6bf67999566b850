package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/dmitrijs2005/conops/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	err := s.Update(context.Background(), func(ctx context.Context, tx *Tx) error {
		for _, c := range []models.Convention{
			{ID: 1, ShortName: "A2025"},
			{ID: 2, ShortName: "A2026", Active: true},
		} {
			if err := tx.UpsertConvention(ctx, &c); err != nil {
				return err
			}
		}
		if err := tx.UpsertAttendee(ctx, 1, &models.Attendee{ID: 10, FirstName: "old"}); err != nil {
			return err
		}
		return tx.UpsertAttendee(ctx, 2, &models.Attendee{ID: 10, FirstName: "new"})
	})
	require.NoError(t, err)
}

func TestOpen_FileCreatesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache", "conops.db")

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	all, err := s.Conventions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdate_CommitsAndReads(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seed(t, s)

	all, err := s.Conventions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	c, err := s.ConventionByShortName(ctx, "a2026")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.ID)

	a, err := s.Attendee(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "old", a.FirstName)

	list, err := s.Attendees(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].FirstName)
	assert.Equal(t, int64(2), list[0].ConventionID)
}

func TestUpdate_RollsBackEverythingOnError(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		if err := tx.UpsertConvention(ctx, &models.Convention{ID: 1, ShortName: "A"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := s.Conventions(ctx)
	require.NoError(t, err)
	assert.Empty(t, n)
}

func TestUpdate_DuplicateShortNameFailsWholeSave(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	err := s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		if err := tx.UpsertConvention(ctx, &models.Convention{ID: 1, ShortName: "DUP"}); err != nil {
			return err
		}
		return tx.UpsertConvention(ctx, &models.Convention{ID: 2, ShortName: "DUP"})
	})
	require.ErrorContains(t, err, "upsert convention")

	all, err := s.Conventions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpsertAttendee_ForcesConventionScope(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seed(t, s)

	err := s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		return tx.UpsertAttendee(ctx, 2, &models.Attendee{ID: 10, ConventionID: 1, FirstName: "newer"})
	})
	require.NoError(t, err)

	a, err := s.Attendee(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "old", a.FirstName)

	b, err := s.Attendee(ctx, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, "newer", b.FirstName)
}

func TestDeleteConvention_Cascades(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seed(t, s)

	require.NoError(t, s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		return tx.DeleteConvention(ctx, 1)
	}))

	_, err := s.Convention(ctx, 1)
	assert.True(t, IsNotFound(err))
	_, err = s.Attendee(ctx, 1, 10)
	assert.True(t, IsNotFound(err))

	_, err = s.Attendee(ctx, 2, 10)
	require.NoError(t, err)
}

func TestAdvanceLastSyncTime_Monotonic(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	got, err := s.LastSyncTime(ctx)
	require.NoError(t, err)
	require.Nil(t, got)

	t1 := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.AdvanceLastSyncTime(ctx, t1))
	require.NoError(t, s.AdvanceLastSyncTime(ctx, t1.Add(-time.Hour)))

	got, err = s.LastSyncTime(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, t1.Equal(*got))

	t2 := t1.Add(time.Minute)
	require.NoError(t, s.AdvanceLastSyncTime(ctx, t2))
	got, err = s.LastSyncTime(ctx)
	require.NoError(t, err)
	assert.True(t, t2.Equal(*got))
}

func TestWipe_KeepsSettings(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seed(t, s)
	require.NoError(t, s.AdvanceLastSyncTime(ctx, time.Now()))
	require.NoError(t, s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		return tx.SetString(ctx, "settings.host", "reg.example.org")
	}))

	require.NoError(t, s.Wipe(ctx))

	all, err := s.Conventions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	list, err := s.Attendees(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)
	wm, err := s.LastSyncTime(ctx)
	require.NoError(t, err)
	assert.Nil(t, wm)

	host, err := s.Metadata().GetString(ctx, "settings.host", "")
	require.NoError(t, err)
	assert.Equal(t, "reg.example.org", host)
}

func TestClearAll_RemovesSettings(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	seed(t, s)
	require.NoError(t, s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		return tx.SetString(ctx, "auth.token", "jwt")
	}))

	require.NoError(t, s.ClearAll(ctx))

	m, err := s.Metadata().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
	all, err := s.Conventions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubscribe_ReceivesCommittedChanges(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	seed(t, s)
	select {
	case c := <-ch:
		assert.True(t, c.Scope.Has(ScopeConventions))
		assert.True(t, c.Scope.Has(ScopeAttendees))
		assert.False(t, c.Scope.Has(ScopeSettings))
	case <-time.After(time.Second):
		t.Fatal("no change published")
	}

	// Rolled back and no-op updates publish nothing.
	_ = s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		_ = tx.UpsertConvention(ctx, &models.Convention{ID: 9, ShortName: "X"})
		return errors.New("rollback")
	})
	require.NoError(t, s.Update(ctx, func(ctx context.Context, tx *Tx) error {
		_, err := tx.Conventions(ctx)
		return err
	}))
	select {
	case c := <-ch:
		t.Fatalf("unexpected change %s", c.Scope)
	default:
	}

	unsubscribe()
	_, open := <-ch
	assert.False(t, open)
	unsubscribe()
}

func TestSubscribe_SlowSubscriberDoesNotBlock(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	_, unsubscribe := s.Subscribe()
	defer unsubscribe()

	for i := 0; i < subscriberBuffer*2; i++ {
		require.NoError(t, s.Update(ctx, func(ctx context.Context, tx *Tx) error {
			return tx.SetString(ctx, "settings.k", "v")
		}))
	}
}

func TestScope_String(t *testing.T) {
	assert.Equal(t, "none", Scope(0).String())
	assert.Equal(t, "conventions,sync_state", (ScopeConventions | ScopeSyncState).String())
}
