package metadata

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/migrations"
	"github.com/dmitrijs2005/conops/internal/dbx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := dbx.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(ctx, db))
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k1", []byte{0x01, 0x02}))

	v, err := r.Get(ctx, "k1")
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0x02}, v)
}

func TestGet_Absent_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_EmptyValueIsDistinctFromAbsent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetString(ctx, "settings.username", ""))

	v, err := r.Get(ctx, "settings.username")
	require.NoError(t, err)
	require.NotNil(t, v)

	s, err := r.GetString(ctx, "settings.username", "fallback")
	require.NoError(t, err)
	require.Equal(t, "", s)
}

func TestSet_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetString(ctx, "k", "old"))
	require.NoError(t, r.SetString(ctx, "k", "new"))

	s, err := r.GetString(ctx, "k", "")
	require.NoError(t, err)
	require.Equal(t, "new", s)
}

func TestGetString_Default(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	s, err := r.GetString(context.Background(), "settings.host", "127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1", s)
}

func TestTime_RoundTripInUTC(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	got, err := r.GetTime(ctx, "sync.last_sync_time")
	require.NoError(t, err)
	require.Nil(t, got)

	zone := time.FixedZone("X", 3*3600)
	want := time.Date(2026, 3, 15, 10, 0, 0, 250_000_000, zone)
	require.NoError(t, r.SetTime(ctx, "sync.last_sync_time", want))

	got, err = r.GetTime(ctx, "sync.last_sync_time")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got))
	assert.Equal(t, time.UTC, got.Location())
}

func TestGetTime_Invalid(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetString(ctx, "sync.last_sync_time", "yesterday"))
	_, err := r.GetTime(ctx, "sync.last_sync_time")
	require.ErrorContains(t, err, "invalid time in metadata[sync.last_sync_time]")
}

func TestList_ReturnsAllPairs(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{0xAA}))
	require.NoError(t, r.Set(ctx, "b", []byte{0xBB, 0xCC}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Equal(t, []byte{0xAA}, m["a"])
	assert.Equal(t, []byte{0xBB, 0xCC}, m["b"])
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "x", []byte{0x01}))
	require.NoError(t, r.Delete(ctx, "x"))

	v, err := r.Get(ctx, "x")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, r.Delete(ctx, "x"))
}

func TestDeleteByPrefix(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.SetString(ctx, "settings.host", "h"))
	require.NoError(t, r.SetString(ctx, "settings.port", "1"))
	require.NoError(t, r.SetString(ctx, "settings_x", "kept"))
	require.NoError(t, r.SetString(ctx, "sync.last_sync_time", "t"))

	require.NoError(t, r.DeleteByPrefix(ctx, "settings."))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Contains(t, m, "settings_x")
	assert.Contains(t, m, "sync.last_sync_time")
}

func TestClear_RemovesAllKeys(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))
	require.NoError(t, r.DeleteByPrefix(ctx, ""))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestRepository_DBErrorsWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Get(ctx, "k")
	require.ErrorContains(t, err, "failed to get metadata[k]")
	require.ErrorContains(t, r.Set(ctx, "k", []byte("v")), "failed to set metadata[k]")
	require.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete metadata[k]")
	require.ErrorContains(t, r.DeleteByPrefix(ctx, "p."), "failed to delete metadata[p.*]")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear metadata")
	_, err = r.List(ctx)
	require.ErrorContains(t, err, "failed to list metadata")
}
