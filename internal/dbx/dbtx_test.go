package dbx

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openCache(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE conventions (id INTEGER PRIMARY KEY, short_name TEXT NOT NULL UNIQUE)`)
	require.NoError(t, err)
	return db
}

func conventionCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM conventions`).Scan(&n))
	return n
}

func TestWithTx(t *testing.T) {
	errBoom := errors.New("boom")
	tests := []struct {
		name    string
		fn      func(ctx context.Context, tx DBTX) error
		wantErr string
		want    int
	}{
		{
			name: "commits every statement",
			fn: func(ctx context.Context, tx DBTX) error {
				if _, err := tx.ExecContext(ctx, `INSERT INTO conventions VALUES (1, 'ACME2025')`); err != nil {
					return err
				}
				_, err := tx.ExecContext(ctx, `INSERT INTO conventions VALUES (2, 'ACME2026')`)
				return err
			},
			want: 2,
		},
		{
			name: "rolls back when fn fails",
			fn: func(ctx context.Context, tx DBTX) error {
				if _, err := tx.ExecContext(ctx, `INSERT INTO conventions VALUES (1, 'ACME2025')`); err != nil {
					return err
				}
				return errBoom
			},
			wantErr: "boom",
		},
		{
			name: "rolls back earlier statements on a constraint failure",
			fn: func(ctx context.Context, tx DBTX) error {
				if _, err := tx.ExecContext(ctx, `INSERT INTO conventions VALUES (1, 'ACME2025')`); err != nil {
					return err
				}
				_, err := tx.ExecContext(ctx, `INSERT INTO conventions VALUES (2, 'ACME2025')`)
				return err
			},
			wantErr: "UNIQUE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openCache(t)
			err := WithTx(context.Background(), db, nil, tt.fn)
			if tt.wantErr != "" {
				require.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, conventionCount(t, db))
		})
	}
}

func TestWithTx_PanicRollsBackAndPropagates(t *testing.T) {
	db := openCache(t)

	require.PanicsWithValue(t, "kaput", func() {
		_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO conventions VALUES (1, 'ACME2025')`)
			require.NoError(t, err)
			panic("kaput")
		})
	})
	require.Zero(t, conventionCount(t, db))
}

func TestWithTx_ClosedDB(t *testing.T) {
	db := openCache(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(context.Context, DBTX) error { return nil })
	require.ErrorContains(t, err, "begin tx")
}

func TestOpenSQLite_CreatesParentDirAndEnablesForeignKeys(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "cache.db")

	db, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
	require.Equal(t, 1, fk)
	require.Equal(t, 1, db.Stats().MaxOpenConnections)
}

func TestNullTimeRoundTrip(t *testing.T) {
	require.Nil(t, NullTime(nil))

	in := time.Date(2026, 3, 6, 9, 30, 0, 500, time.FixedZone("EST", -5*3600))
	v := NullTime(&in)
	require.Equal(t, "2026-03-06T14:30:00.0000005Z", v)

	out, err := ScanTime(sql.NullString{String: v.(string), Valid: true})
	require.NoError(t, err)
	require.True(t, in.Equal(*out))

	out, err = ScanTime(sql.NullString{})
	require.NoError(t, err)
	require.Nil(t, out)

	_, err = ScanTime(sql.NullString{String: "yesterday", Valid: true})
	require.ErrorContains(t, err, "invalid stored timestamp")
}
