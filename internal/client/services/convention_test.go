package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/dmitrijs2005/conops/internal/client/settings"
	"github.com/dmitrijs2005/conops/internal/client/store"
	"github.com/stretchr/testify/require"
)

func seedConventions(t *testing.T, st *store.Store, list ...models.Convention) {
	t.Helper()
	require.NoError(t, st.Update(context.Background(), func(ctx context.Context, tx *store.Tx) error {
		for i := range list {
			if err := tx.UpsertConvention(ctx, &list[i]); err != nil {
				return err
			}
		}
		return nil
	}))
}

func TestConventions_ListHonorsIncludeInactive(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	prefs := newTestSettings(t, st, nil)
	seedConventions(t, st, conv(1, "ACME2026", true), conv(2, "ACME2025", false))
	svc := NewConventionService(newFakeClient(), st, prefs)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "ACME2026", list[0].ShortName)

	require.NoError(t, prefs.Set(ctx, settings.IncludeInactive, "true"))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestConventions_Get(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	seedConventions(t, st, conv(1, "ACME2026", true))
	svc := NewConventionService(newFakeClient(), st, newTestSettings(t, st, nil))

	c, err := svc.Get(ctx, "acme2026")
	require.NoError(t, err)
	require.Equal(t, int64(1), c.ID)

	_, err = svc.Get(ctx, "NOPE")
	require.ErrorIs(t, err, client.ErrNotFound)
	require.ErrorContains(t, err, "run sync first")

	_, err = svc.Get(ctx, "")
	require.Equal(t, client.KindUnprocessable, client.KindOf(err))
}

func TestConventions_WriteThrough(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewConventionService(newFakeClient(), st, newTestSettings(t, st, nil))

	created, err := svc.Create(ctx, &models.Convention{ShortName: "NEW", Active: true})
	require.NoError(t, err)
	require.Equal(t, int64(100), created.ID)

	cached, err := st.Convention(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, "NEW", cached.ShortName)

	created.LongName = "Renamed"
	_, err = svc.Update(ctx, created)
	require.NoError(t, err)
	cached, err = st.Convention(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, "Renamed", cached.LongName)

	require.NoError(t, svc.Delete(ctx, 100))
	_, err = st.Convention(ctx, 100)
	require.True(t, store.IsNotFound(err))
}

func TestConventions_Active(t *testing.T) {
	fc := newFakeClient()
	fc.conventions = []models.Convention{conv(1, "A", true), conv(2, "B", false)}
	st := newTestStore(t)
	svc := NewConventionService(fc, st, newTestSettings(t, st, nil))

	list, err := svc.Active(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
}
