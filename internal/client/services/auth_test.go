package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/settings"
	"github.com/dmitrijs2005/conops/internal/client/store"
	"github.com/dmitrijs2005/conops/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newAuthFixture(t *testing.T) (*fakeClient, *store.Store, *settings.Settings, *authService) {
	t.Helper()
	st := newTestStore(t)
	prefs := newTestSettings(t, st, nil)
	fc := newFakeClient()
	svc := NewAuthService(fc, st, prefs, logging.Nop()).(*authService)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return fc, st, prefs, svc
}

func TestAuth_LoginStoresSession(t *testing.T) {
	ctx := context.Background()
	fc, _, prefs, svc := newAuthFixture(t)
	exp := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	fc.token = signedToken(t, "42", exp)

	s, err := svc.Login(ctx, "ACME2026", "ann", "secret")
	require.NoError(t, err)
	require.True(t, s.LoggedIn)
	require.Equal(t, "ann", s.Username)
	require.Equal(t, "ACME2026", s.Convention)
	require.Equal(t, "42", s.Subject)
	require.NotNil(t, s.ExpiresAt)
	require.True(t, exp.Equal(*s.ExpiresAt))
	require.False(t, s.Expired)

	tok, err := prefs.Token(ctx)
	require.NoError(t, err)
	require.Equal(t, fc.token, tok)
	require.NoError(t, svc.EnsureSession(ctx))
}

func TestAuth_LoginFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	fc, _, prefs, svc := newAuthFixture(t)
	fc.token = "opaque"

	_, err := svc.Login(ctx, "ACME2026", "ann", "wrong")
	require.ErrorIs(t, err, client.ErrUnauthorized)

	tok, err := prefs.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, tok)
	user, err := prefs.LastUsername(ctx)
	require.NoError(t, err)
	require.Empty(t, user)
}

func TestAuth_OpaqueTokenIsStillASession(t *testing.T) {
	ctx := context.Background()
	fc, _, _, svc := newAuthFixture(t)
	fc.token = "not-a-jwt"

	s, err := svc.Login(ctx, "ACME2026", "ann", "secret")
	require.NoError(t, err)
	require.True(t, s.LoggedIn)
	require.Nil(t, s.ExpiresAt)
	require.NoError(t, svc.EnsureSession(ctx))
}

func TestAuth_EnsureSession(t *testing.T) {
	ctx := context.Background()
	_, _, prefs, svc := newAuthFixture(t)

	err := svc.EnsureSession(ctx)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.ErrorContains(t, err, "not logged in")

	expired := signedToken(t, "42", time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))
	require.NoError(t, prefs.SaveLogin(ctx, expired, "ACME2026", "ann"))

	s, err := svc.Session(ctx)
	require.NoError(t, err)
	require.True(t, s.Expired)

	err = svc.EnsureSession(ctx)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	require.ErrorContains(t, err, "session expired")
}

func TestAuth_LogoutWipesCache(t *testing.T) {
	ctx := context.Background()
	fc, st, prefs, svc := newAuthFixture(t)
	fc.token = "opaque"
	_, err := svc.Login(ctx, "ACME2026", "ann", "secret")
	require.NoError(t, err)

	c := conv(1, "ACME2026", true)
	require.NoError(t, st.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		if err := tx.UpsertConvention(ctx, &c); err != nil {
			return err
		}
		a := attendee(10, "Ann")
		return tx.UpsertAttendee(ctx, 1, &a)
	}))
	require.NoError(t, st.AdvanceLastSyncTime(ctx, time.Now()))

	require.NoError(t, svc.Logout(ctx))

	s, err := svc.Session(ctx)
	require.NoError(t, err)
	require.False(t, s.LoggedIn)
	require.Equal(t, "ann", s.Username, "last username survives logout for the next prompt")

	convs, err := st.Conventions(ctx)
	require.NoError(t, err)
	require.Empty(t, convs)
	w, err := st.LastSyncTime(ctx)
	require.NoError(t, err)
	require.Nil(t, w)
	tok, err := prefs.Token(ctx)
	require.NoError(t, err)
	require.Empty(t, tok)
}
