package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/store"
	"github.com/dmitrijs2005/conops/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Credentials is where the session token and last-used names are kept.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	SaveLogin(ctx context.Context, token, conventionShortName, username string) error
	ClearToken(ctx context.Context) error
	LastUsername(ctx context.Context) (string, error)
	LastConvention(ctx context.Context) (string, error)
}

// Session describes the stored login.
type Session struct {
	LoggedIn   bool
	Username   string
	Convention string
	// Subject and ExpiresAt come from the token's claims when it is a JWT.
	Subject   string
	ExpiresAt *time.Time
	Expired   bool
}

type AuthService interface {
	Login(ctx context.Context, conventionShortName, username, password string) (*Session, error)
	// Logout forgets the token and wipes cached conventions and attendees.
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*Session, error)
	// EnsureSession fails with client.ErrUnauthorized when no usable token
	// is stored.
	EnsureSession(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  *store.Store
	creds  Credentials
	logger logging.Logger
	now    func() time.Time
}

func NewAuthService(c client.Client, st *store.Store, creds Credentials, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Nop()
	}
	return &authService{client: c, store: st, creds: creds, logger: logger.With("component", "auth"), now: time.Now}
}

func (a *authService) Login(ctx context.Context, conventionShortName, username, password string) (*Session, error) {
	tok, err := a.client.Login(ctx, conventionShortName, username, password)
	if err != nil {
		return nil, err
	}
	if err := a.creds.SaveLogin(ctx, tok.AccessToken, conventionShortName, username); err != nil {
		return nil, client.StoreError(err)
	}
	a.logger.Info(ctx, "logged in", "convention", conventionShortName, "username", username)
	return a.Session(ctx)
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.creds.ClearToken(ctx); err != nil {
		return client.StoreError(err)
	}
	if err := a.store.Wipe(ctx); err != nil {
		return client.StoreError(err)
	}
	a.logger.Info(ctx, "logged out")
	return nil
}

func (a *authService) Session(ctx context.Context) (*Session, error) {
	token, err := a.creds.Token(ctx)
	if err != nil {
		return nil, client.StoreError(err)
	}
	username, err := a.creds.LastUsername(ctx)
	if err != nil {
		return nil, client.StoreError(err)
	}
	convention, err := a.creds.LastConvention(ctx)
	if err != nil {
		return nil, client.StoreError(err)
	}

	s := &Session{LoggedIn: token != "", Username: username, Convention: convention}
	if token == "" {
		return s, nil
	}

	// The signature is the server's business; only the claims are read.
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		a.logger.Debug(ctx, "token is not a readable JWT", "error", err)
		return s, nil
	}
	s.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		s.ExpiresAt = &exp
		s.Expired = !a.now().Before(exp)
	}
	return s, nil
}

var errNotLoggedIn = errors.New("not logged in")

func (a *authService) EnsureSession(ctx context.Context) error {
	s, err := a.Session(ctx)
	if err != nil {
		return err
	}
	if !s.LoggedIn {
		return fmt.Errorf("%w: %w", client.ErrUnauthorized, errNotLoggedIn)
	}
	if s.Expired {
		return fmt.Errorf("%w: session expired at %s", client.ErrUnauthorized, s.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}
