// Package settings is the persisted key/value configuration of the client:
// server address, sync preferences, last-used names and the bearer token.
// Values live in the cache's metadata table; writes go through the store so
// subscribers see them.
package settings

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/store"
)

// Names accepted by Get and Set.
const (
	Host            = "host"
	Port            = "port"
	UseTLS          = "tls"
	IncludeInactive = "include-inactive"
	LastConvention  = "last-convention"
	LastUsername    = "last-username"
)

const (
	keyPrefix = "settings."
	keyToken  = "auth.token"
)

type definition struct {
	def      string
	validate func(string) (string, error)
}

var definitions = map[string]definition{
	Host:            {def: "127.0.0.1", validate: validateHost},
	Port:            {def: "8080", validate: validatePort},
	UseTLS:          {def: "false", validate: validateBool},
	IncludeInactive: {def: "false", validate: validateBool},
	LastConvention:  {def: ""},
	LastUsername:    {def: ""},
}

// Names returns the known setting names in sorted order.
func Names() []string {
	names := make([]string, 0, len(definitions))
	for n := range definitions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Default returns the built-in value of a setting.
func Default(name string) (string, bool) {
	d, ok := definitions[name]
	return d.def, ok
}

// Settings reads and writes persisted settings. It implements
// client.Settings.
type Settings struct {
	store *store.Store
}

var _ client.Settings = (*Settings)(nil)

func New(s *store.Store) *Settings {
	return &Settings{store: s}
}

func lookup(name string) (definition, error) {
	d, ok := definitions[name]
	if !ok {
		return definition{}, client.Unprocessable("unknown setting %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Get returns the stored value of name or its default.
func (s *Settings) Get(ctx context.Context, name string) (string, error) {
	d, err := lookup(name)
	if err != nil {
		return "", err
	}
	return s.store.Metadata().GetString(ctx, keyPrefix+name, d.def)
}

// Set validates and stores value under name.
func (s *Settings) Set(ctx context.Context, name, value string) error {
	d, err := lookup(name)
	if err != nil {
		return err
	}
	if d.validate != nil {
		if value, err = d.validate(value); err != nil {
			return client.Unprocessable("invalid %s: %v", name, err)
		}
	}
	return s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		return tx.SetString(ctx, keyPrefix+name, value)
	})
}

// SetMany stores several values in one transaction.
func (s *Settings) SetMany(ctx context.Context, values map[string]string) error {
	clean := make(map[string]string, len(values))
	for name, value := range values {
		d, err := lookup(name)
		if err != nil {
			return err
		}
		if d.validate != nil {
			if value, err = d.validate(value); err != nil {
				return client.Unprocessable("invalid %s: %v", name, err)
			}
		}
		clean[name] = value
	}
	return s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		for name, value := range clean {
			if err := tx.SetString(ctx, keyPrefix+name, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Reset restores a setting to its default.
func (s *Settings) Reset(ctx context.Context, name string) error {
	if _, err := lookup(name); err != nil {
		return err
	}
	return s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		return tx.DeleteKey(ctx, keyPrefix+name)
	})
}

// ResetAll restores every setting to its default. The token and the
// watermark are not settings and are kept.
func (s *Settings) ResetAll(ctx context.Context) error {
	return s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		return tx.DeletePrefix(ctx, keyPrefix)
	})
}

// All returns every setting with its effective value.
func (s *Settings) All(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(definitions))
	for name := range definitions {
		v, err := s.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func (s *Settings) Endpoint(ctx context.Context) (client.Endpoint, error) {
	host, err := s.Get(ctx, Host)
	if err != nil {
		return client.Endpoint{}, err
	}
	portStr, err := s.Get(ctx, Port)
	if err != nil {
		return client.Endpoint{}, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return client.Endpoint{}, fmt.Errorf("stored port %q: %w", portStr, err)
	}
	useTLS, err := s.Bool(ctx, UseTLS)
	if err != nil {
		return client.Endpoint{}, err
	}
	return client.Endpoint{Host: host, Port: port, UseTLS: useTLS}, nil
}

func (s *Settings) Bool(ctx context.Context, name string) (bool, error) {
	v, err := s.Get(ctx, name)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("stored %s %q: %w", name, v, err)
	}
	return b, nil
}

func (s *Settings) IncludeInactive(ctx context.Context) (bool, error) {
	return s.Bool(ctx, IncludeInactive)
}

func (s *Settings) LastConvention(ctx context.Context) (string, error) {
	return s.Get(ctx, LastConvention)
}

func (s *Settings) LastUsername(ctx context.Context) (string, error) {
	return s.Get(ctx, LastUsername)
}

// Token returns the stored bearer token, or "" when logged out.
func (s *Settings) Token(ctx context.Context) (string, error) {
	return s.store.Metadata().GetString(ctx, keyToken, "")
}

// SaveLogin stores the token together with the names used to obtain it.
func (s *Settings) SaveLogin(ctx context.Context, token, conventionShortName, username string) error {
	return s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		if err := tx.SetString(ctx, keyToken, token); err != nil {
			return err
		}
		if err := tx.SetString(ctx, keyPrefix+LastConvention, conventionShortName); err != nil {
			return err
		}
		return tx.SetString(ctx, keyPrefix+LastUsername, username)
	})
}

func (s *Settings) ClearToken(ctx context.Context) error {
	return s.store.Update(ctx, func(ctx context.Context, tx *store.Tx) error {
		return tx.DeleteKey(ctx, keyToken)
	})
}

func validateHost(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("host must not be empty")
	}
	if strings.Contains(v, "://") || strings.ContainsAny(v, "/?#") {
		return "", fmt.Errorf("expected a bare host name, got %q", v)
	}
	return v, nil
}

func validatePort(v string) (string, error) {
	p, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("expected 1-65535, got %q", v)
	}
	return strconv.Itoa(p), nil
}

func validateBool(v string) (string, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return "", fmt.Errorf("expected true or false, got %q", v)
	}
	return strconv.FormatBool(b), nil
}
