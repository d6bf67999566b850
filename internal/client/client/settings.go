package client

import "context"

// Settings is where the transport reads its connection parameters and the
// bearer token on every call.
type Settings interface {
	Endpoint(ctx context.Context) (Endpoint, error)
	Token(ctx context.Context) (string, error)
}

// StaticSettings is a fixed Settings value.
type StaticSettings struct {
	Addr        Endpoint
	AccessToken string
}

func (s StaticSettings) Endpoint(context.Context) (Endpoint, error) { return s.Addr, nil }

func (s StaticSettings) Token(context.Context) (string, error) { return s.AccessToken, nil }
