// Package services holds the client's application services: the sync
// orchestrator that reconciles the local store with the server, session
// handling, and the convention and attendee operations used by the CLI.
//
// Services own no goroutines. Each call runs to completion or to its first
// error on the caller's goroutine, which is how the store keeps a single
// writer.
package services

import (
	"context"
)

// Preferences are the persisted settings the services consult.
type Preferences interface {
	IncludeInactive(ctx context.Context) (bool, error)
	LastConvention(ctx context.Context) (string, error)
}
