// Package attendees persists attendees and their transactions in the local
// cache. Every operation is scoped to one convention: an attendee row is
// identified by (convention id, attendee id), so data cached for one
// convention can never be touched through another.
package attendees

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/conops/internal/client/models"
)

var ErrNotFound = errors.New("attendee not found")

type Repository interface {
	// Upsert inserts or fully replaces the attendee identified by
	// (a.ConventionID, a.ID), including its transaction list.
	Upsert(ctx context.Context, a *models.Attendee) error

	// GetByConvention returns the attendees of one convention ordered by id.
	GetByConvention(ctx context.Context, conventionID int64) ([]models.Attendee, error)

	// GetByID returns a single attendee or ErrNotFound.
	GetByID(ctx context.Context, conventionID, id int64) (*models.Attendee, error)

	// GetByBadgeNumber returns a single attendee or ErrNotFound.
	GetByBadgeNumber(ctx context.Context, conventionID int64, badge string) (*models.Attendee, error)

	// DeleteAll removes every attendee.
	DeleteAll(ctx context.Context) error
}
