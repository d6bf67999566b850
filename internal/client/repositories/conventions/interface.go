package conventions

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/conops/internal/client/models"
)

// ErrNotFound is returned by single-row lookups that match nothing.
var ErrNotFound = errors.New("convention not found")

// Repository describes persistence operations for Convention objects.
type Repository interface {
	// Upsert inserts the convention or replaces every field of the existing
	// row with the same id.
	Upsert(ctx context.Context, c *models.Convention) error

	// GetAll returns all cached conventions ordered by id.
	GetAll(ctx context.Context) ([]models.Convention, error)

	// GetByID returns the convention with the given id or ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Convention, error)

	// GetByShortName matches the short name case-insensitively.
	GetByShortName(ctx context.Context, shortName string) (*models.Convention, error)

	// DeleteByID removes a convention and its attendees. Deleting a missing
	// id is not an error.
	DeleteByID(ctx context.Context, id int64) error

	// DeleteAll removes every convention and attendee.
	DeleteAll(ctx context.Context) error

	// Count returns the number of cached conventions.
	Count(ctx context.Context) (int, error)
}
