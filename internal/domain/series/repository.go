package series

import (
	"context"
)

// Repository defines the interface for series persistence operations
type Repository interface {
	// Create creates a new series
	Create(ctx context.Context, series *Series) error

	// Get retrieves a series by ID
	Get(ctx context.Context, id string) (*Series, error)

	// Update updates an existing series. It never touches the counter,
	// which is owned by NextNumber.
	Update(ctx context.Context, series *Series) error

	// List retrieves all series for the tenant
	List(ctx context.Context) ([]*Series, error)

	// NextNumber atomically takes the series' current counter value and
	// advances the counter by one. No two calls ever observe the same
	// value for a given series, concurrent callers included. Callers for
	// different series do not block each other. Returns
	// ierr.ErrContention when the update cannot be serialized within
	// bounds.
	NextNumber(ctx context.Context, id string) (int64, error)
}
