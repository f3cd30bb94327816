package recurringinvoice

import (
	"context"
)

// Repository defines the interface for recurring invoice persistence
type Repository interface {
	// Create creates a new recurring invoice schedule with its template
	// line items
	Create(ctx context.Context, r *RecurringInvoice) error

	// Get retrieves a schedule by ID, template line items included
	Get(ctx context.Context, id string) (*RecurringInvoice, error)

	// Update updates the schedule's template fields. The cursor is owned
	// by AdvanceCursor.
	Update(ctx context.Context, r *RecurringInvoice) error

	// Delete removes a schedule and its template line items
	Delete(ctx context.Context, id string) error

	// ListActive retrieves all non-draft schedules for the tenant
	ListActive(ctx context.Context) ([]*RecurringInvoice, error)

	// AdvanceCursor atomically increments occurrences_generated from the
	// given value to the next. Returns ierr.ErrVersionConflict when the
	// stored cursor no longer equals from, which means a concurrent run
	// already claimed the occurrence.
	AdvanceCursor(ctx context.Context, id string, from int) error
}
