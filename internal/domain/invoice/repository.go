package invoice

import (
	"context"

	"github.com/facturio/facturio/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create creates a new invoice together with its line items
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID, line items included
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, invoice *Invoice) error

	// Delete removes an invoice and its line items
	Delete(ctx context.Context, id string) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// ExistsForOccurrence reports whether an invoice generated from the
	// given schedule occurrence already exists
	ExistsForOccurrence(ctx context.Context, recurringInvoiceID string, occurrence int) (bool, error)
}
