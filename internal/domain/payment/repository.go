package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository defines the interface for payment persistence operations
type Repository interface {
	// Create creates a new payment
	Create(ctx context.Context, payment *Payment) error

	// Get retrieves a payment by ID, tombstoned or not
	Get(ctx context.Context, id string) (*Payment, error)

	// ListByInvoice retrieves the active (non-tombstoned) payments of an
	// invoice, oldest first
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error)

	// SumByInvoice sums the amounts of the active payments of an invoice
	SumByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error)

	// SoftDelete marks a payment with a tombstone. The payment is
	// excluded from sums but retrievable until purged.
	SoftDelete(ctx context.Context, id string) error

	// Purge permanently removes the tombstoned payments of an invoice
	Purge(ctx context.Context, invoiceID string) error
}
