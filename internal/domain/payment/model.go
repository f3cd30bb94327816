package payment

import (
	"time"

	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// Payment represents a payment recorded against an invoice.
//
// Payments are soft deleted first: DeletedAt marks the tombstone, the ledger
// ignores tombstoned payments, and a later purge removes them permanently.
// The two-phase delete keeps payment history recoverable while an invoice
// save is still in flight.
type Payment struct {
	ID        string          `db:"id" json:"id"`
	InvoiceID string          `db:"invoice_id" json:"invoice_id"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	Date      time.Time       `db:"date" json:"date"`
	Notes     string          `db:"notes" json:"notes,omitempty"`
	DeletedAt *time.Time      `db:"deleted_at" json:"deleted_at,omitempty"`
	types.BaseModel
}

// Deleted reports whether the payment carries a tombstone.
func (p *Payment) Deleted() bool {
	return p.DeletedAt != nil
}

func (p *Payment) Validate() error {
	if p.InvoiceID == "" {
		return ierr.NewError("payment invoice reference is required").
			WithHint("A payment must reference an invoice").
			Mark(ierr.ErrValidation)
	}
	if p.Amount.IsNegative() {
		return ierr.NewError("payment amount must be non-negative").
			WithHint("Payment amount must not be negative").
			WithReportableDetails(map[string]any{"amount": p.Amount}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
