package types

import (
	ierr "github.com/facturio/facturio/internal/errors"
)

// InvoiceStatusTag is the display status of an invoice derived from its
// draft/paid flags and due date. It is computed on read and never persisted.
type InvoiceStatusTag string

const (
	InvoiceStatusDraft   InvoiceStatusTag = "draft"
	InvoiceStatusPaid    InvoiceStatusTag = "paid"
	InvoiceStatusPending InvoiceStatusTag = "pending"
	InvoiceStatusOverdue InvoiceStatusTag = "overdue"
)

func (s InvoiceStatusTag) Validate() error {
	allowed := []InvoiceStatusTag{
		InvoiceStatusDraft,
		InvoiceStatusPaid,
		InvoiceStatusPending,
		InvoiceStatusOverdue,
	}
	for _, status := range allowed {
		if s == status {
			return nil
		}
	}
	return ierr.NewError("invalid invoice status").
		WithHint("Invalid invoice status").
		WithReportableDetails(map[string]any{
			"status":  s,
			"allowed": allowed,
		}).
		Mark(ierr.ErrValidation)
}
