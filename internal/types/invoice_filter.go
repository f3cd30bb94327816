package types

import (
	"time"
)

// InvoiceFilter represents filter criteria for listing invoices
type InvoiceFilter struct {
	*QueryFilter

	SeriesID           *string `json:"series_id,omitempty" form:"series_id"`
	RecurringInvoiceID *string `json:"recurring_invoice_id,omitempty" form:"recurring_invoice_id"`

	// StatusTag filters by display status. Pending and overdue depend on
	// a reference date, carried in StatusTagDate (defaults to now).
	StatusTag     *InvoiceStatusTag `json:"status_tag,omitempty" form:"status_tag"`
	StatusTagDate *time.Time        `json:"status_tag_date,omitempty" form:"status_tag_date"`

	DueDateBefore *time.Time `json:"due_date_before,omitempty" form:"due_date_before"`
	DueDateAfter  *time.Time `json:"due_date_after,omitempty" form:"due_date_after"`
}

// NewInvoiceFilter creates an invoice filter with default pagination
func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{
		QueryFilter: NewDefaultQueryFilter(),
	}
}

func (f *InvoiceFilter) Validate() error {
	if f.StatusTag != nil {
		if err := f.StatusTag.Validate(); err != nil {
			return err
		}
	}
	return nil
}
