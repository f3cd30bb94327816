package testutil

import (
	"context"
	"time"

	"github.com/facturio/facturio/internal/domain/invoice"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
}

// NewInMemoryInvoiceStore creates a new in-memory invoice repository
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
	}
}

func (m *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return m.InMemoryStore.Create(ctx, inv.ID, inv)
}

func (m *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("invoice not found").
			WithHint("Invoice not found").
			WithReportableDetails(map[string]any{"invoice_id": id}).
			Mark(ierr.ErrNotFound)
	}
	// Return a copy so callers never mutate stored state directly
	copied := *inv
	return &copied, nil
}

func (m *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").
			WithHint("Invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	inv.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, inv.ID, inv)
}

func (m *InMemoryInvoiceStore) Delete(ctx context.Context, id string) error {
	return m.InMemoryStore.Delete(ctx, id)
}

func (m *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	return m.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn)
}

func (m *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return m.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func (m *InMemoryInvoiceStore) ExistsForOccurrence(ctx context.Context, recurringInvoiceID string, occurrence int) (bool, error) {
	matches, err := m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, inv *invoice.Invoice, _ interface{}) bool {
			return inv.RecurringInvoiceID != nil && *inv.RecurringInvoiceID == recurringInvoiceID &&
				inv.Occurrence != nil && *inv.Occurrence == occurrence
		}, nil)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return true
	}

	if f.SeriesID != nil && inv.SeriesID != *f.SeriesID {
		return false
	}
	if f.RecurringInvoiceID != nil &&
		(inv.RecurringInvoiceID == nil || *inv.RecurringInvoiceID != *f.RecurringInvoiceID) {
		return false
	}
	if f.StatusTag != nil {
		date := time.Now().UTC()
		if f.StatusTagDate != nil {
			date = *f.StatusTagDate
		}
		if inv.StatusAt(date) != *f.StatusTag {
			return false
		}
	}
	if f.DueDateBefore != nil && (inv.DueDate == nil || !inv.DueDate.Before(*f.DueDateBefore)) {
		return false
	}
	if f.DueDateAfter != nil && (inv.DueDate == nil || !inv.DueDate.After(*f.DueDateAfter)) {
		return false
	}
	return true
}

func invoiceSortFn(a, b *invoice.Invoice) bool {
	if !a.IssueDate.Equal(b.IssueDate) {
		return a.IssueDate.Before(b.IssueDate)
	}
	return a.ID < b.ID
}
