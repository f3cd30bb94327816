package testutil

import (
	"context"
	"time"

	"github.com/facturio/facturio/internal/domain/payment"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/shopspring/decimal"
)

// InMemoryPaymentStore implements payment.Repository
type InMemoryPaymentStore struct {
	*InMemoryStore[*payment.Payment]
}

// NewInMemoryPaymentStore creates a new in-memory payment repository
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*payment.Payment](),
	}
}

func (m *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	if p == nil {
		return ierr.NewError("payment cannot be nil").
			WithHint("Payment cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return m.InMemoryStore.Create(ctx, p.ID, p)
}

func (m *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("payment not found").
			WithHint("Payment not found").
			WithReportableDetails(map[string]any{"payment_id": id}).
			Mark(ierr.ErrNotFound)
	}
	// Return a copy so callers never mutate stored state directly
	copied := *p
	return &copied, nil
}

func (m *InMemoryPaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	return m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, p *payment.Payment, _ interface{}) bool {
			return p.InvoiceID == invoiceID && !p.Deleted()
		},
		func(a, b *payment.Payment) bool {
			if !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date)
			}
			return a.ID < b.ID
		})
}

func (m *InMemoryPaymentStore) SumByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	payments, err := m.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}

func (m *InMemoryPaymentStore) SoftDelete(ctx context.Context, id string) error {
	p, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.Deleted() {
		return ierr.NewError("payment not found").
			WithHint("Payment is already deleted").
			WithReportableDetails(map[string]any{"payment_id": id}).
			Mark(ierr.ErrNotFound)
	}

	now := time.Now().UTC()
	p.DeletedAt = &now
	return m.InMemoryStore.Update(ctx, p.ID, p)
}

func (m *InMemoryPaymentStore) Purge(ctx context.Context, invoiceID string) error {
	tombstoned, err := m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, p *payment.Payment, _ interface{}) bool {
			return p.InvoiceID == invoiceID && p.Deleted()
		}, nil)
	if err != nil {
		return err
	}

	for _, p := range tombstoned {
		if err := m.InMemoryStore.Delete(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}
