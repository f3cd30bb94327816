package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/facturio/facturio/internal/domain/recurringinvoice"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
)

// InMemoryRecurringInvoiceStore implements recurringinvoice.Repository
type InMemoryRecurringInvoiceStore struct {
	*InMemoryStore[*recurringinvoice.RecurringInvoice]
	// cursorMu serializes AdvanceCursor so the compare and set is atomic
	cursorMu sync.Mutex
}

// NewInMemoryRecurringInvoiceStore creates a new in-memory schedule repository
func NewInMemoryRecurringInvoiceStore() *InMemoryRecurringInvoiceStore {
	return &InMemoryRecurringInvoiceStore{
		InMemoryStore: NewInMemoryStore[*recurringinvoice.RecurringInvoice](),
	}
}

func (m *InMemoryRecurringInvoiceStore) Create(ctx context.Context, r *recurringinvoice.RecurringInvoice) error {
	if r == nil {
		return ierr.NewError("recurring invoice cannot be nil").
			WithHint("Recurring invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return m.InMemoryStore.Create(ctx, r.ID, r)
}

func (m *InMemoryRecurringInvoiceStore) Get(ctx context.Context, id string) (*recurringinvoice.RecurringInvoice, error) {
	r, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("recurring invoice not found").
			WithHint("Recurring invoice not found").
			WithReportableDetails(map[string]any{"recurring_invoice_id": id}).
			Mark(ierr.ErrNotFound)
	}
	// Return a copy so callers never mutate stored state directly
	copied := *r
	return &copied, nil
}

func (m *InMemoryRecurringInvoiceStore) Update(ctx context.Context, r *recurringinvoice.RecurringInvoice) error {
	if r == nil {
		return ierr.NewError("recurring invoice cannot be nil").
			WithHint("Recurring invoice cannot be nil").
			Mark(ierr.ErrValidation)
	}

	// The cursor is owned by AdvanceCursor
	existing, err := m.Get(ctx, r.ID)
	if err != nil {
		return err
	}
	r.OccurrencesGenerated = existing.OccurrencesGenerated

	r.UpdatedAt = time.Now().UTC()
	return m.InMemoryStore.Update(ctx, r.ID, r)
}

func (m *InMemoryRecurringInvoiceStore) Delete(ctx context.Context, id string) error {
	return m.InMemoryStore.Delete(ctx, id)
}

func (m *InMemoryRecurringInvoiceStore) ListActive(ctx context.Context) ([]*recurringinvoice.RecurringInvoice, error) {
	stored, err := m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, r *recurringinvoice.RecurringInvoice, _ interface{}) bool {
			return !r.Draft && r.Status == types.StatusPublished
		},
		func(a, b *recurringinvoice.RecurringInvoice) bool {
			return a.ID < b.ID
		})
	if err != nil {
		return nil, err
	}

	result := make([]*recurringinvoice.RecurringInvoice, len(stored))
	for i, r := range stored {
		copied := *r
		result[i] = &copied
	}
	return result, nil
}

func (m *InMemoryRecurringInvoiceStore) AdvanceCursor(ctx context.Context, id string, from int) error {
	m.cursorMu.Lock()
	defer m.cursorMu.Unlock()

	r, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	if r.OccurrencesGenerated != from {
		return ierr.NewError("schedule cursor moved").
			WithHint("Another generation run already claimed this occurrence").
			WithReportableDetails(map[string]any{
				"recurring_invoice_id": id,
				"expected_cursor":      from,
				"actual_cursor":        r.OccurrencesGenerated,
			}).
			Mark(ierr.ErrVersionConflict)
	}

	r.OccurrencesGenerated++
	return m.InMemoryStore.Update(ctx, r.ID, r)
}
