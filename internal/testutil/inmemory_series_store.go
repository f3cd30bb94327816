package testutil

import (
	"context"
	"sync"

	"github.com/facturio/facturio/internal/domain/series"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
)

// InMemorySeriesStore implements series.Repository
type InMemorySeriesStore struct {
	*InMemoryStore[*series.Series]
	// counterMu serializes NextNumber so concurrent allocations never
	// observe the same value
	counterMu sync.Mutex
}

// NewInMemorySeriesStore creates a new in-memory series repository
func NewInMemorySeriesStore() *InMemorySeriesStore {
	return &InMemorySeriesStore{
		InMemoryStore: NewInMemoryStore[*series.Series](),
	}
}

func (m *InMemorySeriesStore) Create(ctx context.Context, s *series.Series) error {
	if s == nil {
		return ierr.NewError("series cannot be nil").
			WithHint("Series cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return m.InMemoryStore.Create(ctx, s.ID, s)
}

func (m *InMemorySeriesStore) Get(ctx context.Context, id string) (*series.Series, error) {
	s, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("series not found").
			WithHint("Series not found").
			WithReportableDetails(map[string]any{"series_id": id}).
			Mark(ierr.ErrNotFound)
	}

	// Return a copy so callers never mutate stored state directly
	out := *s
	return &out, nil
}

func (m *InMemorySeriesStore) Update(ctx context.Context, s *series.Series) error {
	if s == nil {
		return ierr.NewError("series cannot be nil").
			WithHint("Series cannot be nil").
			Mark(ierr.ErrValidation)
	}

	// The counter is owned by NextNumber
	existing, err := m.Get(ctx, s.ID)
	if err != nil {
		return err
	}
	s.NextNumber = existing.NextNumber

	return m.InMemoryStore.Update(ctx, s.ID, s)
}

func (m *InMemorySeriesStore) List(ctx context.Context) ([]*series.Series, error) {
	items, err := m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, s *series.Series, _ interface{}) bool {
			return s.Status != types.StatusDeleted
		},
		func(a, b *series.Series) bool {
			return a.Name < b.Name
		})
	if err != nil {
		return nil, err
	}

	out := make([]*series.Series, len(items))
	for i, s := range items {
		c := *s
		out[i] = &c
	}
	return out, nil
}

func (m *InMemorySeriesStore) NextNumber(ctx context.Context, id string) (int64, error) {
	m.counterMu.Lock()
	defer m.counterMu.Unlock()

	s, err := m.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if s.Status == types.StatusDeleted {
		return 0, ierr.NewError("series not found").
			WithReportableDetails(map[string]any{"series_id": id}).
			Mark(ierr.ErrNotFound)
	}

	number := s.NextNumber
	s.NextNumber++
	if err := m.InMemoryStore.Update(ctx, id, s); err != nil {
		return 0, err
	}
	return number, nil
}
