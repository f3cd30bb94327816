package recurringinvoice

import (
	"testing"
	"time"

	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func monthly(start time.Time) *RecurringInvoice {
	return &RecurringInvoice{
		ID:           "rinv_1",
		SeriesID:     "ser_1",
		StartingDate: start,
		Period:       1,
		PeriodType:   types.PeriodTypeMonth,
	}
}

func TestExhausted(t *testing.T) {
	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("unbounded schedule never exhausts", func(t *testing.T) {
		ri := monthly(start)
		ri.OccurrencesGenerated = 1000
		assert.False(t, ri.Exhausted())
	})

	t.Run("cursor at max occurrences", func(t *testing.T) {
		ri := monthly(start)
		ri.MaxOccurrences = lo.ToPtr(3)
		ri.OccurrencesGenerated = 2
		assert.False(t, ri.Exhausted())
		ri.OccurrencesGenerated = 3
		assert.True(t, ri.Exhausted())
	})

	t.Run("next occurrence past finishing date", func(t *testing.T) {
		ri := monthly(start)
		ri.FinishingDate = lo.ToPtr(time.Date(2021, time.February, 15, 0, 0, 0, 0, time.UTC))
		ri.OccurrencesGenerated = 1
		assert.False(t, ri.Exhausted())
		ri.OccurrencesGenerated = 2
		assert.True(t, ri.Exhausted())
	})
}

func TestHasPendingOccurrences(t *testing.T) {
	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

	t.Run("due occurrence", func(t *testing.T) {
		ri := monthly(start)
		assert.True(t, ri.HasPendingOccurrences(start))
	})

	t.Run("before starting date", func(t *testing.T) {
		ri := monthly(start)
		assert.False(t, ri.HasPendingOccurrences(start.AddDate(0, 0, -1)))
	})

	t.Run("draft schedule is inert", func(t *testing.T) {
		ri := monthly(start)
		ri.Draft = true
		assert.False(t, ri.HasPendingOccurrences(start))
	})

	t.Run("exhausted schedule is inert", func(t *testing.T) {
		ri := monthly(start)
		ri.MaxOccurrences = lo.ToPtr(0)
		assert.False(t, ri.HasPendingOccurrences(start))
	})
}

func TestOccurrenceDate(t *testing.T) {
	ri := monthly(time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC))

	d, err := ri.OccurrenceDate(1)
	assert.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2021, time.February, 28, 0, 0, 0, 0, time.UTC)))
}
