package types

import (
	"time"

	ierr "github.com/facturio/facturio/internal/errors"
)

// NextOccurrenceDate calculates the date of a recurrence occurrence as the
// starting date shifted by n periods of the given period type. For example:
// - If the period type is month and period is 2, occurrence n is start + 2n months.
// - If the period type is week and period is 3, occurrence n is start + 21n days.
// Month and year arithmetic clamps to the last valid day of the target month,
// so a schedule anchored on Jan 31 yields Feb 28 (or 29) rather than Mar 3.
func NextOccurrenceDate(start time.Time, period int, periodType PeriodType, n int) (time.Time, error) {
	if period <= 0 {
		return start, ierr.NewError("period must be a positive integer").
			WithHint("Recurrence period must be greater than zero").
			WithReportableDetails(map[string]any{"period": period}).
			Mark(ierr.ErrValidation)
	}
	if n < 0 {
		return start, ierr.NewError("occurrence index must be non-negative").
			Mark(ierr.ErrValidation)
	}

	units := period * n
	switch periodType {
	case PeriodTypeDay:
		return AddClampedDate(start, 0, 0, units), nil
	case PeriodTypeWeek:
		return AddClampedDate(start, 0, 0, 7*units), nil
	case PeriodTypeMonth:
		return AddClampedDate(start, 0, units, 0), nil
	case PeriodTypeYear:
		return AddClampedDate(start, units, 0, 0), nil
	default:
		return start, ierr.NewError("invalid period type").
			WithReportableDetails(map[string]any{"period_type": periodType}).
			Mark(ierr.ErrValidation)
	}
}

// AddClampedDate behaves like time.AddDate except that month and year
// arithmetic clamps to the last valid day of the resulting month instead of
// normalizing into the next one.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	// If we move beyond December, it adjusts correctly,
	// for example adding 2 months to November will land on January next year.
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d
	if newD > lastDay {
		newD = lastDay
	}

	result := time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
	if days != 0 {
		result = result.AddDate(0, 0, days)
	}
	return result
}
