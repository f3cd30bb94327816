package types

import (
	ierr "github.com/facturio/facturio/internal/errors"
)

// PeriodType is the unit of the recurrence period of a recurring invoice.
type PeriodType string

const (
	PeriodTypeDay   PeriodType = "day"
	PeriodTypeWeek  PeriodType = "week"
	PeriodTypeMonth PeriodType = "month"
	PeriodTypeYear  PeriodType = "year"
)

func (p PeriodType) Validate() error {
	allowed := []PeriodType{
		PeriodTypeDay,
		PeriodTypeWeek,
		PeriodTypeMonth,
		PeriodTypeYear,
	}
	for _, periodType := range allowed {
		if p == periodType {
			return nil
		}
	}
	return ierr.NewError("invalid period type").
		WithHint("Period type must be one of day, week, month or year").
		WithReportableDetails(map[string]any{
			"period_type": p,
			"allowed":     allowed,
		}).
		Mark(ierr.ErrValidation)
}
