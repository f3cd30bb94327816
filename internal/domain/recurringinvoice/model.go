package recurringinvoice

import (
	"time"

	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// RecurringInvoice is a recurrence schedule plus an invoice template. The
// generator materializes one draft invoice per due occurrence, advancing
// OccurrencesGenerated by exactly one per invoice created.
type RecurringInvoice struct {
	ID       string `db:"id" json:"id"`
	SeriesID string `db:"series_id" json:"series_id"`

	// Customer snapshot copied into every generated invoice
	CustomerName           string `db:"customer_name" json:"customer_name"`
	CustomerEmail          string `db:"customer_email" json:"customer_email,omitempty"`
	CustomerIdentification string `db:"customer_identification" json:"customer_identification,omitempty"`
	InvoicingAddress       string `db:"invoicing_address" json:"invoicing_address,omitempty"`

	// DaysToDue is the offset between an occurrence date and the due date
	// of the invoice generated for it
	DaysToDue int `db:"days_to_due" json:"days_to_due"`

	StartingDate  time.Time  `db:"starting_date" json:"starting_date"`
	FinishingDate *time.Time `db:"finishing_date" json:"finishing_date,omitempty"`
	// Period and PeriodType define the recurrence step, e.g. every 2 weeks
	Period     int              `db:"period" json:"period"`
	PeriodType types.PeriodType `db:"period_type" json:"period_type"`
	// MaxOccurrences caps the number of invoices ever generated; nil
	// means unbounded
	MaxOccurrences *int `db:"max_occurrences" json:"max_occurrences,omitempty"`
	// OccurrencesGenerated is the cursor: the count of occurrences
	// already materialized. It only ever grows.
	OccurrencesGenerated int `db:"occurrences_generated" json:"occurrences_generated"`

	// Draft marks the schedule itself as inactive
	Draft bool `db:"draft" json:"draft"`

	LineItems []*TemplateLineItem `json:"line_items,omitempty"`
	types.BaseModel
}

// TemplateLineItem is a line item template copied into generated invoices.
type TemplateLineItem struct {
	ID                 string          `db:"id" json:"id"`
	RecurringInvoiceID string          `db:"recurring_invoice_id" json:"recurring_invoice_id"`
	Description        string          `db:"description" json:"description"`
	Quantity           decimal.Decimal `db:"quantity" json:"quantity"`
	UnitaryCost        decimal.Decimal `db:"unitary_cost" json:"unitary_cost"`
	Discount           decimal.Decimal `db:"discount" json:"discount"`
	TaxRate            decimal.Decimal `db:"tax_rate" json:"tax_rate"`
	types.BaseModel
}

// OccurrenceDate returns the date of the n-th occurrence (zero based).
func (r *RecurringInvoice) OccurrenceDate(n int) (time.Time, error) {
	return types.NextOccurrenceDate(r.StartingDate, r.Period, r.PeriodType, n)
}

// Exhausted reports whether the schedule can never produce another
// occurrence: the cursor reached MaxOccurrences, or the next occurrence
// falls after FinishingDate. Exhausted is terminal.
func (r *RecurringInvoice) Exhausted() bool {
	if r.MaxOccurrences != nil && r.OccurrencesGenerated >= *r.MaxOccurrences {
		return true
	}
	if r.FinishingDate != nil {
		next, err := r.OccurrenceDate(r.OccurrencesGenerated)
		if err != nil {
			return true
		}
		if next.After(*r.FinishingDate) {
			return true
		}
	}
	return false
}

// HasPendingOccurrences reports whether the schedule has at least one
// occurrence due at the given date.
func (r *RecurringInvoice) HasPendingOccurrences(today time.Time) bool {
	if r.Draft || r.Exhausted() {
		return false
	}
	next, err := r.OccurrenceDate(r.OccurrencesGenerated)
	if err != nil {
		return false
	}
	return !next.After(today)
}

func (r *RecurringInvoice) Validate() error {
	if r.SeriesID == "" {
		return ierr.NewError("series is required").
			WithHint("A recurring invoice must belong to a series").
			Mark(ierr.ErrValidation)
	}
	if r.StartingDate.IsZero() {
		return ierr.NewError("starting date is required").
			WithHint("Starting date must be set").
			Mark(ierr.ErrValidation)
	}
	if r.Period <= 0 {
		return ierr.NewError("period must be a positive integer").
			WithHint("Recurrence period must be greater than zero").
			WithReportableDetails(map[string]any{"period": r.Period}).
			Mark(ierr.ErrValidation)
	}
	if err := r.PeriodType.Validate(); err != nil {
		return err
	}
	if r.MaxOccurrences != nil && *r.MaxOccurrences < 0 {
		return ierr.NewError("max occurrences must be non-negative").
			WithReportableDetails(map[string]any{"max_occurrences": *r.MaxOccurrences}).
			Mark(ierr.ErrValidation)
	}
	if r.MaxOccurrences != nil && r.OccurrencesGenerated > *r.MaxOccurrences {
		return ierr.NewError("cursor exceeds max occurrences").
			WithReportableDetails(map[string]any{
				"occurrences_generated": r.OccurrencesGenerated,
				"max_occurrences":       *r.MaxOccurrences,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.FinishingDate != nil && r.FinishingDate.Before(r.StartingDate) {
		return ierr.NewError("finishing date precedes starting date").
			WithHint("Finishing date must not be before the starting date").
			Mark(ierr.ErrValidation)
	}
	if r.DaysToDue < 0 {
		return ierr.NewError("days to due must be non-negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}
