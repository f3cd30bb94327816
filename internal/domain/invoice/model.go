package invoice

import (
	"time"

	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents the invoice domain model. An invoice starts as a draft
// without a number; finalization assigns the next number of its series and
// the number is never reassigned or reused afterwards.
type Invoice struct {
	ID       string `db:"id" json:"id"`
	SeriesID string `db:"series_id" json:"series_id"`
	// Number is nil while the invoice is a draft and unique within the
	// series once set
	Number    *int64     `db:"number" json:"number"`
	Draft     bool       `db:"draft" json:"draft"`
	IssueDate time.Time  `db:"issue_date" json:"issue_date"`
	DueDate   *time.Time `db:"due_date" json:"due_date,omitempty"`

	// Customer snapshot copied onto the invoice at creation time so later
	// customer edits do not rewrite issued documents
	CustomerName           string `db:"customer_name" json:"customer_name"`
	CustomerEmail          string `db:"customer_email" json:"customer_email,omitempty"`
	CustomerIdentification string `db:"customer_identification" json:"customer_identification,omitempty"`
	InvoicingAddress       string `db:"invoicing_address" json:"invoicing_address,omitempty"`

	NetAmount   decimal.Decimal `db:"net_amount" json:"net_amount"`
	TaxAmount   decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	GrossAmount decimal.Decimal `db:"gross_amount" json:"gross_amount"`
	PaidAmount  decimal.Decimal `db:"paid_amount" json:"paid_amount"`
	Paid        bool            `db:"paid" json:"paid"`

	// RecurringInvoiceID links back to the schedule that generated this
	// invoice, when any. Occurrence is the zero-based position of the
	// generating occurrence within that schedule.
	RecurringInvoiceID *string `db:"recurring_invoice_id" json:"recurring_invoice_id,omitempty"`
	Occurrence         *int    `db:"occurrence" json:"occurrence,omitempty"`
	SentByEmail        bool    `db:"sent_by_email" json:"sent_by_email"`

	LineItems []*LineItem `json:"line_items,omitempty"`
	types.BaseModel
}

// NeedsNumber reports whether saving this invoice requires allocating a
// series number: exactly when it is no longer a draft and has none yet.
func (i *Invoice) NeedsNumber() bool {
	return !i.Draft && i.Number == nil
}

// UnpaidAmount returns the amount not yet covered by payments. It may be
// negative when the invoice is overpaid; callers decide whether to clamp.
func (i *Invoice) UnpaidAmount() decimal.Decimal {
	return i.GrossAmount.Sub(i.PaidAmount)
}

// StatusAt resolves the display status of the invoice at the given date.
// It is pure and never persisted.
func (i *Invoice) StatusAt(today time.Time) types.InvoiceStatusTag {
	if i.Draft {
		return types.InvoiceStatusDraft
	}
	if i.Paid {
		return types.InvoiceStatusPaid
	}
	if i.DueDate != nil {
		if i.DueDate.After(today) {
			return types.InvoiceStatusPending
		}
		return types.InvoiceStatusOverdue
	}
	// An invoice without a due date can't be overdue
	return types.InvoiceStatusPending
}

func (i *Invoice) Validate() error {
	if i.SeriesID == "" && !i.Draft {
		return ierr.NewError("series is required").
			WithHint("A non-draft invoice must belong to a series").
			Mark(ierr.ErrValidation)
	}

	if i.Draft && i.Number != nil {
		return ierr.NewError("draft invoice must not have a number").
			WithHint("Draft invoices cannot carry an invoice number").
			WithReportableDetails(map[string]any{"number": *i.Number}).
			Mark(ierr.ErrValidation)
	}

	if i.Number != nil && *i.Number < 0 {
		return ierr.NewError("invoice number must be non-negative").
			WithReportableDetails(map[string]any{"number": *i.Number}).
			Mark(ierr.ErrValidation)
	}

	if i.GrossAmount.IsNegative() {
		return ierr.NewError("gross amount must be non-negative").
			WithHint("Gross amount must not be negative").
			Mark(ierr.ErrValidation)
	}

	if i.PaidAmount.IsNegative() {
		return ierr.NewError("paid amount must be non-negative").
			WithHint("Paid amount must not be negative").
			Mark(ierr.ErrValidation)
	}

	for _, item := range i.LineItems {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// CalculateAmounts recomputes the net, tax and gross totals from line items
// and refreshes the paid flag against the new gross amount. An invoice with
// nothing left to owe counts as paid, including a zero-gross invoice.
func (i *Invoice) CalculateAmounts() {
	net := decimal.Zero
	tax := decimal.Zero
	for _, item := range i.LineItems {
		net = net.Add(item.NetAmount())
		tax = tax.Add(item.TaxAmount())
	}
	i.NetAmount = net
	i.TaxAmount = tax
	i.GrossAmount = net.Add(tax)
	i.Paid = i.PaidAmount.GreaterThanOrEqual(i.GrossAmount)
}
