package invoice

import (
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem represents a single invoice line item
type LineItem struct {
	ID          string          `db:"id" json:"id"`
	InvoiceID   string          `db:"invoice_id" json:"invoice_id"`
	Description string          `db:"description" json:"description"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitaryCost decimal.Decimal `db:"unitary_cost" json:"unitary_cost"`
	// Discount is a percentage in [0, 100] applied to the line
	Discount decimal.Decimal `db:"discount" json:"discount"`
	// TaxRate is a percentage applied after the discount
	TaxRate decimal.Decimal `db:"tax_rate" json:"tax_rate"`
	types.BaseModel
}

var hundred = decimal.NewFromInt(100)

// NetAmount is quantity times unitary cost minus the discount.
func (li *LineItem) NetAmount() decimal.Decimal {
	base := li.Quantity.Mul(li.UnitaryCost)
	discount := base.Mul(li.Discount).Div(hundred)
	return base.Sub(discount)
}

// TaxAmount is the tax charged on the discounted net amount.
func (li *LineItem) TaxAmount() decimal.Decimal {
	return li.NetAmount().Mul(li.TaxRate).Div(hundred)
}

// GrossAmount is the net amount plus tax.
func (li *LineItem) GrossAmount() decimal.Decimal {
	return li.NetAmount().Add(li.TaxAmount())
}

func (li *LineItem) Validate() error {
	if li.Quantity.IsNegative() {
		return ierr.NewError("quantity must be non-negative").
			WithHint("Line item quantity must not be negative").
			Mark(ierr.ErrValidation)
	}
	if li.Discount.IsNegative() || li.Discount.GreaterThan(hundred) {
		return ierr.NewError("discount must be between 0 and 100").
			WithHint("Line item discount is a percentage").
			WithReportableDetails(map[string]any{"discount": li.Discount}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
