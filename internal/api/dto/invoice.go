package dto

import (
	"context"
	"time"

	"github.com/facturio/facturio/internal/domain/invoice"
	"github.com/facturio/facturio/internal/types"
	"github.com/facturio/facturio/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest represents the request payload for creating a new invoice
type CreateInvoiceRequest struct {
	// series_id is the numbering series the invoice belongs to. Required
	// once the invoice is saved as non-draft.
	SeriesID string `json:"series_id"`

	// draft indicates whether the invoice is created as a draft. Saving
	// as non-draft triggers number allocation.
	Draft bool `json:"draft"`

	IssueDate time.Time  `json:"issue_date" validate:"required"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	CustomerName           string `json:"customer_name" validate:"required"`
	CustomerEmail          string `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerIdentification string `json:"customer_identification,omitempty"`
	InvoicingAddress       string `json:"invoicing_address,omitempty"`

	LineItems []CreateInvoiceLineItemRequest `json:"line_items,omitempty"`
}

// CreateInvoiceLineItemRequest represents a line item in the create request
type CreateInvoiceLineItemRequest struct {
	Description string          `json:"description" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitaryCost decimal.Decimal `json:"unitary_cost"`
	Discount    decimal.Decimal `json:"discount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
}

func (r *CreateInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToInvoice converts the request to a domain invoice
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		SeriesID:               r.SeriesID,
		Draft:                  r.Draft,
		IssueDate:              r.IssueDate,
		DueDate:                r.DueDate,
		CustomerName:           r.CustomerName,
		CustomerEmail:          r.CustomerEmail,
		CustomerIdentification: r.CustomerIdentification,
		InvoicingAddress:       r.InvoicingAddress,
		PaidAmount:             decimal.Zero,
		BaseModel:              types.GetDefaultBaseModel(ctx),
	}

	for _, item := range r.LineItems {
		inv.LineItems = append(inv.LineItems, &invoice.LineItem{
			ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			InvoiceID:   inv.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitaryCost: item.UnitaryCost,
			Discount:    item.Discount,
			TaxRate:     item.TaxRate,
			BaseModel:   types.GetDefaultBaseModel(ctx),
		})
	}

	inv.CalculateAmounts()
	return inv
}

// UpdateInvoiceRequest represents the request payload for updating an
// invoice. Nil fields are left unchanged; a nil LineItems slice keeps the
// existing items.
type UpdateInvoiceRequest struct {
	SeriesID  *string    `json:"series_id,omitempty"`
	Draft     *bool      `json:"draft,omitempty"`
	IssueDate *time.Time `json:"issue_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	CustomerName           *string `json:"customer_name,omitempty"`
	CustomerEmail          *string `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerIdentification *string `json:"customer_identification,omitempty"`
	InvoicingAddress       *string `json:"invoicing_address,omitempty"`
	SentByEmail            *bool   `json:"sent_by_email,omitempty"`

	LineItems []CreateInvoiceLineItemRequest `json:"line_items,omitempty"`
}

func (r *UpdateInvoiceRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// Apply copies the set fields onto the invoice, replacing line items when a
// new set is provided, and recomputes totals.
func (r *UpdateInvoiceRequest) Apply(ctx context.Context, inv *invoice.Invoice) {
	if r.SeriesID != nil {
		inv.SeriesID = *r.SeriesID
	}
	if r.Draft != nil {
		inv.Draft = *r.Draft
	}
	if r.IssueDate != nil {
		inv.IssueDate = *r.IssueDate
	}
	if r.DueDate != nil {
		inv.DueDate = r.DueDate
	}
	if r.CustomerName != nil {
		inv.CustomerName = *r.CustomerName
	}
	if r.CustomerEmail != nil {
		inv.CustomerEmail = *r.CustomerEmail
	}
	if r.CustomerIdentification != nil {
		inv.CustomerIdentification = *r.CustomerIdentification
	}
	if r.InvoicingAddress != nil {
		inv.InvoicingAddress = *r.InvoicingAddress
	}
	if r.SentByEmail != nil {
		inv.SentByEmail = *r.SentByEmail
	}
	if r.LineItems != nil {
		inv.LineItems = nil
		for _, item := range r.LineItems {
			inv.LineItems = append(inv.LineItems, &invoice.LineItem{
				ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
				InvoiceID:   inv.ID,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitaryCost: item.UnitaryCost,
				Discount:    item.Discount,
				TaxRate:     item.TaxRate,
				BaseModel:   types.GetDefaultBaseModel(ctx),
			})
		}
	}
	inv.CalculateAmounts()
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	*invoice.Invoice
	// status_tag is the display status resolved at response time
	StatusTag types.InvoiceStatusTag `json:"status_tag"`
	// unpaid_amount is gross_amount - paid_amount, negative when overpaid
	UnpaidAmount decimal.Decimal `json:"unpaid_amount"`
}

func NewInvoiceResponse(inv *invoice.Invoice, today time.Time) *InvoiceResponse {
	return &InvoiceResponse{
		Invoice:      inv,
		StatusTag:    inv.StatusAt(today),
		UnpaidAmount: inv.UnpaidAmount(),
	}
}

// ListInvoicesResponse represents a paginated list of invoices
type ListInvoicesResponse struct {
	Items      []*InvoiceResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}
