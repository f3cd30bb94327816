package dto

import (
	"context"
	"time"

	"github.com/facturio/facturio/internal/domain/recurringinvoice"
	"github.com/facturio/facturio/internal/types"
	"github.com/facturio/facturio/internal/validator"
)

// CreateRecurringInvoiceRequest represents the request payload for creating
// a recurring invoice schedule
type CreateRecurringInvoiceRequest struct {
	SeriesID string `json:"series_id" validate:"required"`

	CustomerName           string `json:"customer_name" validate:"required"`
	CustomerEmail          string `json:"customer_email,omitempty" validate:"omitempty,email"`
	CustomerIdentification string `json:"customer_identification,omitempty"`
	InvoicingAddress       string `json:"invoicing_address,omitempty"`

	DaysToDue *int `json:"days_to_due,omitempty" validate:"omitempty,min=0"`

	StartingDate  time.Time        `json:"starting_date" validate:"required"`
	FinishingDate *time.Time       `json:"finishing_date,omitempty"`
	Period        int              `json:"period" validate:"required,min=1"`
	PeriodType    types.PeriodType `json:"period_type" validate:"required"`

	MaxOccurrences *int `json:"max_occurrences,omitempty" validate:"omitempty,min=0"`
	Draft          bool `json:"draft"`

	LineItems []CreateInvoiceLineItemRequest `json:"line_items,omitempty"`
}

func (r *CreateRecurringInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.PeriodType.Validate()
}

// ToRecurringInvoice converts the request to a domain schedule
func (r *CreateRecurringInvoiceRequest) ToRecurringInvoice(ctx context.Context, defaultDaysToDue int) *recurringinvoice.RecurringInvoice {
	daysToDue := defaultDaysToDue
	if r.DaysToDue != nil {
		daysToDue = *r.DaysToDue
	}

	ri := &recurringinvoice.RecurringInvoice{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECURRING_INVOICE),
		SeriesID:               r.SeriesID,
		CustomerName:           r.CustomerName,
		CustomerEmail:          r.CustomerEmail,
		CustomerIdentification: r.CustomerIdentification,
		InvoicingAddress:       r.InvoicingAddress,
		DaysToDue:              daysToDue,
		StartingDate:           r.StartingDate,
		FinishingDate:          r.FinishingDate,
		Period:                 r.Period,
		PeriodType:             r.PeriodType,
		MaxOccurrences:         r.MaxOccurrences,
		Draft:                  r.Draft,
		BaseModel:              types.GetDefaultBaseModel(ctx),
	}

	for _, item := range r.LineItems {
		ri.LineItems = append(ri.LineItems, &recurringinvoice.TemplateLineItem{
			ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE_LINE_ITEM),
			RecurringInvoiceID: ri.ID,
			Description:        item.Description,
			Quantity:           item.Quantity,
			UnitaryCost:        item.UnitaryCost,
			Discount:           item.Discount,
			TaxRate:            item.TaxRate,
			BaseModel:          types.GetDefaultBaseModel(ctx),
		})
	}

	return ri
}

// RecurringInvoiceResponse represents a schedule in API responses
type RecurringInvoiceResponse struct {
	*recurringinvoice.RecurringInvoice
	// exhausted reports whether the schedule can produce further occurrences
	Exhausted bool `json:"exhausted"`
}

func NewRecurringInvoiceResponse(ri *recurringinvoice.RecurringInvoice) *RecurringInvoiceResponse {
	return &RecurringInvoiceResponse{
		RecurringInvoice: ri,
		Exhausted:        ri.Exhausted(),
	}
}

// GenerateDueResponse reports the outcome of a batch generation run
type GenerateDueResponse struct {
	// created is the total number of invoices created across schedules
	Created int                        `json:"created"`
	Items   []*GenerateDueResponseItem `json:"items"`
	StartAt time.Time                  `json:"start_at"`
}

// GenerateDueResponseItem reports one schedule's outcome within a batch run
type GenerateDueResponseItem struct {
	RecurringInvoiceID string `json:"recurring_invoice_id"`
	Created            int    `json:"created"`
	Error              string `json:"error,omitempty"`
}
