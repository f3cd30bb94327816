package dto

import (
	"time"

	"github.com/facturio/facturio/internal/domain/payment"
	"github.com/facturio/facturio/internal/validator"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest represents the request payload for recording a payment
// against an invoice
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Date   time.Time       `json:"date" validate:"required"`
	Notes  string          `json:"notes,omitempty"`
}

func (r *RecordPaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PaymentResponse represents a payment in API responses. Invoice carries
// the reconciled invoice when the payment was just recorded.
type PaymentResponse struct {
	*payment.Payment
	Invoice *InvoiceResponse `json:"invoice,omitempty"`
}

func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{Payment: p}
}
