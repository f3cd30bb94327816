package service

import (
	"context"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/invoice"
	"github.com/facturio/facturio/internal/domain/payment"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
)

// PaymentService is the payments ledger of an invoice. Every mutation ends
// with a reconciliation that rewrites the invoice's paid amount and paid
// flag from the active payments.
type PaymentService interface {
	RecordPayment(ctx context.Context, invoiceID string, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, invoiceID string) ([]*dto.PaymentResponse, error)

	// RemovePayment tombstones a payment, reconciles the invoice and
	// returns it. The payment stays recoverable until the next purge.
	RemovePayment(ctx context.Context, id string) (*dto.InvoiceResponse, error)

	// SettleInvoice records a payment covering the whole unpaid amount,
	// leaving the invoice paid. Settling a paid invoice is a no-op.
	SettleInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error)

	// ReconcileInvoice re-derives the invoice's paid amount and paid
	// flag from the active payments and persists the result.
	ReconcileInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams: params,
	}
}

func (s *paymentService) RecordPayment(ctx context.Context, invoiceID string, req *dto.RecordPaymentRequest) (*dto.PaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	p := &payment.Payment{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID: inv.ID,
		Amount:    req.Amount,
		Date:      req.Date,
		Notes:     req.Notes,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var reconciled *invoice.Invoice
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PaymentRepo.Create(ctx, p); err != nil {
			return err
		}
		reconciled, err = s.ReconcileInvoice(ctx, inv.ID)
		return err
	})
	if err != nil {
		s.Logger.Errorw("failed to record payment",
			"invoice_id", inv.ID,
			"amount", req.Amount,
			"error", err)
		return nil, err
	}

	resp := dto.NewPaymentResponse(p)
	resp.Invoice = dto.NewInvoiceResponse(reconciled, s.Clock.Today())
	return resp, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	if id == "" {
		return nil, ierr.NewError("payment ID is required").
			WithHint("Payment ID is required").
			Mark(ierr.ErrValidation)
	}

	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewPaymentResponse(p), nil
}

func (s *paymentService) ListPayments(ctx context.Context, invoiceID string) ([]*dto.PaymentResponse, error) {
	if invoiceID == "" {
		return nil, ierr.NewError("invoice ID is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	payments, err := s.PaymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = dto.NewPaymentResponse(p)
	}
	return items, nil
}

func (s *paymentService) RemovePayment(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// Removing an already removed payment changes nothing
	if p.Deleted() {
		inv, err := s.InvoiceRepo.Get(ctx, p.InvoiceID)
		if err != nil {
			return nil, err
		}
		return dto.NewInvoiceResponse(inv, s.Clock.Today()), nil
	}

	var reconciled *invoice.Invoice
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PaymentRepo.SoftDelete(ctx, p.ID); err != nil {
			return err
		}
		reconciled, err = s.ReconcileInvoice(ctx, p.InvoiceID)
		return err
	})
	if err != nil {
		s.Logger.Errorw("failed to remove payment",
			"payment_id", p.ID,
			"invoice_id", p.InvoiceID,
			"error", err)
		return nil, err
	}

	return dto.NewInvoiceResponse(reconciled, s.Clock.Today()), nil
}

func (s *paymentService) SettleInvoice(ctx context.Context, invoiceID string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if inv.Paid {
		return dto.NewInvoiceResponse(inv, s.Clock.Today()), nil
	}

	remaining := inv.UnpaidAmount()
	if remaining.IsNegative() {
		return nil, ierr.NewError("invoice is overpaid").
			WithHint("An overpaid invoice cannot be settled").
			WithReportableDetails(map[string]any{
				"invoice_id":    inv.ID,
				"unpaid_amount": remaining,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	p := &payment.Payment{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID: inv.ID,
		Amount:    remaining,
		Date:      s.Clock.Today(),
		Notes:     "settled",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}

	var reconciled *invoice.Invoice
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.PaymentRepo.Create(ctx, p); err != nil {
			return err
		}
		reconciled, err = s.ReconcileInvoice(ctx, inv.ID)
		return err
	})
	if err != nil {
		s.Logger.Errorw("failed to settle invoice",
			"invoice_id", inv.ID,
			"error", err)
		return nil, err
	}

	return dto.NewInvoiceResponse(reconciled, s.Clock.Today()), nil
}

func (s *paymentService) ReconcileInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	sum, err := s.PaymentRepo.SumByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	paid := sum.GreaterThanOrEqual(inv.GrossAmount)
	if inv.PaidAmount.Equal(sum) && inv.Paid == paid {
		return inv, nil
	}

	inv.PaidAmount = sum
	inv.Paid = paid
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Debugw("reconciled invoice from payments",
		"invoice_id", inv.ID,
		"paid_amount", sum,
		"paid", paid)

	return inv, nil
}
