package service

import (
	"context"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/invoice"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
)

// InvoiceService handles the invoice lifecycle: creation, finalization with
// number allocation, updates and deletion.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	UpdateInvoice(ctx context.Context, id string, req *dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error

	// FinalizeInvoice turns a draft into a numbered invoice. Finalizing
	// an already numbered invoice is a no-op.
	FinalizeInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv := req.ToInvoice(ctx)
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	// A non-draft invoice gets its number before the first persist. The
	// counter is advanced regardless of whether the persist succeeds, so
	// a failed create burns the number instead of risking a duplicate.
	if inv.NeedsNumber() {
		if err := s.assignNumber(ctx, inv); err != nil {
			return nil, err
		}
	}

	if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
		s.Logger.Errorw("failed to create invoice",
			"invoice_id", inv.ID,
			"series_id", inv.SeriesID,
			"error", err)
		return nil, err
	}

	return dto.NewInvoiceResponse(inv, s.Clock.Today()), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice ID is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewInvoiceResponse(inv, s.Clock.Today()), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	today := s.Clock.Today()
	items := make([]*dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = dto.NewInvoiceResponse(inv, today)
	}

	return &dto.ListInvoicesResponse{
		Items:      items,
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req *dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// A numbered invoice never goes back to draft
	if req.Draft != nil && *req.Draft && inv.Number != nil {
		return nil, ierr.NewError("numbered invoice cannot become a draft").
			WithHint("An invoice keeps its number once assigned").
			WithReportableDetails(map[string]any{"number": *inv.Number}).
			Mark(ierr.ErrInvalidOperation)
	}

	// A numbered invoice never moves to another series either: its number
	// was issued by this series' counter and would collide in the target
	if req.SeriesID != nil && *req.SeriesID != inv.SeriesID && inv.Number != nil {
		return nil, ierr.NewError("numbered invoice cannot change series").
			WithHint("An invoice stays in the series that issued its number").
			WithReportableDetails(map[string]any{
				"series_id": inv.SeriesID,
				"number":    *inv.Number,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	req.Apply(ctx, inv)

	if inv.NeedsNumber() {
		if err := s.assignNumber(ctx, inv); err != nil {
			return nil, err
		}
	}

	// Totals changed, so the paid flag may have flipped either way
	if err := s.reconcile(ctx, inv); err != nil {
		return nil, err
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		s.Logger.Errorw("failed to update invoice",
			"invoice_id", inv.ID,
			"error", err)
		return nil, err
	}

	// Tombstoned payments are only removed for good once the save landed
	if err := s.PaymentRepo.Purge(ctx, inv.ID); err != nil {
		s.Logger.Errorw("failed to purge payments after invoice update",
			"invoice_id", inv.ID,
			"error", err)
	}

	return dto.NewInvoiceResponse(inv, s.Clock.Today()), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	if id == "" {
		return ierr.NewError("invoice ID is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	if _, err := s.InvoiceRepo.Get(ctx, id); err != nil {
		return err
	}

	return s.InvoiceRepo.Delete(ctx, id)
}

func (s *invoiceService) FinalizeInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.Number != nil {
		return dto.NewInvoiceResponse(inv, s.Clock.Today()), nil
	}

	inv.Draft = false
	if err := s.assignNumber(ctx, inv); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		s.Logger.Errorw("failed to persist finalized invoice",
			"invoice_id", inv.ID,
			"series_id", inv.SeriesID,
			"number", *inv.Number,
			"error", err)
		return nil, err
	}

	s.Logger.Infow("finalized invoice",
		"invoice_id", inv.ID,
		"series_id", inv.SeriesID,
		"number", *inv.Number)

	return dto.NewInvoiceResponse(inv, s.Clock.Today()), nil
}

// assignNumber takes the next number of the invoice's series and sets it on
// the invoice. The counter advance is already durable when this returns, so
// the number stays consumed even if the caller's persist fails afterwards.
func (s *invoiceService) assignNumber(ctx context.Context, inv *invoice.Invoice) error {
	if inv.SeriesID == "" {
		return ierr.NewError("series is required").
			WithHint("A non-draft invoice must belong to a series").
			Mark(ierr.ErrValidation)
	}

	ser, err := s.SeriesRepo.Get(ctx, inv.SeriesID)
	if err != nil {
		return err
	}
	if !ser.Enabled {
		return ierr.NewError("series is disabled").
			WithHint("Numbers cannot be allocated from a disabled series").
			WithReportableDetails(map[string]any{"series_id": ser.ID}).
			Mark(ierr.ErrInvalidOperation)
	}

	number, err := s.SeriesRepo.NextNumber(ctx, inv.SeriesID)
	if err != nil {
		s.Logger.Errorw("failed to allocate invoice number",
			"invoice_id", inv.ID,
			"series_id", inv.SeriesID,
			"error", err)
		return err
	}

	inv.Number = &number
	return nil
}

// reconcile refreshes the invoice's paid amount and paid flag from the
// active payments ledger. A ledger failure aborts the caller's save so a
// stale paid flag never lands alongside new totals.
func (s *invoiceService) reconcile(ctx context.Context, inv *invoice.Invoice) error {
	sum, err := s.PaymentRepo.SumByInvoice(ctx, inv.ID)
	if err != nil {
		s.Logger.Errorw("failed to sum payments for reconciliation",
			"invoice_id", inv.ID,
			"error", err)
		return err
	}
	inv.PaidAmount = sum
	inv.Paid = sum.GreaterThanOrEqual(inv.GrossAmount)
	return nil
}
