package service

import (
	"context"
	"time"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/invoice"
	"github.com/facturio/facturio/internal/domain/recurringinvoice"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

// RecurringInvoiceService manages recurrence schedules and materializes the
// draft invoices their due occurrences call for.
type RecurringInvoiceService interface {
	CreateRecurringInvoice(ctx context.Context, req *dto.CreateRecurringInvoiceRequest) (*dto.RecurringInvoiceResponse, error)
	GetRecurringInvoice(ctx context.Context, id string) (*dto.RecurringInvoiceResponse, error)
	ListRecurringInvoices(ctx context.Context) ([]*dto.RecurringInvoiceResponse, error)
	DeleteRecurringInvoice(ctx context.Context, id string) error

	// GenerateDueInvoices creates one draft invoice per occurrence of the
	// schedule that is due at the given date, strictly in occurrence
	// order, and returns how many it created. Concurrent runs never
	// produce a duplicate: each occurrence is claimed by a compare and
	// set on the schedule cursor.
	GenerateDueInvoices(ctx context.Context, id string, today time.Time) (int, error)

	// GenerateAllDue runs GenerateDueInvoices over every active schedule.
	// One schedule's failure does not stop the others.
	GenerateAllDue(ctx context.Context, today time.Time) (*dto.GenerateDueResponse, error)
}

type recurringInvoiceService struct {
	ServiceParams
}

func NewRecurringInvoiceService(params ServiceParams) RecurringInvoiceService {
	return &recurringInvoiceService{
		ServiceParams: params,
	}
}

func (s *recurringInvoiceService) CreateRecurringInvoice(ctx context.Context, req *dto.CreateRecurringInvoiceRequest) (*dto.RecurringInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ri := req.ToRecurringInvoice(ctx, s.Config.Invoicing.DaysToDue)
	if err := ri.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.SeriesRepo.Get(ctx, ri.SeriesID); err != nil {
		return nil, err
	}

	if err := s.RecurringInvoiceRepo.Create(ctx, ri); err != nil {
		s.Logger.Errorw("failed to create recurring invoice",
			"recurring_invoice_id", ri.ID,
			"error", err)
		return nil, err
	}

	return dto.NewRecurringInvoiceResponse(ri), nil
}

func (s *recurringInvoiceService) GetRecurringInvoice(ctx context.Context, id string) (*dto.RecurringInvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("recurring invoice ID is required").
			WithHint("Recurring invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	ri, err := s.RecurringInvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewRecurringInvoiceResponse(ri), nil
}

func (s *recurringInvoiceService) ListRecurringInvoices(ctx context.Context) ([]*dto.RecurringInvoiceResponse, error) {
	schedules, err := s.RecurringInvoiceRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.RecurringInvoiceResponse, len(schedules))
	for i, ri := range schedules {
		items[i] = dto.NewRecurringInvoiceResponse(ri)
	}
	return items, nil
}

func (s *recurringInvoiceService) DeleteRecurringInvoice(ctx context.Context, id string) error {
	if id == "" {
		return ierr.NewError("recurring invoice ID is required").
			WithHint("Recurring invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	if _, err := s.RecurringInvoiceRepo.Get(ctx, id); err != nil {
		return err
	}

	return s.RecurringInvoiceRepo.Delete(ctx, id)
}

func (s *recurringInvoiceService) GenerateDueInvoices(ctx context.Context, id string, today time.Time) (int, error) {
	ri, err := s.RecurringInvoiceRepo.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.generateForSchedule(ctx, ri, today)
}

func (s *recurringInvoiceService) GenerateAllDue(ctx context.Context, today time.Time) (*dto.GenerateDueResponse, error) {
	schedules, err := s.RecurringInvoiceRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	response := &dto.GenerateDueResponse{
		Items:   make([]*dto.GenerateDueResponseItem, 0, len(schedules)),
		StartAt: s.Clock.Now(),
	}

	failures := 0
	for _, ri := range schedules {
		if !ri.HasPendingOccurrences(today) {
			continue
		}

		item := &dto.GenerateDueResponseItem{RecurringInvoiceID: ri.ID}
		created, err := s.generateForSchedule(ctx, ri, today)
		item.Created = created
		if err != nil {
			item.Error = err.Error()
			failures++
			s.Logger.Errorw("failed to generate invoices for schedule",
				"recurring_invoice_id", ri.ID,
				"created", created,
				"error", err)
		}
		response.Created += created
		response.Items = append(response.Items, item)
	}

	s.Logger.Infow("recurring generation run finished",
		"schedules", len(response.Items),
		"created", response.Created,
		"failures", failures)

	return response, nil
}

// generateForSchedule walks the schedule's occurrences from the cursor and
// stops at the first one that is not yet due or that another run claims.
//
// The ordering per occurrence is create invoice first, then advance the
// cursor with a compare and set. A lost CAS means a concurrent run already
// owns the occurrence, so the freshly created duplicate is deleted and the
// run ends. A failed create leaves the cursor untouched and the occurrence
// is retried on the next run.
func (s *recurringInvoiceService) generateForSchedule(ctx context.Context, ri *recurringinvoice.RecurringInvoice, today time.Time) (int, error) {
	created := 0
	for ri.HasPendingOccurrences(today) {
		n := ri.OccurrencesGenerated
		date, err := ri.OccurrenceDate(n)
		if err != nil {
			return created, err
		}

		exists, err := s.InvoiceRepo.ExistsForOccurrence(ctx, ri.ID, n)
		if err != nil {
			return created, err
		}
		if exists {
			// An earlier run created the invoice but stopped before
			// advancing the cursor. Re-advance without creating.
			if err := s.RecurringInvoiceRepo.AdvanceCursor(ctx, ri.ID, n); err != nil {
				if ierr.IsVersionConflict(err) {
					return created, nil
				}
				return created, err
			}
			ri.OccurrencesGenerated++
			continue
		}

		inv := s.buildOccurrenceInvoice(ctx, ri, n, date)
		if err := s.InvoiceRepo.Create(ctx, inv); err != nil {
			return created, ierr.WithError(err).
				WithHint("Failed to create invoice for schedule occurrence").
				WithReportableDetails(map[string]any{
					"recurring_invoice_id": ri.ID,
					"occurrence":           n,
				}).
				Mark(ierr.ErrSystem)
		}

		if err := s.RecurringInvoiceRepo.AdvanceCursor(ctx, ri.ID, n); err != nil {
			if ierr.IsVersionConflict(err) {
				if delErr := s.InvoiceRepo.Delete(ctx, inv.ID); delErr != nil {
					s.Logger.Errorw("failed to delete duplicate occurrence invoice",
						"invoice_id", inv.ID,
						"recurring_invoice_id", ri.ID,
						"occurrence", n,
						"error", delErr)
				}
				return created, nil
			}
			return created, err
		}

		ri.OccurrencesGenerated++
		created++
	}
	return created, nil
}

// buildOccurrenceInvoice materializes the schedule's template into a draft
// invoice for the n-th occurrence.
func (s *recurringInvoiceService) buildOccurrenceInvoice(ctx context.Context, ri *recurringinvoice.RecurringInvoice, n int, date time.Time) *invoice.Invoice {
	dueDate := date.AddDate(0, 0, ri.DaysToDue)
	occurrence := n

	inv := &invoice.Invoice{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		SeriesID:               ri.SeriesID,
		Draft:                  true,
		IssueDate:              date,
		DueDate:                &dueDate,
		CustomerName:           ri.CustomerName,
		CustomerEmail:          ri.CustomerEmail,
		CustomerIdentification: ri.CustomerIdentification,
		InvoicingAddress:       ri.InvoicingAddress,
		PaidAmount:             decimal.Zero,
		RecurringInvoiceID:     &ri.ID,
		Occurrence:             &occurrence,
		BaseModel:              types.GetDefaultBaseModel(ctx),
	}

	for _, item := range ri.LineItems {
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
