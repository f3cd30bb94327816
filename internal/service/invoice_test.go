package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/payment"
	"github.com/facturio/facturio/internal/domain/series"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/testutil"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// unavailableLedger fails every payment sum, leaving the rest of the
// repository untouched.
type unavailableLedger struct {
	payment.Repository
}

func (r unavailableLedger) SumByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	return decimal.Zero, ierr.NewError("payments ledger unavailable").
		Mark(ierr.ErrDatabase)
}

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  InvoiceService
	testData struct {
		series *series.Series
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *InvoiceServiceSuite) serviceParams() ServiceParams {
	return ServiceParams{
		Logger:               s.GetLogger(),
		Config:               s.GetConfig(),
		DB:                   s.GetDB(),
		Clock:                s.GetClock(),
		SeriesRepo:           s.GetStores().SeriesRepo,
		InvoiceRepo:          s.GetStores().InvoiceRepo,
		PaymentRepo:          s.GetStores().PaymentRepo,
		RecurringInvoiceRepo: s.GetStores().RecurringInvoiceRepo,
	}
}

func (s *InvoiceServiceSuite) setupService() {
	s.service = NewInvoiceService(s.serviceParams())
}

func (s *InvoiceServiceSuite) setupTestData() {
	s.testData.series = &series.Series{
		ID:         "ser_test",
		Name:       "Default",
		Value:      "F-",
		NextNumber: 1,
		Enabled:    true,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SeriesRepo.Create(s.GetContext(), s.testData.series))
}

func (s *InvoiceServiceSuite) createRequest(draft bool) *dto.CreateInvoiceRequest {
	return &dto.CreateInvoiceRequest{
		SeriesID:     s.testData.series.ID,
		Draft:        draft,
		IssueDate:    time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC),
		DueDate:      lo.ToPtr(time.Date(2021, 2, 14, 0, 0, 0, 0, time.UTC)),
		CustomerName: "Acme Corp",
		LineItems: []dto.CreateInvoiceLineItemRequest{
			{
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(2),
				UnitaryCost: decimal.NewFromInt(50),
				TaxRate:     decimal.NewFromInt(10),
			},
		},
	}
}

func (s *InvoiceServiceSuite) TestCreateDraftInvoiceHasNoNumber() {
	resp, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(true))
	s.NoError(err)
	s.True(resp.Draft)
	s.Nil(resp.Number)
	s.Equal(types.InvoiceStatusDraft, resp.StatusTag)

	// The counter was not touched
	ser, err := s.GetStores().SeriesRepo.Get(s.GetContext(), s.testData.series.ID)
	s.NoError(err)
	s.Equal(int64(1), ser.NextNumber)
}

func (s *InvoiceServiceSuite) TestCreateNonDraftInvoiceAllocatesNumber() {
	resp, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(false))
	s.NoError(err)
	s.False(resp.Draft)
	s.NotNil(resp.Number)
	s.Equal(int64(1), *resp.Number)

	resp2, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(false))
	s.NoError(err)
	s.Equal(int64(2), *resp2.Number)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceComputesAmounts() {
	resp, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(true))
	s.NoError(err)
	s.True(resp.NetAmount.Equal(decimal.NewFromInt(100)))
	s.True(resp.TaxAmount.Equal(decimal.NewFromInt(10)))
	s.True(resp.GrossAmount.Equal(decimal.NewFromInt(110)))
	s.True(resp.UnpaidAmount.Equal(decimal.NewFromInt(110)))
}

func (s *InvoiceServiceSuite) TestCreateZeroGrossInvoiceIsPaid() {
	req := s.createRequest(false)
	req.LineItems = nil

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.NoError(err)
	s.True(resp.GrossAmount.IsZero())
	s.True(resp.Paid)
	s.Equal(types.InvoiceStatusPaid, resp.StatusTag)

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.ID)
	s.NoError(err)
	s.True(stored.Paid)
}

func (s *InvoiceServiceSuite) TestFinalizeInvoiceAssignsNumberOnce() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(true))
	s.NoError(err)

	finalized, err := s.service.FinalizeInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.False(finalized.Draft)
	s.NotNil(finalized.Number)
	s.Equal(int64(1), *finalized.Number)

	// Finalizing again is a no-op
	again, err := s.service.FinalizeInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(int64(1), *again.Number)

	ser, err := s.GetStores().SeriesRepo.Get(s.GetContext(), s.testData.series.ID)
	s.NoError(err)
	s.Equal(int64(2), ser.NextNumber)
}

func (s *InvoiceServiceSuite) TestFinalizeWithDisabledSeriesFails() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(true))
	s.NoError(err)

	s.testData.series.Enabled = false
	s.NoError(s.GetStores().SeriesRepo.Update(s.GetContext(), s.testData.series))

	_, err = s.service.FinalizeInvoice(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestConcurrentFinalizeAllocatesDistinctNumbers() {
	const n = 20

	ids := make([]string, n)
	for i := 0; i < n; i++ {
		created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(true))
		s.NoError(err)
		ids[i] = created.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := s.service.FinalizeInvoice(s.GetContext(), id)
			s.NoError(err)
		}(id)
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, id := range ids {
		inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), id)
		s.NoError(err)
		s.NotNil(inv.Number)
		s.False(seen[*inv.Number], "number %d allocated twice", *inv.Number)
		seen[*inv.Number] = true
	}

	// Numbers are gapless: exactly 1..n were handed out
	for i := int64(1); i <= n; i++ {
		s.True(seen[i], "number %d missing", i)
	}
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceDraftToFinalAllocates() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(true))
	s.NoError(err)

	updated, err := s.service.UpdateInvoice(s.GetContext(), created.ID, &dto.UpdateInvoiceRequest{
		Draft: lo.ToPtr(false),
	})
	s.NoError(err)
	s.False(updated.Draft)
	s.NotNil(updated.Number)
	s.Equal(int64(1), *updated.Number)
}

func (s *InvoiceServiceSuite) TestNumberedInvoiceCannotBecomeDraft() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(false))
	s.NoError(err)

	_, err = s.service.UpdateInvoice(s.GetContext(), created.ID, &dto.UpdateInvoiceRequest{
		Draft: lo.ToPtr(true),
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestNumberedInvoiceCannotChangeSeries() {
	other := &series.Series{
		ID:         "ser_other",
		Name:       "Other",
		NextNumber: 1,
		Enabled:    true,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SeriesRepo.Create(s.GetContext(), other))

	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(false))
	s.NoError(err)
	s.Equal(int64(1), *created.Number)

	_, err = s.service.UpdateInvoice(s.GetContext(), created.ID, &dto.UpdateInvoiceRequest{
		SeriesID: lo.ToPtr(other.ID),
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	// Restating the current series is fine
	_, err = s.service.UpdateInvoice(s.GetContext(), created.ID, &dto.UpdateInvoiceRequest{
		SeriesID: lo.ToPtr(s.testData.series.ID),
	})
	s.NoError(err)

	// The other series' numbering is unaffected
	otherReq := s.createRequest(false)
	otherReq.SeriesID = other.ID
	inOther, err := s.service.CreateInvoice(s.GetContext(), otherReq)
	s.NoError(err)
	s.Equal(int64(1), *inOther.Number)
	s.Equal(other.ID, inOther.SeriesID)
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceAbortsWhenLedgerUnavailable() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(false))
	s.NoError(err)

	params := s.serviceParams()
	params.PaymentRepo = unavailableLedger{Repository: params.PaymentRepo}
	broken := NewInvoiceService(params)

	_, err = broken.UpdateInvoice(s.GetContext(), created.ID, &dto.UpdateInvoiceRequest{
		CustomerName: lo.ToPtr("Globex"),
	})
	s.Error(err)
	s.True(ierr.IsDatabase(err))

	// Nothing was persisted
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal("Acme Corp", inv.CustomerName)
}

func (s *InvoiceServiceSuite) TestSeriesLookupReturnsDetachedCopy() {
	ser, err := s.GetStores().SeriesRepo.Get(s.GetContext(), s.testData.series.ID)
	s.NoError(err)
	ser.NextNumber = 99

	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(false))
	s.NoError(err)
	s.Equal(int64(1), *created.Number)
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceRecalculatesAmounts() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(true))
	s.NoError(err)

	updated, err := s.service.UpdateInvoice(s.GetContext(), created.ID, &dto.UpdateInvoiceRequest{
		LineItems: []dto.CreateInvoiceLineItemRequest{
			{
				Description: "Consulting",
				Quantity:    decimal.NewFromInt(1),
				UnitaryCost: decimal.NewFromInt(200),
			},
		},
	})
	s.NoError(err)
	s.True(updated.GrossAmount.Equal(decimal.NewFromInt(200)))
}

func (s *InvoiceServiceSuite) TestListInvoicesByStatusTag() {
	s.SetClock(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC))

	_, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(true))
	s.NoError(err)

	// Due 2021-02-14, already past the pinned clock
	_, err = s.service.CreateInvoice(s.GetContext(), s.createRequest(false))
	s.NoError(err)

	filter := types.NewInvoiceFilter()
	filter.StatusTag = lo.ToPtr(types.InvoiceStatusOverdue)
	filter.StatusTagDate = lo.ToPtr(s.GetClock().Today())

	resp, err := s.service.ListInvoices(s.GetContext(), filter)
	s.NoError(err)
	s.Len(resp.Items, 1)
	s.Equal(types.InvoiceStatusOverdue, resp.Items[0].StatusTag)
	s.Equal(1, resp.Pagination.Total)
}

func (s *InvoiceServiceSuite) TestGetInvoiceNotFound() {
	_, err := s.service.GetInvoice(s.GetContext(), "inv_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestDeleteInvoice() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.createRequest(true))
	s.NoError(err)

	s.NoError(s.service.DeleteInvoice(s.GetContext(), created.ID))

	_, err = s.service.GetInvoice(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))
}
