package service

import (
	"testing"
	"time"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/invoice"
	"github.com/facturio/facturio/internal/domain/recurringinvoice"
	"github.com/facturio/facturio/internal/domain/series"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/testutil"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RecurringInvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  RecurringInvoiceService
	testData struct {
		series *series.Series
	}
}

func TestRecurringInvoiceService(t *testing.T) {
	suite.Run(t, new(RecurringInvoiceServiceSuite))
}

func (s *RecurringInvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *RecurringInvoiceServiceSuite) setupService() {
	s.service = NewRecurringInvoiceService(ServiceParams{
		Logger:               s.GetLogger(),
		Config:               s.GetConfig(),
		DB:                   s.GetDB(),
		Clock:                s.GetClock(),
		SeriesRepo:           s.GetStores().SeriesRepo,
		InvoiceRepo:          s.GetStores().InvoiceRepo,
		PaymentRepo:          s.GetStores().PaymentRepo,
		RecurringInvoiceRepo: s.GetStores().RecurringInvoiceRepo,
	})
}

func (s *RecurringInvoiceServiceSuite) setupTestData() {
	s.testData.series = &series.Series{
		ID:         "ser_test",
		Name:       "Default",
		NextNumber: 1,
		Enabled:    true,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SeriesRepo.Create(s.GetContext(), s.testData.series))
}

// monthlySchedule creates a published schedule starting 2021-01-01 with one
// occurrence per month.
func (s *RecurringInvoiceServiceSuite) monthlySchedule(id string, mutate func(*recurringinvoice.RecurringInvoice)) *recurringinvoice.RecurringInvoice {
	ri := &recurringinvoice.RecurringInvoice{
		ID:           id,
		SeriesID:     s.testData.series.ID,
		CustomerName: "Acme Corp",
		DaysToDue:    30,
		StartingDate: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		Period:       1,
		PeriodType:   types.PeriodTypeMonth,
		LineItems: []*recurringinvoice.TemplateLineItem{
			{
				ID:                 id + "_li",
				RecurringInvoiceID: id,
				Description:        "Subscription",
				Quantity:           decimal.NewFromInt(1),
				UnitaryCost:        decimal.NewFromInt(100),
				TaxRate:            decimal.NewFromInt(21),
				BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
			},
		},
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	if mutate != nil {
		mutate(ri)
	}
	s.NoError(s.GetStores().RecurringInvoiceRepo.Create(s.GetContext(), ri))
	return ri
}

func (s *RecurringInvoiceServiceSuite) listGenerated(scheduleID string) []*invoice.Invoice {
	filter := types.NewInvoiceFilter()
	filter.QueryFilter = types.NewNoLimitQueryFilter()
	filter.RecurringInvoiceID = lo.ToPtr(scheduleID)
	invoices, err := s.GetStores().InvoiceRepo.List(s.GetContext(), filter)
	s.NoError(err)
	return invoices
}

func (s *RecurringInvoiceServiceSuite) TestGenerateThreeMonthlyOccurrences() {
	ri := s.monthlySchedule("rinv_monthly", nil)

	created, err := s.service.GenerateDueInvoices(s.GetContext(), ri.ID,
		time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(3, created)

	invoices := s.listGenerated(ri.ID)
	s.Len(invoices, 3)

	wantDates := []time.Time{
		time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, inv := range invoices {
		s.True(inv.Draft)
		s.Nil(inv.Number)
		s.Equal(i, *inv.Occurrence)
		s.True(inv.IssueDate.Equal(wantDates[i]), "occurrence %d issue date %s", i, inv.IssueDate)
		s.True(inv.DueDate.Equal(wantDates[i].AddDate(0, 0, 30)))
		s.Equal("Acme Corp", inv.CustomerName)
		s.True(inv.GrossAmount.Equal(decimal.NewFromInt(121)))
	}

	stored, err := s.GetStores().RecurringInvoiceRepo.Get(s.GetContext(), ri.ID)
	s.NoError(err)
	s.Equal(3, stored.OccurrencesGenerated)
}

func (s *RecurringInvoiceServiceSuite) TestGeneratedZeroGrossInvoiceIsPaid() {
	ri := s.monthlySchedule("rinv_free", func(ri *recurringinvoice.RecurringInvoice) {
		ri.LineItems = nil
	})

	created, err := s.service.GenerateDueInvoices(s.GetContext(), ri.ID,
		time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(1, created)

	invoices := s.listGenerated(ri.ID)
	s.Len(invoices, 1)
	s.True(invoices[0].GrossAmount.IsZero())
	s.True(invoices[0].Paid)
}

func (s *RecurringInvoiceServiceSuite) TestSecondRunGeneratesNothing() {
	ri := s.monthlySchedule("rinv_monthly", nil)
	today := time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)

	created, err := s.service.GenerateDueInvoices(s.GetContext(), ri.ID, today)
	s.NoError(err)
	s.Equal(3, created)

	created, err = s.service.GenerateDueInvoices(s.GetContext(), ri.ID, today)
	s.NoError(err)
	s.Equal(0, created)
	s.Len(s.listGenerated(ri.ID), 3)
}

func (s *RecurringInvoiceServiceSuite) TestMaxOccurrencesExhaustsSchedule() {
	ri := s.monthlySchedule("rinv_capped", func(r *recurringinvoice.RecurringInvoice) {
		r.MaxOccurrences = lo.ToPtr(2)
	})

	created, err := s.service.GenerateDueInvoices(s.GetContext(), ri.ID,
		time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(2, created)

	resp, err := s.service.GetRecurringInvoice(s.GetContext(), ri.ID)
	s.NoError(err)
	s.True(resp.Exhausted)
}

func (s *RecurringInvoiceServiceSuite) TestFinishingDateCutsOffGeneration() {
	ri := s.monthlySchedule("rinv_finishing", func(r *recurringinvoice.RecurringInvoice) {
		r.FinishingDate = lo.ToPtr(time.Date(2021, 2, 15, 0, 0, 0, 0, time.UTC))
	})

	created, err := s.service.GenerateDueInvoices(s.GetContext(), ri.ID,
		time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(2, created)

	resp, err := s.service.GetRecurringInvoice(s.GetContext(), ri.ID)
	s.NoError(err)
	s.True(resp.Exhausted)
}

func (s *RecurringInvoiceServiceSuite) TestMonthEndClamping() {
	ri := s.monthlySchedule("rinv_eom", func(r *recurringinvoice.RecurringInvoice) {
		r.StartingDate = time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC)
	})

	created, err := s.service.GenerateDueInvoices(s.GetContext(), ri.ID,
		time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(3, created)

	invoices := s.listGenerated(ri.ID)
	wantDates := []time.Time{
		time.Date(2021, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	for i, inv := range invoices {
		s.True(inv.IssueDate.Equal(wantDates[i]), "occurrence %d issue date %s", i, inv.IssueDate)
	}
}

func (s *RecurringInvoiceServiceSuite) TestExistingOccurrenceIsNotDuplicated() {
	ri := s.monthlySchedule("rinv_repair", nil)

	// Simulate a run that created the first invoice but stopped before
	// advancing the cursor
	orphan := &invoice.Invoice{
		ID:                 "inv_orphan",
		SeriesID:           ri.SeriesID,
		Draft:              true,
		IssueDate:          ri.StartingDate,
		CustomerName:       ri.CustomerName,
		RecurringInvoiceID: lo.ToPtr(ri.ID),
		Occurrence:         lo.ToPtr(0),
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), orphan))

	created, err := s.service.GenerateDueInvoices(s.GetContext(), ri.ID,
		time.Date(2021, 2, 15, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(1, created)

	s.Len(s.listGenerated(ri.ID), 2)

	stored, err := s.GetStores().RecurringInvoiceRepo.Get(s.GetContext(), ri.ID)
	s.NoError(err)
	s.Equal(2, stored.OccurrencesGenerated)
}

func (s *RecurringInvoiceServiceSuite) TestGenerateAllDueAggregatesSchedules() {
	s.monthlySchedule("rinv_a", nil)
	s.monthlySchedule("rinv_b", func(r *recurringinvoice.RecurringInvoice) {
		r.StartingDate = time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	})
	// Draft schedules never generate
	s.monthlySchedule("rinv_draft", func(r *recurringinvoice.RecurringInvoice) {
		r.Draft = true
	})

	resp, err := s.service.GenerateAllDue(s.GetContext(),
		time.Date(2021, 2, 15, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(3, resp.Created)
	s.Len(resp.Items, 2)
	for _, item := range resp.Items {
		s.Empty(item.Error)
	}
}

func (s *RecurringInvoiceServiceSuite) TestGenerationBeforeStartDoesNothing() {
	ri := s.monthlySchedule("rinv_future", nil)

	created, err := s.service.GenerateDueInvoices(s.GetContext(), ri.ID,
		time.Date(2020, 12, 31, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal(0, created)
}

func (s *RecurringInvoiceServiceSuite) TestCreateRecurringInvoiceDefaultsDaysToDue() {
	resp, err := s.service.CreateRecurringInvoice(s.GetContext(), &dto.CreateRecurringInvoiceRequest{
		SeriesID:     s.testData.series.ID,
		CustomerName: "Acme Corp",
		StartingDate: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		Period:       1,
		PeriodType:   types.PeriodTypeMonth,
	})
	s.NoError(err)
	s.Equal(s.GetConfig().Invoicing.DaysToDue, resp.DaysToDue)
	s.False(resp.Exhausted)
}

func (s *RecurringInvoiceServiceSuite) TestCreateRecurringInvoiceUnknownSeries() {
	_, err := s.service.CreateRecurringInvoice(s.GetContext(), &dto.CreateRecurringInvoiceRequest{
		SeriesID:     "ser_missing",
		CustomerName: "Acme Corp",
		StartingDate: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		Period:       1,
		PeriodType:   types.PeriodTypeMonth,
	})
	s.True(ierr.IsNotFound(err))
}
