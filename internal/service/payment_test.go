package service

import (
	"testing"
	"time"

	"github.com/facturio/facturio/internal/api/dto"
	"github.com/facturio/facturio/internal/domain/invoice"
	"github.com/facturio/facturio/internal/domain/series"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/testutil"
	"github.com/facturio/facturio/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PaymentService
	testData struct {
		series  *series.Series
		invoice *invoice.Invoice
	}
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *PaymentServiceSuite) setupService() {
	s.service = NewPaymentService(ServiceParams{
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

func (s *PaymentServiceSuite) setupTestData() {
	s.testData.series = &series.Series{
		ID:         "ser_test",
		Name:       "Default",
		NextNumber: 1,
		Enabled:    true,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SeriesRepo.Create(s.GetContext(), s.testData.series))

	s.testData.invoice = &invoice.Invoice{
		ID:           "inv_test_payment",
		SeriesID:     s.testData.series.ID,
		Number:       lo.ToPtr(int64(1)),
		IssueDate:    time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC),
		DueDate:      lo.ToPtr(time.Date(2021, 2, 14, 0, 0, 0, 0, time.UTC)),
		CustomerName: "Acme Corp",
		NetAmount:    decimal.NewFromInt(100),
		TaxAmount:    decimal.NewFromInt(10),
		GrossAmount:  decimal.NewFromInt(110),
		PaidAmount:   decimal.Zero,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().InvoiceRepo.Create(s.GetContext(), s.testData.invoice))
}

func (s *PaymentServiceSuite) recordPayment(amount decimal.Decimal) *dto.PaymentResponse {
	resp, err := s.service.RecordPayment(s.GetContext(), s.testData.invoice.ID, &dto.RecordPaymentRequest{
		Amount: amount,
		Date:   time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	s.NoError(err)
	return resp
}

func (s *PaymentServiceSuite) getInvoice() *invoice.Invoice {
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	return inv
}

func (s *PaymentServiceSuite) TestPartialPaymentLeavesInvoiceUnpaid() {
	s.recordPayment(decimal.NewFromInt(50))

	inv := s.getInvoice()
	s.True(inv.PaidAmount.Equal(decimal.NewFromInt(50)))
	s.False(inv.Paid)
	s.True(inv.UnpaidAmount().Equal(decimal.NewFromInt(60)))
}

func (s *PaymentServiceSuite) TestFullPaymentMarksInvoicePaid() {
	s.recordPayment(decimal.NewFromInt(60))
	s.recordPayment(decimal.NewFromInt(50))

	inv := s.getInvoice()
	s.True(inv.PaidAmount.Equal(decimal.NewFromInt(110)))
	s.True(inv.Paid)
}

func (s *PaymentServiceSuite) TestOverpaymentStillPaid() {
	s.recordPayment(decimal.NewFromInt(200))

	inv := s.getInvoice()
	s.True(inv.Paid)
	s.True(inv.UnpaidAmount().Equal(decimal.NewFromInt(-90)))
}

func (s *PaymentServiceSuite) TestRemovePaymentFlipsInvoiceBackToUnpaid() {
	p := s.recordPayment(decimal.NewFromInt(110))
	s.True(s.getInvoice().Paid)

	_, err := s.service.RemovePayment(s.GetContext(), p.ID)
	s.NoError(err)

	inv := s.getInvoice()
	s.False(inv.Paid)
	s.True(inv.PaidAmount.IsZero())

	// The payment is tombstoned, not gone
	stored, err := s.service.GetPayment(s.GetContext(), p.ID)
	s.NoError(err)
	s.True(stored.Deleted())
}

func (s *PaymentServiceSuite) TestRemovePaymentTwiceIsNoop() {
	p := s.recordPayment(decimal.NewFromInt(10))

	_, err := s.service.RemovePayment(s.GetContext(), p.ID)
	s.NoError(err)

	resp, err := s.service.RemovePayment(s.GetContext(), p.ID)
	s.NoError(err)
	s.False(resp.Paid)
	s.True(resp.PaidAmount.IsZero())
}

func (s *PaymentServiceSuite) TestTombstonedPaymentsExcludedFromLedger() {
	p1 := s.recordPayment(decimal.NewFromInt(40))
	s.recordPayment(decimal.NewFromInt(30))

	_, err := s.service.RemovePayment(s.GetContext(), p1.ID)
	s.NoError(err)

	payments, err := s.service.ListPayments(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Len(payments, 1)

	inv := s.getInvoice()
	s.True(inv.PaidAmount.Equal(decimal.NewFromInt(30)))
}

func (s *PaymentServiceSuite) TestInvoiceSavePurgesTombstonedPayments() {
	p := s.recordPayment(decimal.NewFromInt(40))
	_, err := s.service.RemovePayment(s.GetContext(), p.ID)
	s.NoError(err)

	// Still retrievable before the save lands
	_, err = s.service.GetPayment(s.GetContext(), p.ID)
	s.NoError(err)

	invoiceService := NewInvoiceService(ServiceParams{
		Logger:               s.GetLogger(),
		Config:               s.GetConfig(),
		DB:                   s.GetDB(),
		Clock:                s.GetClock(),
		SeriesRepo:           s.GetStores().SeriesRepo,
		InvoiceRepo:          s.GetStores().InvoiceRepo,
		PaymentRepo:          s.GetStores().PaymentRepo,
		RecurringInvoiceRepo: s.GetStores().RecurringInvoiceRepo,
	})
	_, err = invoiceService.UpdateInvoice(s.GetContext(), s.testData.invoice.ID, &dto.UpdateInvoiceRequest{
		CustomerName: lo.ToPtr("Acme Corporation"),
	})
	s.NoError(err)

	_, err = s.service.GetPayment(s.GetContext(), p.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestSettleInvoiceCoversRemainder() {
	s.recordPayment(decimal.NewFromInt(30))

	resp, err := s.service.SettleInvoice(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.True(resp.Paid)
	s.True(resp.PaidAmount.Equal(decimal.NewFromInt(110)))

	payments, err := s.service.ListPayments(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Len(payments, 2)
}

func (s *PaymentServiceSuite) TestSettlePaidInvoiceIsNoop() {
	s.recordPayment(decimal.NewFromInt(110))

	resp, err := s.service.SettleInvoice(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.True(resp.Paid)

	payments, err := s.service.ListPayments(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Len(payments, 1)
}

func (s *PaymentServiceSuite) TestLedgerMutationsReturnReconciledInvoice() {
	p := s.recordPayment(decimal.NewFromInt(110))
	s.NotNil(p.Invoice)
	s.True(p.Invoice.Paid)
	s.True(p.Invoice.PaidAmount.Equal(decimal.NewFromInt(110)))

	resp, err := s.service.RemovePayment(s.GetContext(), p.ID)
	s.NoError(err)
	s.False(resp.Paid)
	s.True(resp.PaidAmount.IsZero())
}

func (s *PaymentServiceSuite) TestNegativePaymentRejected() {
	_, err := s.service.RecordPayment(s.GetContext(), s.testData.invoice.ID, &dto.RecordPaymentRequest{
		Amount: decimal.NewFromInt(-5),
		Date:   time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestPaymentOnMissingInvoiceRejected() {
	_, err := s.service.RecordPayment(s.GetContext(), "inv_missing", &dto.RecordPaymentRequest{
		Amount: decimal.NewFromInt(5),
		Date:   time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	s.True(ierr.IsNotFound(err))
}
