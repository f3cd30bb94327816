package service

import (
	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/domain/invoice"
	"github.com/facturio/facturio/internal/domain/payment"
	"github.com/facturio/facturio/internal/domain/recurringinvoice"
	"github.com/facturio/facturio/internal/domain/series"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/types"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Clock  types.Clock

	// Repositories
	SeriesRepo           series.Repository
	InvoiceRepo          invoice.Repository
	PaymentRepo          payment.Repository
	RecurringInvoiceRepo recurringinvoice.Repository
}

func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	clock types.Clock,
	seriesRepo series.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	recurringInvoiceRepo recurringinvoice.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:               logger,
		Config:               config,
		DB:                   db,
		Clock:                clock,
		SeriesRepo:           seriesRepo,
		InvoiceRepo:          invoiceRepo,
		PaymentRepo:          paymentRepo,
		RecurringInvoiceRepo: recurringInvoiceRepo,
	}
}
