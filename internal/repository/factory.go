package repository

import (
	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/domain/invoice"
	"github.com/facturio/facturio/internal/domain/payment"
	"github.com/facturio/facturio/internal/domain/recurringinvoice"
	"github.com/facturio/facturio/internal/domain/series"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	postgresRepo "github.com/facturio/facturio/internal/repository/postgres"
)

func NewSeriesRepository(client postgres.IClient, cfg *config.Configuration, logger *logger.Logger) series.Repository {
	return postgresRepo.NewSeriesRepository(client, logger, cfg.Invoicing.AllocationMaxRetries)
}

func NewInvoiceRepository(client postgres.IClient, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(client, logger)
}

func NewPaymentRepository(client postgres.IClient, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(client, logger)
}

func NewRecurringInvoiceRepository(client postgres.IClient, logger *logger.Logger) recurringinvoice.Repository {
	return postgresRepo.NewRecurringInvoiceRepository(client, logger)
}
