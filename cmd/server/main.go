package main

import (
	"context"
	"time"

	"github.com/facturio/facturio/internal/api"
	"github.com/facturio/facturio/internal/api/cron"
	v1 "github.com/facturio/facturio/internal/api/v1"
	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/repository"
	"github.com/facturio/facturio/internal/service"
	"github.com/facturio/facturio/internal/types"
	"github.com/facturio/facturio/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title Facturio API
// @version 1.0
// @description Invoicing API with sequential numbering and recurring generation
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			logger.NewLogger,
			provideClock,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// Repositories
			repository.NewSeriesRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
			repository.NewRecurringInvoiceRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewSeriesService,
			service.NewInvoiceService,
			service.NewPaymentService,
			service.NewRecurringInvoiceService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideClock() types.Clock {
	return types.RealClock()
}

func provideHandlers(
	logger *logger.Logger,
	clock types.Clock,
	seriesService service.SeriesService,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	recurringInvoiceService service.RecurringInvoiceService,
) api.Handlers {
	return api.Handlers{
		Series:               v1.NewSeriesHandler(seriesService, logger),
		Invoice:              v1.NewInvoiceHandler(invoiceService, logger),
		Payment:              v1.NewPaymentHandler(paymentService, logger),
		RecurringInvoice:     v1.NewRecurringInvoiceHandler(recurringInvoiceService, logger),
		CronRecurringInvoice: cron.NewRecurringInvoiceHandler(recurringInvoiceService, clock, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration) *gin.Engine {
	return api.NewRouter(handlers, cfg)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
