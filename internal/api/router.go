package api

import (
	"net/http"

	"github.com/facturio/facturio/internal/api/cron"
	v1 "github.com/facturio/facturio/internal/api/v1"
	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/rest/middleware"
	"github.com/facturio/facturio/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Series           *v1.SeriesHandler
	Invoice          *v1.InvoiceHandler
	Payment          *v1.PaymentHandler
	RecurringInvoice *v1.RecurringInvoiceHandler

	CronRecurringInvoice *cron.RecurringInvoiceHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration) *gin.Engine {
	router := gin.Default()

	router.Use(
		middleware.RequestIDMiddleware,
		middleware.TenantMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	if mode != types.ModeCron {
		v1Group := router.Group("/v1")
		registerV1Routes(v1Group, handlers)
	}

	if mode != types.ModeAPI {
		cronGroup := router.Group("/cron")
		registerCronRoutes(cronGroup, handlers)
	}

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	series := router.Group("/series")
	{
		series.POST("", handlers.Series.CreateSeries)
		series.GET("", handlers.Series.ListSeries)
		series.GET("/:id", handlers.Series.GetSeries)
	}

	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.PUT("/:id", handlers.Invoice.UpdateInvoice)
		invoices.DELETE("/:id", handlers.Invoice.DeleteInvoice)
		invoices.POST("/:id/finalize", handlers.Invoice.FinalizeInvoice)
		invoices.POST("/:id/settle", handlers.Payment.SettleInvoice)
		invoices.POST("/:id/payments", handlers.Payment.RecordPayment)
		invoices.GET("/:id/payments", handlers.Payment.ListPayments)
	}

	payments := router.Group("/payments")
	{
		payments.DELETE("/:id", handlers.Payment.RemovePayment)
	}

	recurring := router.Group("/recurring-invoices")
	{
		recurring.POST("", handlers.RecurringInvoice.CreateRecurringInvoice)
		recurring.GET("", handlers.RecurringInvoice.ListRecurringInvoices)
		recurring.GET("/:id", handlers.RecurringInvoice.GetRecurringInvoice)
		recurring.DELETE("/:id", handlers.RecurringInvoice.DeleteRecurringInvoice)
	}
}

func registerCronRoutes(router *gin.RouterGroup, handlers Handlers) {
	recurring := router.Group("/recurring-invoices")
	{
		recurring.POST("/generate", handlers.CronRecurringInvoice.GenerateDueInvoices)
	}
}
