package cron

import (
	"net/http"

	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/service"
	"github.com/facturio/facturio/internal/types"
	"github.com/gin-gonic/gin"
)

// RecurringInvoiceHandler handles recurring invoice related cron jobs
type RecurringInvoiceHandler struct {
	recurringInvoiceService service.RecurringInvoiceService
	clock                   types.Clock
	logger                  *logger.Logger
}

// NewRecurringInvoiceHandler creates a new recurring invoice cron handler
func NewRecurringInvoiceHandler(
	recurringInvoiceService service.RecurringInvoiceService,
	clock types.Clock,
	logger *logger.Logger,
) *RecurringInvoiceHandler {
	return &RecurringInvoiceHandler{
		recurringInvoiceService: recurringInvoiceService,
		clock:                   clock,
		logger:                  logger,
	}
}

// GenerateDueInvoices materializes the due occurrences of every active
// schedule. Safe to trigger repeatedly; already claimed occurrences are
// never regenerated.
func (h *RecurringInvoiceHandler) GenerateDueInvoices(c *gin.Context) {
	ctx := c.Request.Context()

	h.logger.Infow("starting recurring invoice generation cron job")

	response, err := h.recurringInvoiceService.GenerateAllDue(ctx, h.clock.Today())
	if err != nil {
		h.logger.Errorw("failed to generate due invoices",
			"error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("completed recurring invoice generation cron job",
		"created", response.Created)
	c.JSON(http.StatusOK, response)
}
