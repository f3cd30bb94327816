package v1

import (
	"net/http"

	"github.com/facturio/facturio/internal/api/dto"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/service"
	"github.com/gin-gonic/gin"
)

type RecurringInvoiceHandler struct {
	service service.RecurringInvoiceService
	log     *logger.Logger
}

func NewRecurringInvoiceHandler(service service.RecurringInvoiceService, log *logger.Logger) *RecurringInvoiceHandler {
	return &RecurringInvoiceHandler{service: service, log: log}
}

// @Summary Create a recurring invoice schedule
// @Tags RecurringInvoices
// @Accept json
// @Produce json
// @Param schedule body dto.CreateRecurringInvoiceRequest true "Schedule data"
// @Success 201 {object} dto.RecurringInvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /recurring-invoices [post]
func (h *RecurringInvoiceHandler) CreateRecurringInvoice(c *gin.Context) {
	var req dto.CreateRecurringInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateRecurringInvoice(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create recurring invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a recurring invoice schedule by ID
// @Tags RecurringInvoices
// @Produce json
// @Param id path string true "Recurring invoice ID"
// @Success 200 {object} dto.RecurringInvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /recurring-invoices/{id} [get]
func (h *RecurringInvoiceHandler) GetRecurringInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Recurring invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetRecurringInvoice(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get recurring invoice", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List active recurring invoice schedules
// @Tags RecurringInvoices
// @Produce json
// @Success 200 {array} dto.RecurringInvoiceResponse
// @Router /recurring-invoices [get]
func (h *RecurringInvoiceHandler) ListRecurringInvoices(c *gin.Context) {
	resp, err := h.service.ListRecurringInvoices(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list recurring invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a recurring invoice schedule
// @Tags RecurringInvoices
// @Produce json
// @Param id path string true "Recurring invoice ID"
// @Success 204
// @Failure 404 {object} ierr.ErrorResponse
// @Router /recurring-invoices/{id} [delete]
func (h *RecurringInvoiceHandler) DeleteRecurringInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Recurring invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	if err := h.service.DeleteRecurringInvoice(c.Request.Context(), id); err != nil {
		h.log.Error("Failed to delete recurring invoice", "error", err)
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
