package v1

import (
	"net/http"

	"github.com/facturio/facturio/internal/api/dto"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/service"
	"github.com/gin-gonic/gin"
)

type SeriesHandler struct {
	service service.SeriesService
	log     *logger.Logger
}

func NewSeriesHandler(service service.SeriesService, log *logger.Logger) *SeriesHandler {
	return &SeriesHandler{service: service, log: log}
}

// @Summary Create a numbering series
// @Tags Series
// @Accept json
// @Produce json
// @Param series body dto.CreateSeriesRequest true "Series data"
// @Success 201 {object} dto.SeriesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /series [post]
func (h *SeriesHandler) CreateSeries(c *gin.Context) {
	var req dto.CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Error("Failed to bind JSON", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateSeries(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to create series", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a series by ID
// @Tags Series
// @Produce json
// @Param id path string true "Series ID"
// @Success 200 {object} dto.SeriesResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /series/{id} [get]
func (h *SeriesHandler) GetSeries(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("id is required").
			WithHint("Series ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetSeries(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Failed to get series", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List series
// @Tags Series
// @Produce json
// @Success 200 {array} dto.SeriesResponse
// @Router /series [get]
func (h *SeriesHandler) ListSeries(c *gin.Context) {
	resp, err := h.service.ListSeries(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list series", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
