package dto

import (
	"context"

	"github.com/facturio/facturio/internal/domain/series"
	"github.com/facturio/facturio/internal/types"
	"github.com/facturio/facturio/internal/validator"
)

// CreateSeriesRequest represents the request payload for creating a series
type CreateSeriesRequest struct {
	Name string `json:"name" validate:"required"`
	// value is the display prefix prepended to invoice numbers
	Value string `json:"value"`
	// first_number seeds the counter; defaults to 1
	FirstNumber *int64 `json:"first_number,omitempty" validate:"omitempty,min=0"`
	Enabled     *bool  `json:"enabled,omitempty"`
}

func (r *CreateSeriesRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToSeries converts the request to a domain series
func (r *CreateSeriesRequest) ToSeries(ctx context.Context) *series.Series {
	nextNumber := int64(1)
	if r.FirstNumber != nil {
		nextNumber = *r.FirstNumber
	}
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return &series.Series{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SERIES),
		Name:       r.Name,
		Value:      r.Value,
		NextNumber: nextNumber,
		Enabled:    enabled,
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
}

// SeriesResponse represents a series in API responses
type SeriesResponse struct {
	*series.Series
}

func NewSeriesResponse(s *series.Series) *SeriesResponse {
	return &SeriesResponse{Series: s}
}
