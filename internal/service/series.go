package service

import (
	"context"

	"github.com/facturio/facturio/internal/api/dto"
	ierr "github.com/facturio/facturio/internal/errors"
)

// SeriesService manages numbering series. The counter itself is only ever
// advanced through allocation, never through updates here.
type SeriesService interface {
	CreateSeries(ctx context.Context, req *dto.CreateSeriesRequest) (*dto.SeriesResponse, error)
	GetSeries(ctx context.Context, id string) (*dto.SeriesResponse, error)
	ListSeries(ctx context.Context) ([]*dto.SeriesResponse, error)
}

type seriesService struct {
	ServiceParams
}

func NewSeriesService(params ServiceParams) SeriesService {
	return &seriesService{
		ServiceParams: params,
	}
}

func (s *seriesService) CreateSeries(ctx context.Context, req *dto.CreateSeriesRequest) (*dto.SeriesResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ser := req.ToSeries(ctx)
	if err := ser.Validate(); err != nil {
		return nil, err
	}

	if err := s.SeriesRepo.Create(ctx, ser); err != nil {
		s.Logger.Errorw("failed to create series",
			"series_id", ser.ID,
			"error", err)
		return nil, err
	}

	return dto.NewSeriesResponse(ser), nil
}

func (s *seriesService) GetSeries(ctx context.Context, id string) (*dto.SeriesResponse, error) {
	if id == "" {
		return nil, ierr.NewError("series ID is required").
			WithHint("Series ID is required").
			Mark(ierr.ErrValidation)
	}

	ser, err := s.SeriesRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.NewSeriesResponse(ser), nil
}

func (s *seriesService) ListSeries(ctx context.Context) ([]*dto.SeriesResponse, error) {
	all, err := s.SeriesRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.SeriesResponse, len(all))
	for i, ser := range all {
		items[i] = dto.NewSeriesResponse(ser)
	}
	return items, nil
}
