package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cenkalti/backoff/v4"
	domainSeries "github.com/facturio/facturio/internal/domain/series"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/types"
	"github.com/lib/pq"
)

type seriesRepository struct {
	client     postgres.IClient
	logger     *logger.Logger
	maxRetries int
}

func NewSeriesRepository(client postgres.IClient, logger *logger.Logger, maxRetries int) domainSeries.Repository {
	return &seriesRepository{
		client:     client,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

func (r *seriesRepository) Create(ctx context.Context, s *domainSeries.Series) error {
	query := `
		INSERT INTO invoice_series (
			id, name, value, next_number, enabled,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :name, :value, :next_number, :enabled,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := sqlxNamedExec(ctx, r.client, query, s); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create series").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *seriesRepository) Get(ctx context.Context, id string) (*domainSeries.Series, error) {
	query := `
		SELECT * FROM invoice_series
		WHERE id = $1 AND tenant_id = $2 AND status != $3`

	var s domainSeries.Series
	err := r.client.Querier(ctx).GetContext(ctx, &s, query,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("series not found").
				WithHint("Series not found").
				WithReportableDetails(map[string]any{"series_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get series").
			Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *seriesRepository) Update(ctx context.Context, s *domainSeries.Series) error {
	// next_number is deliberately not part of the update set
	query := `
		UPDATE invoice_series SET
			name = :name,
			value = :value,
			enabled = :enabled,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	result, err := sqlxNamedExec(ctx, r.client, query, s)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update series").
			Mark(ierr.ErrDatabase)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ierr.NewError("series not found").
			WithReportableDetails(map[string]any{"series_id": s.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *seriesRepository) List(ctx context.Context) ([]*domainSeries.Series, error) {
	query := `
		SELECT * FROM invoice_series
		WHERE tenant_id = $1 AND status != $2
		ORDER BY created_at DESC`

	var series []*domainSeries.Series
	err := r.client.Querier(ctx).SelectContext(ctx, &series, query,
		types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list series").
			Mark(ierr.ErrDatabase)
	}
	return series, nil
}

// NextNumber takes the series' current counter and advances it in a single
// UPDATE ... RETURNING statement, so concurrent callers are serialized by
// the row lock and can never observe the same value. Serialization failures
// are retried with exponential backoff; exhaustion surfaces as a retryable
// contention error.
func (r *seriesRepository) NextNumber(ctx context.Context, id string) (int64, error) {
	query := `
		UPDATE invoice_series
		SET next_number = next_number + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND tenant_id = $2 AND status != $3
		RETURNING next_number - 1`

	var number int64
	operation := func() error {
		err := r.client.Querier(ctx).GetContext(ctx, &number, query,
			id, types.GetTenantID(ctx), types.StatusDeleted)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return backoff.Permanent(ierr.NewError("series not found").
					WithHint("Series not found").
					WithReportableDetails(map[string]any{"series_id": id}).
					Mark(ierr.ErrNotFound))
			}
			if isSerializationFailure(err) {
				return err
			}
			return backoff.Permanent(ierr.WithError(err).
				WithHint("Failed to allocate invoice number").
				Mark(ierr.ErrDatabase))
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(r.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return 0, permanent.Err
		}
		return 0, ierr.WithError(err).
			WithHint("Invoice number allocation could not be serialized, retry the request").
			WithReportableDetails(map[string]any{"series_id": id}).
			Mark(ierr.ErrContention)
	}

	r.logger.Debugw("allocated invoice number",
		"series_id", id,
		"number", number)

	return number, nil
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// serialization_failure, deadlock_detected, lock_not_available
		return pqErr.Code == "40001" || pqErr.Code == "40P01" || pqErr.Code == "55P03"
	}
	return false
}
