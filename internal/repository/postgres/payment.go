package postgres

import (
	"context"
	"database/sql"
	"errors"

	domainPayment "github.com/facturio/facturio/internal/domain/payment"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/types"
	"github.com/shopspring/decimal"
)

type paymentRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewPaymentRepository(client postgres.IClient, logger *logger.Logger) domainPayment.Repository {
	return &paymentRepository{
		client: client,
		logger: logger,
	}
}

func (r *paymentRepository) Create(ctx context.Context, p *domainPayment.Payment) error {
	query := `
		INSERT INTO payments (
			id, invoice_id, amount, date, notes, deleted_at,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :invoice_id, :amount, :date, :notes, :deleted_at,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := sqlxNamedExec(ctx, r.client, query, p); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*domainPayment.Payment, error) {
	query := `
		SELECT * FROM payments
		WHERE id = $1 AND tenant_id = $2`

	var p domainPayment.Payment
	err := r.client.Querier(ctx).GetContext(ctx, &p, query, id, types.GetTenantID(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("payment not found").
				WithHint("Payment not found").
				WithReportableDetails(map[string]any{"payment_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*domainPayment.Payment, error) {
	query := `
		SELECT * FROM payments
		WHERE invoice_id = $1 AND tenant_id = $2 AND deleted_at IS NULL
		ORDER BY date ASC, created_at ASC`

	var payments []*domainPayment.Payment
	err := r.client.Querier(ctx).SelectContext(ctx, &payments, query,
		invoiceID, types.GetTenantID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	return payments, nil
}

func (r *paymentRepository) SumByInvoice(ctx context.Context, invoiceID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE invoice_id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	var sum decimal.Decimal
	err := r.client.Querier(ctx).GetContext(ctx, &sum, query,
		invoiceID, types.GetTenantID(ctx))
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHint("Failed to sum payments").
			Mark(ierr.ErrDatabase)
	}
	return sum, nil
}

func (r *paymentRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE payments
		SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	result, err := r.client.Querier(ctx).ExecContext(ctx, query, id, types.GetTenantID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to delete payment").
			Mark(ierr.ErrDatabase)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ierr.NewError("payment not found").
			WithHint("Payment not found or already deleted").
			WithReportableDetails(map[string]any{"payment_id": id}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *paymentRepository) Purge(ctx context.Context, invoiceID string) error {
	query := `
		DELETE FROM payments
		WHERE invoice_id = $1 AND tenant_id = $2 AND deleted_at IS NOT NULL`

	if _, err := r.client.Querier(ctx).ExecContext(ctx, query,
		invoiceID, types.GetTenantID(ctx)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to purge payments").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
