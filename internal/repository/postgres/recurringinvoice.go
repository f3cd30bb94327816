package postgres

import (
	"context"
	"database/sql"
	"errors"

	domainRecurring "github.com/facturio/facturio/internal/domain/recurringinvoice"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/types"
)

type recurringInvoiceRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewRecurringInvoiceRepository(client postgres.IClient, logger *logger.Logger) domainRecurring.Repository {
	return &recurringInvoiceRepository{
		client: client,
		logger: logger,
	}
}

func (r *recurringInvoiceRepository) Create(ctx context.Context, ri *domainRecurring.RecurringInvoice) error {
	return r.client.WithTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO recurring_invoices (
				id, series_id, customer_name, customer_email,
				customer_identification, invoicing_address, days_to_due,
				starting_date, finishing_date, period, period_type,
				max_occurrences, occurrences_generated, draft,
				tenant_id, status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :series_id, :customer_name, :customer_email,
				:customer_identification, :invoicing_address, :days_to_due,
				:starting_date, :finishing_date, :period, :period_type,
				:max_occurrences, :occurrences_generated, :draft,
				:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
			)`

		if _, err := sqlxNamedExec(ctx, r.client, query, ri); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create recurring invoice").
				Mark(ierr.ErrDatabase)
		}

		return r.insertLineItems(ctx, ri)
	})
}

func (r *recurringInvoiceRepository) insertLineItems(ctx context.Context, ri *domainRecurring.RecurringInvoice) error {
	if len(ri.LineItems) == 0 {
		return nil
	}

	query := `
		INSERT INTO recurring_invoice_line_items (
			id, recurring_invoice_id, description, quantity, unitary_cost,
			discount, tax_rate,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :recurring_invoice_id, :description, :quantity, :unitary_cost,
			:discount, :tax_rate,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	for _, item := range ri.LineItems {
		item.RecurringInvoiceID = ri.ID
		if _, err := sqlxNamedExec(ctx, r.client, query, item); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create recurring invoice line item").
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

func (r *recurringInvoiceRepository) Get(ctx context.Context, id string) (*domainRecurring.RecurringInvoice, error) {
	query := `
		SELECT * FROM recurring_invoices
		WHERE id = $1 AND tenant_id = $2 AND status != $3`

	var ri domainRecurring.RecurringInvoice
	err := r.client.Querier(ctx).GetContext(ctx, &ri, query,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("recurring invoice not found").
				WithHint("Recurring invoice not found").
				WithReportableDetails(map[string]any{"recurring_invoice_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get recurring invoice").
			Mark(ierr.ErrDatabase)
	}

	itemsQuery := `
		SELECT * FROM recurring_invoice_line_items
		WHERE recurring_invoice_id = $1 AND tenant_id = $2 AND status != $3
		ORDER BY created_at ASC`

	err = r.client.Querier(ctx).SelectContext(ctx, &ri.LineItems, itemsQuery,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get recurring invoice line items").
			Mark(ierr.ErrDatabase)
	}

	return &ri, nil
}

func (r *recurringInvoiceRepository) Update(ctx context.Context, ri *domainRecurring.RecurringInvoice) error {
	// occurrences_generated is deliberately not part of the update set,
	// the cursor is owned by AdvanceCursor
	query := `
		UPDATE recurring_invoices SET
			series_id = :series_id,
			customer_name = :customer_name,
			customer_email = :customer_email,
			customer_identification = :customer_identification,
			invoicing_address = :invoicing_address,
			days_to_due = :days_to_due,
			starting_date = :starting_date,
			finishing_date = :finishing_date,
			period = :period,
			period_type = :period_type,
			max_occurrences = :max_occurrences,
			draft = :draft,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	result, err := sqlxNamedExec(ctx, r.client, query, ri)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update recurring invoice").
			Mark(ierr.ErrDatabase)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ierr.NewError("recurring invoice not found").
			WithReportableDetails(map[string]any{"recurring_invoice_id": ri.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *recurringInvoiceRepository) Delete(ctx context.Context, id string) error {
	return r.client.WithTx(ctx, func(ctx context.Context) error {
		tenantID := types.GetTenantID(ctx)

		if _, err := r.client.Querier(ctx).ExecContext(ctx,
			`DELETE FROM recurring_invoice_line_items WHERE recurring_invoice_id = $1 AND tenant_id = $2`,
			id, tenantID); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to delete recurring invoice line items").
				Mark(ierr.ErrDatabase)
		}

		if _, err := r.client.Querier(ctx).ExecContext(ctx,
			`DELETE FROM recurring_invoices WHERE id = $1 AND tenant_id = $2`,
			id, tenantID); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to delete recurring invoice").
				Mark(ierr.ErrDatabase)
		}
		return nil
	})
}

func (r *recurringInvoiceRepository) ListActive(ctx context.Context) ([]*domainRecurring.RecurringInvoice, error) {
	query := `
		SELECT * FROM recurring_invoices
		WHERE tenant_id = $1 AND status = $2 AND draft = FALSE
		ORDER BY created_at ASC`

	var schedules []*domainRecurring.RecurringInvoice
	err := r.client.Querier(ctx).SelectContext(ctx, &schedules, query,
		types.GetTenantID(ctx), types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list recurring invoices").
			Mark(ierr.ErrDatabase)
	}
	return schedules, nil
}

// AdvanceCursor claims one occurrence with a compare-and-set on the cursor
// column. A concurrent run that already claimed it leaves zero rows affected
// and the caller observes a version conflict instead of generating the
// occurrence twice.
func (r *recurringInvoiceRepository) AdvanceCursor(ctx context.Context, id string, from int) error {
	query := `
		UPDATE recurring_invoices
		SET occurrences_generated = occurrences_generated + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND tenant_id = $2 AND occurrences_generated = $3`

	result, err := r.client.Querier(ctx).ExecContext(ctx, query,
		id, types.GetTenantID(ctx), from)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to advance schedule cursor").
			Mark(ierr.ErrDatabase)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ierr.NewError("schedule cursor moved").
			WithHint("Another generation run already claimed this occurrence").
			WithReportableDetails(map[string]any{
				"recurring_invoice_id": id,
				"expected_cursor":      from,
			}).
			Mark(ierr.ErrVersionConflict)
	}
	return nil
}
