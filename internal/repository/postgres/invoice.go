package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	domainInvoice "github.com/facturio/facturio/internal/domain/invoice"
	ierr "github.com/facturio/facturio/internal/errors"
	"github.com/facturio/facturio/internal/logger"
	"github.com/facturio/facturio/internal/postgres"
	"github.com/facturio/facturio/internal/types"
)

type invoiceRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewInvoiceRepository(client postgres.IClient, logger *logger.Logger) domainInvoice.Repository {
	return &invoiceRepository{
		client: client,
		logger: logger,
	}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *domainInvoice.Invoice) error {
	return r.client.WithTx(ctx, func(ctx context.Context) error {
		query := `
			INSERT INTO invoices (
				id, series_id, number, draft, issue_date, due_date,
				customer_name, customer_email, customer_identification, invoicing_address,
				net_amount, tax_amount, gross_amount, paid_amount, paid,
				recurring_invoice_id, occurrence, sent_by_email,
				tenant_id, status, created_at, updated_at, created_by, updated_by
			) VALUES (
				:id, :series_id, :number, :draft, :issue_date, :due_date,
				:customer_name, :customer_email, :customer_identification, :invoicing_address,
				:net_amount, :tax_amount, :gross_amount, :paid_amount, :paid,
				:recurring_invoice_id, :occurrence, :sent_by_email,
				:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
			)`

		if _, err := sqlxNamedExec(ctx, r.client, query, inv); err != nil {
			if isUniqueViolation(err) {
				return ierr.WithError(err).
					WithHint("An invoice with this number already exists in the series").
					WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
					Mark(ierr.ErrAlreadyExists)
			}
			return ierr.WithError(err).
				WithHint("Failed to create invoice").
				Mark(ierr.ErrDatabase)
		}

		return r.insertLineItems(ctx, inv)
	})
}

func (r *invoiceRepository) insertLineItems(ctx context.Context, inv *domainInvoice.Invoice) error {
	if len(inv.LineItems) == 0 {
		return nil
	}

	query := `
		INSERT INTO invoice_line_items (
			id, invoice_id, description, quantity, unitary_cost, discount, tax_rate,
			tenant_id, status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :invoice_id, :description, :quantity, :unitary_cost, :discount, :tax_rate,
			:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
		)`

	for _, item := range inv.LineItems {
		item.InvoiceID = inv.ID
		if _, err := sqlxNamedExec(ctx, r.client, query, item); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to create invoice line item").
				Mark(ierr.ErrDatabase)
		}
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*domainInvoice.Invoice, error) {
	query := `
		SELECT * FROM invoices
		WHERE id = $1 AND tenant_id = $2 AND status != $3`

	var inv domainInvoice.Invoice
	err := r.client.Querier(ctx).GetContext(ctx, &inv, query,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("invoice not found").
				WithHint("Invoice not found").
				WithReportableDetails(map[string]any{"invoice_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}

	itemsQuery := `
		SELECT * FROM invoice_line_items
		WHERE invoice_id = $1 AND tenant_id = $2 AND status != $3
		ORDER BY created_at ASC`

	err = r.client.Querier(ctx).SelectContext(ctx, &inv.LineItems, itemsQuery,
		id, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice line items").
			Mark(ierr.ErrDatabase)
	}

	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *domainInvoice.Invoice) error {
	query := `
		UPDATE invoices SET
			series_id = :series_id,
			number = :number,
			draft = :draft,
			issue_date = :issue_date,
			due_date = :due_date,
			customer_name = :customer_name,
			customer_email = :customer_email,
			customer_identification = :customer_identification,
			invoicing_address = :invoicing_address,
			net_amount = :net_amount,
			tax_amount = :tax_amount,
			gross_amount = :gross_amount,
			paid_amount = :paid_amount,
			paid = :paid,
			sent_by_email = :sent_by_email,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND tenant_id = :tenant_id`

	result, err := sqlxNamedExec(ctx, r.client, query, inv)
	if err != nil {
		if isUniqueViolation(err) {
			return ierr.WithError(err).
				WithHint("An invoice with this number already exists in the series").
				WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ierr.NewError("invoice not found").
			WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	return r.client.WithTx(ctx, func(ctx context.Context) error {
		tenantID := types.GetTenantID(ctx)

		if _, err := r.client.Querier(ctx).ExecContext(ctx,
			`DELETE FROM invoice_line_items WHERE invoice_id = $1 AND tenant_id = $2`,
			id, tenantID); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to delete invoice line items").
				Mark(ierr.ErrDatabase)
		}

		if _, err := r.client.Querier(ctx).ExecContext(ctx,
			`DELETE FROM invoices WHERE id = $1 AND tenant_id = $2`,
			id, tenantID); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to delete invoice").
				Mark(ierr.ErrDatabase)
		}
		return nil
	})
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*domainInvoice.Invoice, error) {
	where, args := r.buildFilter(ctx, filter)

	query := fmt.Sprintf(`SELECT * FROM invoices WHERE %s ORDER BY created_at DESC`,
		strings.Join(where, " AND "))
	if !filter.IsUnlimited() {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.GetLimit(), filter.GetOffset())
	}

	var invoices []*domainInvoice.Invoice
	if err := r.client.Querier(ctx).SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	where, args := r.buildFilter(ctx, filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM invoices WHERE %s`,
		strings.Join(where, " AND "))

	var count int
	if err := r.client.Querier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *invoiceRepository) ExistsForOccurrence(ctx context.Context, recurringInvoiceID string, occurrence int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM invoices
			WHERE recurring_invoice_id = $1 AND occurrence = $2
				AND tenant_id = $3 AND status != $4
		)`

	var exists bool
	err := r.client.Querier(ctx).GetContext(ctx, &exists, query,
		recurringInvoiceID, occurrence, types.GetTenantID(ctx), types.StatusDeleted)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Invoice occurrence check failed").
			WithReportableDetails(map[string]any{
				"recurring_invoice_id": recurringInvoiceID,
				"occurrence":           occurrence,
			}).
			Mark(ierr.ErrDatabase)
	}
	return exists, nil
}

// buildFilter translates an InvoiceFilter into a WHERE clause. The status
// tag branch mirrors Invoice.StatusAt: pending and overdue split on the
// reference date, draft and paid on their flags.
func (r *invoiceRepository) buildFilter(ctx context.Context, filter *types.InvoiceFilter) ([]string, []interface{}) {
	where := []string{"tenant_id = $1", "status = $2"}
	args := []interface{}{types.GetTenantID(ctx), filter.GetStatus()}

	next := func(arg interface{}) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.SeriesID != nil {
		where = append(where, "series_id = "+next(*filter.SeriesID))
	}
	if filter.RecurringInvoiceID != nil {
		where = append(where, "recurring_invoice_id = "+next(*filter.RecurringInvoiceID))
	}
	if filter.DueDateBefore != nil {
		where = append(where, "due_date < "+next(*filter.DueDateBefore))
	}
	if filter.DueDateAfter != nil {
		where = append(where, "due_date > "+next(*filter.DueDateAfter))
	}

	if filter.StatusTag != nil {
		today := "CURRENT_DATE"
		if filter.StatusTagDate != nil {
			today = next(*filter.StatusTagDate)
		}
		switch *filter.StatusTag {
		case types.InvoiceStatusDraft:
			where = append(where, "draft = TRUE")
		case types.InvoiceStatusPaid:
			where = append(where, "draft = FALSE", "paid = TRUE")
		case types.InvoiceStatusPending:
			where = append(where,
				"draft = FALSE", "paid = FALSE",
				fmt.Sprintf("(due_date IS NULL OR due_date > %s)", today))
		case types.InvoiceStatusOverdue:
			where = append(where,
				"draft = FALSE", "paid = FALSE",
				fmt.Sprintf("due_date <= %s", today))
		}
	}

	return where, args
}
