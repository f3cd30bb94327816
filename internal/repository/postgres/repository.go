package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/facturio/facturio/internal/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// sqlxNamedExec runs a named statement against the current querier, which is
// the ambient transaction when one is carried by the context.
func sqlxNamedExec(ctx context.Context, client postgres.IClient, query string, arg interface{}) (sql.Result, error) {
	return sqlx.NamedExecContext(ctx, client.Querier(ctx), query, arg)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
