package queries

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Postgres caps a statement at 65535 bind parameters.
const maxBatchRows = 1000

func namedExecChunks[T any](ctx context.Context, ext sqlx.ExtContext, query string, rows []T) error {
	for start := 0; start < len(rows); start += maxBatchRows {
		end := start + maxBatchRows
		if end > len(rows) {
			end = len(rows)
		}
		if _, err := sqlx.NamedExecContext(ctx, ext, query, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}
