package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rolecraft/internal/store"
)

// RunSQL runs a read-only query for the CLI inside a read-only transaction.
// Parameters are positional and keyed "1".."n".
func (c *Client) RunSQL(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	if err := store.CheckReadOnly(query); err != nil {
		return nil, err
	}
	args, err := store.PositionalArgs(params)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, 0)
	err = pgx.BeginTxFunc(ctx, c.pool, pgx.TxOptions{AccessMode: pgx.ReadOnly}, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("running sql: %w", err)
		}
		defer rows.Close()

		fields := rows.FieldDescriptions()
		for rows.Next() {
			values, err := rows.Values()
			if err != nil {
				return fmt.Errorf("reading row values: %w", err)
			}
			row := make(map[string]any, len(fields))
			for i, fd := range fields {
				row[fd.Name] = values[i]
			}
			results = append(results, row)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterating sql rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
