package engine

import (
	"context"
	"fmt"
	"strings"
)

// columnDef describes one column of a materialized source table.
type columnDef struct {
	Name string
	Type string
}

// dropSource removes any existing source view or table. Scans may leave
// either behind depending on the previous file kind.
func (c *Client) dropSource(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DROP VIEW IF EXISTS %s", SourceName)); err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", SourceName)); err != nil {
		return err
	}
	return nil
}

// replaceSourceTable materializes in-memory rows (workbook sheets, arrow
// batches) as the source table, replacing whatever was active before.
func (c *Client) replaceSourceTable(ctx context.Context, cols []columnDef, rows [][]any) error {
	if len(cols) == 0 {
		return fmt.Errorf("source has no columns")
	}
	if err := c.dropSource(ctx); err != nil {
		return err
	}

	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = fmt.Sprintf("%s %s", quoteIdent(col.Name), col.Type)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", SourceName, strings.Join(defs, ", "))
	if _, err := c.db.ExecContext(ctx, create); err != nil {
		return err
	}

	if len(rows) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + ")"
	insert := fmt.Sprintf("INSERT INTO %s VALUES %s", SourceName, placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

// quoteIdent quotes a SQL identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
