package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/invoice-dashboard/internal/schema"
)

// Migrate creates the enum, tables and indexes declared in package schema.
// Every statement is idempotent, so running it against an up-to-date
// database is a no-op. All statements run in one transaction.
func Migrate(ctx context.Context, db *sql.DB) error {
	return execAll(ctx, db, schema.CreateStatements())
}

// Drop removes every relation declared in package schema.
func Drop(ctx context.Context, db *sql.DB) error {
	return execAll(ctx, db, schema.DropStatements())
}

func execAll(ctx context.Context, db *sql.DB, stmts []string) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	for _, stmt := range stmts {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
