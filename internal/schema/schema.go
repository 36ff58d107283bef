// Package schema holds the DDL for the tables the importer writes to.
package schema

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed schema.sql
var ddl string

// Tables lists the managed tables in dependency order.
var Tables = []string{"users", "courses", "course_members", "course_contents", "comments"}

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// DDL returns the schema script.
func DDL() string {
	return ddl
}

// Apply creates any missing table or index. Existing objects are left untouched.
func Apply(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
