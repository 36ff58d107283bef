// Package manager creates and drops databases on a server. It is used by
// "schema apply --create-database" and by the integration test helpers.
package manager

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	queryDatabaseExists       = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	queryTerminateConnections = `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`
)

// Conn must not be inside a transaction: CREATE/DROP DATABASE refuse to run there.
// *pgxpool.Pool satisfies it.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func Exists(ctx context.Context, conn Conn, name string) (bool, error) {
	var exists bool
	if err := conn.QueryRow(ctx, queryDatabaseExists, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("check database %q: %w", name, err)
	}
	return exists, nil
}

// EnsureExists creates the database unless it exists. It reports whether it created it.
func EnsureExists(ctx context.Context, conn Conn, name string) (bool, error) {
	exists, err := Exists(ctx, conn, name)
	if err != nil || exists {
		return false, err
	}
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		return false, fmt.Errorf("create database %q: %w", name, err)
	}
	return true, nil
}

// Drop terminates other sessions on the database and drops it if present.
func Drop(ctx context.Context, conn Conn, name string) error {
	if _, err := conn.Exec(ctx, queryTerminateConnections, name); err != nil {
		return fmt.Errorf("terminate connections to %q: %w", name, err)
	}
	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("drop database %q: %w", name, err)
	}
	return nil
}
