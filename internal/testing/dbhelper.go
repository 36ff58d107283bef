// Package testing holds helpers shared by integration tests. Import it as
// testhelpers to avoid clashing with the standard library package.
package testing

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/lmsseed/internal/db"
	"github.com/vvka-141/lmsseed/internal/db/manager"
	"github.com/vvka-141/lmsseed/internal/schema"
	"github.com/vvka-141/lmsseed/internal/testinfra"
)

// TestConnEnvVar points integration tests at an existing server instead of a container.
const TestConnEnvVar = "LMSSEED_TEST_CONN"

var (
	containerOnce sync.Once
	containerConn string
	containerErr  error
)

func startContainer() (string, error) {
	containerOnce.Do(func() {
		ctr, err := testinfra.StartPostgres(context.Background())
		if err != nil {
			containerErr = err
			return
		}
		containerConn = ctr.ConnString
	})
	return containerConn, containerErr
}

// GetTestConnectionString returns the maintenance connection string.
// Priority: LMSSEED_TEST_CONN > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnvVar); connString != "" {
		return connString
	}

	connString, err := startContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnvVar, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// NewTestDatabase creates a uniquely named database, dropped when the test ends,
// and returns its connection string. The schema is not applied.
func NewTestDatabase(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	maintenance := RequireDatabase(t)
	name := "lmsseed_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]

	admin, err := pgxpool.New(ctx, maintenance)
	if err != nil {
		t.Fatalf("connect for test database creation: %v", err)
	}
	defer admin.Close()

	if _, err := manager.EnsureExists(ctx, admin, name); err != nil {
		t.Fatalf("create test database: %v", err)
	}

	t.Cleanup(func() {
		pool, err := pgxpool.New(context.Background(), maintenance)
		if err != nil {
			t.Logf("Warning: connect for cleanup: %v", err)
			return
		}
		defer pool.Close()
		if err := manager.Drop(context.Background(), pool, name); err != nil {
			t.Logf("Warning: %v", err)
		}
	})

	cfg, err := db.ParseConnectionString(maintenance)
	if err != nil {
		t.Fatalf("parse connection string: %v", err)
	}
	cfg.Database = name
	return db.BuildConnectionString(cfg)
}

// NewSchemaPool creates a fresh database with the schema applied and returns
// a pool that is closed when the test ends.
func NewSchemaPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, NewTestDatabase(t))
	if err != nil {
		t.Fatalf("connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := schema.Apply(ctx, pool); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return pool
}
