package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/scc-freight/freight-api/internal/adapters/postgres"
)

// OpenMigratedPool connects to the database named by TEST_DATABASE_URL,
// applies the schema, and truncates all tables so each test run starts
// clean. Tests that call it are skipped when the variable is unset, so the
// postgres contract suite only runs where a database is available.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres tests")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile(schemaPath(t))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		// Re-running the schema against an initialized database fails on
		// the ALTER TABLE; a truncate still gives us a clean slate.
		t.Logf("apply schema (may already exist): %v", err)
	}

	if _, err := pool.Exec(ctx, `
		TRUNCATE verify_tokens, fleet_drivers, loads, fleets, users CASCADE
	`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return pool
}

func schemaPath(t *testing.T) string {
	t.Helper()
	_, self, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate schema.sql")
	}
	return filepath.Join(filepath.Dir(self), "..", "schema.sql")
}
