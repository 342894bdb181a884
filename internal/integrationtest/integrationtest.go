// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"testing"

	"github.com/go-petr/bank-ledger/pkg/dbpkg"
	_ "github.com/lib/pq" // postgres driver
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	image    = "postgres:15-alpine"
	database = "bank_ledger"
	username = "root"
	password = "secret"
)

// StartPostgres starts a disposable PostgreSQL container with every *.up.sql migration
// from migrationDir applied, and returns its connection string.
//
// The returned func terminates the container.
func StartPostgres(ctx context.Context, migrationDir string) (string, func(), error) {
	scripts, err := filepath.Glob(filepath.Join(migrationDir, "*.up.sql"))
	if err != nil {
		return "", nil, fmt.Errorf("list migrations: %w", err)
	}

	if len(scripts) == 0 {
		return "", nil, fmt.Errorf("no migrations in %s", migrationDir)
	}

	sort.Strings(scripts)

	ctr, err := postgres.Run(ctx, image,
		postgres.WithDatabase(database),
		postgres.WithUsername(username),
		postgres.WithPassword(password),
		postgres.WithInitScripts(scripts...),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return "", nil, fmt.Errorf("start postgres container: %w", err)
	}

	terminate := func() {
		_ = testcontainers.TerminateContainer(ctr)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("postgres connection string: %w", err)
	}

	return dsn, terminate, nil
}

// MigrationDir is the schema location relative to an internal/<pkg> test directory.
const MigrationDir = "../../configs/db/migration"

// Main starts PostgreSQL for the package tests, stores its connection string in dsn
// and returns the exit code of m.Run. It is meant to be called from TestMain.
func Main(m *testing.M, dsn *string) int {
	ctx := context.Background()

	source, terminate, err := StartPostgres(ctx, MigrationDir)
	if err != nil {
		log.Printf("integration database unavailable: %v", err)
		return 1
	}
	defer terminate()

	*dsn = source

	return m.Run()
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema='public';`

	if err := db.QueryRow(query).Scan(&tables); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup("postgres", source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}
