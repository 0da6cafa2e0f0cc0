package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/flagkeep/flagkeep/db"
)

// authSecret signs session tokens of every server started by the suite.
const authSecret = "integration-test-secret"

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Container   testcontainers.Container
	DatabaseURL string
	HTTPClient  *http.Client
	InlineMode  bool
	BinaryPath  string
	// Server is shared by scenarios that do not need their own flags.
	Server *ServerInstance
}

// NewTestContext starts PostgreSQL in a container, migrates it and starts
// a flagkeep server against it.
// Modes:
//   - Binary mode (default): Set FLAGKEEP_BINARY to the path of the flagkeepctl binary
//   - Inline mode: Set FLAGKEEP_INLINE=1 to run the server in-process (no binary needed)
func NewTestContext(ctx context.Context) (*TestContext, error) {
	inlineMode := os.Getenv("FLAGKEEP_INLINE") == "1"
	binaryPath := os.Getenv("FLAGKEEP_BINARY")

	if !inlineMode && binaryPath == "" {
		return nil, fmt.Errorf("Either FLAGKEEP_BINARY or FLAGKEEP_INLINE=1 is required.\n\nBinary mode:\n  go build -o flagkeepctl ./cmd/flagkeepctl\n  INTEGRATION_TEST=1 FLAGKEEP_BINARY=$(pwd)/flagkeepctl go test -v ./test/integration/...\n\nInline mode:\n  INTEGRATION_TEST=1 FLAGKEEP_INLINE=1 go test -v ./test/integration/...")
	}
	if inlineMode {
		log.Println("Using inline server mode")
	} else {
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("FLAGKEEP_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	}

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("flagkeep_test"),
		tcpostgres.WithUsername("flagkeep"),
		tcpostgres.WithPassword("flagkeep"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := runMigrations(connStr); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// GORM for test setup and assertions
	gdb, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	rawDB, err := gdb.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	tc := &TestContext{
		DB:          gdb,
		RawDB:       rawDB,
		Container:   pgContainer,
		DatabaseURL: connStr,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		InlineMode:  inlineMode,
		BinaryPath:  binaryPath,
	}

	tc.Server, err = StartServer(tc, DefaultServerConfig())
	if err != nil {
		tc.Close(ctx)
		return nil, err
	}
	return tc, nil
}

// runMigrations applies the embedded migrations the way "flagkeepctl db
// migrate" does.
func runMigrations(dbURL string) error {
	migrationsFS, err := fs.Sub(db.Migrations, "migrations")
	if err != nil {
		return err
	}
	source, err := iofs.New(migrationsFS, ".")
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// waitForServer polls the health endpoint until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Reset removes everything scenarios create, keeping the seeded roles
// and default project.
func (tc *TestContext) Reset() error {
	statements := []string{
		`DELETE FROM events`,
		`DELETE FROM change_requests`,
		`DELETE FROM features`,
		`DELETE FROM segments`,
		`DELETE FROM groups`,
		`DELETE FROM users`,
		`DELETE FROM roles WHERE type IN ('custom', 'root-custom')`,
		`DELETE FROM projects WHERE id <> 'default'`,
	}
	for _, stmt := range statements {
		if err := tc.DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Server != nil {
		tc.Server.Stop()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
