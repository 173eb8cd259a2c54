package test_utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/eventcal/eventcal/internal/config"
	"github.com/eventcal/eventcal/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	testDbName     = "eventcal"
	testDbUser     = "test_eventcal"
	testDbPassword = "test_eventcal"
)

func preparePostgresContainer(ctx context.Context) (*postgres.PostgresContainer, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %v", err)
	}

	pgContainer, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithInitScripts(filepath.Join(projectRoot, "dev", "init.sql")),
		postgres.WithDatabase(testDbName),
		postgres.WithUsername(testDbUser),
		postgres.WithPassword(testDbPassword),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		log.Errorf("failed to start container: %s", err)
		return nil, err
	}
	return pgContainer, nil
}

// TestWithDB starts a Postgres container, applies all migrations and snapshots the
// clean state so tests can Restore it.
func TestWithDB() (*postgres.PostgresContainer, func() *pgxpool.Pool, error) {
	ctx := context.Background()

	container, err := preparePostgresContainer(ctx)
	if err != nil {
		return nil, nil, err
	}

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432/tcp")

	log.Infof("Postgres container started at %s:%d", host, port.Int())

	cfg := config.Database{
		Host:   host,
		Port:   port.Int(),
		User:   testDbUser,
		Pass:   testDbPassword,
		Name:   testDbName,
		Schema: "eventcal",
	}

	if err = database.Migrate(cfg); err != nil {
		return container, nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	if err = container.Snapshot(ctx, postgres.WithSnapshotName("postgres-test-snapshot")); err != nil {
		return container, nil, fmt.Errorf("failed to snapshot postgres container: %w", err)
	}

	return container, func() *pgxpool.Pool {
		db, err := database.Open(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to open database connection: %v", err)
		}
		return db
	}, nil
}

// findProjectRoot walks up from the working directory to the directory holding go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if fileExists(filepath.Join(dir, "go.mod")) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("could not find project root")
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// PostgresSuite holds the container shared by the tests of one package. The container
// is started by the first Open, so packages mixing database and plain tests only need
// Docker for the former.
type PostgresSuite struct {
	once      sync.Once
	Container *postgres.PostgresContainer
	open      func() *pgxpool.Pool
	err       error
}

func NewPostgresSuite() *PostgresSuite {
	return &PostgresSuite{}
}

// Open returns a pool on a clean database. The test is skipped when no healthy container
// provider is available or the container cannot be started. The pool is closed and the
// snapshot restored when the test ends.
func (s *PostgresSuite) Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	s.once.Do(func() {
		s.Container, s.open, s.err = TestWithDB()
	})
	if s.err != nil {
		t.Skipf("postgres container not available: %v", s.err)
	}
	db := s.open()
	t.Cleanup(func() {
		db.Close()
		err := s.Container.Restore(context.Background())
		require.NoError(t, err)
	})
	return db
}

// Terminate stops the container, if one was started.
func (s *PostgresSuite) Terminate() {
	if s == nil || s.Container == nil {
		return
	}
	if err := testcontainers.TerminateContainer(s.Container); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
}
