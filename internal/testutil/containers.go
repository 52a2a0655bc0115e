// Package testutil starts the Postgres and MinIO containers the integration
// and end-to-end tests run against.
package testutil

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cloo-solutions/scratch/internal/database"
)

const (
	postgresImage = "postgres:17-alpine"
	minioImage    = "minio/minio:latest"

	postgresCredential = "scratch"
	minioCredential    = "minioadmin"

	startupTimeout = 60 * time.Second
)

// runContainer starts req and returns the container with the host address
// of its first exposed port.
func runContainer(ctx context.Context, t *testing.T, req testcontainers.ContainerRequest) (testcontainers.Container, string) {
	t.Helper()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("%s host: %v", req.Image, err)
	}
	port, err := c.MappedPort(ctx, req.ExposedPorts[0])
	if err != nil {
		t.Fatalf("%s port: %v", req.Image, err)
	}
	return c, net.JoinHostPort(host, port.Port())
}

// PostgresContainer is a throwaway Postgres with a scratch database.
type PostgresContainer struct {
	Container testcontainers.Container
	Addr      string
}

func NewPostgresContainer(ctx context.Context, t *testing.T) *PostgresContainer {
	c, addr := runContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresCredential,
			"POSTGRES_PASSWORD": postgresCredential,
			"POSTGRES_DB":       postgresCredential,
		},
		// Postgres logs readiness twice: once for the init run, once for real.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		).WithStartupTimeout(startupTimeout),
	})
	return &PostgresContainer{Container: c, Addr: addr}
}

func (pc *PostgresContainer) ConnectionString() string {
	return fmt.Sprintf("postgres://%[1]s:%[1]s@%[2]s/%[1]s?sslmode=disable", postgresCredential, pc.Addr)
}

func (pc *PostgresContainer) Terminate(context.Context) error {
	return testcontainers.TerminateContainer(pc.Container)
}

// MinIOContainer is a throwaway S3-compatible object store.
type MinIOContainer struct {
	Container testcontainers.Container
	Addr      string
	AccessKey string
	SecretKey string
}

func NewMinIOContainer(ctx context.Context, t *testing.T) *MinIOContainer {
	c, addr := runContainer(ctx, t, testcontainers.ContainerRequest{
		Image:        minioImage,
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioCredential,
			"MINIO_ROOT_PASSWORD": minioCredential,
		},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStartupTimeout(startupTimeout),
	})
	return &MinIOContainer{Container: c, Addr: addr, AccessKey: minioCredential, SecretKey: minioCredential}
}

func (mc *MinIOContainer) Endpoint() string { return "http://" + mc.Addr }

func (mc *MinIOContainer) Terminate(context.Context) error {
	return testcontainers.TerminateContainer(mc.Container)
}

// NewTestPool migrates the container's database with the real migration
// runner and returns a pool on it. migrationsDir is relative to the test's
// package directory.
func NewTestPool(ctx context.Context, t *testing.T, pc *PostgresContainer, migrationsDir string) *pgxpool.Pool {
	t.Helper()

	abs, err := filepath.Abs(migrationsDir)
	if err != nil {
		t.Fatalf("migrations dir: %v", err)
	}
	if err := database.Migrate(pc.ConnectionString(), "file://"+filepath.ToSlash(abs)); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var pool *pgxpool.Pool
	for attempt := 1; ; attempt++ {
		pool, err = database.NewPool(ctx, database.Config{URL: pc.ConnectionString(), MaxConns: 4})
		if err == nil || attempt == 5 {
			break
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return pool
}

// TruncateAll empties every table between subtests.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "TRUNCATE TABLE notes, api_keys, users CASCADE")
	if err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	return nil
}
