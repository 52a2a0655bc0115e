//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloo-solutions/scratch/internal/api/handlers"
	"github.com/cloo-solutions/scratch/internal/cli/client"
	"github.com/cloo-solutions/scratch/internal/repository"
	"github.com/cloo-solutions/scratch/internal/server"
	"github.com/cloo-solutions/scratch/internal/service"
	"github.com/cloo-solutions/scratch/internal/storage"
	"github.com/cloo-solutions/scratch/internal/testutil"
)

const testBucket = "test-attachments"

// E2ETestEnv is a scratchd stack on real Postgres and MinIO containers,
// served in process.
type E2ETestEnv struct {
	T         *testing.T
	Ctx       context.Context
	ServerURL string
	S3Client  *storage.S3Client
	AuthSvc   *service.AuthService
	BinaryDir string
	Transfer  *http.Client
}

// SetupE2EEnv starts the containers and the API. Everything is torn down by
// t.Cleanup.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	t.Helper()
	ctx := context.Background()

	pg := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })
	minio := testutil.NewMinIOContainer(ctx, t)
	t.Cleanup(func() { _ = minio.Terminate(ctx) })

	pool := testutil.NewTestPool(ctx, t, pg, "../../migrations")
	t.Cleanup(pool.Close)

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        minio.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     minio.AccessKey,
		SecretAccessKey: minio.SecretKey,
		Bucket:          testBucket,
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("s3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("create bucket: %v", err)
	}

	authSvc := service.NewAuthServiceWithTx(
		repository.NewUserRepository(pool),
		repository.NewAPIKeyRepository(pool),
		&service.DefaultUUIDGenerator{},
		repository.NewTxRunner(pool),
	)
	notes := repository.NewNoteRepository(pool)

	srv := httptest.NewServer(server.NewRouter(server.RouterConfig{
		AuthValidator:     authSvc,
		NoteHandler:       handlers.NewNoteHandler(service.NewNoteService(notes, s3Client)),
		AttachmentHandler: handlers.NewAttachmentHandler(service.NewAttachmentService(s3Client, notes)),
		AuthHandler:       handlers.NewAuthHandler(authSvc),
		MaxBodyBytes:      1 << 20,
	}))
	t.Cleanup(srv.Close)

	return &E2ETestEnv{
		T:         t,
		Ctx:       ctx,
		ServerURL: srv.URL,
		S3Client:  s3Client,
		AuthSvc:   authSvc,
		Transfer:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup removes built binaries; containers and the server go with
// t.Cleanup.
func (e *E2ETestEnv) Cleanup() {
	if e.BinaryDir != "" {
		_ = os.RemoveAll(e.BinaryDir)
	}
}

// CreateUser creates a user with one API key and returns the key.
func (e *E2ETestEnv) CreateUser(name string) (userID, token string) {
	user, token, err := e.AuthSvc.CreateUserWithKey(e.Ctx, name, "e2e")
	if err != nil {
		e.T.Fatalf("create user %s: %v", name, err)
	}
	return user.ID, token
}

// API is the production HTTP client acting as token's owner.
func (e *E2ETestEnv) API(token string) *client.APIClient {
	api, err := client.NewAPIClientWithConfig(token, e.ServerURL)
	if err != nil {
		e.T.Fatalf("api client: %v", err)
	}
	return api
}

func (e *E2ETestEnv) Get(path, token string) (*client.APIResponse, error) {
	return e.API(token).Get(e.Ctx, path)
}

func (e *E2ETestEnv) Post(path string, body any, token string) (*client.APIResponse, error) {
	return e.API(token).Post(e.Ctx, path, body)
}

func (e *E2ETestEnv) Put(path string, body any, token string) (*client.APIResponse, error) {
	return e.API(token).Put(e.Ctx, path, body)
}

func (e *E2ETestEnv) Delete(path, token string) (*client.APIResponse, error) {
	return e.API(token).Delete(e.Ctx, path)
}

// UploadFile PUTs content to a presigned URL.
func (e *E2ETestEnv) UploadFile(uploadURL string, content []byte, contentType string) error {
	req, err := http.NewRequestWithContext(e.Ctx, http.MethodPut, uploadURL, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	_, err = e.transfer(req)
	return err
}

// DownloadFile GETs a presigned URL.
func (e *E2ETestEnv) DownloadFile(downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(e.Ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, err
	}
	return e.transfer(req)
}

func (e *E2ETestEnv) transfer(req *http.Request) ([]byte, error) {
	resp, err := e.Transfer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, body)
	}
	return body, nil
}

// BuildBinaries builds scratch and scratchd into a temp dir.
func (e *E2ETestEnv) BuildBinaries() {
	dir, err := os.MkdirTemp("", "scratch-e2e-*")
	if err != nil {
		e.T.Fatalf("temp dir: %v", err)
	}
	e.BinaryDir = dir

	for _, name := range []string{"scratch", "scratchd"} {
		cmd := exec.Command("go", "build", "-o", filepath.Join(dir, name), "./cmd/"+name)
		cmd.Dir = "../.."
		if out, err := cmd.CombinedOutput(); err != nil {
			e.T.Fatalf("build %s: %v\n%s", name, err, out)
		}
	}
}

// RunScratch runs the scratch CLI as the holder of token.
func (e *E2ETestEnv) RunScratch(token string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "scratch"), args...)
	cmd.Dir = e.BinaryDir
	cmd.Env = append(os.Environ(),
		"SCRATCH_API_KEY="+token,
		"SCRATCH_API_URL="+e.ServerURL,
		"XDG_CONFIG_HOME="+e.BinaryDir,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}
