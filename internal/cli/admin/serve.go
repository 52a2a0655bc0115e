package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/scratch/internal/api/handlers"
	"github.com/cloo-solutions/scratch/internal/config"
	"github.com/cloo-solutions/scratch/internal/database"
	"github.com/cloo-solutions/scratch/internal/repository"
	"github.com/cloo-solutions/scratch/internal/server"
	"github.com/cloo-solutions/scratch/internal/service"
	"github.com/cloo-solutions/scratch/internal/storage"
	"github.com/cloo-solutions/scratch/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the scratch notes API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (default: SCRATCH_PORT or 8080)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	shutdownTelemetry, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.Sentry.DSN,
		Environment:      cfg.Environment,
		TracesSampleRate: cfg.TracesSampleRate(),
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
	} else {
		defer shutdownTelemetry()
	}

	pool, err := database.NewPool(ctx, cfg.Database.Pool())
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Println("connected to database")

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		if err := database.Migrate(cfg.Database.URL, cfg.MigrationsPath); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	noteRepo := repository.NewNoteRepository(pool)
	authSvc := newAuthService(pool)

	if cfg.Init.UserName != "" {
		if err := bootstrap(ctx, authSvc, cfg.Init.UserName, cfg.Init.APIKey); err != nil {
			return fmt.Errorf("failed to bootstrap initial user: %w", err)
		}
	}

	var (
		noteSvc       *service.NoteService
		attachmentSvc *service.AttachmentService
	)
	if cfg.S3.Enabled() {
		s3Client, err := newS3Client(ctx, cfg.S3)
		if err != nil {
			return err
		}
		noteSvc = service.NewNoteService(noteRepo, s3Client)
		attachmentSvc = service.NewAttachmentService(s3Client, noteRepo)
	} else {
		log.Println("S3 not configured: attachments disabled")
		noteSvc = service.NewNoteService(noteRepo, nil)
		attachmentSvc = service.NewAttachmentService(nil, noteRepo)
	}

	router := server.NewRouter(server.RouterConfig{
		AuthValidator:     authSvc,
		NoteHandler:       handlers.NewNoteHandler(noteSvc),
		AttachmentHandler: handlers.NewAttachmentHandler(attachmentSvc),
		AuthHandler:       handlers.NewAuthHandler(authSvc),
		MaxBodyBytes:      cfg.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func newS3Client(ctx context.Context, cfg config.S3Config) (*storage.S3Client, error) {
	client, err := storage.NewS3Client(ctx, cfg.Client())
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Printf("S3 bucket '%s' ready", cfg.Bucket)
	return client, nil
}

type bootstrapper interface {
	Bootstrap(ctx context.Context, userName, token string) (*service.BootstrapResult, error)
}

func bootstrap(ctx context.Context, svc bootstrapper, userName, token string) error {
	result, err := svc.Bootstrap(ctx, userName, token)
	if err != nil {
		return err
	}

	if result.UserCreated {
		log.Printf("bootstrap: created user '%s' (id: %s)", result.User.Name, result.User.ID)
	} else {
		log.Printf("bootstrap: user '%s' already exists (id: %s)", result.User.Name, result.User.ID)
	}
	switch {
	case token == "":
	case result.KeyCreated:
		log.Printf("bootstrap: created API key")
	default:
		log.Printf("bootstrap: API key already exists")
	}
	return nil
}
