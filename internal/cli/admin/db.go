package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/scratch/internal/config"
	"github.com/cloo-solutions/scratch/internal/database"
	"github.com/cloo-solutions/scratch/internal/repository"
	"github.com/cloo-solutions/scratch/internal/service"
)

func getDBPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return database.NewPool(ctx, cfg.Database.Pool())
}

func newAuthService(pool *pgxpool.Pool) *service.AuthService {
	return service.NewAuthServiceWithTx(
		repository.NewUserRepository(pool),
		repository.NewAPIKeyRepository(pool),
		&service.DefaultUUIDGenerator{},
		repository.NewTxRunner(pool),
	)
}

// resolveUserID accepts a user ID or a user name.
func resolveUserID(ctx context.Context, users service.UserRepositoryInterface, ref string) (string, error) {
	if user, err := users.GetByID(ctx, ref); err == nil {
		return user.ID, nil
	}
	user, err := users.GetByName(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("user not found: %s", ref)
	}
	return user.ID, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
