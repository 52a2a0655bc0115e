package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/scratch/internal/service"
)

// TxRunner hands out user and API key repositories bound to one pgx
// transaction. The transaction commits when fn returns nil and rolls back
// otherwise, including on panic.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(service.TxRepositories) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(txScope{
			users: NewUserRepositoryWithTx(tx),
			keys:  NewAPIKeyRepositoryWithTx(tx),
		})
	})
}

type txScope struct {
	users *UserRepository
	keys  *APIKeyRepository
}

func (s txScope) Users() service.UserRepositoryInterface    { return s.users }
func (s txScope) APIKeys() service.APIKeyRepositoryInterface { return s.keys }
