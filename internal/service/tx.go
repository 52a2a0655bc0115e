package service

import "context"

// TxRepositories provides transaction-bound repositories.
type TxRepositories interface {
	Users() UserRepositoryInterface
	APIKeys() APIKeyRepositoryInterface
}

// TxRunner executes a function within a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}

// directRepos runs without a transaction when no TxRunner is configured.
type directRepos struct {
	users UserRepositoryInterface
	keys  APIKeyRepositoryInterface
}

func (r directRepos) Users() UserRepositoryInterface      { return r.users }
func (r directRepos) APIKeys() APIKeyRepositoryInterface { return r.keys }
