package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/scratch/internal/domain"
)

type testTxRepos struct {
	users UserRepositoryInterface
	keys  APIKeyRepositoryInterface
}

func (t *testTxRepos) Users() UserRepositoryInterface {
	return t.users
}

func (t *testTxRepos) APIKeys() APIKeyRepositoryInterface {
	return t.keys
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	return fn(t.repos)
}

func TestAuthService_CreateUserWithKey_UsesTransaction(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	keys := new(MockAPIKeyRepository)
	runner := &testTxRunner{repos: &testTxRepos{users: users, keys: keys}}

	users.On("GetByName", ctx, "alice").Return(nil, domain.ErrUserNotFound)
	users.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.ID == "user-1" && u.Name == "alice"
	})).Return(nil)
	keys.On("Create", ctx, mock.MatchedBy(func(k *domain.APIKey) bool {
		return k.ID == "key-1" && k.UserID == "user-1" && k.Name == "default"
	})).Return(nil)

	svc := NewAuthServiceWithTx(nil, nil, NewMockUUIDGenerator("user-1", "key-1"), runner)
	user, token, err := svc.CreateUserWithKey(ctx, "alice", "default")

	require.NoError(t, err)
	assert.True(t, runner.called)
	assert.Equal(t, "user-1", user.ID)
	assert.True(t, IsValidAPIToken(token))
	users.AssertExpectations(t)
	keys.AssertExpectations(t)
}

func TestAuthService_CreateUserWithKey_PropagatesKeyFailure(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	keys := new(MockAPIKeyRepository)
	runner := &testTxRunner{repos: &testTxRepos{users: users, keys: keys}}

	users.On("GetByName", ctx, "alice").Return(nil, domain.ErrUserNotFound)
	users.On("Create", ctx, mock.Anything).Return(nil)
	keys.On("Create", ctx, mock.Anything).Return(errors.New("insert failed"))

	svc := NewAuthServiceWithTx(nil, nil, NewMockUUIDGenerator(), runner)
	user, token, err := svc.CreateUserWithKey(ctx, "alice", "default")

	require.Error(t, err)
	assert.Nil(t, user)
	assert.Empty(t, token)
}

func TestAuthService_CreateUserWithKey_Duplicate(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	keys := new(MockAPIKeyRepository)
	runner := &testTxRunner{repos: &testTxRepos{users: users, keys: keys}}

	users.On("GetByName", ctx, "alice").Return(domain.NewUser("u", "alice", testNow), nil)

	svc := NewAuthServiceWithTx(nil, nil, NewMockUUIDGenerator(), runner)
	_, _, err := svc.CreateUserWithKey(ctx, "alice", "default")

	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	keys.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
