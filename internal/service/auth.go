package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/pagination"
	"github.com/cloo-solutions/scratch/internal/telemetry"
)

const apiKeyPrefix = "scr_"

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*UserPageResult, error)
}

type UserPageResult struct {
	Items      []*domain.User
	NextCursor string
	HasMore    bool
}

type APIKeyRepositoryInterface interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByID(ctx context.Context, id string) (*domain.APIKey, error)
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	GetByUserID(ctx context.Context, userID string) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
}

type AuthService struct {
	userRepo UserRepositoryInterface
	keyRepo  APIKeyRepositoryInterface
	uuidGen  UUIDGenerator
	txRunner TxRunner
}

func NewAuthService(userRepo UserRepositoryInterface, keyRepo APIKeyRepositoryInterface, uuidGen UUIDGenerator) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		keyRepo:  keyRepo,
		uuidGen:  uuidGen,
	}
}

// NewAuthServiceWithTx creates an AuthService whose multi-step writes run in
// a single transaction.
func NewAuthServiceWithTx(userRepo UserRepositoryInterface, keyRepo APIKeyRepositoryInterface, uuidGen UUIDGenerator, txRunner TxRunner) *AuthService {
	s := NewAuthService(userRepo, keyRepo, uuidGen)
	s.txRunner = txRunner
	return s
}

func (s *AuthService) withRepos(ctx context.Context, fn func(repos TxRepositories) error) error {
	if s.txRunner == nil {
		return fn(directRepos{users: s.userRepo, keys: s.keyRepo})
	}
	return s.txRunner.WithTx(ctx, fn)
}

func (s *AuthService) newUser(name string) (*domain.User, error) {
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "user name is required")
	}
	user := domain.NewUser(s.uuidGen.NewString(), name, time.Now().UTC())
	if err := domain.ValidateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) newKey(userID, name, token string) (*domain.APIKey, error) {
	if userID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "user ID is required")
	}
	if name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}
	key := domain.NewAPIKey(s.uuidGen.NewString(), userID, name, hashToken(token), time.Now().UTC(), nil)
	if err := domain.ValidateAPIKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// CreateUser registers a new user. Names are unique.
func (s *AuthService) CreateUser(ctx context.Context, name string) (*domain.User, error) {
	user, err := s.newUser(name)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByName(ctx, name); err == nil {
		return nil, domain.ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateUserWithKey registers a user together with a first API key and
// returns the plaintext token. Neither is stored if either write fails.
func (s *AuthService) CreateUserWithKey(ctx context.Context, name, keyName string) (*domain.User, string, error) {
	user, err := s.newUser(name)
	if err != nil {
		return nil, "", err
	}

	token, err := generateAPIToken()
	if err != nil {
		return nil, "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}
	key, err := s.newKey(user.ID, keyName, token)
	if err != nil {
		return nil, "", err
	}

	err = s.withRepos(ctx, func(repos TxRepositories) error {
		if _, err := repos.Users().GetByName(ctx, name); err == nil {
			return domain.ErrUserAlreadyExists
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		if err := repos.Users().Create(ctx, user); err != nil {
			return err
		}
		return repos.APIKeys().Create(ctx, key)
	})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

type ListUsersInput struct {
	Cursor string
	Limit  int
}

type ListUsersOutput struct {
	Items   []*domain.User
	Cursor  string
	HasMore bool
}

func (s *AuthService) ListUsers(ctx context.Context, input ListUsersInput) (*ListUsersOutput, error) {
	cursor, err := pagination.Parse(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}

	page, err := s.userRepo.ListWithCursor(ctx, cursor, input.Limit)
	if err != nil {
		return nil, err
	}
	return &ListUsersOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}

func (s *AuthService) CreateAPIKey(ctx context.Context, userID, name string) (string, error) {
	token, err := generateAPIToken()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}
	if err := s.CreateAPIKeyWithToken(ctx, userID, name, token); err != nil {
		return "", err
	}
	return token, nil
}

// CreateAPIKeyWithToken stores a caller-supplied token, used for bootstrap keys.
func (s *AuthService) CreateAPIKeyWithToken(ctx context.Context, userID, name, token string) error {
	if !IsValidAPIToken(token) {
		return domain.NewDomainError(domain.ErrCodeValidation, "invalid API key format (expected scr_<64 hex chars>)")
	}

	key, err := s.newKey(userID, name, token)
	if err != nil {
		return err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	return s.keyRepo.Create(ctx, key)
}

// ValidateAPIKey resolves a bearer token to its user ID.
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	ctx, span := telemetry.StartSpan(ctx, "AuthService.ValidateAPIKey", telemetry.SpanAttributes{
		Operation: "validate_api_key",
	})
	defer span.End()

	if !IsValidAPIToken(token) {
		return "", domain.ErrInvalidAPIKey
	}

	key, err := s.keyRepo.GetByHash(ctx, hashToken(token))
	if err != nil {
		if errors.Is(err, domain.ErrAPIKeyNotFound) {
			return "", domain.ErrInvalidAPIKey
		}
		span.SetError(err)
		return "", err
	}

	if key.IsRevoked() {
		return "", domain.ErrAPIKeyRevoked
	}

	return key.UserID, nil
}

func (s *AuthService) RevokeAPIKey(ctx context.Context, keyID string) error {
	if keyID == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key ID is required")
	}

	return s.keyRepo.Revoke(ctx, keyID)
}

func (s *AuthService) ListAPIKeys(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	if userID == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "user ID is required")
	}

	return s.keyRepo.GetByUserID(ctx, userID)
}

// BootstrapResult reports what Bootstrap had to create.
type BootstrapResult struct {
	User        *domain.User
	UserCreated bool
	KeyCreated  bool
}

// Bootstrap makes sure a user named userName exists and, when token is set,
// that the token is registered for it. Running it again is a no-op.
func (s *AuthService) Bootstrap(ctx context.Context, userName, token string) (*BootstrapResult, error) {
	if token != "" && !IsValidAPIToken(token) {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid API key format (expected scr_<64 hex chars>)")
	}

	result := &BootstrapResult{}
	err := s.withRepos(ctx, func(repos TxRepositories) error {
		user, err := repos.Users().GetByName(ctx, userName)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			if user, err = s.newUser(userName); err != nil {
				return err
			}
			if err := repos.Users().Create(ctx, user); err != nil {
				return err
			}
			result.UserCreated = true
		case err != nil:
			return err
		}
		result.User = user

		if token == "" {
			return nil
		}

		existing, err := repos.APIKeys().GetByHash(ctx, hashToken(token))
		if err == nil {
			if existing.UserID != user.ID {
				return domain.NewDomainError(domain.ErrCodeAlreadyExists, "bootstrap API key belongs to another user")
			}
			return nil
		}
		if !errors.Is(err, domain.ErrAPIKeyNotFound) {
			return err
		}

		key, err := s.newKey(user.ID, "bootstrap", token)
		if err != nil {
			return err
		}
		if err := repos.APIKeys().Create(ctx, key); err != nil {
			return err
		}
		result.KeyCreated = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func generateAPIToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(bytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// IsValidAPIToken reports whether token has the scr_<64 hex> shape.
func IsValidAPIToken(token string) bool {
	hexPart, ok := strings.CutPrefix(token, apiKeyPrefix)
	if !ok || len(hexPart) != 64 {
		return false
	}
	_, err := hex.DecodeString(hexPart)
	return err == nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
