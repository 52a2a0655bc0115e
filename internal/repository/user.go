package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/pagination"
	"github.com/cloo-solutions/scratch/internal/service"
)

const defaultPageSize = 20

type UserRepository struct {
	db DBTX
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool}
}

func NewUserRepositoryWithTx(tx pgx.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, name, created_at) VALUES ($1, $2, $3)`,
		user.ID, user.Name, user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrUserAlreadyExists
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT id, name, created_at FROM users WHERE name = $1`, name)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx, query, arg).Scan(&user.ID, &user.Name, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListWithCursor pages through users, newest first. limit+1 rows are read
// to learn whether another page follows.
func (r *UserRepository) ListWithCursor(ctx context.Context, cursor *pagination.Cursor, limit int) (*service.UserPageResult, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT id, name, created_at FROM users
			 WHERE (created_at, id) < ($1, $2)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $3`,
			cursor.CreatedAt, cursor.ID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id, name, created_at FROM users
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(users) > limit
	if hasMore {
		users = users[:limit]
	}

	var nextCursor string
	if hasMore {
		last := users[len(users)-1]
		nextCursor = pagination.After(last.ID, last.CreatedAt).String()
	}

	return &service.UserPageResult{
		Items:      users,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
