package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/scratch/internal/domain"
)

const noteColumns = `id, user_id, content, attachment, created_at, updated_at`

type NoteRepository struct {
	db DBTX
}

func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{db: pool}
}

func scanNote(row pgx.Row) (*domain.Note, error) {
	var n domain.Note
	if err := row.Scan(&n.ID, &n.UserID, &n.Content, &n.Attachment, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepository) Create(ctx context.Context, n *domain.Note) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO notes (`+noteColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.UserID, n.Content, n.Attachment, n.CreatedAt, n.UpdatedAt,
	)
	return err
}

// GetByID returns domain.ErrNoteNotFound for notes owned by someone else.
func (r *NoteRepository) GetByID(ctx context.Context, userID, id string) (*domain.Note, error) {
	n, err := scanNote(r.db.QueryRow(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoteNotFound
	}
	return n, err
}

func (r *NoteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Update writes content, attachment and updated_at. Identity and creation
// time are never changed.
func (r *NoteRepository) Update(ctx context.Context, n *domain.Note) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE notes SET content = $1, attachment = $2, updated_at = $3
		 WHERE id = $4 AND user_id = $5`,
		n.Content, n.Attachment, n.UpdatedAt, n.ID, n.UserID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, userID, id string) error {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrNoteNotFound
	}
	return nil
}
