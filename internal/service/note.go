package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/storage"
	"github.com/cloo-solutions/scratch/internal/telemetry"
)

// NoteRepositoryInterface defines the repository interface for note persistence.
// Every read and write is scoped to the owning user.
type NoteRepositoryInterface interface {
	Create(ctx context.Context, n *domain.Note) error
	GetByID(ctx context.Context, userID, id string) (*domain.Note, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Note, error)
	Update(ctx context.Context, n *domain.Note) error
	Delete(ctx context.Context, userID, id string) error
}

// ObjectDeleter removes stored attachment objects.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// UUIDGenerator defines interface for UUID generation (for testing)
type UUIDGenerator interface {
	NewString() string
}

// DefaultUUIDGenerator is the default UUID generator using google/uuid
type DefaultUUIDGenerator struct{}

// NewString generates a new UUID string
func (g *DefaultUUIDGenerator) NewString() string {
	return uuid.NewString()
}

// NoteService handles business logic for notes
type NoteService struct {
	repo    NoteRepositoryInterface
	objects ObjectDeleter
	uuidGen UUIDGenerator
	now     func() time.Time
}

// NewNoteService creates a NoteService. objects may be nil when attachment
// storage is not configured.
func NewNoteService(repo NoteRepositoryInterface, objects ObjectDeleter) *NoteService {
	return NewNoteServiceWithUUIDGen(repo, objects, &DefaultUUIDGenerator{})
}

// NewNoteServiceWithUUIDGen creates a NoteService with a custom UUID generator (for testing)
func NewNoteServiceWithUUIDGen(repo NoteRepositoryInterface, objects ObjectDeleter, uuidGen UUIDGenerator) *NoteService {
	return &NoteService{
		repo:    repo,
		objects: objects,
		uuidGen: uuidGen,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type CreateNoteInput struct {
	UserID     string
	Content    string
	Attachment string
}

// UpdateNoteInput replaces the mutable fields of a note.
type UpdateNoteInput struct {
	UserID     string
	NoteID     string
	Content    string
	Attachment string
}

func checkAttachment(userID, key string) error {
	if key != "" && !storage.OwnsKey(userID, key) {
		return domain.NewDomainError(domain.ErrCodeForbidden, "attachment does not belong to user")
	}
	return nil
}

// Create stores a new note owned by input.UserID.
func (s *NoteService) Create(ctx context.Context, input CreateNoteInput) (*domain.Note, error) {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.Create", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "create",
	})
	defer span.End()

	if err := checkAttachment(input.UserID, input.Attachment); err != nil {
		return nil, err
	}

	note := domain.NewNote(s.uuidGen.NewString(), input.UserID, input.Content, input.Attachment, s.now())
	if err := domain.ValidateNote(note); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid note", err)
	}

	if err := s.repo.Create(ctx, note); err != nil {
		span.SetError(err)
		return nil, err
	}
	return note, nil
}

func (s *NoteService) Get(ctx context.Context, userID, noteID string) (*domain.Note, error) {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.Get", telemetry.SpanAttributes{
		UserID:    userID,
		NoteID:    noteID,
		Operation: "get",
	})
	defer span.End()

	return s.repo.GetByID(ctx, userID, noteID)
}

// List returns the user's notes, newest first.
func (s *NoteService) List(ctx context.Context, userID string) ([]*domain.Note, error) {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.List", telemetry.SpanAttributes{
		UserID:    userID,
		Operation: "list",
	})
	defer span.End()

	notes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if notes == nil {
		notes = []*domain.Note{}
	}
	return notes, nil
}

// Update replaces content and attachment. A replaced attachment object is
// removed from storage after the write succeeds.
func (s *NoteService) Update(ctx context.Context, input UpdateNoteInput) (*domain.Note, error) {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.Update", telemetry.SpanAttributes{
		UserID:    input.UserID,
		NoteID:    input.NoteID,
		Operation: "update",
	})
	defer span.End()

	if err := checkAttachment(input.UserID, input.Attachment); err != nil {
		return nil, err
	}

	note, err := s.repo.GetByID(ctx, input.UserID, input.NoteID)
	if err != nil {
		return nil, err
	}

	previous := note.Attachment
	note.Content = input.Content
	note.Attachment = input.Attachment
	note.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, note); err != nil {
		span.SetError(err)
		return nil, err
	}

	if previous != "" && previous != note.Attachment {
		s.removeObject(ctx, previous)
	}
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, noteID string) error {
	ctx, span := telemetry.StartSpan(ctx, "NoteService.Delete", telemetry.SpanAttributes{
		UserID:    userID,
		NoteID:    noteID,
		Operation: "delete",
	})
	defer span.End()

	note, err := s.repo.GetByID(ctx, userID, noteID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, noteID); err != nil {
		span.SetError(err)
		return err
	}

	if note.HasAttachment() {
		s.removeObject(ctx, note.Attachment)
	}
	return nil
}

// removeObject deletes an orphaned attachment. Failures leave a stray object
// behind and are only logged.
func (s *NoteService) removeObject(ctx context.Context, key string) {
	if s.objects == nil {
		return
	}
	if err := s.objects.DeleteObject(ctx, key); err != nil {
		log.Printf("attachment cleanup failed for %s: %v", key, err)
		telemetry.CaptureError(ctx, err)
	}
}
