package service

import (
	"context"
	"time"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/storage"
	"github.com/cloo-solutions/scratch/internal/telemetry"
)

const defaultContentType = "application/octet-stream"

// StorageClientInterface issues presigned URLs for attachment objects.
type StorageClientInterface interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	UploadExpiry() time.Duration
	DownloadExpiry() time.Duration
}

// AttachmentURL is a presigned URL for one object key.
type AttachmentURL struct {
	URL       string
	Key       string
	ExpiresIn time.Duration
}

type AttachmentService struct {
	storage StorageClientInterface
	notes   NoteRepositoryInterface
	uuidGen UUIDGenerator
}

// NewAttachmentService creates an AttachmentService. A nil storage client
// makes every call fail with domain.ErrStorageNotConfigured.
func NewAttachmentService(storageClient StorageClientInterface, notes NoteRepositoryInterface) *AttachmentService {
	return NewAttachmentServiceWithUUIDGen(storageClient, notes, &DefaultUUIDGenerator{})
}

func NewAttachmentServiceWithUUIDGen(storageClient StorageClientInterface, notes NoteRepositoryInterface, uuidGen UUIDGenerator) *AttachmentService {
	return &AttachmentService{
		storage: storageClient,
		notes:   notes,
		uuidGen: uuidGen,
	}
}

type InitUploadInput struct {
	UserID      string
	Filename    string
	ContentType string
}

// InitUpload reserves a key under the user's prefix and presigns a PUT for it.
// The key is later stored as a note's attachment.
func (s *AttachmentService) InitUpload(ctx context.Context, input InitUploadInput) (*AttachmentURL, error) {
	ctx, span := telemetry.StartSpan(ctx, "AttachmentService.InitUpload", telemetry.SpanAttributes{
		UserID:    input.UserID,
		Operation: "init_upload",
	})
	defer span.End()

	if s.storage == nil {
		return nil, domain.ErrStorageNotConfigured
	}
	if input.Filename == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "filename is required")
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	key := storage.AttachmentKey(input.UserID, s.uuidGen.NewString(), input.Filename)
	url, err := s.storage.GenerateUploadURL(ctx, key, contentType)
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrStorageOperationFail.Wrap(err)
	}

	return &AttachmentURL{URL: url, Key: key, ExpiresIn: s.storage.UploadExpiry()}, nil
}

// DownloadURL presigns a GET for the attachment of one of the user's notes.
func (s *AttachmentService) DownloadURL(ctx context.Context, userID, noteID string) (*AttachmentURL, error) {
	ctx, span := telemetry.StartSpan(ctx, "AttachmentService.DownloadURL", telemetry.SpanAttributes{
		UserID:    userID,
		NoteID:    noteID,
		Operation: "download_url",
	})
	defer span.End()

	if s.storage == nil {
		return nil, domain.ErrStorageNotConfigured
	}

	note, err := s.notes.GetByID(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}
	if !note.HasAttachment() || !storage.OwnsKey(userID, note.Attachment) {
		return nil, domain.ErrAttachmentNotFound
	}

	url, err := s.storage.GenerateDownloadURL(ctx, note.Attachment)
	if err != nil {
		span.SetError(err)
		return nil, domain.ErrStorageOperationFail.Wrap(err)
	}

	return &AttachmentURL{URL: url, Key: note.Attachment, ExpiresIn: s.storage.DownloadExpiry()}, nil
}
