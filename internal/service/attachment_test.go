package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/scratch/internal/domain"
)

func TestAttachmentService_InitUpload(t *testing.T) {
	store := new(MockStorage)
	store.On("GenerateUploadURL", mock.Anything, "attachments/user-1/up-1-photo.png", "image/png").
		Return("https://s3.example/put", nil)

	svc := NewAttachmentServiceWithUUIDGen(store, new(MockNoteRepository), NewMockUUIDGenerator("up-1"))
	out, err := svc.InitUpload(context.Background(), InitUploadInput{
		UserID:      "user-1",
		Filename:    "photo.png",
		ContentType: "image/png",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://s3.example/put", out.URL)
	assert.Equal(t, "attachments/user-1/up-1-photo.png", out.Key)
	assert.Equal(t, 15*time.Minute, out.ExpiresIn)
}

func TestAttachmentService_InitUpload_DefaultsContentType(t *testing.T) {
	store := new(MockStorage)
	store.On("GenerateUploadURL", mock.Anything, mock.Anything, "application/octet-stream").Return("u", nil)

	svc := NewAttachmentServiceWithUUIDGen(store, new(MockNoteRepository), NewMockUUIDGenerator("up-1"))
	_, err := svc.InitUpload(context.Background(), InitUploadInput{UserID: "user-1", Filename: "blob"})

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestAttachmentService_InitUpload_Validation(t *testing.T) {
	svc := NewAttachmentService(new(MockStorage), new(MockNoteRepository))

	_, err := svc.InitUpload(context.Background(), InitUploadInput{UserID: "user-1"})

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestAttachmentService_NotConfigured(t *testing.T) {
	svc := NewAttachmentService(nil, new(MockNoteRepository))

	_, err := svc.InitUpload(context.Background(), InitUploadInput{UserID: "user-1", Filename: "a"})
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)

	_, err = svc.DownloadURL(context.Background(), "user-1", "note-1")
	assert.ErrorIs(t, err, domain.ErrStorageNotConfigured)
}

func TestAttachmentService_DownloadURL(t *testing.T) {
	key := "attachments/user-1/up-1-photo.png"
	notes := new(MockNoteRepository)
	notes.On("GetByID", mock.Anything, "user-1", "note-1").Return(domain.NewNote("note-1", "user-1", "x", key, testNow), nil)
	store := new(MockStorage)
	store.On("GenerateDownloadURL", mock.Anything, key).Return("https://s3.example/get", nil)

	out, err := NewAttachmentService(store, notes).DownloadURL(context.Background(), "user-1", "note-1")

	require.NoError(t, err)
	assert.Equal(t, "https://s3.example/get", out.URL)
	assert.Equal(t, time.Hour, out.ExpiresIn)
}

func TestAttachmentService_DownloadURL_NoAttachment(t *testing.T) {
	notes := new(MockNoteRepository)
	notes.On("GetByID", mock.Anything, "user-1", "note-1").Return(domain.NewNote("note-1", "user-1", "x", "", testNow), nil)
	store := new(MockStorage)

	_, err := NewAttachmentService(store, notes).DownloadURL(context.Background(), "user-1", "note-1")

	assert.ErrorIs(t, err, domain.ErrAttachmentNotFound)
	store.AssertNotCalled(t, "GenerateDownloadURL", mock.Anything, mock.Anything)
}

func TestAttachmentService_DownloadURL_StorageFailure(t *testing.T) {
	key := "attachments/user-1/up-1-photo.png"
	notes := new(MockNoteRepository)
	notes.On("GetByID", mock.Anything, "user-1", "note-1").Return(domain.NewNote("note-1", "user-1", "x", key, testNow), nil)
	store := new(MockStorage)
	store.On("GenerateDownloadURL", mock.Anything, key).Return("", errors.New("signing failed"))

	_, err := NewAttachmentService(store, notes).DownloadURL(context.Background(), "user-1", "note-1")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeInternalError, domainErr.Code)
}
