package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/service"
)

type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) InitUpload(ctx context.Context, input service.InitUploadInput) (*service.AttachmentURL, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttachmentURL), args.Error(1)
}

func (m *MockAttachmentService) DownloadURL(ctx context.Context, userID, noteID string) (*service.AttachmentURL, error) {
	args := m.Called(ctx, userID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttachmentURL), args.Error(1)
}

func TestAttachmentHandler_InitUpload(t *testing.T) {
	svc := new(MockAttachmentService)
	svc.On("InitUpload", mock.Anything, service.InitUploadInput{
		UserID: "user-1", Filename: "a.png", ContentType: "image/png",
	}).Return(&service.AttachmentURL{URL: "https://put", Key: "attachments/user-1/u-a.png", ExpiresIn: 15 * time.Minute}, nil)

	w := httptest.NewRecorder()
	body := `{"filename":"a.png","content_type":"image/png"}`
	NewAttachmentHandler(svc).InitUpload(w, newRequest(http.MethodPost, "/attachments", body, "user-1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var out AttachmentURLResponse
	decodeData(t, w, &out)
	assert.Equal(t, "https://put", out.URL)
	assert.Equal(t, "attachments/user-1/u-a.png", out.Key)
	assert.Equal(t, 900, out.ExpiresIn)
}

func TestAttachmentHandler_InitUpload_MissingFilename(t *testing.T) {
	svc := new(MockAttachmentService)
	w := httptest.NewRecorder()

	NewAttachmentHandler(svc).InitUpload(w, newRequest(http.MethodPost, "/attachments", `{}`, "user-1", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "InitUpload", mock.Anything, mock.Anything)
}

func TestAttachmentHandler_Download_NoAttachment(t *testing.T) {
	svc := new(MockAttachmentService)
	svc.On("DownloadURL", mock.Anything, "user-1", "n1").Return(nil, domain.ErrAttachmentNotFound)

	w := httptest.NewRecorder()
	NewAttachmentHandler(svc).Download(w, newRequest(http.MethodGet, "/notes/n1/attachment", "", "user-1", map[string]string{"id": "n1"}))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "note has no attachment")
}

func TestAttachmentHandler_Download_StorageNotConfigured(t *testing.T) {
	svc := new(MockAttachmentService)
	svc.On("DownloadURL", mock.Anything, "user-1", "n1").Return(nil, domain.ErrStorageNotConfigured)

	w := httptest.NewRecorder()
	NewAttachmentHandler(svc).Download(w, newRequest(http.MethodGet, "/notes/n1/attachment", "", "user-1", map[string]string{"id": "n1"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}
