package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/scratch/internal/api"
	"github.com/cloo-solutions/scratch/internal/service"
)

type AttachmentService interface {
	InitUpload(ctx context.Context, input service.InitUploadInput) (*service.AttachmentURL, error)
	DownloadURL(ctx context.Context, userID, noteID string) (*service.AttachmentURL, error)
}

type AttachmentHandler struct {
	svc AttachmentService
}

func NewAttachmentHandler(svc AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

type InitUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

type AttachmentURLResponse struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expires_in"`
}

func attachmentURLToResponse(u *service.AttachmentURL) *AttachmentURLResponse {
	return &AttachmentURLResponse{
		URL:       u.URL,
		Key:       u.Key,
		ExpiresIn: int(u.ExpiresIn.Seconds()),
	}
}

// InitUpload handles POST /attachments.
func (h *AttachmentHandler) InitUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req InitUploadRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	if req.Filename == "" {
		api.Error(w, http.StatusBadRequest, "filename is required")
		return
	}

	out, err := h.svc.InitUpload(r.Context(), service.InitUploadInput{
		UserID:      userID,
		Filename:    req.Filename,
		ContentType: req.ContentType,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, attachmentURLToResponse(out))
}

// Download handles GET /notes/{id}/attachment.
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	out, err := h.svc.DownloadURL(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, attachmentURLToResponse(out))
}
