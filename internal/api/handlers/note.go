package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/scratch/internal/api"
	"github.com/cloo-solutions/scratch/internal/api/middleware"
	"github.com/cloo-solutions/scratch/internal/domain"
	"github.com/cloo-solutions/scratch/internal/service"
)

type NoteService interface {
	Create(ctx context.Context, input service.CreateNoteInput) (*domain.Note, error)
	Get(ctx context.Context, userID, noteID string) (*domain.Note, error)
	List(ctx context.Context, userID string) ([]*domain.Note, error)
	Update(ctx context.Context, input service.UpdateNoteInput) (*domain.Note, error)
	Delete(ctx context.Context, userID, noteID string) error
}

type NoteHandler struct {
	svc NoteService
}

func NewNoteHandler(svc NoteService) *NoteHandler {
	return &NoteHandler{svc: svc}
}

// NoteRequest is the body of POST /notes and PUT /notes/{id}. Identity,
// owner and creation time are assigned by the server and ignored here.
type NoteRequest struct {
	Content    string `json:"content"`
	Attachment string `json:"attachment"`
}

// NoteResponse carries createdAt as epoch milliseconds.
type NoteResponse struct {
	NoteID     string `json:"noteId"`
	UserID     string `json:"userId"`
	Content    string `json:"content"`
	Attachment string `json:"attachment,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
}

func noteToResponse(n *domain.Note) *NoteResponse {
	return &NoteResponse{
		NoteID:     n.ID,
		UserID:     n.UserID,
		Content:    n.Content,
		Attachment: n.Attachment,
		CreatedAt:  n.CreatedAt.UnixMilli(),
	}
}

func decodeNoteRequest(w http.ResponseWriter, r *http.Request) (*NoteRequest, bool) {
	var req NoteRequest
	if !api.DecodeJSON(w, r, &req) {
		return nil, false
	}
	return &req, true
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return userID, true
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	notes, err := h.svc.List(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	resp := make([]*NoteResponse, 0, len(notes))
	for _, n := range notes {
		resp = append(resp, noteToResponse(n))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	req, ok := decodeNoteRequest(w, r)
	if !ok {
		return
	}

	note, err := h.svc.Create(r.Context(), service.CreateNoteInput{
		UserID:     userID,
		Content:    req.Content,
		Attachment: req.Attachment,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, noteToResponse(note))
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	note, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, noteToResponse(note))
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	req, ok := decodeNoteRequest(w, r)
	if !ok {
		return
	}

	note, err := h.svc.Update(r.Context(), service.UpdateNoteInput{
		UserID:     userID,
		NoteID:     id,
		Content:    req.Content,
		Attachment: req.Attachment,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, noteToResponse(note))
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"noteId": id})
}
