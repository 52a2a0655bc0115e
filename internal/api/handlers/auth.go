package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloo-solutions/scratch/internal/api"
	"github.com/cloo-solutions/scratch/internal/domain"
)

// AuthService is the part of the auth service the account routes need.
type AuthService interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateAPIKey(ctx context.Context, userID, name string) (string, error)
}

// AuthHandler serves the caller's own account: GET /me and POST /apikeys.
type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// UserResponse mirrors NoteResponse: camelCase keys, epoch milliseconds.
type UserResponse struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

type CreateAPIKeyRequest struct {
	Name string `json:"name"`
}

// APIKeyResponse carries the plaintext token. It is never shown again.
type APIKeyResponse struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(r.Context(), userID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, UserResponse{
		UserID:    user.ID,
		Name:      user.Name,
		CreatedAt: user.CreatedAt.UnixMilli(),
	})
}

func (h *AuthHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateAPIKeyRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	token, err := h.svc.CreateAPIKey(r.Context(), userID, name)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusCreated, APIKeyResponse{Name: name, Token: token})
}
