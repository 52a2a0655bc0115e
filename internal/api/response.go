// Package api holds the JSON envelope shared by every handler.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/cloo-solutions/scratch/internal/domain"
)

// SuccessResponse is the {"data": ...} envelope.
type SuccessResponse struct {
	Data any `json:"data"`
}

// ErrorResponse is the {"error": "..."} envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

const internalErrorMessage = "internal server error"

var statusByCode = map[domain.Code]int{
	domain.ErrCodeValidation:    http.StatusBadRequest,
	domain.ErrCodeNotFound:      http.StatusNotFound,
	domain.ErrCodeAlreadyExists: http.StatusConflict,
	domain.ErrCodeUnauthorized:  http.StatusUnauthorized,
	domain.ErrCodeForbidden:     http.StatusForbidden,
}

// JSON writes v as the response body. A nil v leaves the body empty.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func Success(w http.ResponseWriter, status int, data any) {
	JSON(w, status, SuccessResponse{Data: data})
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// DecodeJSON reads the request body into dst. On failure it writes the
// error response itself and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		Error(w, http.StatusRequestEntityTooLarge, "request body too large")
	} else {
		Error(w, http.StatusBadRequest, "invalid request body")
	}
	return false
}

// DomainErrorToHTTP returns the status for err. Errors without a client
// facing code are 500.
func DomainErrorToHTTP(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if status, ok := statusByCode[domain.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// HandleError writes err as an error response. Only the domain error's own
// message reaches the client; anything else is logged and reported as a
// generic 500.
func HandleError(w http.ResponseWriter, err error) {
	status := DomainErrorToHTTP(err)
	var de *domain.DomainError
	if status == http.StatusInternalServerError || !errors.As(err, &de) {
		log.Printf("internal error: %v", err)
		Error(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}
	Error(w, status, de.Error())
}
