package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

const testToken = "scr_0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func TestAPIKeyAuth_StoresUser(t *testing.T) {
	validator := new(MockAuthValidator)
	validator.On("ValidateAPIKey", mock.Anything, testToken).Return("user-789", nil)

	var got string
	handler := APIKeyAuth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUserID(r.Context())
	}))

	for _, header := range []string{"Bearer " + testToken, "bearer  " + testToken + " "} {
		got = ""
		req := httptest.NewRequest(http.MethodGet, "/notes", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, header)
		assert.Equal(t, "user-789", got, header)
	}
	validator.AssertExpectations(t)
}

func TestAPIKeyAuth_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"no header", "", "missing authorization header"},
		{"basic scheme", "Basic abc123", "invalid authorization format"},
		{"scheme only", "Bearer", "invalid authorization format"},
		{"blank token", "Bearer   ", "invalid authorization format"},
		{"unknown key", "Bearer scr_unknown", "invalid api key"},
	}

	validator := new(MockAuthValidator)
	validator.On("ValidateAPIKey", mock.Anything, "scr_unknown").Return("", errors.New("invalid key"))
	handler := APIKeyAuth(validator)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not be called")
	}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/notes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantMsg)
		})
	}
}

func TestGetUserID(t *testing.T) {
	assert.Equal(t, "user-123", GetUserID(WithUserID(context.Background(), "user-123")))
	assert.Equal(t, "", GetUserID(context.Background()))
}

func TestAccessLog_RecordsAuthenticatedUser(t *testing.T) {
	mockValidator := new(MockAuthValidator)
	mockValidator.On("ValidateAPIKey", mock.Anything, "scr_token").Return("user-42", nil)

	var rec *responseRecorder
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, _ = r.Context().Value(accessLogKey).(*responseRecorder)
		w.WriteHeader(http.StatusNoContent)
	})

	handler := AccessLog(APIKeyAuth(mockValidator)(inner))

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer scr_token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	if assert.NotNil(t, rec) {
		assert.Equal(t, "user-42", rec.userID)
		assert.Equal(t, http.StatusNoContent, rec.status)
	}
}

func TestMaxBodyBytes_RejectsLargeDeclaredBody(t *testing.T) {
	handler := MaxBodyBytes(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("too large"))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestID_EchoesIncomingHeader(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestRequestID_ReplacesUnusableHeader(t *testing.T) {
	for _, incoming := range []string{"", "has space", strings.Repeat("a", 200)} {
		var seen string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", incoming)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.NotEqual(t, incoming, seen)
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	}
}

func TestMaxBodyBytes_IgnoresBodylessMethods(t *testing.T) {
	called := false
	handler := MaxBodyBytes(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodDelete, "/notes/n1", strings.NewReader("ignored body"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, called)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", clientIP(req))

	req.Header.Set("X-Forwarded-For", " 192.0.2.7 , 10.0.0.3")
	assert.Equal(t, "192.0.2.7", clientIP(req))
}
