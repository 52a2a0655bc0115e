package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
)

func TestSpanStatus(t *testing.T) {
	tests := map[int]sentry.SpanStatus{
		http.StatusOK:                  sentry.SpanStatusOK,
		http.StatusNoContent:           sentry.SpanStatusOK,
		http.StatusNotFound:            sentry.SpanStatusNotFound,
		http.StatusUnauthorized:        sentry.SpanStatusUnauthenticated,
		http.StatusUnprocessableEntity: sentry.SpanStatusInvalidArgument,
		http.StatusBadGateway:          sentry.SpanStatusInternalError,
		http.StatusGatewayTimeout:      sentry.SpanStatusDeadlineExceeded,
		0:                              sentry.SpanStatusUnknown,
	}
	for code, want := range tests {
		assert.Equal(t, want, spanStatus(code), "status %d", code)
	}
}

func TestSentryMiddleware_PassesThroughWithoutClient(t *testing.T) {
	var hubSeen bool
	handler := SentryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hubSeen = sentry.GetHubFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/notes", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.True(t, hubSeen)
}

func TestSentryMiddleware_RepanicsAfterRecovery(t *testing.T) {
	handler := SentryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	assert.PanicsWithValue(t, "boom", func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
