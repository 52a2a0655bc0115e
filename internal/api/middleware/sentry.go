package middleware

import (
	"net/http"

	"github.com/getsentry/sentry-go"
)

var spanStatusByHTTP = map[int]sentry.SpanStatus{
	http.StatusBadRequest:            sentry.SpanStatusInvalidArgument,
	http.StatusUnauthorized:          sentry.SpanStatusUnauthenticated,
	http.StatusForbidden:             sentry.SpanStatusPermissionDenied,
	http.StatusNotFound:              sentry.SpanStatusNotFound,
	http.StatusConflict:              sentry.SpanStatusAlreadyExists,
	http.StatusRequestEntityTooLarge: sentry.SpanStatusOutOfRange,
	http.StatusTooManyRequests:       sentry.SpanStatusResourceExhausted,
	499:                              sentry.SpanStatusCanceled,
	http.StatusNotImplemented:        sentry.SpanStatusUnimplemented,
	http.StatusServiceUnavailable:    sentry.SpanStatusUnavailable,
	http.StatusGatewayTimeout:        sentry.SpanStatusDeadlineExceeded,
}

func spanStatus(code int) sentry.SpanStatus {
	if s, ok := spanStatusByHTTP[code]; ok {
		return s
	}
	switch code / 100 {
	case 1, 2, 3:
		return sentry.SpanStatusOK
	case 4:
		return sentry.SpanStatusInvalidArgument
	case 5:
		return sentry.SpanStatusInternalError
	}
	return sentry.SpanStatusUnknown
}

// SentryMiddleware runs each request in a transaction on its own hub,
// continuing an incoming sentry-trace header. Panics are reported and
// re-raised; 5xx responses are reported as messages. Without sentry.Init
// the transaction is simply never sent.
func SentryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub := sentry.GetHubFromContext(r.Context())
		if hub == nil {
			hub = sentry.CurrentHub().Clone()
		}

		tx := sentry.StartTransaction(r.Context(), r.Method+" "+r.URL.Path,
			sentry.WithOpName("http.server"),
			sentry.WithTransactionSource(sentry.SourceURL),
			sentry.ContinueFromHeaders(r.Header.Get(sentry.SentryTraceHeader), r.Header.Get(sentry.SentryBaggageHeader)),
		)
		defer tx.Finish()

		r = r.WithContext(sentry.SetHubOnContext(tx.Context(), hub))
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetRequest(r)
			if id := GetRequestID(r.Context()); id != "" {
				scope.SetTag("request_id", id)
				tx.SetTag("request_id", id)
			}
		})

		defer func() {
			if p := recover(); p != nil {
				tx.Status = sentry.SpanStatusInternalError
				hub.RecoverWithContext(r.Context(), p)
				panic(p)
			}
		}()

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		code := rec.statusCode()
		tx.Status = spanStatus(code)
		tx.SetData("http.response.status_code", code)
		if code >= http.StatusInternalServerError {
			hub.CaptureMessage(r.Method + " " + r.URL.Path + ": " + http.StatusText(code))
		}
	})
}

// tagUser attaches the authenticated user to the request's Sentry scope and
// transaction.
func tagUser(r *http.Request, userID string) {
	if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetUser(sentry.User{ID: userID})
		})
	}
	if span := sentry.SpanFromContext(r.Context()); span != nil {
		span.SetTag("user_id", userID)
	}
}
