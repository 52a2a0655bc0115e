package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// accessLine is one JSON access log record.
type accessLine struct {
	Time      string  `json:"ts"`
	Method    string  `json:"method"`
	Path      string  `json:"path"`
	Route     string  `json:"route,omitempty"`
	Status    int     `json:"status"`
	Size      int     `json:"bytes"`
	LatencyMS float64 `json:"duration_ms"`
	RequestID string  `json:"request_id,omitempty"`
	User      string  `json:"user_id,omitempty"`
	IP        string  `json:"remote_addr,omitempty"`
	Agent     string  `json:"user_agent,omitempty"`
}

// responseRecorder captures what the handler wrote. The auth middleware
// fills userID through noteUser.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	userID string
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// statusCode is the status the client saw; handlers that never call
// WriteHeader answer 200.
func (r *responseRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

const accessLogKey contextKey = "access_log"

// noteUser records the authenticated user on the enclosing access log
// record. Auth runs inside AccessLog, so the outer request never sees the
// user on its context.
func noteUser(ctx context.Context, userID string) {
	if rec, ok := ctx.Value(accessLogKey).(*responseRecorder); ok {
		rec.userID = userID
	}
}

// AccessLog writes one JSON line per request once the handler returns.
func AccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), accessLogKey, rec)))

		line := accessLine{
			Time:      start.UTC().Format(time.RFC3339Nano),
			Method:    r.Method,
			Path:      r.URL.Path,
			Status:    rec.statusCode(),
			Size:      rec.bytes,
			LatencyMS: float64(time.Since(start).Microseconds()) / 1000,
			RequestID: GetRequestID(r.Context()),
			User:      rec.userID,
			IP:        clientIP(r),
			Agent:     r.UserAgent(),
		}
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			line.Route = rctx.RoutePattern()
		}
		writeAccessLine(line)
	})
}

func writeAccessLine(line accessLine) {
	payload, err := json.Marshal(line)
	if err != nil {
		log.Printf("access log: %v", err)
		return
	}
	log.Println(string(payload))
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
