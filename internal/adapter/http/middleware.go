package adapthttp

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const accountIDContextKey contextKey = "accountID"

// Rejection messages of the auth gate.
const (
	msgNoToken      = "no token provided"
	msgInvalidToken = "invalid token"
)

// WithAccountID stores an authenticated account id in ctx.
func WithAccountID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, accountIDContextKey, id)
}

// AccountIDFromContext returns the account id attached by the auth gate.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDContextKey).(string)
	return id, ok && id != ""
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is absent or not exactly of that
// form, so extra whitespace around the token is rejected.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || scheme != "Bearer" {
		return ""
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return ""
	}
	return token
}

// authMiddleware verifies the bearer token and attaches the account id to
// the request context. It never consults the account store.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.metrics.gateRejections.WithLabelValues("no_token").Inc()
			writeMessage(w, http.StatusUnauthorized, msgNoToken)
			return
		}

		accountID, err := s.tokens.Verify(token)
		if err != nil {
			s.metrics.gateRejections.WithLabelValues("invalid_token").Inc()
			writeMessage(w, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), accountID)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// loggingMiddleware logs each request and counts it by method and status.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.metrics.observe(r.Method, rec.status)
		s.log.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
