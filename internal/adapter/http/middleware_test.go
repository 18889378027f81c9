package adapthttp

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"accounts/internal/domain"
	"accounts/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCodec struct {
	verify func(token string) (string, error)
}

func (c stubCodec) Issue(string) (string, error) { return "", nil }

func (c stubCodec) Verify(token string) (string, error) { return c.verify(token) }

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	s := New(nil, nil, nil, logging.New("info", "json", &buf))

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})
	handler := s.loggingMiddleware(nextHandler)

	req := httptest.NewRequest(http.MethodGet, "/test-path", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)

	logOutput := buf.String()
	for _, want := range []string{`"method":"GET"`, `"path":"/test-path"`, `"status":418`} {
		assert.Contains(t, logOutput, want)
	}
}

func TestLoggingMiddleware_NeverLogsAuthorization(t *testing.T) {
	var buf bytes.Buffer
	s := New(nil, nil, nil, logging.New("debug", "text", &buf))

	handler := s.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer secret-token-value")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotContains(t, buf.String(), "secret-token-value")
}

func TestAuthMiddleware_AttachesAccountID(t *testing.T) {
	s := New(nil, nil, stubCodec{verify: func(token string) (string, error) {
		if token == "good" {
			return "acct-1", nil
		}
		return "", domain.ErrInvalidToken
	}}, nil)

	var gotID string
	var called bool
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotID, _ = AccountIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "acct-1", gotID)

	called = false
	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"invalid token"}`, rec.Body.String())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "", want: ""},
		{header: "Bearer abc", want: "abc"},
		{header: "Bearer  abc", want: ""},
		{header: "Bearer abc ", want: ""},
		{header: "bearer abc", want: ""},
		{header: "Basic abc", want: ""},
		{header: "Bearer", want: ""},
		{header: "Bearer a b", want: ""},
		{header: "abc", want: ""},
	}

	for _, tc := range tests {
		t.Run(strings.ReplaceAll(tc.header, " ", "_"), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			assert.Equal(t, tc.want, bearerToken(req))
		})
	}
}

func TestAccountIDFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := AccountIDFromContext(req.Context())
	assert.False(t, ok)

	_, ok = AccountIDFromContext(WithAccountID(req.Context(), ""))
	assert.False(t, ok)
}
