package adapthttp

import (
	"net/http"

	"accounts/internal/app"
	"accounts/internal/logging"
)

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	accounts *app.AccountService
	users    *app.UserService
	tokens   app.TokenCodec
	sso      *SSO
	log      logging.Logger
	metrics  *metrics
}

// New creates a Server wired to the given application services. tokens is
// the codec used by the auth gate on protected routes.
func New(accounts *app.AccountService, users *app.UserService, tokens app.TokenCodec, log logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		accounts: accounts,
		users:    users,
		tokens:   tokens,
		log:      log,
		metrics:  newMetrics(),
	}
}

// WithSSO enables the federated login routes. A nil SSO leaves them disabled.
func (s *Server) WithSSO(sso *SSO) *Server {
	s.sso = sso
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("API is running..."))
	})
	api.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	api.Handle("GET /metrics", s.metrics.handler())

	api.HandleFunc("POST /auth/register", s.handleRegister)
	api.HandleFunc("POST /auth/login", s.handleLogin)
	api.HandleFunc("GET /auth/verify", s.handleVerify)
	api.HandleFunc("GET /auth/config", s.handleConfig)
	api.HandleFunc("GET /auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("GET /auth/sso/callback", s.handleSSOCallback)

	api.Handle("GET /users", s.authMiddleware(http.HandlerFunc(s.handleListUsers)))
	api.Handle("GET /users/{id}", s.authMiddleware(http.HandlerFunc(s.handleGetUser)))
	api.Handle("PUT /users/{id}", s.authMiddleware(http.HandlerFunc(s.handleUpdateUser)))
	api.Handle("DELETE /users/{id}", s.authMiddleware(http.HandlerFunc(s.handleDeleteUser)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", api)

	return s.loggingMiddleware(withNoCache(root))
}
