// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"errors"
	"net/http"

	"accounts/internal/domain"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	res, err := s.accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, domain.ErrDuplicateAccount) {
		writeMessage(w, http.StatusInternalServerError, "User already exists")
		return
	}
	if err != nil {
		s.internalError(w, r, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	res, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		s.internalError(w, r, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeMessage(w, http.StatusUnauthorized, msgNoToken)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": s.accounts.VerifyToken(token)})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled": s.sso != nil,
	})
}

// internalError logs the cause and responds with a generic message.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.log.Error(r.Context(), op+" failed", "error", err)
	writeMessage(w, http.StatusInternalServerError, "An unknown error occurred")
}
