package adapthttp

import (
	"errors"
	"net/http"

	"accounts/internal/domain"
)

// credentialFields are never accepted from an update payload.
var credentialFields = []string{"password", "passwordHash", "password_hash"}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.internalError(w, r, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := parseJSON(w, r, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request")
		return
	}
	for _, k := range credentialFields {
		delete(body, k)
	}

	update, err := accountUpdateFromBody(body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.users.Update(r.Context(), r.PathValue("id"), update)
	if errors.Is(err, domain.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if errors.Is(err, domain.ErrDuplicateAccount) {
		writeMessage(w, http.StatusInternalServerError, "User already exists")
		return
	}
	if err != nil {
		s.internalError(w, r, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	err := s.users.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, domain.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.internalError(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// accountUpdateFromBody picks the updatable fields out of a decoded body.
// Unknown fields are ignored.
func accountUpdateFromBody(body map[string]any) (domain.AccountUpdate, error) {
	var u domain.AccountUpdate
	str := func(key string) (*string, error) {
		v, ok := body[key]
		if !ok {
			return nil, nil
		}
		sv, ok := v.(string)
		if !ok || sv == "" {
			return nil, errors.New(key + " must be a non-empty string")
		}
		return &sv, nil
	}

	var err error
	if u.Username, err = str("username"); err != nil {
		return u, err
	}
	if u.Email, err = str("email"); err != nil {
		return u, err
	}
	return u, nil
}
