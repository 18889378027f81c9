package adapthttp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"accounts/internal/config"
	"accounts/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const stateCookie = "oauth_state"

// SSO holds the OpenID Connect client used for federated login.
type SSO struct {
	OAuth2Config oauth2.Config
	Verifier     *oidc.IDTokenVerifier
}

// NewSSO discovers the provider and builds the OAuth2 client. It returns nil
// when cfg does not enable SSO.
func NewSSO(ctx context.Context, cfg config.OIDC) (*SSO, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, err
	}
	return &SSO{
		OAuth2Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       cfg.Scopes,
		},
		Verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if s.sso == nil {
		writeMessage(w, http.StatusNotFound, "sso disabled")
		return
	}
	state, err := generateState()
	if err != nil {
		s.internalError(w, r, "sso state", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, s.sso.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	if s.sso == nil {
		writeMessage(w, http.StatusNotFound, "sso disabled")
		return
	}

	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" || r.URL.Query().Get("state") != state.Value {
		writeMessage(w, http.StatusBadRequest, "invalid state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, MaxAge: -1, Path: "/"})

	token, err := s.sso.OAuth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		s.log.Warn(r.Context(), "sso code exchange failed", "error", err)
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	idToken, err := s.sso.Verifier.Verify(r.Context(), rawIDToken)
	if err != nil {
		s.log.Warn(r.Context(), "sso id_token rejected", "error", err)
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	var claims struct {
		Email             string `json:"email"`
		EmailVerified     bool   `json:"email_verified"`
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if claims.Email != "" && !claims.EmailVerified {
		s.log.Warn(r.Context(), "sso email not verified", "issuer", idToken.Issuer)
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	username := claims.PreferredUsername
	if username == "" {
		username = claims.Name
	}

	res, err := s.accounts.LoginWithIdentity(r.Context(), domain.ExternalIdentity{
		Provider:      idToken.Issuer,
		Subject:       idToken.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Username:      username,
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeMessage(w, http.StatusBadRequest, "provider did not supply an email")
			return
		}
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.internalError(w, r, "sso login", err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
