// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"strings"

	"accounts/internal/domain"
)

// AuthResult is returned by registration and login.
type AuthResult struct {
	User  domain.AccountView `json:"user"`
	Token string             `json:"token"`
}

// AccountService handles registration, login and token checks.
type AccountService struct {
	accounts domain.AccountRepository
	hasher   PasswordHasher
	tokens   TokenCodec
}

// NewAccountService creates a new account service.
func NewAccountService(accounts domain.AccountRepository, hasher PasswordHasher, tokens TokenCodec) *AccountService {
	return &AccountService{
		accounts: accounts,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates an account and returns it with a fresh token.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateAccount
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.Insert(ctx, domain.AccountDraft{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	return s.issue(account)
}

// Login checks the credentials and returns the account with a fresh token.
// Unknown emails and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(account)
}

// VerifyToken reports whether token is currently valid.
func (s *AccountService) VerifyToken(token string) bool {
	_, err := s.tokens.Verify(token)
	return err == nil
}

// LoginWithIdentity issues a token for an identity verified by an external
// provider, provisioning an account on first use. Provisioned accounts have no
// password hash, so password login never succeeds for them. Identities whose
// email the provider has not verified are refused with
// domain.ErrInvalidCredentials, since the email selects the account.
func (s *AccountService) LoginWithIdentity(ctx context.Context, id domain.ExternalIdentity) (*AuthResult, error) {
	if id.Email == "" {
		return nil, domain.ErrValidation
	}
	if !id.EmailVerified {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, id.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		username := id.Username
		if username == "" {
			username, _, _ = strings.Cut(id.Email, "@")
		}
		account, err = s.accounts.Insert(ctx, domain.AccountDraft{Username: username, Email: id.Email})
		if errors.Is(err, domain.ErrDuplicateAccount) {
			// Lost a provisioning race against a concurrent login.
			account, err = s.accounts.FindByEmail(ctx, id.Email)
			if err == nil && account == nil {
				err = domain.ErrNotFound
			}
		}
		if err != nil {
			return nil, err
		}
	}

	return s.issue(account)
}

func (s *AccountService) issue(account *domain.Account) (*AuthResult, error) {
	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: account.View(), Token: token}, nil
}
