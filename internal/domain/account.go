// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// Account represents a registered user.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccountDraft holds the fields needed to create an account. The repository
// assigns the ID.
type AccountDraft struct {
	Username     string
	Email        string
	PasswordHash string
}

// AccountUpdate is a partial update. Nil fields are left untouched. It has no
// password field.
type AccountUpdate struct {
	Username *string
	Email    *string
}

// Empty reports whether the update changes nothing.
func (u AccountUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil
}

// AccountView is the sanitized, externally visible form of an Account.
type AccountView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// View strips credentials from the account.
func (a *Account) View() AccountView {
	return AccountView{ID: a.ID, Username: a.Username, Email: a.Email}
}

// ExternalIdentity is an identity asserted by a federated login provider.
// EmailVerified is the provider's claim that it has verified Email.
type ExternalIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Username      string
}

// AccountRepository defines the port for account persistence operations.
//
// Lookups return (nil, nil) when no record matches. Insert returns
// ErrDuplicateAccount when the email is already taken. Driver failures are
// wrapped with ErrRepository.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	List(ctx context.Context) ([]Account, error)
	Insert(ctx context.Context, draft AccountDraft) (*Account, error)
	UpdateByID(ctx context.Context, id string, update AccountUpdate) (*Account, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
}
