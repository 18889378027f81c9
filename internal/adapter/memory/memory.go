// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory account store.
type DB struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
	order    []string // ids in insertion order
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		accounts: make(map[string]*domain.Account),
	}
}

var _ domain.AccountRepository = (*DB)(nil)

// FindByEmail retrieves an account by email. Emails compare case-insensitively.
func (db *DB) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if a := db.byEmail(email); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

// FindByID retrieves an account by ID.
func (db *DB) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if a, ok := db.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

// List returns all accounts in insertion order.
func (db *DB) List(ctx context.Context) ([]domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]domain.Account, 0, len(db.order))
	for _, id := range db.order {
		out = append(out, *db.accounts[id])
	}
	return out, nil
}

// Insert creates a new account with a fresh UUID.
func (db *DB) Insert(ctx context.Context, draft domain.AccountDraft) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.byEmail(draft.Email) != nil {
		return nil, domain.ErrDuplicateAccount
	}

	now := time.Now().UTC()
	a := &domain.Account{
		ID:           uuid.NewString(),
		Username:     draft.Username,
		Email:        draft.Email,
		PasswordHash: draft.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	db.accounts[a.ID] = a
	db.order = append(db.order, a.ID)
	cp := *a
	return &cp, nil
}

// UpdateByID applies a partial update. It returns nil if the id is unknown.
func (db *DB) UpdateByID(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a, ok := db.accounts[id]
	if !ok {
		return nil, nil
	}
	if update.Email != nil {
		if other := db.byEmail(*update.Email); other != nil && other.ID != id {
			return nil, domain.ErrDuplicateAccount
		}
		a.Email = *update.Email
	}
	if update.Username != nil {
		a.Username = *update.Username
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	return &cp, nil
}

// DeleteByID removes an account and reports whether it existed.
func (db *DB) DeleteByID(ctx context.Context, id string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.accounts[id]; !ok {
		return false, nil
	}
	delete(db.accounts, id)
	db.order = slices.DeleteFunc(db.order, func(v string) bool { return v == id })
	return true, nil
}

// byEmail must be called with mu held.
func (db *DB) byEmail(email string) *domain.Account {
	for _, a := range db.accounts {
		if strings.EqualFold(a.Email, email) {
			return a
		}
	}
	return nil
}
