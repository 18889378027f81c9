package app

import (
	"context"

	"accounts/internal/domain"
)

// UserService exposes CRUD operations on account records.
type UserService struct {
	accounts domain.AccountRepository
}

// NewUserService creates a UserService backed by the given repository.
func NewUserService(accounts domain.AccountRepository) *UserService {
	return &UserService{accounts: accounts}
}

// List returns all accounts without credentials.
func (s *UserService) List(ctx context.Context) ([]domain.AccountView, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AccountView, 0, len(accounts))
	for i := range accounts {
		out = append(out, accounts[i].View())
	}
	return out, nil
}

// Get returns a single account or domain.ErrNotFound.
func (s *UserService) Get(ctx context.Context, id string) (*domain.AccountView, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	v := account.View()
	return &v, nil
}

// Update applies a partial update. The password hash can never change here.
func (s *UserService) Update(ctx context.Context, id string, update domain.AccountUpdate) (*domain.AccountView, error) {
	if update.Empty() {
		return s.Get(ctx, id)
	}
	account, err := s.accounts.UpdateByID(ctx, id, update)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	v := account.View()
	return &v, nil
}

// Delete removes an account or returns domain.ErrNotFound.
func (s *UserService) Delete(ctx context.Context, id string) error {
	deleted, err := s.accounts.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}
