package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"accounts/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const accountColumns = "id, username, email, password_hash, created_at, updated_at"

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

var _ domain.AccountRepository = (*DB)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*domain.Account, error) {
	var a domain.Account
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByEmail retrieves an account by email, ignoring case.
func (d *DB) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	a, err := scanAccount(d.sql.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM users WHERE lower(email) = lower($1)",
		email,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, repoErr("find by email", err)
	}
	return a, nil
}

// FindByID retrieves an account by ID.
func (d *DB) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	a, err := scanAccount(d.sql.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM users WHERE id = $1",
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, repoErr("find by id", err)
	}
	return a, nil
}

// List returns all accounts ordered by creation time.
func (d *DB) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT "+accountColumns+" FROM users ORDER BY created_at, id")
	if err != nil {
		return nil, repoErr("list", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, repoErr("list", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("list", err)
	}
	return out, nil
}

// Insert creates a new account. The unique email index turns concurrent
// duplicate registrations into domain.ErrDuplicateAccount.
func (d *DB) Insert(ctx context.Context, draft domain.AccountDraft) (*domain.Account, error) {
	now := time.Now().UTC()
	a, err := scanAccount(d.sql.QueryRowContext(ctx,
		"INSERT INTO users ("+accountColumns+") VALUES ($1, $2, $3, $4, $5, $5) RETURNING "+accountColumns,
		uuid.NewString(), draft.Username, draft.Email, draft.PasswordHash, now,
	))
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicateAccount
	}
	if err != nil {
		return nil, repoErr("insert", err)
	}
	return a, nil
}

// UpdateByID applies a partial update. Nil fields keep their stored value.
func (d *DB) UpdateByID(ctx context.Context, id string, update domain.AccountUpdate) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}
	a, err := scanAccount(d.sql.QueryRowContext(ctx,
		`UPDATE users
		    SET username = COALESCE($2, username),
		        email = COALESCE($3, email),
		        updated_at = $4
		  WHERE id = $1
		RETURNING `+accountColumns,
		id, update.Username, update.Email, time.Now().UTC(),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if isUniqueViolation(err) {
		return nil, domain.ErrDuplicateAccount
	}
	if err != nil {
		return nil, repoErr("update", err)
	}
	return a, nil
}

// DeleteByID removes an account and reports whether a row was deleted.
func (d *DB) DeleteByID(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	res, err := d.sql.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, repoErr("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, repoErr("delete", err)
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func repoErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrRepository, op, err)
}
