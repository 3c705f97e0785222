package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/webcarros/pkg/repository"
)

const accountColumns = `id, email, password_hash, display_name, created_at`

type postgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Store over the accounts and revoked_tokens tables.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Insert(ctx context.Context, acct Account) (*Account, error) {
	q := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + accountColumns

	created, err := repository.QueryOne(ctx, s.db, q, []any{
		acct.ID, acct.Email, acct.PasswordHash, acct.DisplayName, acct.CreatedAt,
	}, scanAccount)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrEmailTaken)
	}
	return &created, nil
}

func (s *postgresStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	acct, err := repository.QueryOne(ctx, s.db, q, []any{email}, scanAccount)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrEmailTaken)
	}
	return &acct, nil
}

func (s *postgresStore) FindByID(ctx context.Context, id string) (*Account, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}

	q := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	acct, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanAccount)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrEmailTaken)
	}
	return &acct, nil
}

func (s *postgresStore) UpdateDisplayName(ctx context.Context, id, name string) (*Account, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrNotFound
	}

	q := `UPDATE accounts SET display_name = $1 WHERE id = $2
		RETURNING ` + accountColumns

	acct, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Account, error) {
		return repository.QueryOne(ctx, tx, q, []any{name, id}, scanAccount)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrEmailTaken)
	}
	return &acct, nil
}

func (s *postgresStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	q := `INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING`

	if _, err := s.db.ExecContext(ctx, q, jti, expiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *postgresStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	q := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`

	var revoked bool
	if err := s.db.QueryRowContext(ctx, q, jti).Scan(&revoked); err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

func (s *postgresStore) PurgeRevoked(ctx context.Context, before time.Time) (int64, error) {
	q := `DELETE FROM revoked_tokens WHERE expires_at < $1`

	res, err := s.db.ExecContext(ctx, q, before)
	if err != nil {
		return 0, fmt.Errorf("purge revoked tokens: %w", err)
	}
	return res.RowsAffected()
}

func scanAccount(s repository.Scanner) (Account, error) {
	var a Account
	err := s.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.CreatedAt)
	return a, err
}
