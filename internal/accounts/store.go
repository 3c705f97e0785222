package accounts

import (
	"context"
	"time"
)

// Store persists accounts and revoked token ids.
type Store interface {
	Insert(ctx context.Context, acct Account) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	UpdateDisplayName(ctx context.Context, id, name string) (*Account, error)
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeRevoked(ctx context.Context, before time.Time) (int64, error)
}
