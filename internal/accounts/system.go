package accounts

import (
	"context"
	"time"
)

// System defines the identity operations.
// SignUp and UpdateProfile are the backend primitives; Register composes them.
type System interface {
	Handler(cookie Cookie) *Handler
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	UpdateProfile(ctx context.Context, uid, displayName string) (*Account, error)
	Register(ctx context.Context, cmd RegisterCommand) (*Session, error)
	SignIn(ctx context.Context, creds Credentials) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*Session, error)
}

// Config controls token signing and password hashing.
type Config struct {
	Secret   []byte
	Issuer   string
	TokenTTL time.Duration

	// BcryptCost defaults to bcrypt.DefaultCost when zero.
	BcryptCost int

	// Now defaults to time.Now when nil.
	Now func() time.Time
}
