package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type repo struct {
	store  Store
	tokens *tokens
	cost   int
	now    func() time.Time
	logger *slog.Logger
}

// New creates the account system over the given store.
func New(store Store, cfg Config, logger *slog.Logger) System {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &repo{
		store: store,
		tokens: &tokens{
			secret: cfg.Secret,
			issuer: cfg.Issuer,
			ttl:    cfg.TokenTTL,
			now:    now,
		},
		cost:   cost,
		now:    now,
		logger: logger.With("system", "accounts"),
	}
}

func (r *repo) Handler(cookie Cookie) *Handler {
	return NewHandler(r, r.logger, cookie)
}

func (r *repo) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct, err := r.store.Insert(ctx, Account{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		CreatedAt:    r.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("account created", "uid", acct.ID)
	return &Identity{UID: acct.ID, Email: acct.Email}, nil
}

func (r *repo) UpdateProfile(ctx context.Context, uid, displayName string) (*Account, error) {
	return r.store.UpdateDisplayName(ctx, uid, strings.TrimSpace(displayName))
}

func (r *repo) Register(ctx context.Context, cmd RegisterCommand) (*Session, error) {
	if err := validateRegister(cmd); err != nil {
		return nil, err
	}

	identity, err := r.SignUp(ctx, cmd.Email, cmd.Password)
	if err != nil {
		return nil, err
	}

	acct, err := r.UpdateProfile(ctx, identity.UID, cmd.Name)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	session := newSession(acct)
	if _, err := r.tokens.issue(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *repo) SignIn(ctx context.Context, creds Credentials) (*Session, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	acct, err := r.store.FindByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := newSession(acct)
	if _, err := r.tokens.issue(session); err != nil {
		return nil, err
	}

	r.logger.Info("signed in", "uid", acct.ID)
	return session, nil
}

func (r *repo) SignOut(ctx context.Context, token string) error {
	claims, err := r.tokens.parse(token)
	if err != nil {
		return err
	}

	if err := r.store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return err
	}

	if n, err := r.store.PurgeRevoked(ctx, r.now()); err != nil {
		r.logger.Warn("purge revoked tokens failed", "error", err)
	} else if n > 0 {
		r.logger.Debug("purged revoked tokens", "count", n)
	}

	r.logger.Info("signed out", "uid", claims.Subject)
	return nil
}

func (r *repo) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := r.tokens.parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := r.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	return &Session{
		UID:       claims.Subject,
		Name:      claims.Name,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
		token:     token,
	}, nil
}
