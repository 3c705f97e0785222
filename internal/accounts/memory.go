package accounts

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
	byEmail  map[string]string
	revoked  map[string]time.Time
}

// NewMemoryStore creates a process-local Store. State is lost on exit.
func NewMemoryStore() Store {
	return &memoryStore{
		accounts: make(map[string]Account),
		byEmail:  make(map[string]string),
		revoked:  make(map[string]time.Time),
	}
}

func (s *memoryStore) Insert(ctx context.Context, acct Account) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[acct.Email]; ok {
		return nil, ErrEmailTaken
	}
	s.accounts[acct.ID] = acct
	s.byEmail[acct.Email] = acct.ID
	return &acct, nil
}

func (s *memoryStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	acct := s.accounts[id]
	return &acct, nil
}

func (s *memoryStore) FindByID(ctx context.Context, id string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &acct, nil
}

func (s *memoryStore) UpdateDisplayName(ctx context.Context, id, name string) (*Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	acct.DisplayName = name
	s.accounts[id] = acct
	return &acct, nil
}

func (s *memoryStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.revoked[jti]; !ok {
		s.revoked[jti] = expiresAt
	}
	return nil
}

func (s *memoryStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.revoked[jti]
	return ok, nil
}

func (s *memoryStore) PurgeRevoked(ctx context.Context, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for jti, expires := range s.revoked {
		if expires.Before(before) {
			delete(s.revoked, jti)
			n++
		}
	}
	return n, nil
}
