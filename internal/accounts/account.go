// Package accounts provides email/password identity, profile updates, and
// signed session tokens. Sessions are explicit values: handlers resolve them
// from the request and pass them into the workflows that need an owner.
package accounts

import "time"

// Account is a stored identity with its password hash.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the result of signing up, before a profile name is attached.
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Session identifies the signed-in user for the duration of a token.
type Session struct {
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`

	token string
}

// Token returns the signed token the session was issued or authenticated with.
func (s *Session) Token() string {
	return s.token
}

// RegisterCommand contains the fields submitted by the registration form.
type RegisterCommand struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials contains the fields submitted by the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func newSession(acct *Account) *Session {
	return &Session{
		UID:   acct.ID,
		Name:  acct.DisplayName,
		Email: acct.Email,
	}
}
