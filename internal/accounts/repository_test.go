package accounts_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/JaimeStill/webcarros/internal/accounts"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newSystem(t *testing.T) (accounts.System, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	sys := accounts.New(accounts.NewMemoryStore(), accounts.Config{
		Secret:     []byte(testSecret),
		Issuer:     "webcarros",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Now:        clock.Now,
	}, testLogger())
	return sys, clock
}

func register(t *testing.T, sys accounts.System) *accounts.Session {
	t.Helper()
	session, err := sys.Register(context.Background(), accounts.RegisterCommand{
		Name:     "Maria Souza",
		Email:    " Maria@Example.com ",
		Password: "segredo123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return session
}

func TestRegister(t *testing.T) {
	sys, clock := newSystem(t)
	session := register(t, sys)

	if session.UID == "" {
		t.Error("UID is empty")
	}
	if session.Name != "Maria Souza" {
		t.Errorf("Name = %q, want Maria Souza", session.Name)
	}
	if session.Email != "maria@example.com" {
		t.Errorf("Email = %q, want maria@example.com", session.Email)
	}
	if session.Token() == "" {
		t.Fatal("Token() is empty")
	}
	if !session.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, want %v", session.ExpiresAt, clock.Now().Add(time.Hour))
	}

	got, err := sys.Authenticate(context.Background(), session.Token())
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.UID != session.UID || got.Name != session.Name || got.Email != session.Email {
		t.Errorf("Authenticate() = %+v, want %+v", got, session)
	}
}

func TestRegister_Validation(t *testing.T) {
	sys, _ := newSystem(t)

	_, err := sys.Register(context.Background(), accounts.RegisterCommand{
		Name:     "  ",
		Email:    "not-an-email",
		Password: "12345",
	})

	var verr *accounts.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Register() error = %v, want *ValidationError", err)
	}
	if !errors.Is(err, accounts.ErrValidation) {
		t.Errorf("errors.Is(err, ErrValidation) = false")
	}

	want := map[string]string{
		"name":     "O campo nome é obrigatória",
		"email":    "Insira um email válido",
		"password": "A senha deve ter pelo menos 6 caracteres",
	}
	for field, msg := range want {
		if verr.Fields()[field] != msg {
			t.Errorf("Fields()[%q] = %q, want %q", field, verr.Fields()[field], msg)
		}
	}
}

func TestRegister_EmailTaken(t *testing.T) {
	sys, _ := newSystem(t)
	register(t, sys)

	_, err := sys.Register(context.Background(), accounts.RegisterCommand{
		Name:     "Outra Pessoa",
		Email:    "maria@example.com",
		Password: "outrasenha",
	})
	if !errors.Is(err, accounts.ErrEmailTaken) {
		t.Errorf("Register() error = %v, want %v", err, accounts.ErrEmailTaken)
	}
}

func TestSignIn(t *testing.T) {
	sys, _ := newSystem(t)
	registered := register(t, sys)

	tests := []struct {
		name    string
		creds   accounts.Credentials
		wantErr error
	}{
		{"valid", accounts.Credentials{Email: "MARIA@example.com", Password: "segredo123"}, nil},
		{"wrong password", accounts.Credentials{Email: "maria@example.com", Password: "errada"}, accounts.ErrInvalidCredentials},
		{"unknown email", accounts.Credentials{Email: "joao@example.com", Password: "segredo123"}, accounts.ErrInvalidCredentials},
		{"malformed email", accounts.Credentials{Email: "maria", Password: "segredo123"}, accounts.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session, err := sys.SignIn(context.Background(), tt.creds)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SignIn() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SignIn() error = %v", err)
			}
			if session.UID != registered.UID || session.Name != "Maria Souza" {
				t.Errorf("SignIn() = %+v", session)
			}
		})
	}
}

func TestSignOut_RevokesToken(t *testing.T) {
	sys, _ := newSystem(t)
	session := register(t, sys)
	ctx := context.Background()

	if err := sys.SignOut(ctx, session.Token()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if _, err := sys.Authenticate(ctx, session.Token()); !errors.Is(err, accounts.ErrInvalidToken) {
		t.Errorf("Authenticate() error = %v, want %v", err, accounts.ErrInvalidToken)
	}

	again, err := sys.SignIn(ctx, accounts.Credentials{Email: "maria@example.com", Password: "segredo123"})
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if _, err := sys.Authenticate(ctx, again.Token()); err != nil {
		t.Errorf("Authenticate() new token error = %v", err)
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	sys, clock := newSystem(t)
	session := register(t, sys)

	other := accounts.New(accounts.NewMemoryStore(), accounts.Config{
		Secret:   []byte("ffffffffffffffffffffffffffffffff"),
		Issuer:   "webcarros",
		TokenTTL: time.Hour,
		Now:      clock.Now,
	}, testLogger())

	if _, err := other.Authenticate(context.Background(), session.Token()); !errors.Is(err, accounts.ErrInvalidToken) {
		t.Errorf("wrong secret: error = %v, want %v", err, accounts.ErrInvalidToken)
	}
	if _, err := sys.Authenticate(context.Background(), "not.a.jwt"); !errors.Is(err, accounts.ErrInvalidToken) {
		t.Errorf("malformed: error = %v, want %v", err, accounts.ErrInvalidToken)
	}

	clock.Advance(2 * time.Hour)
	if _, err := sys.Authenticate(context.Background(), session.Token()); !errors.Is(err, accounts.ErrInvalidToken) {
		t.Errorf("expired: error = %v, want %v", err, accounts.ErrInvalidToken)
	}
}

func TestUpdateProfile(t *testing.T) {
	sys, _ := newSystem(t)
	ctx := context.Background()

	identity, err := sys.SignUp(ctx, "ana@example.com", "segredo123")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	acct, err := sys.UpdateProfile(ctx, identity.UID, "  Ana  ")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if acct.DisplayName != "Ana" {
		t.Errorf("DisplayName = %q, want Ana", acct.DisplayName)
	}

	if _, err := sys.UpdateProfile(ctx, "missing", "x"); !errors.Is(err, accounts.ErrNotFound) {
		t.Errorf("UpdateProfile() missing error = %v, want %v", err, accounts.ErrNotFound)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{accounts.ErrValidation, 400},
		{accounts.ErrInvalidCredentials, 401},
		{accounts.ErrInvalidToken, 401},
		{accounts.ErrUnauthenticated, 401},
		{accounts.ErrNotFound, 404},
		{accounts.ErrEmailTaken, 409},
		{errors.New("boom"), 500},
	}

	for _, tt := range tests {
		if got := accounts.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
