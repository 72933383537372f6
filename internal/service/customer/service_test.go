package customer

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	tokenrepo "storefront/internal/repository/token"
)

// memoryRepo is a lightweight in-memory customer repository for tests.
type memoryRepo struct {
	byEmail map[string]domain.Customer
}

type memoryTokenRepo struct {
	tokens map[string]tokenrepo.Token
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byEmail: make(map[string]domain.Customer)}
}

func newMemoryTokenRepo() *memoryTokenRepo {
	return &memoryTokenRepo{tokens: make(map[string]tokenrepo.Token)}
}

func (r *memoryTokenRepo) Create(_ context.Context, token tokenrepo.Token) error {
	if _, exists := r.tokens[token.Token]; exists {
		return domain.ErrConflict
	}
	r.tokens[token.Token] = token
	return nil
}

func (r *memoryTokenRepo) Get(_ context.Context, token string) (*tokenrepo.Token, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := t
	return &clone, nil
}

func (r *memoryTokenRepo) Delete(_ context.Context, token string) error {
	if _, ok := r.tokens[token]; !ok {
		return domain.ErrNotFound
	}
	delete(r.tokens, token)
	return nil
}

func (r *memoryTokenRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for k, t := range r.tokens {
		if now.After(t.ExpiresAt) {
			delete(r.tokens, k)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	if _, exists := r.byEmail[c.Email]; exists {
		return nil, domain.ErrConflict
	}
	clone := c
	if clone.ID == "" {
		clone.ID = "cust-" + c.Email
	}
	r.byEmail[clone.Email] = clone
	return &clone, nil
}

func (r *memoryRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	if c, ok := r.byEmail[email]; ok {
		clone := c
		return &clone, nil
	}
	return nil, domain.ErrNotFound
}

func (r *memoryRepo) List(_ context.Context) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, c := range r.byEmail {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	for _, c := range r.byEmail {
		if c.ID == id {
			clone := c
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func TestSignupAndLogin_SucceedsWithTrimmedPassword(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo, newMemoryTokenRepo())

	ctx := context.Background()
	rawPassword := " Abcdefg1 " // includes whitespace

	customer, err := svc.Signup(ctx, SignupInput{
		Email:    "User@Example.com",
		Password: rawPassword,
		Name:     "T User",
	})
	if err != nil {
		t.Fatalf("signup returned error: %v", err)
	}
	if customer == nil || customer.Email != "user@example.com" {
		t.Fatalf("unexpected customer %+v", customer)
	}

	_, _, _, err = svc.Login(ctx, "user@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login failed with trimmed password: %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo, newMemoryTokenRepo())
	ctx := context.Background()

	in := SignupInput{Email: "user@example.com", Password: "Abcdefg1"}
	if _, err := svc.Signup(ctx, in); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Signup(ctx, in); err != domain.ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestValidatePassword_FailsOnWeakValues(t *testing.T) {
	cases := []struct {
		name string
		pass string
	}{
		{"too short", "Abc1"},
		{"no upper", "abcdefg1"},
		{"no lower", "ABCDEFG1"},
		{"no digit", "Abcdefgh"},
	}
	for _, tc := range cases {
		if err := validatePassword(tc.pass, 8); err == nil {
			t.Fatalf("expected error for case %s", tc.name)
		}
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo, newMemoryTokenRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{
		Email:    "user@example.com",
		Password: "Abcdefg1",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, _, _, err := svc.Login(ctx, "user@example.com", "wrongpass"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login(ctx, "missing@example.com", "Abcdefg1"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for missing user, got %v", err)
	}
}

func TestLookupByToken(t *testing.T) {
	repo := newMemoryRepo()
	tokens := newMemoryTokenRepo()
	svc := New(repo, tokens)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "user@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, access, refresh, err := svc.Login(ctx, "user@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	c, err := svc.LookupByToken(ctx, access)
	if err != nil {
		t.Fatalf("lookup with access token: %v", err)
	}
	if c.Email != "user@example.com" {
		t.Fatalf("unexpected customer %+v", c)
	}

	// refresh tokens must not grant access
	if _, err := svc.LookupByToken(ctx, refresh); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for refresh token, got %v", err)
	}
	if _, err := svc.LookupByToken(ctx, "garbage"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for unknown token, got %v", err)
	}
}

func TestPurgeExpiredTokens(t *testing.T) {
	repo := newMemoryRepo()
	tokens := newMemoryTokenRepo()
	svc := New(repo, tokens)
	ctx := context.Background()

	tokens.tokens["stale"] = tokenrepo.Token{Token: "stale", CustomerID: "cust-1", Kind: "access", ExpiresAt: time.Now().Add(-time.Hour)}
	tokens.tokens["fresh"] = tokenrepo.Token{Token: "fresh", CustomerID: "cust-1", Kind: "access", ExpiresAt: time.Now().Add(time.Hour)}

	n, err := svc.PurgeExpiredTokens(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 removed token, got %d", n)
	}
	if _, ok := tokens.tokens["fresh"]; !ok {
		t.Fatal("valid token must survive the sweep")
	}
	if _, ok := tokens.tokens["stale"]; ok {
		t.Fatal("expired token must be removed by the sweep")
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo, newMemoryTokenRepo())
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupInput{Email: "user@example.com", Password: "Abcdefg1"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	_, access, _, err := svc.Login(ctx, "user@example.com", "Abcdefg1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, access); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.LookupByToken(ctx, access); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
	// revoking twice is a no-op
	if err := svc.Logout(ctx, access); err != nil {
		t.Fatalf("second logout: %v", err)
	}
}
