// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/carterperez-dev/templates/classifieds/internal/config"
	"github.com/carterperez-dev/templates/classifieds/internal/core"
	"github.com/carterperez-dev/templates/classifieds/internal/policy"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (plainHasher) Matches(password, encoded string) (bool, error) {
	if encoded == "" {
		return false, nil
	}
	_, stored, _ := strings.Cut(encoded, ":")
	return stored == password, nil
}

func (plainHasher) NeedsRehash(encoded string) bool {
	return !strings.HasPrefix(encoded, "plain:")
}

type fakeUsers struct {
	byEmail map[string]*UserInfo
	nextID  int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]*UserInfo)}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Create(_ context.Context, reg Registration) (*UserInfo, error) {
	if _, ok := f.byEmail[reg.Email]; ok {
		return nil, core.ErrDuplicateKey
	}
	f.nextID++
	u := &UserInfo{
		ID:           f.nextID,
		Email:        reg.Email,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PasswordHash: reg.PasswordHash,
		Role:         reg.Role,
	}
	f.byEmail[reg.Email] = u
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID int64, hash string) error {
	for _, u := range f.byEmail {
		if u.ID == userID {
			u.PasswordHash = hash
			return nil
		}
	}
	return core.ErrNotFound
}

type memoryBlacklist struct {
	revoked map[string]time.Duration
}

func (b *memoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		b.revoked[jti] = ttl
	}
	return nil
}

func (b *memoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}

func testJWTManager(t *testing.T, ttl time.Duration) *JWTManager {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	m, err := NewJWTManagerFromKey(key, config.JWTConfig{
		AccessTokenExpire: ttl,
		Issuer:            "classifieds",
		Audience:          "classifieds-api",
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newTestService(t *testing.T) (*Service, *fakeUsers, *memoryBlacklist) {
	t.Helper()

	users := newFakeUsers()
	bl := &memoryBlacklist{revoked: make(map[string]time.Duration)}
	svc := NewService(
		testJWTManager(t, time.Hour),
		users,
		plainHasher{},
		bl,
		slog.New(slog.DiscardHandler),
	)
	return svc, users, bl
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Email:     "Seller@Example.com",
		Password:  "hunter2hunter2",
		FirstName: "Sam",
		LastName:  "Seller",
		Phone:     "+15550100",
	}
}

func TestRegisterCreatesUserRole(t *testing.T) {
	svc, users, _ := newTestService(t)

	resp, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	if resp.User.Role != policy.RoleUser {
		t.Errorf("Register() role = %q, want %q", resp.User.Role, policy.RoleUser)
	}
	if resp.User.Email != "seller@example.com" {
		t.Errorf("Register() email = %q, want lower-cased", resp.User.Email)
	}
	if resp.Tokens.AccessToken == "" || resp.Tokens.TokenType != "Bearer" {
		t.Errorf("Register() tokens = %+v", resp.Tokens)
	}

	stored := users.byEmail["seller@example.com"]
	if stored.PasswordHash == "hunter2hunter2" {
		t.Error("password stored without hashing")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Register(ctx, validRegistration())
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Register() error = %v, want ErrEmailExists", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		email   string
		pass    string
		wantErr error
	}{
		{"correct", "seller@example.com", "hunter2hunter2", nil},
		{"email case ignored", "SELLER@example.com", "hunter2hunter2", nil},
		{"wrong password", "seller@example.com", "nope", ErrInvalidCredentials},
		{"unknown email", "ghost@example.com", "hunter2hunter2", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.Login(ctx, LoginRequest{Email: tt.email, Password: tt.pass})

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Login() unexpected error: %v", err)
			}
			if resp.Tokens.AccessToken == "" {
				t.Error("Login() returned empty token")
			}
		})
	}
}

func TestLoginUpgradesStaleHash(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.byEmail["old@example.com"] = &UserInfo{
		ID:           9,
		Email:        "old@example.com",
		PasswordHash: "legacy:secret",
		Role:         policy.RoleUser,
	}

	if _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "old@example.com",
		Password: "secret",
	}); err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}

	if got := users.byEmail["old@example.com"].PasswordHash; got != "plain:secret" {
		t.Errorf("hash after login = %q, want upgraded", got)
	}
}

func TestVerifyAndLogout(t *testing.T) {
	svc, _, bl := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatal(err)
	}

	claims, err := svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken() unexpected error: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != policy.RoleUser {
		t.Errorf("VerifyAccessToken() claims = %+v", claims)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout() unexpected error: %v", err)
	}
	if _, ok := bl.revoked[claims.TokenID]; !ok {
		t.Fatal("Logout() did not blacklist the token id")
	}

	_, err = svc.VerifyAccessToken(ctx, resp.Tokens.AccessToken)
	if !errors.Is(err, core.ErrTokenRevoked) {
		t.Errorf("VerifyAccessToken() after logout error = %v, want ErrTokenRevoked", err)
	}
}

func TestLogoutWithoutClaims(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.Logout(context.Background(), nil)
	if !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("Logout(nil) error = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.VerifyAccessToken(context.Background(), "not.a.jwt")
	if !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("VerifyAccessToken() error = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyRejectsForeignKey(t *testing.T) {
	svc, _, _ := newTestService(t)
	other := testJWTManager(t, time.Hour)

	issued, err := other.CreateAccessToken(1, policy.RoleAdmin)
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.VerifyAccessToken(context.Background(), issued.Token)
	if !errors.Is(err, core.ErrTokenInvalid) {
		t.Errorf("VerifyAccessToken() error = %v, want ErrTokenInvalid", err)
	}
}
