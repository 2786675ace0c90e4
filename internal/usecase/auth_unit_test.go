package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/security"
)

type recordingAttemptRepository struct {
	attempts []domain.LoginAttempt
}

func (r *recordingAttemptRepository) Record(_ context.Context, attempt domain.LoginAttempt) error {
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *recordingAttemptRepository) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, errors.New("unexpected call: DeleteBefore")
}

func newTestTokenManager(t *testing.T, ttl time.Duration) *security.TokenManager {
	t.Helper()

	manager, err := security.NewTokenManager("0123456789abcdef0123456789abcdef", "ligera-test", ttl)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return manager
}

func loginAccount(t *testing.T, password string) domain.Account {
	t.Helper()

	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	account := domain.NewAccount("Avery", "avery@x.com", hash)
	account.ID = "account-1"
	return account
}

func TestLoginIssuesBearerToken(t *testing.T) {
	const password = "s8#Kp2!vQz"
	account := loginAccount(t, password)
	store := newFakeAccountStore(account)
	attempts := &recordingAttemptRepository{}
	svc := NewAuthService(store, attempts, newTestTokenManager(t, 15*time.Minute), nil)

	result, err := svc.Login(context.Background(), "avery@x.com", password, LoginMetadata{IP: "203.0.113.7"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if result.AccessToken == "" {
		t.Fatal("expected an access token")
	}
	if result.TokenType != "Bearer" {
		t.Fatalf("expected Bearer token type, got %q", result.TokenType)
	}
	if result.ExpiresIn != int((15 * time.Minute).Seconds()) {
		t.Fatalf("unexpected expiry: %d", result.ExpiresIn)
	}

	if len(attempts.attempts) != 1 || !attempts.attempts[0].Succeeded {
		t.Fatalf("expected one successful attempt record, got %+v", attempts.attempts)
	}

	claims, err := svc.ParseAccessToken(context.Background(), result.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.AccountID != "account-1" {
		t.Fatalf("expected subject account-1, got %q", claims.AccountID)
	}
}

func TestLoginWrongPasswordIsRecorded(t *testing.T) {
	account := loginAccount(t, "s8#Kp2!vQz")
	store := newFakeAccountStore(account)
	attempts := &recordingAttemptRepository{}
	svc := NewAuthService(store, attempts, newTestTokenManager(t, time.Minute), nil)

	_, err := svc.Login(context.Background(), "avery@x.com", "wrong-password", LoginMetadata{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if len(attempts.attempts) != 1 || attempts.attempts[0].Succeeded {
		t.Fatalf("expected one failed attempt record, got %+v", attempts.attempts)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAuthService(store, &recordingAttemptRepository{}, newTestTokenManager(t, time.Minute), nil)

	_, err := svc.Login(context.Background(), "nobody@x.com", "whatever", LoginMetadata{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginSuspendedAccountIsRejected(t *testing.T) {
	const password = "s8#Kp2!vQz"
	account := loginAccount(t, password)
	account.Status = domain.AccountStatusSuspended
	store := newFakeAccountStore(account)
	svc := NewAuthService(store, &recordingAttemptRepository{}, newTestTokenManager(t, time.Minute), nil)

	_, err := svc.Login(context.Background(), "avery@x.com", password, LoginMetadata{})
	if !errors.Is(err, ErrAccountOutOfService) {
		t.Fatalf("expected ErrAccountOutOfService, got %v", err)
	}
}

func TestCurrentPrincipalOutsideContext(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAuthService(store, nil, newTestTokenManager(t, time.Minute), nil)

	_, err := svc.CurrentPrincipal(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCurrentPrincipalResolvesAccount(t *testing.T) {
	account := loginAccount(t, "s8#Kp2!vQz")
	store := newFakeAccountStore(account)
	svc := NewAuthService(store, nil, newTestTokenManager(t, time.Minute), nil)

	ctx := ContextWithAccountID(context.Background(), "account-1")
	principal, err := svc.CurrentPrincipal(ctx)
	if err != nil {
		t.Fatalf("CurrentPrincipal returned error: %v", err)
	}
	if principal.ID != "account-1" {
		t.Fatalf("expected account-1, got %q", principal.ID)
	}
}

func TestCurrentPrincipalDeactivatedAccount(t *testing.T) {
	account := loginAccount(t, "s8#Kp2!vQz")
	account.Status = domain.AccountStatusInactive
	store := newFakeAccountStore(account)
	svc := NewAuthService(store, nil, newTestTokenManager(t, time.Minute), nil)

	ctx := ContextWithAccountID(context.Background(), "account-1")
	_, err := svc.CurrentPrincipal(ctx)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
