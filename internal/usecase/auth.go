package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/security"
	"github.com/kevin2-cyber/ligera-sub001/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountOutOfService indicates the account exists but is inactive or suspended.
	ErrAccountOutOfService = errors.New("account is not active")
	// ErrInvalidAccessToken indicates the access token failed validation.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the access token is past its expiry.
	ErrExpiredAccessToken = errors.New("access token expired")
)

type principalContextKey struct{}

// ContextWithAccountID marks the request context as authenticated for the
// account. The bearer middleware is the only writer.
func ContextWithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, principalContextKey{}, accountID)
}

// AccountIDFromContext reports the authenticated account id, if any.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(principalContextKey{}).(string)
	return id, ok && id != ""
}

// LoginMetadata carries request attribution for the audit trail.
type LoginMetadata struct {
	IP        string
	UserAgent string
}

// LoginResult is returned for a successful authentication.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
	Account     domain.Account
}

// AuthService authenticates accounts and resolves principals for the active
// request context.
type AuthService struct {
	accounts port.AccountRepository
	attempts port.LoginAttemptRepository
	tokens   *security.TokenManager
	logger   *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(accounts port.AccountRepository, attempts port.LoginAttemptRepository, tokens *security.TokenManager, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{accounts: accounts, attempts: attempts, tokens: tokens, logger: logger}
}

// Login verifies the credential against the stored hash, refuses accounts
// outside the active status, and issues an access token. Every attempt is
// recorded for audit regardless of outcome.
func (s *AuthService) Login(ctx context.Context, email, password string, meta LoginMetadata) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.recordAttempt(ctx, nil, email, false, meta)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.recordAttempt(ctx, &account.ID, email, false, meta)
		return nil, ErrInvalidCredentials
	}

	if !account.InService() {
		s.recordAttempt(ctx, &account.ID, email, false, meta)
		return nil, ErrAccountOutOfService
	}

	token, err := s.tokens.Issue(account.ID, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	s.recordAttempt(ctx, &account.ID, email, true, meta)

	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokens.TTL().Seconds()),
		Account:     *account,
	}, nil
}

// ParseAccessToken validates a bearer token and returns its claims.
func (s *AuthService) ParseAccessToken(_ context.Context, token string) (*security.AccessClaims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, ErrExpiredAccessToken
		}
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

// CurrentPrincipal resolves the authenticated account from the request
// context. It fails with ErrUnauthenticated outside an authenticated
// context, and treats accounts that left the active status since token
// issuance as unauthenticated as well.
func (s *AuthService) CurrentPrincipal(ctx context.Context) (*domain.Account, error) {
	id, ok := AccountIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("lookup principal: %w", err)
	}

	if !account.InService() {
		return nil, ErrUnauthenticated
	}

	return account, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, accountID *string, email string, succeeded bool, meta LoginMetadata) {
	if s.attempts == nil {
		return
	}

	attempt := domain.LoginAttempt{
		AccountID: accountID,
		Email:     email,
		Succeeded: succeeded,
		CreatedAt: time.Now().UTC(),
	}
	if meta.IP != "" {
		ip := meta.IP
		attempt.IP = &ip
	}
	if meta.UserAgent != "" {
		ua := meta.UserAgent
		attempt.UserAgent = &ua
	}

	if err := s.attempts.Record(ctx, attempt); err != nil {
		s.logger.Warn("record login attempt", zap.Error(err))
	}
}

var _ port.PrincipalProvider = (*AuthService)(nil)
