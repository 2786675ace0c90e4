package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/security"
	"github.com/kevin2-cyber/ligera-sub001/internal/repository"
)

var (
	// ErrAccountNotFound indicates the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmailTaken indicates the email already belongs to another account.
	ErrEmailTaken = errors.New("email already in use")
	// ErrUnauthenticated indicates no principal is resolvable for the request.
	ErrUnauthenticated = errors.New("not authenticated")
)

// UpdateAccountInput carries the mutable profile fields for an update.
type UpdateAccountInput struct {
	ID     string
	Name   string
	Email  string
	Status domain.AccountStatus
}

// AccountService is the single point of control for reading and mutating
// accounts. It guarantees the email-uniqueness and existence invariants on
// every mutation.
type AccountService struct {
	accounts          port.AccountRepository
	tx                port.AccountTxRunner
	principals        port.PrincipalProvider
	cache             port.ProfileCache
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
}

// NewAccountService constructs an AccountService.
func NewAccountService(
	accounts port.AccountRepository,
	tx port.AccountTxRunner,
	principals port.PrincipalProvider,
	events port.EventPublisher,
	logger *zap.Logger,
) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts:          accounts,
		tx:                tx,
		principals:        principals,
		events:            events,
		passwordValidator: security.DefaultPasswordValidator(),
		logger:            logger,
	}
}

// WithProfileCache attaches a read-through cache for profile lookups.
func (s *AccountService) WithProfileCache(cache port.ProfileCache) *AccountService {
	s.cache = cache
	return s
}

// GetByID returns the account with the identifier or ErrAccountNotFound.
func (s *AccountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrAccountNotFound
	}

	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	return account, nil
}

// GetByEmail returns the matching account, or (nil, nil) when no account
// holds the email. Absence is not an error: callers use this for existence
// probing as well as lookup.
func (s *AccountService) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup account by email: %w", err)
	}

	return account, nil
}

// Update persists the full record after enforcing the identity invariants.
// The existence check runs before the uniqueness probe so that updating a
// nonexistent account reports not-found rather than a misleading conflict.
// Both checks and the save share one transaction scope; the storage-level
// unique constraint on email is the backstop against racing updates, and a
// violation there surfaces as the same conflict failure as the pre-check.
func (s *AccountService) Update(ctx context.Context, input UpdateAccountInput) (*domain.Account, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, ErrAccountNotFound
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	candidate := domain.Account{
		Name:   input.Name,
		Email:  input.Email,
		Status: input.Status,
	}
	if err := candidate.ValidateProfile(); err != nil {
		return nil, err
	}

	var (
		updated      *domain.Account
		emailChanged bool
	)

	err := s.tx.WithinTransaction(ctx, func(repo port.AccountRepository) error {
		current, err := repo.FindByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("lookup account: %w", err)
		}

		emailChanged = input.Email != current.Email
		if emailChanged {
			other, err := repo.FindByEmail(ctx, input.Email)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("probe email: %w", err)
			}
			if other != nil && other.ID != current.ID {
				return ErrEmailTaken
			}
		}

		next := *current
		next.Name = input.Name
		next.Email = input.Email
		if input.Status != "" {
			next.Status = input.Status
		}
		next.UpdatedAt = time.Now().UTC()

		saved, err := repo.Save(ctx, next)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrEmailTaken
			}
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAccountNotFound
			}
			return fmt.Errorf("save account: %w", err)
		}

		updated = saved
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProfile(ctx, updated.ID)
	s.publishUpdated(ctx, updated, emailChanged)

	return updated, nil
}

// Deactivate soft-deletes an account by moving it to the inactive status.
func (s *AccountService) Deactivate(ctx context.Context, id, reason string) error {
	if err := s.accounts.UpdateStatus(ctx, id, domain.AccountStatusInactive); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("deactivate account: %w", err)
	}

	s.invalidateProfile(ctx, id)

	if s.events != nil {
		event := domain.AccountDeactivatedEvent{
			EventID:       uuid.NewString(),
			AccountID:     id,
			DeactivatedAt: time.Now().UTC(),
			Reason:        reason,
		}
		if err := s.events.PublishAccountDeactivated(ctx, event); err != nil {
			s.logger.Warn("publish account deactivated", zap.Error(err))
		}
	}

	return nil
}

// ChangePassword rotates the principal's credential after verifying the
// current one and validating the replacement.
func (s *AccountService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	account, err := s.currentPrincipal(ctx)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(currentPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify current password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		verr := &domain.ValidationError{}
		verr.Add("password", err.Error())
		return verr
	}

	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	changedAt := time.Now().UTC()
	if err := s.accounts.UpdatePassword(ctx, account.ID, hashed, changedAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			AccountID: account.ID,
			ChangedAt: changedAt,
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			s.logger.Warn("publish password changed", zap.Error(err))
		}
	}

	return nil
}

// CurrentProfile resolves the authenticated principal and maps it to the
// externally safe representation. The password credential never leaves the
// service.
func (s *AccountService) CurrentProfile(ctx context.Context) (*domain.Profile, error) {
	account, err := s.currentPrincipal(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, account.ID)
		if err != nil {
			s.logger.Warn("profile cache read", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	profile := domain.ProfileOf(*account)

	if s.cache != nil {
		if err := s.cache.Set(ctx, profile); err != nil {
			s.logger.Warn("profile cache write", zap.Error(err))
		}
	}

	return &profile, nil
}

func (s *AccountService) currentPrincipal(ctx context.Context) (*domain.Account, error) {
	if s.principals == nil {
		return nil, ErrUnauthenticated
	}

	account, err := s.principals.CurrentPrincipal(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}

	return account, nil
}

func (s *AccountService) invalidateProfile(ctx context.Context, accountID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, accountID); err != nil {
		s.logger.Warn("profile cache invalidate", zap.Error(err))
	}
}

func (s *AccountService) publishUpdated(ctx context.Context, account *domain.Account, emailChanged bool) {
	if s.events == nil {
		return
	}
	event := domain.AccountUpdatedEvent{
		EventID:      uuid.NewString(),
		AccountID:    account.ID,
		Email:        account.Email,
		EmailChanged: emailChanged,
		UpdatedAt:    account.UpdatedAt,
	}
	if err := s.events.PublishAccountUpdated(ctx, event); err != nil {
		s.logger.Warn("publish account updated", zap.Error(err))
	}
}
