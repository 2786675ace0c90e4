package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/security"
	"github.com/kevin2-cyber/ligera-sub001/internal/repository"
)

// RegisterInput captures the payload for account registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// RegistrationService handles new account onboarding.
type RegistrationService struct {
	accounts          port.AccountRepository
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(accounts port.AccountRepository, events port.EventPublisher, validator *security.PasswordValidator) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	return &RegistrationService{
		accounts:          accounts,
		events:            events,
		passwordValidator: validator,
		logger:            zap.NewNop(),
	}
}

// WithLogger attaches a structured logger.
func (s *RegistrationService) WithLogger(logger *zap.Logger) *RegistrationService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Register validates the input, hashes the credential, and persists a new
// account with the factory defaults (role user, status active). Every field
// violation is collected before failing; the duplicate-email business rule
// is checked by the insert itself.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	password := input.Password

	var verr domain.ValidationError

	probe := domain.Account{Name: name, Email: email}
	if err := probe.ValidateProfile(); err != nil {
		var fieldErrs *domain.ValidationError
		if errors.As(err, &fieldErrs) {
			verr.Fields = append(verr.Fields, fieldErrs.Fields...)
		}
	}

	if password == "" {
		verr.Add("password", "password is required")
	} else if err := s.passwordValidator.Validate(password); err != nil {
		verr.Add("password", err.Error())
	}

	if verr.HasErrors() {
		return nil, &verr
	}

	hashed, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := domain.NewAccount(name, email, hashed)

	created, err := s.accounts.Create(ctx, account)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	if s.events != nil {
		event := domain.AccountRegisteredEvent{
			EventID:      uuid.NewString(),
			AccountID:    created.ID,
			Name:         created.Name,
			Email:        created.Email,
			Status:       string(created.Status),
			RegisteredAt: created.CreatedAt,
		}
		if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
			s.logger.Warn("publish account registered", zap.Error(err))
		}
	}

	return created, nil
}
