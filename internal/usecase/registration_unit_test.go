package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/security"
	"github.com/kevin2-cyber/ligera-sub001/internal/repository"
)

type registerAccountRepository struct {
	fakeAccountStore
	created   *domain.Account
	createErr error
}

func (r *registerAccountRepository) Create(_ context.Context, account domain.Account) (*domain.Account, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	account.ID = uuid.NewString()
	r.created = &account
	copy := account
	return &copy, nil
}

func TestRegisterAppliesFactoryDefaults(t *testing.T) {
	repo := &registerAccountRepository{}
	svc := NewRegistrationService(repo, nil, security.DefaultPasswordValidator())

	account, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Avery",
		Email:    "avery@x.com",
		Password: "s8#Kp2!vQz",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if account.Role != domain.RoleUser {
		t.Fatalf("expected role user, got %q", account.Role)
	}
	if account.Status != domain.AccountStatusActive {
		t.Fatalf("expected status active, got %q", account.Status)
	}
	if account.ID == "" {
		t.Fatal("expected identifier assigned on create")
	}
	if account.PasswordHash == "s8#Kp2!vQz" {
		t.Fatal("password must be stored hashed")
	}
}

func TestRegisterCollectsEveryViolation(t *testing.T) {
	repo := &registerAccountRepository{}
	svc := NewRegistrationService(repo, nil, security.DefaultPasswordValidator())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "A",
		Email:    "not-an-email",
		Password: "",
	})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("expected violations for name, email, and password, got %v", verr.Fields)
	}
	if repo.created != nil {
		t.Fatal("no account may be persisted when validation fails")
	}
}

func TestRegisterWeakPasswordIsRejected(t *testing.T) {
	repo := &registerAccountRepository{}
	svc := NewRegistrationService(repo, nil, security.DefaultPasswordValidator())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Avery",
		Email:    "avery@x.com",
		Password: "password",
	})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "password" {
		t.Fatalf("expected a single password violation, got %v", verr.Fields)
	}
}

func TestRegisterDuplicateEmailReturnsConflict(t *testing.T) {
	repo := &registerAccountRepository{createErr: repository.ErrConflict}
	svc := NewRegistrationService(repo, nil, security.DefaultPasswordValidator())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Avery",
		Email:    "avery@x.com",
		Password: "s8#Kp2!vQz",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}
