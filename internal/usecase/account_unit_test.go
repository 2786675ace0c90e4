package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
	"github.com/kevin2-cyber/ligera-sub001/internal/repository"
)

// fakeAccountStore is an in-memory port.AccountRepository plus tx runner.
type fakeAccountStore struct {
	byID        map[string]domain.Account
	findByEmail func(ctx context.Context, email string) (*domain.Account, error)
	saveErr     error
}

func newFakeAccountStore(accounts ...domain.Account) *fakeAccountStore {
	s := &fakeAccountStore{byID: make(map[string]domain.Account)}
	for _, a := range accounts {
		s.byID[a.ID] = a
	}
	return s
}

func (s *fakeAccountStore) Create(_ context.Context, account domain.Account) (*domain.Account, error) {
	return nil, errors.New("unexpected call: Create")
}

func (s *fakeAccountStore) FindByID(_ context.Context, id string) (*domain.Account, error) {
	account, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := account
	return &copy, nil
}

func (s *fakeAccountStore) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if s.findByEmail != nil {
		return s.findByEmail(ctx, email)
	}
	for _, account := range s.byID {
		if account.Email == email {
			copy := account
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeAccountStore) ExistsByID(_ context.Context, id string) (bool, error) {
	_, ok := s.byID[id]
	return ok, nil
}

func (s *fakeAccountStore) Save(_ context.Context, account domain.Account) (*domain.Account, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	if _, ok := s.byID[account.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	s.byID[account.ID] = account
	copy := account
	return &copy, nil
}

func (s *fakeAccountStore) UpdateStatus(_ context.Context, id string, status domain.AccountStatus) error {
	account, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.Status = status
	s.byID[id] = account
	return nil
}

func (s *fakeAccountStore) UpdatePassword(_ context.Context, id string, passwordHash string, _ time.Time) error {
	account, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	account.PasswordHash = passwordHash
	s.byID[id] = account
	return nil
}

func (s *fakeAccountStore) WithinTransaction(_ context.Context, fn func(repo port.AccountRepository) error) error {
	return fn(s)
}

type staticPrincipalProvider struct {
	account *domain.Account
	err     error
}

func (p *staticPrincipalProvider) CurrentPrincipal(context.Context) (*domain.Account, error) {
	if p.err != nil {
		return nil, p.err
	}
	copy := *p.account
	return &copy, nil
}

func activeAccount(id, name, email string) domain.Account {
	account := domain.NewAccount(name, email, "salt:hash")
	account.ID = id
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	return account
}

func TestUpdateNonexistentAccountReturnsNotFound(t *testing.T) {
	store := newFakeAccountStore(activeAccount("1", "Avery", "a@x.com"))
	svc := NewAccountService(store, store, nil, nil, nil)

	_, err := svc.Update(context.Background(), UpdateAccountInput{
		ID:    "missing",
		Name:  "Valid Name",
		Email: "a@x.com",
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUpdateNotFoundWinsOverConflict(t *testing.T) {
	// The payload claims an email already held by account 1, but the
	// target account does not exist. The existence check must report
	// not-found before the uniqueness probe can report a conflict.
	store := newFakeAccountStore(activeAccount("1", "Avery", "a@x.com"))
	svc := NewAccountService(store, store, nil, nil, nil)

	_, err := svc.Update(context.Background(), UpdateAccountInput{
		ID:    "2",
		Name:  "Blair",
		Email: "a@x.com",
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUpdateDuplicateEmailReturnsConflict(t *testing.T) {
	store := newFakeAccountStore(
		activeAccount("1", "Avery", "a@x.com"),
		activeAccount("2", "Blair", "b@x.com"),
	)
	svc := NewAccountService(store, store, nil, nil, nil)

	_, err := svc.Update(context.Background(), UpdateAccountInput{
		ID:    "2",
		Name:  "Blair",
		Email: "a@x.com",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdateUnchangedEmailSkipsUniquenessProbe(t *testing.T) {
	store := newFakeAccountStore(activeAccount("1", "Avery", "a@x.com"))
	store.findByEmail = func(context.Context, string) (*domain.Account, error) {
		return nil, errors.New("unexpected call: FindByEmail")
	}
	svc := NewAccountService(store, store, nil, nil, nil)

	updated, err := svc.Update(context.Background(), UpdateAccountInput{
		ID:    "1",
		Name:  "Avery Renamed",
		Email: "a@x.com",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Name != "Avery Renamed" {
		t.Fatalf("expected renamed account, got %q", updated.Name)
	}
}

func TestUpdateChangedEmailIsPersisted(t *testing.T) {
	store := newFakeAccountStore(
		activeAccount("1", "Avery", "a@x.com"),
		activeAccount("2", "Blair", "b@x.com"),
	)
	svc := NewAccountService(store, store, nil, nil, nil)

	updated, err := svc.Update(context.Background(), UpdateAccountInput{
		ID:    "2",
		Name:  "Blair",
		Email: "c@x.com",
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Email != "c@x.com" {
		t.Fatalf("expected persisted email c@x.com, got %q", updated.Email)
	}

	fetched, err := svc.GetByID(context.Background(), "2")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if fetched.Email != "c@x.com" {
		t.Fatalf("expected stored email c@x.com, got %q", fetched.Email)
	}
}

func TestUpdateStorageConflictMapsToEmailTaken(t *testing.T) {
	// A racing write can slip past the pre-check; the storage-level unique
	// constraint violation must surface as the same conflict failure.
	store := newFakeAccountStore(activeAccount("1", "Avery", "a@x.com"))
	store.saveErr = repository.ErrConflict
	svc := NewAccountService(store, store, nil, nil, nil)

	_, err := svc.Update(context.Background(), UpdateAccountInput{
		ID:    "1",
		Name:  "Avery",
		Email: "new@x.com",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdateCollectsAllFieldViolations(t *testing.T) {
	store := newFakeAccountStore(activeAccount("1", "Avery", "a@x.com"))
	svc := NewAccountService(store, store, nil, nil, nil)

	_, err := svc.Update(context.Background(), UpdateAccountInput{
		ID:    "1",
		Name:  "A",
		Email: "not-an-email",
	})

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %v", len(verr.Fields), verr.Fields)
	}
}

func TestGetByEmailAbsenceIsNotAnError(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAccountService(store, store, nil, nil, nil)

	account, err := svc.GetByEmail(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("GetByEmail returned error: %v", err)
	}
	if account != nil {
		t.Fatalf("expected empty result, got %+v", account)
	}
}

func TestGetByIDUnknownReturnsNotFound(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAccountService(store, store, nil, nil, nil)

	_, err := svc.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestCurrentProfileOutsideAuthContext(t *testing.T) {
	store := newFakeAccountStore()
	svc := NewAccountService(store, store, &staticPrincipalProvider{err: ErrUnauthenticated}, nil, nil)

	_, err := svc.CurrentProfile(context.Background())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCurrentProfileExcludesCredential(t *testing.T) {
	account := activeAccount("1", "Avery", "a@x.com")
	store := newFakeAccountStore(account)
	svc := NewAccountService(store, store, &staticPrincipalProvider{account: &account}, nil, nil)

	profile, err := svc.CurrentProfile(context.Background())
	if err != nil {
		t.Fatalf("CurrentProfile returned error: %v", err)
	}
	if profile.ID != "1" || profile.Email != "a@x.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestDeactivateMovesAccountOutOfService(t *testing.T) {
	store := newFakeAccountStore(activeAccount("1", "Avery", "a@x.com"))
	svc := NewAccountService(store, store, nil, nil, nil)

	if err := svc.Deactivate(context.Background(), "1", "requested"); err != nil {
		t.Fatalf("Deactivate returned error: %v", err)
	}

	fetched, err := svc.GetByID(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if fetched.Status != domain.AccountStatusInactive {
		t.Fatalf("expected inactive status, got %q", fetched.Status)
	}
	if fetched.InService() {
		t.Fatal("deactivated account must not be in service")
	}
}

func TestNewAccountFactoryDefaults(t *testing.T) {
	account := domain.NewAccount("Avery", "a@x.com", "salt:hash")

	if account.Role != domain.RoleUser {
		t.Fatalf("expected default role user, got %q", account.Role)
	}
	if account.Status != domain.AccountStatusActive {
		t.Fatalf("expected default status active, got %q", account.Status)
	}
	if account.ID != "" {
		t.Fatalf("identifier is assigned by the persistence layer, got %q", account.ID)
	}
}

func TestValidationErrorMessageListsFields(t *testing.T) {
	var verr domain.ValidationError
	verr.Add("name", "name must be between 2 and 50 characters")
	verr.Add("email", "email must be a valid address")

	msg := verr.Error()
	if !strings.Contains(msg, "name") || !strings.Contains(msg, "email") {
		t.Fatalf("expected both fields in message, got %q", msg)
	}
	if verr.Fields[0].Field != "name" {
		t.Fatal("field errors must preserve insertion order")
	}
}
