package port

import (
	"context"
	"time"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
)

// AccountRepository exposes persistence behavior for accounts. Save either
// fully commits the record's fields or fails atomically; partial field
// updates are never visible to subsequent reads.
type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, account domain.Account) (*domain.Account, error)
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error
}

// AccountTxRunner scopes a unit of work to a single database transaction.
// The callback's repository sees uncommitted writes; any error rolls the
// whole scope back.
type AccountTxRunner interface {
	WithinTransaction(ctx context.Context, fn func(repo AccountRepository) error) error
}

// LoginAttemptRepository records and prunes the authentication audit trail.
type LoginAttemptRepository interface {
	Record(ctx context.Context, attempt domain.LoginAttempt) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
