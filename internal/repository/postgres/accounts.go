package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
	"github.com/kevin2-cyber/ligera-sub001/internal/repository"
)

var accountColumns = []string{
	"id",
	"name",
	"email",
	"password_hash",
	"role",
	"status",
	"created_at",
	"updated_at",
}

// AccountRepository implements port.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAccountRepository constructs a repository backed by any executor that
// satisfies pgExecutor.
func NewAccountRepository(exec pgExecutor) *AccountRepository {
	repo := &AccountRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithinTransaction runs fn against a repository scoped to a single
// transaction. Any error from fn rolls the scope back; the commit happens
// only after fn returns nil. When no pool is available (already inside a
// transaction, or a test executor) fn runs against the current executor.
func (r *AccountRepository) WithinTransaction(ctx context.Context, fn func(repo port.AccountRepository) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txRepo := &AccountRepository{exec: tx, builder: r.builder}
	if err := fn(txRepo); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Create inserts a new account row, assigning the identifier when the record
// arrives without one.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (*domain.Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = account.CreatedAt
	}

	sql, args, err := r.builder.Insert("ligera.accounts").
		Columns(accountColumns...).
		Values(
			account.ID,
			account.Name,
			account.Email,
			account.PasswordHash,
			account.Role,
			account.Status,
			account.CreatedAt,
			account.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert account sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return &account, nil
}

// FindByID retrieves an account by identifier.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From("ligera.accounts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
}

// FindByEmail retrieves an account by email.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	stmt, args, err := r.builder.
		Select(accountColumns...).
		From("ligera.accounts").
		Where(squirrel.Eq{"email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select account by email sql: %w", err)
	}

	return r.scanAccount(r.exec.QueryRow(ctx, stmt, args...))
}

// ExistsByID reports whether an account row with the identifier exists.
func (r *AccountRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	stmt, args, err := r.builder.
		Select("COUNT(*)").
		From("ligera.accounts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists account sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("scan account count: %w", err)
	}

	return count > 0, nil
}

// Save persists the full record in a single statement; the row either commits
// with every field or not at all.
func (r *AccountRepository) Save(ctx context.Context, account domain.Account) (*domain.Account, error) {
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = time.Now().UTC()
	}

	stmt, args, err := r.builder.Update("ligera.accounts").
		Set("name", account.Name).
		Set("email", account.Email).
		Set("password_hash", account.PasswordHash).
		Set("role", account.Role).
		Set("status", account.Status).
		Set("updated_at", account.UpdatedAt).
		Where(squirrel.Eq{"id": account.ID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update account sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return nil, repository.ErrNotFound
	}

	return &account, nil
}

// UpdateStatus updates the status field for an account.
func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) error {
	stmt, args, err := r.builder.Update("ligera.accounts").
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update account status sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update account status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// UpdatePassword updates an account's password hash and change timestamp.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string, changedAt time.Time) error {
	stmt, args, err := r.builder.Update("ligera.accounts").
		Set("password_hash", passwordHash).
		Set("updated_at", changedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update password sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *AccountRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account

	if err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	return &account, nil
}

var _ port.AccountRepository = (*AccountRepository)(nil)
var _ port.AccountTxRunner = (*AccountRepository)(nil)
