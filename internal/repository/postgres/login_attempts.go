package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
)

// LoginAttemptRepository implements port.LoginAttemptRepository using PostgreSQL.
type LoginAttemptRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewLoginAttemptRepository constructs a LoginAttemptRepository.
func NewLoginAttemptRepository(exec pgExecutor) *LoginAttemptRepository {
	return &LoginAttemptRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Record inserts an authentication attempt row.
func (r *LoginAttemptRepository) Record(ctx context.Context, attempt domain.LoginAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}

	sql, args, err := r.builder.Insert("ligera.login_attempts").
		Columns("id", "account_id", "email", "succeeded", "ip", "user_agent", "created_at").
		Values(
			attempt.ID,
			attempt.AccountID,
			attempt.Email,
			attempt.Succeeded,
			attempt.IP,
			attempt.UserAgent,
			attempt.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert login attempt sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert login attempt: %w", err)
	}

	return nil
}

// DeleteBefore removes attempts older than cutoff and returns the row count.
func (r *LoginAttemptRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := r.builder.Delete("ligera.login_attempts").
		Where(squirrel.Lt{"created_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete login attempts sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete login attempts: %w", err)
	}

	return ct.RowsAffected(), nil
}

var _ port.LoginAttemptRepository = (*LoginAttemptRepository)(nil)
