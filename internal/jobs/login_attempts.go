package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
)

// LoginAttemptPruner deletes login attempt rows older than the retention
// window. It implements cron.Job.
type LoginAttemptPruner struct {
	attempts  port.LoginAttemptRepository
	retention time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// NewLoginAttemptPruner constructs a pruner with the given retention window.
func NewLoginAttemptPruner(attempts port.LoginAttemptRepository, retention time.Duration, logger *zap.Logger) *LoginAttemptPruner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &LoginAttemptPruner{
		attempts:  attempts,
		retention: retention,
		timeout:   time.Minute,
		logger:    logger,
	}
}

// Run performs a single pruning pass.
func (p *LoginAttemptPruner) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	cutoff := time.Now().UTC().Add(-p.retention)
	deleted, err := p.attempts.DeleteBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error("prune login attempts", zap.Error(err))
		return
	}

	if deleted > 0 {
		p.logger.Info("pruned login attempts",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff),
		)
	}
}
