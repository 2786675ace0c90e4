package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for
// development environments without brokers.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	p.logEvent("account.registered", event.AccountID, event.RegisteredAt, map[string]any{
		"name":   event.Name,
		"email":  event.Email,
		"status": event.Status,
	})
	return nil
}

// PublishAccountUpdated logs account.updated events.
func (p *StubPublisher) PublishAccountUpdated(_ context.Context, event domain.AccountUpdatedEvent) error {
	p.logEvent("account.updated", event.AccountID, event.UpdatedAt, map[string]any{
		"email":         event.Email,
		"email_changed": event.EmailChanged,
	})
	return nil
}

// PublishAccountDeactivated logs account.deactivated events.
func (p *StubPublisher) PublishAccountDeactivated(_ context.Context, event domain.AccountDeactivatedEvent) error {
	p.logEvent("account.deactivated", event.AccountID, event.DeactivatedAt, map[string]any{
		"reason": event.Reason,
	})
	return nil
}

// PublishPasswordChanged logs account.password.changed events.
func (p *StubPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.logEvent("account.password.changed", event.AccountID, event.ChangedAt, nil)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
