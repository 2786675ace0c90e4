package port

import (
	"context"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
)

// EventPublisher emits account lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishAccountUpdated(ctx context.Context, event domain.AccountUpdatedEvent) error
	PublishAccountDeactivated(ctx context.Context, event domain.AccountDeactivatedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
}
