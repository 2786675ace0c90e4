package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/core/port"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	AccountID string            `json:"account_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, accountID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		AccountID: accountID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata: map[string]string{
			"service":     p.appCfg.Name,
			"environment": p.appCfg.Env,
		},
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Key:   sarama.StringEncoder(accountID),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishAccountRegistered publishes account.registered events.
func (p *EventPublisher) PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error {
	payload := struct {
		AccountID    string    `json:"account_id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		Status       string    `json:"status"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		AccountID:    event.AccountID,
		Name:         event.Name,
		Email:        event.Email,
		Status:       event.Status,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "account.registered", event.AccountID, event.RegisteredAt, payload)
}

// PublishAccountUpdated publishes account.updated events.
func (p *EventPublisher) PublishAccountUpdated(ctx context.Context, event domain.AccountUpdatedEvent) error {
	payload := struct {
		AccountID    string    `json:"account_id"`
		Email        string    `json:"email"`
		EmailChanged bool      `json:"email_changed"`
		UpdatedAt    time.Time `json:"updated_at"`
	}{
		AccountID:    event.AccountID,
		Email:        event.Email,
		EmailChanged: event.EmailChanged,
		UpdatedAt:    event.UpdatedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "account.updated", event.AccountID, event.UpdatedAt, payload)
}

// PublishAccountDeactivated publishes account.deactivated events.
func (p *EventPublisher) PublishAccountDeactivated(ctx context.Context, event domain.AccountDeactivatedEvent) error {
	payload := struct {
		AccountID     string    `json:"account_id"`
		DeactivatedAt time.Time `json:"deactivated_at"`
		Reason        string    `json:"reason,omitempty"`
	}{
		AccountID:     event.AccountID,
		DeactivatedAt: event.DeactivatedAt.UTC(),
		Reason:        event.Reason,
	}

	return p.publish(ctx, event.EventID, "account.deactivated", event.AccountID, event.DeactivatedAt, payload)
}

// PublishPasswordChanged publishes account.password.changed events.
func (p *EventPublisher) PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error {
	payload := struct {
		AccountID string    `json:"account_id"`
		ChangedAt time.Time `json:"changed_at"`
	}{
		AccountID: event.AccountID,
		ChangedAt: event.ChangedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "account.password.changed", event.AccountID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
