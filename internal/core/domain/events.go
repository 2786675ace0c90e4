package domain

import "time"

// AccountRegisteredEvent is emitted after a new account is persisted.
type AccountRegisteredEvent struct {
	EventID      string
	AccountID    string
	Name         string
	Email        string
	Status       string
	RegisteredAt time.Time
}

// AccountUpdatedEvent is emitted after a successful profile update.
type AccountUpdatedEvent struct {
	EventID      string
	AccountID    string
	Email        string
	EmailChanged bool
	UpdatedAt    time.Time
}

// AccountDeactivatedEvent is emitted when an account is soft-deleted.
type AccountDeactivatedEvent struct {
	EventID       string
	AccountID     string
	DeactivatedAt time.Time
	Reason        string
}

// PasswordChangedEvent is emitted after a credential rotation.
type PasswordChangedEvent struct {
	EventID   string
	AccountID string
	ChangedAt time.Time
}
