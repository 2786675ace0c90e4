package domain

import (
	"regexp"
	"strings"
	"time"
)

// Role enumerates the access levels an account can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// AccountStatus enumerates possible account states.
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusInactive  AccountStatus = "inactive"
	AccountStatusSuspended AccountStatus = "suspended"
)

// Valid reports whether the status is one of the enumerated values.
func (s AccountStatus) Valid() bool {
	switch s {
	case AccountStatusActive, AccountStatusInactive, AccountStatusSuspended:
		return true
	}
	return false
}

// AuditRecord carries the identity and timestamps shared by persisted records.
// The identifier is assigned by the persistence layer on insert and never
// reassigned afterwards.
type AuditRecord struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Account mirrors the persisted representation in the accounts table.
type Account struct {
	AuditRecord
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Status       AccountStatus
}

const (
	accountNameMinLen = 2
	accountNameMaxLen = 50
)

var emailSyntax = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// NewAccount builds an account from a name, email, and an already-encoded
// password credential. Role defaults to user and status to active. The
// identifier is left empty for the repository to assign.
func NewAccount(name, email, passwordHash string) Account {
	return Account{
		Name:         strings.TrimSpace(name),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Status:       AccountStatusActive,
	}
}

// Validate checks every field constraint on a full record and reports all
// violations together.
func (a Account) Validate() error {
	verr := a.profileViolations()

	if a.PasswordHash == "" {
		verr.Add("password", "password credential is required")
	}

	if verr.HasErrors() {
		return &verr
	}
	return nil
}

// ValidateProfile checks the mutable profile fields (everything except the
// password credential), collecting all violations together.
func (a Account) ValidateProfile() error {
	verr := a.profileViolations()
	if verr.HasErrors() {
		return &verr
	}
	return nil
}

func (a Account) profileViolations() ValidationError {
	var verr ValidationError

	name := strings.TrimSpace(a.Name)
	switch {
	case name == "":
		verr.Add("name", "name is required")
	case len(name) < accountNameMinLen || len(name) > accountNameMaxLen:
		verr.Add("name", "name must be between 2 and 50 characters")
	}

	email := strings.TrimSpace(a.Email)
	switch {
	case email == "":
		verr.Add("email", "email is required")
	case !emailSyntax.MatchString(email):
		verr.Add("email", "email must be a valid address")
	}

	if a.Role != "" && !a.Role.Valid() {
		verr.Add("role", "role must be one of user, admin")
	}
	if a.Status != "" && !a.Status.Valid() {
		verr.Add("status", "status must be one of active, inactive, suspended")
	}

	return verr
}

// InService reports whether the account may authenticate and appear in
// service responses. Inactive and suspended accounts are excluded.
func (a Account) InService() bool {
	return a.Status == AccountStatusActive
}

// Profile is the externally safe view of an account; the password credential
// is never part of it.
type Profile struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Role      Role          `json:"role"`
	Status    AccountStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ProfileOf maps an account to its external representation.
func ProfileOf(a Account) Profile {
	return Profile{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// LoginAttempt records authentication attempts for throttling and audit.
type LoginAttempt struct {
	ID        string
	AccountID *string
	Email     string
	Succeeded bool
	IP        *string
	UserAgent *string
	CreatedAt time.Time
}
