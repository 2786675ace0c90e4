package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/infra/logger"
)

// FieldErrorPayload carries a single field-level validation failure.
type FieldErrorPayload struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the canonical error envelope returned by every endpoint.
// FieldErrors is populated only for validation failures and preserves the
// order in which violations were collected.
type ErrorResponse struct {
	Timestamp   time.Time           `json:"timestamp"`
	Status      int                 `json:"status"`
	Error       string              `json:"error"`
	Message     string              `json:"message"`
	Path        string              `json:"path"`
	RequestID   string              `json:"request_id,omitempty"`
	FieldErrors []FieldErrorPayload `json:"field_errors,omitempty"`
}

// NewErrorResponse creates an error envelope for the current request.
func NewErrorResponse(c *gin.Context, status int, label, message string) ErrorResponse {
	path := ""
	requestID := ""
	if c != nil && c.Request != nil {
		path = c.Request.URL.Path
		if id, ok := c.Request.Context().Value(logger.RequestIDKey{}).(string); ok {
			requestID = id
		}
	}

	return ErrorResponse{
		Timestamp: time.Now().UTC(),
		Status:    status,
		Error:     label,
		Message:   message,
		Path:      path,
		RequestID: requestID,
	}
}

// WithFieldErrors appends field-level violations to the envelope.
func (e ErrorResponse) WithFieldErrors(fieldErrors []domain.FieldError) ErrorResponse {
	for _, fe := range fieldErrors {
		e.FieldErrors = append(e.FieldErrors, FieldErrorPayload{Field: fe.Field, Message: fe.Message})
	}
	return e
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountPayload describes the externally safe view of an account.
type AccountPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newAccountPayload(account *domain.Account) AccountPayload {
	return AccountPayload{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Role:      string(account.Role),
		Status:    string(account.Status),
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

func newProfilePayload(profile *domain.Profile) AccountPayload {
	return AccountPayload{
		ID:        profile.ID,
		Name:      profile.Name,
		Email:     profile.Email,
		Role:      string(profile.Role),
		Status:    string(profile.Status),
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	}
}

// RegistrationRequest defines the account registration payload.
type RegistrationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int            `json:"expires_in"`
	Account     AccountPayload `json:"account"`
}

// AccountUpdateRequest defines the payload for updating an account.
type AccountUpdateRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// PasswordChangeRequest defines the payload for changing a password.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// CategoryPayload summarizes a catalog category.
type CategoryPayload struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parent_id,omitempty"`
}

func newCategoryPayload(category *domain.Category) CategoryPayload {
	return CategoryPayload{
		ID:       category.ID,
		Name:     category.Name,
		Slug:     category.Slug,
		ParentID: category.ParentID,
	}
}

// CategoryCreateRequest defines the payload for creating a category.
type CategoryCreateRequest struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parent_id,omitempty"`
}

// CategoryListResponse wraps multiple categories.
type CategoryListResponse struct {
	Categories []CategoryPayload `json:"categories"`
}

// ProductPayload describes a product listing.
type ProductPayload struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Sizes       []string  `json:"sizes,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Archived    bool      `json:"archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductUpsertRequest defines the create/update payload for a product.
type ProductUpsertRequest struct {
	CategoryID  string   `json:"category_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents"`
	Sizes       []string `json:"sizes"`
}

// ProductListResponse wraps a paginated product listing.
type ProductListResponse struct {
	Products []ProductPayload `json:"products"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

// ProductImageResponse returns the stored image key after an upload.
type ProductImageResponse struct {
	Key string `json:"key"`
}

// HealthResponse reports liveness status.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports readiness of downstream dependencies.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
