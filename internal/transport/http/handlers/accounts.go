package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/usecase"
)

// AccountHandler exposes account read and mutation endpoints.
type AccountHandler struct {
	accounts *usecase.AccountService
}

func NewAccountHandler(accounts *usecase.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// RegisterRoutes binds account endpoints. All routes assume RequireAuth has
// run on the group; mutationGuards run before the per-ID mutation handlers.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup, mutationGuards ...gin.HandlerFunc) {
	r.GET("/me", h.CurrentProfile)
	r.GET("/:id", h.GetByID)
	r.PUT("/:id", appendHandler(mutationGuards, h.Update)...)
	r.DELETE("/:id", appendHandler(mutationGuards, h.Deactivate)...)
	r.POST("/password/change", h.ChangePassword)
}

func appendHandler(guards []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	chain := append([]gin.HandlerFunc{}, guards...)
	return append(chain, handler)
}

var accountErrorCases = []ErrorCase{
	{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
	{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already in use"},
	{Err: usecase.ErrUnauthenticated, Status: http.StatusUnauthorized, Message: "authentication required"},
}

// CurrentProfile returns the authenticated principal's profile.
func (h *AccountHandler) CurrentProfile(c *gin.Context) {
	profile, err := h.accounts.CurrentProfile(c.Request.Context())
	if err != nil {
		RespondWithMappedError(c, err, accountErrorCases, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, newProfilePayload(profile))
}

// GetByID returns the account with the given identifier.
func (h *AccountHandler) GetByID(c *gin.Context) {
	account, err := h.accounts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, accountErrorCases, http.StatusInternalServerError, "failed to load account")
		return
	}

	c.JSON(http.StatusOK, newAccountPayload(account))
}

// Update persists the mutable profile fields of an account.
func (h *AccountHandler) Update(c *gin.Context) {
	var req AccountUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBindingError(c, err, "invalid account payload")
		return
	}

	input := usecase.UpdateAccountInput{
		ID:     c.Param("id"),
		Name:   strings.TrimSpace(req.Name),
		Email:  strings.TrimSpace(req.Email),
		Status: domain.AccountStatus(req.Status),
	}

	account, err := h.accounts.Update(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, accountErrorCases, http.StatusInternalServerError, "failed to update account")
		return
	}

	c.JSON(http.StatusOK, newAccountPayload(account))
}

// Deactivate transitions an account out of service.
func (h *AccountHandler) Deactivate(c *gin.Context) {
	if err := h.accounts.Deactivate(c.Request.Context(), c.Param("id"), "requested"); err != nil {
		RespondWithMappedError(c, err, accountErrorCases, http.StatusInternalServerError, "failed to deactivate account")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "account deactivated"})
}

// ChangePassword rotates the authenticated principal's password credential.
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req PasswordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBindingError(c, err, "invalid password payload")
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, append(accountErrorCases, ErrorCase{
			Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "current password is incorrect",
		}), http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}
