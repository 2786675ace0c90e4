package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kevin2-cyber/ligera-sub001/internal/usecase"
)

// AuthHandler exposes login endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds auth endpoints. Extra middlewares (rate limiting)
// apply to the login route only.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	handlersChain := append([]gin.HandlerFunc{}, loginMiddlewares...)
	handlersChain = append(handlersChain, h.Login)
	r.POST("/login", handlersChain...)
}

// Login verifies credentials and issues an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithBindingError(c, err, "invalid login payload")
		return
	}

	meta := usecase.LoginMetadata{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	result, err := h.auth.Login(c.Request.Context(), strings.TrimSpace(req.Email), req.Password, meta)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid email or password"},
			{Err: usecase.ErrAccountOutOfService, Status: http.StatusForbidden, Message: "account is not in service"},
		}, http.StatusInternalServerError, "failed to log in")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresIn:   result.ExpiresIn,
		Account:     newAccountPayload(&result.Account),
	})
}
