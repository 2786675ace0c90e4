package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kevin2-cyber/ligera-sub001/internal/core/domain"
	"github.com/kevin2-cyber/ligera-sub001/internal/transport/http/handlers"
	"github.com/kevin2-cyber/ligera-sub001/internal/usecase"
)

const (
	// AccountIDKey is the gin context key for the authenticated account ID.
	AccountIDKey = "account_id"
	// RoleKey is the gin context key for the authenticated account role.
	RoleKey = "role"
)

// RequireAuth validates the Authorization header and extracts account claims.
func RequireAuth(authService *usecase.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, "invalid authorization format: expected 'Bearer <token>'")
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			abortUnauthorized(c, "missing access token")
			return
		}

		claims, err := authService.ParseAccessToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrExpiredAccessToken):
				abortUnauthorized(c, "access token expired")
			case errors.Is(err, usecase.ErrInvalidAccessToken):
				abortUnauthorized(c, "invalid access token")
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					handlers.NewErrorResponse(c, http.StatusInternalServerError, "Internal Server Error", "authentication failed"))
			}
			return
		}

		c.Set(AccountIDKey, claims.AccountID)
		c.Set(RoleKey, claims.Role)

		ctx := usecase.ContextWithAccountID(c.Request.Context(), claims.AccountID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole checks that the authenticated account holds any of the given roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(RoleKey)
		if !exists {
			abortUnauthorized(c, "authentication required")
			return
		}

		role, ok := roleVal.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				handlers.NewErrorResponse(c, http.StatusInternalServerError, "Internal Server Error", "invalid role format"))
			return
		}

		for _, required := range roles {
			if domain.Role(role) == required {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			handlers.NewErrorResponse(c, http.StatusForbidden, "Forbidden", "insufficient permissions"))
	}
}

// RequireSelfOrRole allows the request when the named path parameter matches
// the authenticated account's ID, or when the account holds any of the given
// roles. It must run after RequireAuth.
func RequireSelfOrRole(param string, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := AuthenticatedAccountID(c)
		if !ok {
			abortUnauthorized(c, "authentication required")
			return
		}

		if target := c.Param(param); target != "" && target == accountID {
			c.Next()
			return
		}

		roleVal, _ := c.Get(RoleKey)
		role, _ := roleVal.(string)
		for _, required := range roles {
			if domain.Role(role) == required {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden,
			handlers.NewErrorResponse(c, http.StatusForbidden, "Forbidden", "insufficient permissions"))
	}
}

// AuthenticatedAccountID retrieves the account ID stored by RequireAuth.
func AuthenticatedAccountID(c *gin.Context) (string, bool) {
	idVal, exists := c.Get(AccountIDKey)
	if !exists {
		return "", false
	}

	id, ok := idVal.(string)
	return id, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		handlers.NewErrorResponse(c, http.StatusUnauthorized, "Unauthorized", message))
}
