package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// RespondWithBindingError turns a gin binding failure into the error
// envelope. Tag violations from the embedded validator are expanded into the
// field error list so callers see every failing field at once.
func RespondWithBindingError(c *gin.Context, err error, message string) {
	resp := NewErrorResponse(c, http.StatusBadRequest, "Bad Request", message)

	var violations validator.ValidationErrors
	if errors.As(err, &violations) {
		resp.Message = "validation failed"
		for _, violation := range violations {
			resp.FieldErrors = append(resp.FieldErrors, FieldErrorPayload{
				Field:   bindingFieldName(violation),
				Message: bindingViolationMessage(violation),
			})
		}
	}

	c.JSON(http.StatusBadRequest, resp)
}

// bindingFieldName maps a struct field name to its snake_case JSON key.
func bindingFieldName(violation validator.FieldError) string {
	var b strings.Builder
	for i, r := range violation.Field() {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func bindingViolationMessage(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	default:
		return "is invalid"
	}
}
