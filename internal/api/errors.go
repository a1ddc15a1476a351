package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/studygen/studygen-api/internal/api/shared"
	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/normalize"
	"github.com/studygen/studygen-api/internal/provider"
	"github.com/studygen/studygen-api/internal/service/auth"
	"github.com/studygen/studygen-api/internal/store"
	"github.com/studygen/studygen-api/internal/template"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var exhausted *provider.ExhaustedError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrTopicEmpty),
		errors.Is(err, domain.ErrUnknownContentType),
		errors.Is(err, domain.ErrUnknownAudience),
		errors.Is(err, template.ErrTemplateRender),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Upstream provider failures
	case errors.As(err, &exhausted),
		errors.Is(err, normalize.ErrSchemaMismatch):
		return http.StatusBadGateway

	// Request deadline or client disconnect mid-generation
	case errors.Is(err, provider.ErrCancelled):
		return http.StatusGatewayTimeout

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var exhausted *provider.ExhaustedError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	// Not found errors
	case errors.Is(err, store.ErrResultNotFound):
		return "Generation result not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Bad request errors
	case errors.Is(err, domain.ErrTopicEmpty):
		return "Topic cannot be empty"

	case errors.Is(err, domain.ErrUnknownContentType):
		return "Unknown content type"

	case errors.Is(err, domain.ErrUnknownAudience):
		return "Unknown audience"

	case errors.Is(err, template.ErrTemplateRender):
		return "Failed to build generation prompt"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Upstream provider failures
	case errors.As(err, &exhausted):
		return "All content providers are currently unavailable"

	case errors.Is(err, normalize.ErrSchemaMismatch):
		return "Providers returned unusable content for this request"

	case errors.Is(err, provider.ErrCancelled):
		return "Generation timed out"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'TokenRequest.ClientID' Error:Field validation for 'ClientID' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}

// HandleAPIError maps an internal error to an HTTP status and safe message,
// then writes the response and logs the underlying error. An explicit
// userMessage overrides the mapped safe message when non-empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, userMessage string) {
	status := MapErrorToStatusCode(err)
	if userMessage == "" {
		userMessage = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}
