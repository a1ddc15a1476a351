package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studygen/studygen-api/internal/api/shared"
	"github.com/studygen/studygen-api/internal/config"
	"github.com/studygen/studygen-api/internal/service/auth"
)

// dummyKeyHash is a bcrypt hash of a random string that matches no client.
// The unknown-client path verifies against it to keep timing uniform.
const dummyKeyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	clients     []config.ClientCredential
	jwtService  auth.JWTService
	keyVerifier auth.KeyVerifier
	tokenExpiry time.Duration
	validator   *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	cfg config.AuthConfig,
	jwtService auth.JWTService,
	keyVerifier auth.KeyVerifier,
) *AuthHandler {
	return &AuthHandler{
		clients:     cfg.Clients,
		jwtService:  jwtService,
		keyVerifier: keyVerifier,
		tokenExpiry: cfg.TokenExpiry,
		validator:   validator.New(),
	}
}

// Token handles the /auth/token endpoint. It exchanges a client ID and API
// key for a signed access token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	credential, found := h.lookupClient(req.ClientID)
	if !found {
		// Burn a comparison against a throwaway hash so an unknown client ID
		// costs the same as a wrong key, then answer identically. Otherwise
		// response timing would let callers enumerate valid client IDs.
		_ = h.keyVerifier.Compare(dummyKeyHash, req.APIKey)
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials",
			auth.ErrInvalidCredentials, shared.WithElevatedLogLevel())
		return
	}

	if err := h.keyVerifier.Compare(credential.HashedKey, req.APIKey); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials",
				err, shared.WithElevatedLogLevel())
			return
		}
		slog.Error("failed to verify api key", "error", err, "client_id", req.ClientID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate client")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), credential.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "client_id", credential.ID)
		shared.RespondWithError(
			w,
			r,
			http.StatusInternalServerError,
			"Failed to generate authentication token",
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		AccessToken: token,
		ExpiresAt:   time.Now().Add(h.tokenExpiry).UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) lookupClient(clientID string) (config.ClientCredential, bool) {
	for _, c := range h.clients {
		if c.ID == clientID {
			return c, true
		}
	}
	return config.ClientCredential{}, false
}
