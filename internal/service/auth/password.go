package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// KeyVerifier defines the interface for comparing API keys against their hashes.
type KeyVerifier interface {
	// Compare checks whether the supplied API key matches the stored hash.
	// Returns nil on match, ErrInvalidCredentials on mismatch, and a wrapped
	// error when the hash itself is unusable.
	Compare(hashedKey, apiKey string) error
}

// BcryptVerifier implements KeyVerifier using bcrypt.
type BcryptVerifier struct{}

var _ KeyVerifier = (*BcryptVerifier)(nil)

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare checks a plaintext API key against a bcrypt hash.
func (v *BcryptVerifier) Compare(hashedKey, apiKey string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(apiKey))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to compare api key hash: %w", err)
	}
	return nil
}
