package mocks

import "github.com/studygen/studygen-api/internal/service/auth"

// MockKeyVerifier implements auth.KeyVerifier for testing
type MockKeyVerifier struct {
	// ShouldSucceed determines whether the key comparison should succeed
	ShouldSucceed bool

	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedKey, apiKey string) error

	// CompareCalledWith stores the arguments passed to Compare for verification
	CompareCalledWith struct {
		HashedKey string
		APIKey    string
	}

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

// Compare implements the auth.KeyVerifier interface
func (m *MockKeyVerifier) Compare(hashedKey, apiKey string) error {
	m.CompareCalledWith.HashedKey = hashedKey
	m.CompareCalledWith.APIKey = apiKey
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedKey, apiKey)
	}

	if m.ShouldSucceed {
		return nil
	}
	return auth.ErrInvalidCredentials
}
