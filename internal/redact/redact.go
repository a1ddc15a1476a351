// Package redact provides utilities for scrubbing sensitive information from
// strings before they are logged or returned in error responses. Provider
// SDK errors in particular may echo back API keys, bearer tokens, or endpoint
// URLs; nothing from this application should leak a credential into a log
// line or an HTTP error body.
package redact

import "regexp"

// Redaction placeholders.
const (
	KeyPlaceholder        = "[REDACTED_KEY]"
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	HostPlaceholder       = "[REDACTED_HOST]"
)

// Precompiled patterns, ordered most specific first.
var replacements = []struct {
	pattern     *regexp.Regexp
	placeholder string
}{
	// JWT tokens (three base64url segments).
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), TokenPlaceholder},

	// Bearer tokens in echoed headers.
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/]{8,}`), TokenPlaceholder},

	// Provider API keys: Google "AIza..." keys and OpenAI "sk-..." keys.
	{regexp.MustCompile(`AIza[0-9A-Za-z_-]{20,}`), KeyPlaceholder},
	{regexp.MustCompile(`sk-[A-Za-z0-9_-]{16,}`), KeyPlaceholder},

	// key=..., api_key: ..., token: ... style fragments.
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret|key|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), KeyPlaceholder},

	// Connection strings with inline credentials.
	{regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@[^\s]+`), CredentialPlaceholder},

	// Host:port endpoints from transport errors.
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}:\d{1,5}\b`), HostPlaceholder},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range replacements {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output.
// Returns the empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
