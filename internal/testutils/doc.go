// Package testutils provides shared helpers for tests, most notably
// slog handlers that capture or silence log output.
package testutils
