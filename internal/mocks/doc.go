// Package mocks provides centralized mock implementations for testing.
//
// Instead of defining inline mocks in individual test files, these
// standardized implementations are shared across test packages: scripted
// providers for exercising the fallback router and orchestrator, and a
// result store mock for persistence assertions.
package mocks
