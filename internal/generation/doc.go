// Package generation defines the provider capability boundary between the
// application core and external AI/LLM services, together with the normalized
// failure taxonomy every adapter maps its backend's errors into. The fallback
// router and orchestrator are written against this package and are oblivious
// to provider count or identity.
package generation
