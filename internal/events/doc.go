// Package events provides the hand-off between the generation pipeline and
// its optional persistence collaborators.
//
// The orchestrator emits a ResultEvent for every finished generation result
// without knowing which handlers will process it. Handler failures are
// logged by the emitter and never propagate back into the request path;
// storage is fire-and-forget from the pipeline's perspective.
package events
