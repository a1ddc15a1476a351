// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the generation pipeline, which treats persistence as an optional
// fire-and-forget collaborator.
package store
