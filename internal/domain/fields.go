package domain

import (
	"errors"
	"time"
)

// Field validation errors
var (
	// ErrFieldEmpty is returned when a field value carries no data for its kind.
	ErrFieldEmpty = errors.New("field value cannot be empty")

	// ErrFieldKindMismatch is returned when a field value's populated shape
	// does not match its declared kind.
	ErrFieldKindMismatch = errors.New("field value does not match declared kind")
)

// FieldKind describes the expected shape of a single schema field in
// normalized content.
type FieldKind string

// Supported field kinds.
const (
	// FieldText is a single block of prose.
	FieldText FieldKind = "text"

	// FieldList is an ordered list of entries.
	FieldList FieldKind = "list"

	// FieldPairs is an ordered list of key-value pairs (for example
	// front/back of a flashcard, or question/answer of an FAQ entry).
	FieldPairs FieldKind = "pairs"
)

// Pair is one key-value entry of a FieldPairs value.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// FieldValue holds the typed value of one schema field. Exactly one of the
// value slots is populated, matching Kind.
type FieldValue struct {
	Kind  FieldKind `json:"kind"`
	Text  string    `json:"text,omitempty"`
	Items []string  `json:"items,omitempty"`
	Pairs []Pair    `json:"pairs,omitempty"`
}

// TextValue builds a FieldValue holding a prose block.
func TextValue(text string) FieldValue {
	return FieldValue{Kind: FieldText, Text: text}
}

// ListValue builds a FieldValue holding an ordered list.
func ListValue(items []string) FieldValue {
	return FieldValue{Kind: FieldList, Items: items}
}

// PairsValue builds a FieldValue holding key-value pairs.
func PairsValue(pairs []Pair) FieldValue {
	return FieldValue{Kind: FieldPairs, Pairs: pairs}
}

// Validate checks that the populated slot matches the declared kind and is
// non-empty.
func (v FieldValue) Validate() error {
	switch v.Kind {
	case FieldText:
		if v.Items != nil || v.Pairs != nil {
			return ErrFieldKindMismatch
		}
		if v.Text == "" {
			return ErrFieldEmpty
		}
	case FieldList:
		if v.Text != "" || v.Pairs != nil {
			return ErrFieldKindMismatch
		}
		if len(v.Items) == 0 {
			return ErrFieldEmpty
		}
	case FieldPairs:
		if v.Text != "" || v.Items != nil {
			return ErrFieldKindMismatch
		}
		if len(v.Pairs) == 0 {
			return ErrFieldEmpty
		}
	default:
		return ErrFieldKindMismatch
	}

	return nil
}

// NormalizedContent is the canonical typed structure produced by the
// normalizer for one generation. Fields maps schema field names to their
// extracted values; after normalization succeeds no field is loosely typed
// free text.
type NormalizedContent struct {
	ContentType ContentType           `json:"content_type"`
	Fields      map[string]FieldValue `json:"fields"`
	Provider    string                `json:"provider"`
	GeneratedAt time.Time             `json:"generated_at"`
}
