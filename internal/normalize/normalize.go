// Package normalize parses raw provider output into the canonical typed
// content structure declared by a content type's schema. Parsing tolerates
// minor formatting variance — surrounding whitespace, markdown code fences,
// markdown-shaped output instead of JSON — but never invents data: a missing
// required field is a schema mismatch, not an empty default.
package normalize

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/generation"
	"github.com/studygen/studygen-api/internal/template"
)

// Normalize extracts the schema's fields from a raw provider response.
// It first tries a strict JSON parse (after stripping markdown fences); if
// the payload is not JSON it falls back to a markdown structure pass.
func Normalize(raw *generation.RawResponse, contentType domain.ContentType, schema template.Schema) (*domain.NormalizedContent, error) {
	text := stripFences(strings.TrimSpace(raw.Text))
	if text == "" {
		return nil, mismatch("", "empty response body")
	}

	var fields map[string]domain.FieldValue
	var err error

	var object map[string]json.RawMessage
	if jsonErr := json.Unmarshal([]byte(text), &object); jsonErr == nil {
		fields, err = fieldsFromJSON(object, schema)
	} else {
		fields, err = fieldsFromMarkdown([]byte(text), schema)
	}
	if err != nil {
		return nil, err
	}

	return &domain.NormalizedContent{
		ContentType: contentType,
		Fields:      fields,
		Provider:    raw.Provider,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, leaving inner fences untouched.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}

	last := len(lines) - 1
	if strings.TrimSpace(lines[last]) != "```" {
		return text
	}

	return strings.TrimSpace(strings.Join(lines[1:last], "\n"))
}

// fieldsFromJSON extracts every schema field from a parsed JSON object.
func fieldsFromJSON(object map[string]json.RawMessage, schema template.Schema) (map[string]domain.FieldValue, error) {
	fields := make(map[string]domain.FieldValue, len(schema.Fields))

	for _, f := range schema.Fields {
		rawField, ok := object[f.Name]
		if !ok {
			if f.Required {
				return nil, mismatch(f.Name, "required field missing")
			}
			continue
		}

		value, err := valueFromJSON(f, rawField)
		if err != nil {
			return nil, err
		}

		if err := value.Validate(); err != nil {
			if !f.Required {
				continue
			}
			return nil, mismatch(f.Name, "required field empty")
		}

		fields[f.Name] = value
	}

	return fields, nil
}

// valueFromJSON decodes one field's raw JSON into the declared kind.
func valueFromJSON(f template.Field, raw json.RawMessage) (domain.FieldValue, error) {
	switch f.Kind {
	case domain.FieldText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return domain.FieldValue{}, mismatch(f.Name, "expected a text block")
		}
		return domain.TextValue(strings.TrimSpace(s)), nil

	case domain.FieldList:
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return domain.FieldValue{}, mismatch(f.Name, "expected an ordered list, got a different shape")
		}
		return domain.ListValue(trimAll(items)), nil

	case domain.FieldPairs:
		pairs, err := pairsFromJSON(f.Name, raw)
		if err != nil {
			return domain.FieldValue{}, err
		}
		return domain.PairsValue(pairs), nil
	}

	return domain.FieldValue{}, mismatch(f.Name, "unknown field kind %q", f.Kind)
}

// pairsFromJSON accepts the pair shapes providers actually produce: an array
// of {"key","value"} objects, an array of two-property objects (front/back,
// question/answer and the like), an array of two-element arrays, or a plain
// JSON object. Object property order is preserved via token decoding.
func pairsFromJSON(field string, raw json.RawMessage) ([]domain.Pair, error) {
	trimmed := strings.TrimSpace(string(raw))

	switch {
	case strings.HasPrefix(trimmed, "["):
		var elements []json.RawMessage
		if err := json.Unmarshal(raw, &elements); err != nil {
			return nil, mismatch(field, "expected key-value pairs")
		}

		pairs := make([]domain.Pair, 0, len(elements))
		for _, el := range elements {
			pair, err := pairFromElement(field, el)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, pair)
		}
		return pairs, nil

	case strings.HasPrefix(trimmed, "{"):
		return orderedObjectPairs(field, raw)

	default:
		return nil, mismatch(field, "expected key-value pairs, got a different shape")
	}
}

// pairFromElement decodes a single array element into a Pair.
func pairFromElement(field string, raw json.RawMessage) (domain.Pair, error) {
	trimmed := strings.TrimSpace(string(raw))

	if strings.HasPrefix(trimmed, "[") {
		var tuple []string
		if err := json.Unmarshal(raw, &tuple); err != nil || len(tuple) != 2 {
			return domain.Pair{}, mismatch(field, "pair element is not a two-element array")
		}
		return domain.Pair{Key: strings.TrimSpace(tuple[0]), Value: strings.TrimSpace(tuple[1])}, nil
	}

	ordered, err := orderedObjectPairs(field, raw)
	if err != nil {
		return domain.Pair{}, err
	}

	// Canonical {"key": ..., "value": ...} objects win; otherwise any
	// two-property object is read in declaration order.
	var key, value string
	var haveKey, haveValue bool
	for _, p := range ordered {
		switch strings.ToLower(p.Key) {
		case "key":
			key, haveKey = p.Value, true
		case "value":
			value, haveValue = p.Value, true
		}
	}
	if haveKey && haveValue {
		return domain.Pair{Key: key, Value: value}, nil
	}

	if len(ordered) == 2 {
		return domain.Pair{Key: ordered[0].Value, Value: ordered[1].Value}, nil
	}

	return domain.Pair{}, mismatch(field, "pair element has no recognizable key/value shape")
}

// orderedObjectPairs decodes a JSON object into pairs preserving property
// order, which encoding/json's map decoding would lose.
func orderedObjectPairs(field string, raw json.RawMessage) ([]domain.Pair, error) {
	dec := json.NewDecoder(strings.NewReader(string(raw)))

	tok, err := dec.Token()
	if err != nil {
		return nil, mismatch(field, "expected key-value pairs")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, mismatch(field, "expected key-value pairs, got a different shape")
	}

	var pairs []domain.Pair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, mismatch(field, "malformed pair object")
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, mismatch(field, "malformed pair object")
		}

		valTok, err := dec.Token()
		if err != nil {
			return nil, mismatch(field, "malformed pair object")
		}
		value, ok := valTok.(string)
		if !ok {
			return nil, mismatch(field, "pair value for %q is not a string", key)
		}

		pairs = append(pairs, domain.Pair{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)})
	}

	return pairs, nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
