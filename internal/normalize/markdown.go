package normalize

import (
	"strings"

	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/template"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// mdSection is the content collected under one markdown heading (or before
// the first heading, under the empty key).
type mdSection struct {
	text  []string
	items []string
}

// fieldsFromMarkdown handles providers that ignore the JSON instruction and
// answer in markdown. Headings are matched against schema field names;
// lists under a heading become list items, paragraphs become text, and
// "key: value" list entries become pairs.
func fieldsFromMarkdown(source []byte, schema template.Schema) (map[string]domain.FieldValue, error) {
	sections := parseSections(source)

	fields := make(map[string]domain.FieldValue, len(schema.Fields))
	for _, f := range schema.Fields {
		section, ok := lookupSection(sections, f.Name)
		if !ok {
			// A document without headings can still satisfy a schema with a
			// single required field: the whole document is that field.
			if f.Required && singleRequiredField(schema) == f.Name {
				if whole, found := sections[""]; found {
					section, ok = whole, true
				}
			}
			if !ok {
				if f.Required {
					return nil, mismatch(f.Name, "required field missing")
				}
				continue
			}
		}

		value, err := valueFromSection(f, section)
		if err != nil {
			if !f.Required {
				continue
			}
			return nil, err
		}

		fields[f.Name] = value
	}

	return fields, nil
}

// valueFromSection converts one markdown section into the declared field kind.
func valueFromSection(f template.Field, section *mdSection) (domain.FieldValue, error) {
	switch f.Kind {
	case domain.FieldText:
		if len(section.text) == 0 {
			return domain.FieldValue{}, mismatch(f.Name, "expected a text block, found none")
		}
		return domain.TextValue(strings.Join(section.text, "\n\n")), nil

	case domain.FieldList:
		if len(section.items) == 0 {
			return domain.FieldValue{}, mismatch(f.Name, "expected an ordered list, got a single block")
		}
		return domain.ListValue(section.items), nil

	case domain.FieldPairs:
		if len(section.items) == 0 {
			return domain.FieldValue{}, mismatch(f.Name, "expected key-value pairs, found none")
		}
		pairs := make([]domain.Pair, 0, len(section.items))
		for _, item := range section.items {
			key, value, found := strings.Cut(item, ":")
			if !found || strings.TrimSpace(value) == "" {
				return domain.FieldValue{}, mismatch(f.Name, "list entry %q is not a key: value pair", item)
			}
			pairs = append(pairs, domain.Pair{
				Key:   strings.Trim(strings.TrimSpace(key), "*_"),
				Value: strings.TrimSpace(value),
			})
		}
		return domain.PairsValue(pairs), nil
	}

	return domain.FieldValue{}, mismatch(f.Name, "unknown field kind %q", f.Kind)
}

// parseSections walks the goldmark AST, bucketing paragraphs and list items
// under their nearest preceding heading.
func parseSections(source []byte) map[string]*mdSection {
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	sections := map[string]*mdSection{"": {}}
	current := sections[""]

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			key := slug(nodeText(n, source))
			current = &mdSection{}
			sections[key] = current

		case *ast.List:
			for item := n.FirstChild(); item != nil; item = item.NextSibling() {
				if entry := strings.TrimSpace(nodeText(item, source)); entry != "" {
					current.items = append(current.items, entry)
				}
			}

		case *ast.Paragraph, *ast.TextBlock:
			if block := strings.TrimSpace(nodeText(node, source)); block != "" {
				current.text = append(current.text, block)
			}
		}
	}

	return sections
}

// lookupSection finds a section whose heading matches the field name,
// comparing slugs so "Key Concepts" matches "key_concepts".
func lookupSection(sections map[string]*mdSection, fieldName string) (*mdSection, bool) {
	section, ok := sections[slug(fieldName)]
	return section, ok
}

// singleRequiredField returns the name of the schema's only required field,
// or "" when there are several.
func singleRequiredField(schema template.Schema) string {
	name := ""
	for _, f := range schema.Fields {
		if !f.Required {
			continue
		}
		if name != "" {
			return ""
		}
		name = f.Name
	}
	return name
}

// nodeText concatenates all text segments under a node.
func nodeText(node ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := n.(*ast.Text); ok {
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// slug lowercases and underscores a heading for field-name comparison.
func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}, s)
	return strings.Trim(s, "_")
}
