// Package parser reads lore documents: markdown files that open with a YAML
// frontmatter block describing a scene or a participant.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type Document struct {
	Frontmatter map[string]any
	Title       string
	Kind        string
	// ID is the frontmatter id, or a slug of the title when absent.
	ID         string
	Body       string
	SourceFile string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingTitle  = errors.New("frontmatter missing required 'title' field")
	ErrMissingType   = errors.New("frontmatter missing required 'type' field")
)

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

func Parse(content []byte) (*Document, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	trimmed := bytes.TrimLeft(normalized, "\ufeff\n\t ")
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("---\n"))
	if end == -1 {
		return nil, ErrNoFrontmatter
	}

	var frontmatter map[string]any
	if err := yaml.Unmarshal(rest[:end], &frontmatter); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	title := String(frontmatter["title"])
	if title == "" {
		return nil, ErrMissingTitle
	}
	kind := strings.ToLower(String(frontmatter["type"]))
	if kind == "" {
		return nil, ErrMissingType
	}

	id := String(frontmatter["id"])
	if id == "" {
		id = Slug(title)
	}

	return &Document{
		Frontmatter: frontmatter,
		Title:       title,
		Kind:        kind,
		ID:          id,
		Body:        strings.TrimSpace(string(rest[end+len("---\n"):])),
	}, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and collapses every run of other characters into a
// single dash: "The Ashen Gate" becomes "the-ashen-gate".
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// String returns value trimmed when it is a string and "" otherwise.
func String(value any) string {
	s, _ := value.(string)
	return strings.TrimSpace(s)
}

// StringList accepts a single string or a list of strings. Blank entries are
// dropped and an all-blank value yields nil.
func StringList(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		return []string{strings.TrimSpace(v)}, nil
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list entries must be strings")
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			items = append(items, strings.TrimSpace(s))
		}
		if len(items) == 0 {
			return nil, nil
		}
		return items, nil
	default:
		return nil, fmt.Errorf("must be string or list of strings")
	}
}

// Maps accepts a single mapping or a list of mappings.
func Maps(value any) ([]map[string]any, error) {
	if value == nil {
		return nil, nil
	}

	var items []any
	switch v := value.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		return nil, fmt.Errorf("must be a list of mappings")
	}

	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("entry %d must be a mapping", i)
		}
		out = append(out, entry)
	}
	return out, nil
}

// Bool reads a YAML boolean, treating a missing value as false.
func Bool(value any) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("must be true or false")
	}
}

// Int reads a YAML integer, treating a missing value as 0.
func Int(value any) (int, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("must be an integer")
	}
}

// Float reads a YAML number. Integers are accepted.
func Float(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("must be a number")
	}
}
