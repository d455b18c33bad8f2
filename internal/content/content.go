// Package content loads testimonial lists from YAML.
//
// A content file has a single top-level key:
//
//	testimonials:
//	  - id: "1"
//	    name: רחל כהן
//	    service: צילומי חתונה
//	    quote: ...
//	    image: /images/testimonial-1.jpg
//
// Entries without an id are numbered by position. Names and quotes are
// required; ids must be unique. An empty list is valid.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/vitrine/internal/carousel"
	"github.com/conneroisu/vitrine/internal/errors"
)

//go:embed testimonials.yml
var defaultTestimonials []byte

// Entry is one testimonial as written in a content file.
type Entry struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Service string `yaml:"service"`
	Quote   string `yaml:"quote"`
	Image   string `yaml:"image"`
}

// Testimonial converts e into a carousel item.
func (e Entry) Testimonial() carousel.Testimonial {
	return carousel.Testimonial{
		ID:           e.ID,
		DisplayName:  e.Name,
		ServiceLabel: e.Service,
		QuoteText:    e.Quote,
		ImageRef:     e.Image,
	}
}

// Default returns the embedded testimonials.
func Default() []carousel.Testimonial {
	items, err := Parse(defaultTestimonials, "embedded:testimonials.yml")
	if err != nil {
		panic(fmt.Sprintf("embedded testimonials are invalid: %v", err))
	}
	return items
}

// DefaultYAML returns the embedded content file, for `vitrine init`.
func DefaultYAML() []byte {
	return bytes.Clone(defaultTestimonials)
}

// Load reads testimonials from path. An empty path returns Default().
func Load(path string) ([]carousel.Testimonial, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.ErrCodeInvalidPath
		if os.IsNotExist(err) {
			code = errors.ErrCodeFileNotFound
		}
		return nil, errors.NewIOError(code, "cannot read content file", err).
			WithLocation(path, 0).
			WithComponent("content")
	}

	return Parse(data, path)
}

// Parse decodes and validates a content document. source names the document
// in error messages.
func Parse(data []byte, source string) ([]carousel.Testimonial, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, invalid(source, 0, "malformed yaml", err)
	}

	// An empty document is an empty list.
	if len(root.Content) == 0 {
		return []carousel.Testimonial{}, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, invalid(source, doc.Line, "top level must be a mapping with a testimonials key", nil)
	}

	var list *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		if key.Value != "testimonials" {
			return nil, invalid(source, key.Line, fmt.Sprintf("unknown key %q", key.Value), nil)
		}
		list = value
	}
	if list == nil || (list.Kind == yaml.ScalarNode && list.Tag == "!!null") {
		return []carousel.Testimonial{}, nil
	}
	if list.Kind != yaml.SequenceNode {
		return nil, invalid(source, list.Line, "testimonials must be a list", nil)
	}

	items := make([]carousel.Testimonial, 0, len(list.Content))
	seen := make(map[string]int, len(list.Content))
	for i, node := range list.Content {
		var entry Entry
		if err := decodeEntry(node, &entry); err != nil {
			return nil, invalid(source, node.Line, fmt.Sprintf("entry %d", i+1), err)
		}
		entry.ID = strings.TrimSpace(entry.ID)
		if entry.ID == "" {
			entry.ID = strconv.Itoa(i + 1)
		}
		if strings.TrimSpace(entry.Name) == "" {
			return nil, invalid(source, node.Line, fmt.Sprintf("entry %d: name is required", i+1), nil)
		}
		if strings.TrimSpace(entry.Quote) == "" {
			return nil, invalid(source, node.Line, fmt.Sprintf("entry %d: quote is required", i+1), nil)
		}
		if first, dup := seen[entry.ID]; dup {
			return nil, invalid(source, node.Line,
				fmt.Sprintf("entry %d: id %q already used by entry %d", i+1, entry.ID, first), nil)
		}
		seen[entry.ID] = i + 1
		items = append(items, entry.Testimonial())
	}

	return items, nil
}

// decodeEntry decodes node strictly, rejecting unknown fields.
func decodeEntry(node *yaml.Node, entry *Entry) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("must be a mapping")
	}
	known := map[string]bool{"id": true, "name": true, "service": true, "quote": true, "image": true}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if key := node.Content[i].Value; !known[key] {
			return fmt.Errorf("unknown field %q", key)
		}
	}
	return node.Decode(entry)
}

func invalid(source string, line int, msg string, cause error) error {
	err := errors.NewValidationError(errors.ErrCodeContentInvalid, msg).
		WithLocation(source, line).
		WithComponent("content")
	err.Cause = cause
	return err
}
