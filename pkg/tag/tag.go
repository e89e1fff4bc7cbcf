// Package tag implements normalized session labels.
//
// A tag name is a non-empty string of digits, lowercase ASCII letters and
// hyphens that neither starts nor ends with a hyphen. Two tags with the
// same name are the same tag regardless of display form.
package tag

import (
	"strings"

	"github.com/harun/sesh/pkg/sesherr"
)

// Tag is an immutable, validated label.
type Tag struct {
	name    string
	display string
}

// New creates a tag with a derived display name.
func New(name string) (Tag, error) {
	return NewWithDisplay(name, "")
}

// NewWithDisplay creates a tag with an explicit display name. An empty
// display falls back to the derived one.
func NewWithDisplay(name, display string) (Tag, error) {
	if !Validate(name) {
		return Tag{}, sesherr.InvalidTag(name)
	}
	if display == "" {
		display = DisplayName(name)
	}
	return Tag{name: name, display: display}, nil
}

// MustNew is like New but panics on an invalid name. Intended for tests
// and constants.
func MustNew(name string) Tag {
	t, err := New(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Validate reports whether name is a valid tag name.
func Validate(name string) bool {
	if name == "" || name[0] == '-' || name[len(name)-1] == '-' {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c == '-':
		default:
			return false
		}
	}
	return true
}

// DisplayName derives the human-facing form of a tag name.
func DisplayName(name string) string {
	return strings.Join(strings.Split(name, "-"), " ")
}

// Name returns the canonical key.
func (t Tag) Name() string {
	return t.name
}

// Display returns the human-facing form.
func (t Tag) Display() string {
	return t.display
}

// String returns the canonical name.
func (t Tag) String() string {
	return t.name
}

// ParseList parses a comma-separated tag option such as "python, Web-Dev".
// Entries are trimmed and lower-cased, empty entries are skipped, and the
// first invalid entry fails the whole list.
func ParseList(s string) ([]Tag, error) {
	var tags []Tag
	for _, part := range strings.Split(strings.ToLower(s), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t, err := New(part)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}
