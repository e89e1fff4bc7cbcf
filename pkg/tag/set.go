package tag

// Set is an insertion-ordered set of tags keyed on name.
// The zero value is an empty set ready to use.
type Set struct {
	tags  []Tag
	index map[string]int
}

// NewSet returns a set holding tags, first occurrence wins.
func NewSet(tags ...Tag) Set {
	var s Set
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add inserts t and reports whether it was not already present.
func (s *Set) Add(t Tag) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[t.name]; ok {
		return false
	}
	s.index[t.name] = len(s.tags)
	s.tags = append(s.tags, t)
	return true
}

// Union returns a new set with the members of s followed by the new
// members of other.
func (s Set) Union(other Set) Set {
	out := NewSet(s.tags...)
	for _, t := range other.tags {
		out.Add(t)
	}
	return out
}

// Contains reports whether a tag with the given name is present.
func (s Set) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Len returns the number of tags.
func (s Set) Len() int {
	return len(s.tags)
}

// Tags returns the members in insertion order.
func (s Set) Tags() []Tag {
	out := make([]Tag, len(s.tags))
	copy(out, s.tags)
	return out
}

// Names returns the canonical names in insertion order.
func (s Set) Names() []string {
	names := make([]string, len(s.tags))
	for i, t := range s.tags {
		names[i] = t.name
	}
	return names
}
