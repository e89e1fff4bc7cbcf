package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAdd(t *testing.T) {
	var s Set

	assert.True(t, s.Add(MustNew("python")))
	assert.True(t, s.Add(MustNew("go")))
	assert.False(t, s.Add(MustNew("python")))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"python", "go"}, s.Names())
	assert.True(t, s.Contains("go"))
	assert.False(t, s.Contains("rust"))
}

func TestSetEqualityIgnoresDisplay(t *testing.T) {
	a, _ := NewWithDisplay("ml", "Machine Learning")
	b := MustNew("ml")

	s := NewSet(a, b)
	assert.Equal(t, 1, s.Len())
	// First occurrence wins.
	assert.Equal(t, "Machine Learning", s.Tags()[0].Display())
}

func TestSetUnion(t *testing.T) {
	left := NewSet(MustNew("urgent"), MustNew("bug"))
	right := NewSet(MustNew("bug"), MustNew("reviewed"))

	u := left.Union(right)
	assert.Equal(t, []string{"urgent", "bug", "reviewed"}, u.Names())

	// Operands are unchanged.
	assert.Equal(t, []string{"urgent", "bug"}, left.Names())
	assert.Equal(t, []string{"bug", "reviewed"}, right.Names())
}

func TestSetZeroValue(t *testing.T) {
	var s Set
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("x"))
	assert.Empty(t, s.Names())
	assert.Empty(t, s.Tags())

	u := s.Union(NewSet(MustNew("x")))
	assert.Equal(t, []string{"x"}, u.Names())
}

func TestSetTagsReturnsCopy(t *testing.T) {
	s := NewSet(MustNew("a"), MustNew("b"))
	tags := s.Tags()
	tags[0] = MustNew("z")
	assert.Equal(t, []string{"a", "b"}, s.Names())
}
