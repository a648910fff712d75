package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityMapper_FirstLine(t *testing.T) {
	m := IdentityMapper("query { user }")

	pos := m.ToForeign(0)
	assert.Equal(t, Position{Line: 1, Column: 0}, pos)

	pos = m.ToForeign(8)
	assert.Equal(t, Position{Line: 1, Column: 8}, pos)
}

func TestIdentityMapper_MultiLine(t *testing.T) {
	m := IdentityMapper("query {\n  user\n}")

	// The 'u' of user sits on line 2, column 2.
	pos := m.ToForeign(10)
	assert.Equal(t, Position{Line: 2, Column: 2}, pos)
}

func TestMapper_EmbeddedFirstLine(t *testing.T) {
	// Template opens at line 5, column 18 of a TypeScript file; GraphQL
	// starts right after the backtick.
	m := NewMapper(Position{Line: 5, Column: 18}, "query { user }")

	// First line carries the base column offset.
	pos := m.ToForeign(8)
	assert.Equal(t, Position{Line: 5, Column: 26}, pos)
}

func TestMapper_EmbeddedLaterLines(t *testing.T) {
	m := NewMapper(Position{Line: 5, Column: 18}, "\n  query {\n    user\n  }")

	// Later lines start at their own column zero in the foreign file.
	// Offset 3 is the 'q' of query: block line 1, column 2.
	pos := m.ToForeign(3)
	assert.Equal(t, Position{Line: 6, Column: 2}, pos)

	// The 'u' of user: block line 2, column 4.
	pos = m.ToForeign(15)
	assert.Equal(t, Position{Line: 7, Column: 4}, pos)
}

func TestMapper_Translate_ParserCoordinates(t *testing.T) {
	// gqlparser reports 1-based line and column within the block text.
	m := NewMapper(Position{Line: 10, Column: 4}, "query {\n  bad\n}")

	// Parser line 2, column 3 is the 'b' of bad.
	pos := m.Translate(2, 3)
	assert.Equal(t, Position{Line: 11, Column: 2}, pos)

	// Parser line 1 carries the base column.
	pos = m.Translate(1, 1)
	assert.Equal(t, Position{Line: 10, Column: 4}, pos)
}

func TestMapper_FromForeign_RoundTrip(t *testing.T) {
	text := "\nquery {\n  user {\n    id\n  }\n}"
	m := NewMapper(Position{Line: 3, Column: 12}, text)

	for off := 0; off < len(text); off++ {
		pos := m.ToForeign(off)
		back, ok := m.FromForeign(pos)
		require.True(t, ok, "offset %d", off)
		assert.Equal(t, off, back, "offset %d", off)
	}
}

func TestMapper_FromForeign_OutsideBlock(t *testing.T) {
	m := NewMapper(Position{Line: 5, Column: 10}, "query")

	// Before the block on the same line.
	_, ok := m.FromForeign(Position{Line: 5, Column: 3})
	assert.False(t, ok)

	// Earlier line entirely.
	_, ok = m.FromForeign(Position{Line: 2, Column: 0})
	assert.False(t, ok)

	// Past the end of the block text.
	_, ok = m.FromForeign(Position{Line: 5, Column: 40})
	assert.False(t, ok)
}

func TestMapper_LocalOffset(t *testing.T) {
	m := NewMapper(Position{Line: 8, Column: 2}, "query {\n  user\n}")

	off, ok := m.LocalOffset(2, 3)
	require.True(t, ok)
	assert.Equal(t, 10, off)

	_, ok = m.LocalOffset(99, 1)
	assert.False(t, ok)
}

func TestMapper_Base(t *testing.T) {
	m := NewMapper(Position{Line: 7, Column: 3}, "x")
	assert.Equal(t, Position{Line: 7, Column: 3}, m.Base())
	assert.Equal(t, 1, m.Len())
}
