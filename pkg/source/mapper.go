package source

// Mapper translates offsets within one extracted GraphQL block into
// positions in the foreign file it came from, and back. It is an immutable
// value owned by its block: a base position (the foreign location of the
// block's first byte) plus a line table over the extracted text. It stays
// valid even while the owning index is being rebuilt for a later edit.
type Mapper struct {
	base  Position
	lines *LineIndex
}

// NewMapper builds a mapper for extracted text whose first byte sits at
// base in the foreign file.
func NewMapper(base Position, text string) *Mapper {
	return &Mapper{base: base, lines: NewLineIndex(text)}
}

// IdentityMapper maps a standalone GraphQL file onto itself.
func IdentityMapper(text string) *Mapper {
	return NewMapper(Position{Line: 1, Column: 0}, text)
}

// Base returns the foreign position of the block's first byte.
func (m *Mapper) Base() Position { return m.base }

// Len returns the block length in bytes.
func (m *Mapper) Len() int { return m.lines.Len() }

// ToForeign maps a byte offset within the block to a foreign-file position.
// Only the block's first line carries the base column offset; later lines
// start at their own column zero.
func (m *Mapper) ToForeign(offset int) Position {
	line, col := m.lines.PositionFor(offset)
	return m.combine(line, col)
}

// Translate maps a 1-based line / 1-based column pair, as produced by the
// GraphQL parser and validator for the extracted text, to a foreign-file
// position.
func (m *Mapper) Translate(line, column int) Position {
	return m.combine(line-1, column-1)
}

// LocalOffset returns the byte offset within the block for a 1-based line /
// 1-based column pair in the block's own text.
func (m *Mapper) LocalOffset(line, column int) (int, bool) {
	return m.lines.OffsetFor(line-1, column-1)
}

// FromForeign maps a foreign-file position back to a byte offset within the
// block. Returns false when the position falls outside the block.
func (m *Mapper) FromForeign(p Position) (int, bool) {
	line := p.Line - m.base.Line
	col := p.Column
	if line == 0 {
		col = p.Column - m.base.Column
	}
	if line < 0 || col < 0 {
		return 0, false
	}
	return m.lines.OffsetFor(line, col)
}

func (m *Mapper) combine(line, col int) Position {
	if line == 0 {
		return Position{Line: m.base.Line, Column: m.base.Column + col}
	}
	return Position{Line: m.base.Line + line, Column: col}
}
