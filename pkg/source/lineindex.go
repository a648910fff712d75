package source

import "sort"

// LineIndex is a sorted table of line-start byte offsets over one text.
// It answers offset→(line, column) and the inverse in O(log n).
// Lines and columns here are both 0-based; Mapper applies the 1-based
// line convention at its boundary.
type LineIndex struct {
	starts []int
	length int
}

// NewLineIndex builds the index for text. The text is not retained.
func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, length: len(text)}
}

// Len returns the length of the indexed text in bytes.
func (ix *LineIndex) Len() int { return ix.length }

// LineCount returns the number of lines in the indexed text.
func (ix *LineIndex) LineCount() int { return len(ix.starts) }

// PositionFor returns the 0-based line and column for a byte offset.
// An offset past the end of the text is a caller bug; it clamps to the
// final position rather than wrapping.
func (ix *LineIndex) PositionFor(offset int) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > ix.length {
		offset = ix.length
	}
	line = sort.Search(len(ix.starts), func(i int) bool {
		return ix.starts[i] > offset
	}) - 1
	return line, offset - ix.starts[line]
}

// OffsetFor returns the byte offset for a 0-based line and column.
// Returns false when the position does not exist in the text; a column
// sitting exactly at the end of a line (or of the text) is allowed.
func (ix *LineIndex) OffsetFor(line, column int) (int, bool) {
	if line < 0 || line >= len(ix.starts) || column < 0 {
		return 0, false
	}
	offset := ix.starts[line] + column
	lineEnd := ix.length
	if line+1 < len(ix.starts) {
		lineEnd = ix.starts[line+1] - 1
	}
	if offset > lineEnd {
		return 0, false
	}
	return offset, true
}
