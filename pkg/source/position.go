// Package source provides source-text coordinates for GraphQL documents,
// including the mapping between a foreign file (TypeScript/JavaScript) and
// the GraphQL blocks extracted from it.
package source

import (
	"fmt"
	"strconv"
)

// Position is a point in a source file. Line is 1-based, Column is 0-based,
// matching what editor protocols expect without further translation.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Before reports whether p comes before o in the file.
func (p Position) Before(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Location is a span within one file. Start <= End.
type Location struct {
	File  string   `json:"file"`
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Contains reports whether p falls within the location, end-inclusive so a
// cursor sitting just past the last character of an identifier still hits it.
func (l Location) Contains(p Position) bool {
	if p.Before(l.Start) {
		return false
	}
	return p.Before(l.End) || p == l.End
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Start.Line, l.Start.Column)
}
