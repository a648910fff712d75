package source

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrForeignSyntax is returned by Extract alongside whatever blocks were
// recoverable when the foreign file contains syntax errors. Callers turn it
// into a file-level diagnostic; it never aborts processing of other files.
var ErrForeignSyntax = errors.New("foreign source contains syntax errors")

// DefaultTags are the template tag identifiers recognized by extraction
// when the configuration does not override them.
var DefaultTags = []string{"gql", "graphql"}

// Block is one GraphQL-bearing region of a source file: the raw template
// text, its byte offset in the foreign file, and the position mapper bound
// to it. Interpolated `${...}` spans inside the template are preserved
// verbatim so offsets stay contiguous; the GraphQL parser sees them as
// ordinary (likely invalid) text.
type Block struct {
	// Text is the raw GraphQL between the backticks.
	Text string
	// Index is the block's ordinal within its file, in source order.
	Index int
	// Offset is the byte offset of Text within the foreign file.
	Offset int
	// Tag is the template tag that introduced the block ("" for a whole
	// .graphql file).
	Tag string

	mapper *Mapper
}

// Mapper returns the block's position mapper.
func (b *Block) Mapper() *Mapper { return b.mapper }

// Extractor scans source files for GraphQL. It is a pure function of its
// inputs and safe for concurrent use.
type Extractor struct {
	tags map[string]struct{}
}

// NewExtractor builds an extractor recognizing the given tag identifiers,
// falling back to DefaultTags when none are given.
func NewExtractor(tags ...string) *Extractor {
	if len(tags) == 0 {
		tags = DefaultTags
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return &Extractor{tags: set}
}

// Extract returns the GraphQL blocks of src in source order. A .graphql
// file is a single block covering the whole file. For TypeScript and
// JavaScript the foreign syntax tree is walked for tagged template literals
// whose tag is a bare identifier in the recognized set; non-tagged templates
// and computed tag expressions are ignored. When the foreign tree contains
// syntax errors the recoverable blocks are still returned together with
// ErrForeignSyntax.
func (e *Extractor) Extract(lang Language, src []byte) ([]*Block, error) {
	if lang == LangGraphQL {
		text := string(src)
		return []*Block{{
			Text:   text,
			mapper: IdentityMapper(text),
		}}, nil
	}

	grammar, ok := grammarFor(lang)
	if !ok {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(grammar)
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}

	root := tree.RootNode()
	var blocks []*Block
	e.walk(root, src, &blocks)

	if root.HasError() {
		return blocks, ErrForeignSyntax
	}
	return blocks, nil
}

// walk visits every named node looking for call_expression nodes of the
// shape `tag`template``. The tree-sitter JS/TS grammars parse tagged
// templates as a call whose arguments node is the template_string itself.
func (e *Extractor) walk(node *sitter.Node, src []byte, blocks *[]*Block) {
	if node.Type() == "call_expression" {
		if b := e.blockFromCall(node, src, len(*blocks)); b != nil {
			*blocks = append(*blocks, b)
		}
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		e.walk(node.NamedChild(i), src, blocks)
	}
}

func (e *Extractor) blockFromCall(node *sitter.Node, src []byte, index int) *Block {
	fn := node.ChildByFieldName("function")
	args := node.ChildByFieldName("arguments")
	if fn == nil || args == nil || fn.Type() != "identifier" || args.Type() != "template_string" {
		return nil
	}
	if _, ok := e.tags[fn.Content(src)]; !ok {
		return nil
	}

	// Template content sits between the backticks.
	start := int(args.StartByte()) + 1
	end := int(args.EndByte()) - 1
	if end < start || end > len(src) {
		return nil
	}

	point := args.StartPoint()
	base := Position{Line: int(point.Row) + 1, Column: int(point.Column) + 1}
	text := string(src[start:end])
	return &Block{
		Text:   text,
		Index:  index,
		Offset: start,
		Tag:    fn.Content(src),
		mapper: NewMapper(base, text),
	}
}
