package source

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Language is the detected language of a source file.
type Language string

const (
	LangGraphQL    Language = "graphql"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
)

var extToLanguage = map[string]Language{
	".graphql":  LangGraphQL,
	".graphqls": LangGraphQL,
	".gql":      LangGraphQL,
	".ts":       LangTypeScript,
	".mts":      LangTypeScript,
	".tsx":      LangTSX,
	".js":       LangJavaScript,
	".mjs":      LangJavaScript,
	".cjs":      LangJavaScript,
	".jsx":      LangJavaScript,
}

// Lazily initialized on first use; the grammars are cgo-backed and cheap to
// share across parsers.
var (
	grammars     map[Language]*sitter.Language
	grammarsOnce sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		grammars = map[Language]*sitter.Language{
			LangTypeScript: ts.GetLanguage(),
			LangTSX:        tsx.GetLanguage(),
			LangJavaScript: javascript.GetLanguage(),
		}
	})
}

// LanguageForPath returns the language for a file path based on its
// extension. Returns ("", false) for unrecognized extensions.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extToLanguage[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// grammarFor returns the tree-sitter grammar for a foreign language.
func grammarFor(lang Language) (*sitter.Language, bool) {
	initGrammars()
	g, ok := grammars[lang]
	return g, ok
}
