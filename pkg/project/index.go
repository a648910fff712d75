package project

import (
	"sort"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/trevor-scheer/gqlscope/pkg/source"
)

// FragmentSite is one fragment definition together with the document that
// declares it. Name collisions keep every site so references can resolve
// to all of them for diagnostic purposes.
type FragmentSite struct {
	Doc *Document
	Def *ast.FragmentDefinition
}

// NameLocation returns the location of the fragment's name token.
func (s FragmentSite) NameLocation() source.Location {
	start, end := identSpan(s.Doc.Text, posStart(s.Def.Position)+len("fragment"), s.Def.Name)
	return s.Doc.Location(start, end)
}

// OperationSite is one named operation definition and its document.
type OperationSite struct {
	Doc *Document
	Def *ast.OperationDefinition
}

// NameLocation returns the location of the operation's name token.
func (s OperationSite) NameLocation() source.Location {
	start, end := identSpan(s.Doc.Text, posStart(s.Def.Position)+len(string(s.Def.Operation)), s.Def.Name)
	return s.Doc.Location(start, end)
}

// DocumentIndex is the project-wide table of documents, definitions and
// occurrences. Reads are concurrent; a file's entries are replaced as one
// atomic unit so readers observe either the pre-update or post-update
// state, never a half-removed file.
type DocumentIndex struct {
	mu         sync.RWMutex
	documents  map[DocumentID]*Document
	byFile     map[string][]DocumentID
	fileDiags  map[string][]Diagnostic
	fragments  map[string][]FragmentSite
	operations map[string][]OperationSite
}

// NewDocumentIndex returns an empty index.
func NewDocumentIndex() *DocumentIndex {
	return &DocumentIndex{
		documents:  make(map[DocumentID]*Document),
		byFile:     make(map[string][]DocumentID),
		fileDiags:  make(map[string][]Diagnostic),
		fragments:  make(map[string][]FragmentSite),
		operations: make(map[string][]OperationSite),
	}
}

// Replace swaps every entry derived from path for the given documents in
// one critical section. fileDiags carries file-level findings that have no
// document to live on (a foreign file that failed to parse). Passing no
// documents and no diagnostics removes the file.
func (ix *DocumentIndex) Replace(path string, docs []*Document, fileDiags []Diagnostic) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(path)
	if len(fileDiags) > 0 {
		ix.fileDiags[path] = fileDiags
	}
	for _, d := range docs {
		ix.documents[d.ID] = d
		ix.byFile[path] = append(ix.byFile[path], d.ID)
		if d.AST == nil {
			continue
		}
		for _, frag := range d.AST.Fragments {
			ix.fragments[frag.Name] = append(ix.fragments[frag.Name], FragmentSite{Doc: d, Def: frag})
		}
		for _, op := range d.AST.Operations {
			if op.Name == "" {
				continue
			}
			ix.operations[op.Name] = append(ix.operations[op.Name], OperationSite{Doc: d, Def: op})
		}
	}
}

// Remove drops every entry derived from path.
func (ix *DocumentIndex) Remove(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(path)
}

func (ix *DocumentIndex) removeLocked(path string) {
	for _, id := range ix.byFile[path] {
		delete(ix.documents, id)
	}
	delete(ix.byFile, path)
	delete(ix.fileDiags, path)
	for name, sites := range ix.fragments {
		kept := sites[:0]
		for _, s := range sites {
			if s.Doc.ID.Path != path {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(ix.fragments, name)
		} else {
			ix.fragments[name] = kept
		}
	}
	for name, sites := range ix.operations {
		kept := sites[:0]
		for _, s := range sites {
			if s.Doc.ID.Path != path {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(ix.operations, name)
		} else {
			ix.operations[name] = kept
		}
	}
}

// DocumentsForFile returns the documents of one file in block order.
func (ix *DocumentIndex) DocumentsForFile(path string) []*Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ids := ix.byFile[path]
	docs := make([]*Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, ix.documents[id])
	}
	return docs
}

// FileDiagnostics returns file-level diagnostics recorded for path.
func (ix *DocumentIndex) FileDiagnostics(path string) []Diagnostic {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]Diagnostic(nil), ix.fileDiags[path]...)
}

// Fragments returns every fragment definition site for a name.
func (ix *DocumentIndex) Fragments(name string) []FragmentSite {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]FragmentSite(nil), ix.fragments[name]...)
}

// Operations returns every named operation definition site for a name.
func (ix *DocumentIndex) Operations(name string) []OperationSite {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]OperationSite(nil), ix.operations[name]...)
}

// FragmentNames returns every fragment name in the index, sorted.
func (ix *DocumentIndex) FragmentNames() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	names := make([]string, 0, len(ix.fragments))
	for name := range ix.fragments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OperationNames returns every named-operation name in the index, sorted.
func (ix *DocumentIndex) OperationNames() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	names := make([]string, 0, len(ix.operations))
	for name := range ix.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Documents returns a stable snapshot of every document, ordered by file
// then block, safe to iterate while writers proceed.
func (ix *DocumentIndex) Documents() []*Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	paths := make([]string, 0, len(ix.byFile))
	for path := range ix.byFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	var docs []*Document
	for _, path := range paths {
		for _, id := range ix.byFile[path] {
			docs = append(docs, ix.documents[id])
		}
	}
	return docs
}

// Files returns every indexed file path, sorted, including files that only
// carry file-level diagnostics.
func (ix *DocumentIndex) Files() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	seen := make(map[string]struct{}, len(ix.byFile))
	for path := range ix.byFile {
		seen[path] = struct{}{}
	}
	for path := range ix.fileDiags {
		seen[path] = struct{}{}
	}
	paths := make([]string, 0, len(seen))
	for path := range seen {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
