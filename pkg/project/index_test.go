package project

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexWith(t *testing.T, files map[string]string) *DocumentIndex {
	t.Helper()
	schema := buildTestSchema(t)
	ix := NewDocumentIndex()
	for path, text := range files {
		d := BuildDocument(DocumentID{Path: path}, text, nil, schema)
		ix.Replace(path, []*Document{d}, nil)
	}
	return ix
}

func TestDocumentIndex_ReplaceAndLookup(t *testing.T) {
	ix := indexWith(t, map[string]string{
		"a.graphql": "fragment Bits on User { name }\n",
		"b.graphql": "query GetUser { user(id: \"1\") { ...Bits } }\n",
	})

	assert.Len(t, ix.Fragments("Bits"), 1)
	assert.Len(t, ix.Operations("GetUser"), 1)
	assert.Equal(t, []string{"Bits"}, ix.FragmentNames())
	assert.Equal(t, []string{"GetUser"}, ix.OperationNames())
	assert.Len(t, ix.DocumentsForFile("a.graphql"), 1)
	assert.Equal(t, []string{"a.graphql", "b.graphql"}, ix.Files())
}

func TestDocumentIndex_ReplaceSwapsAtomically(t *testing.T) {
	ix := indexWith(t, map[string]string{
		"a.graphql": "fragment Bits on User { name }\n",
	})

	// Replacing the file with a renamed fragment drops the old name.
	schema := buildTestSchema(t)
	d := BuildDocument(DocumentID{Path: "a.graphql"}, "fragment NewBits on User { name }\n", nil, schema)
	ix.Replace("a.graphql", []*Document{d}, nil)

	assert.Empty(t, ix.Fragments("Bits"))
	assert.Len(t, ix.Fragments("NewBits"), 1)
}

func TestDocumentIndex_Remove(t *testing.T) {
	ix := indexWith(t, map[string]string{
		"a.graphql": "fragment Bits on User { name }\n",
		"b.graphql": "fragment Bits on User { contact { address } }\n",
	})
	require.Len(t, ix.Fragments("Bits"), 2)

	ix.Remove("a.graphql")

	sites := ix.Fragments("Bits")
	require.Len(t, sites, 1)
	assert.Equal(t, "b.graphql", sites[0].Doc.ID.Path)
	assert.Empty(t, ix.DocumentsForFile("a.graphql"))

	ix.Remove("b.graphql")
	assert.Empty(t, ix.Fragments("Bits"))
	assert.Empty(t, ix.Files())
}

func TestDocumentIndex_AnonymousOperationsNotIndexed(t *testing.T) {
	ix := indexWith(t, map[string]string{
		"a.graphql": "{ user(id: \"1\") { id } }\n",
	})
	assert.Empty(t, ix.OperationNames())
}

func TestDocumentIndex_FileDiagnostics(t *testing.T) {
	ix := NewDocumentIndex()
	diag := Diagnostic{Severity: SeverityWarning, Message: "bad syntax"}
	ix.Replace("broken.ts", nil, []Diagnostic{diag})

	got := ix.FileDiagnostics("broken.ts")
	require.Len(t, got, 1)
	assert.Equal(t, "bad syntax", got[0].Message)
	assert.Equal(t, []string{"broken.ts"}, ix.Files())

	ix.Replace("broken.ts", nil, nil)
	assert.Empty(t, ix.FileDiagnostics("broken.ts"))
	assert.Empty(t, ix.Files())
}

func TestDocumentIndex_MultipleBlocksPerFile(t *testing.T) {
	schema := buildTestSchema(t)
	ix := NewDocumentIndex()
	docs := []*Document{
		BuildDocument(DocumentID{Path: "app.ts", Block: 0}, "query A { user(id: \"1\") { id } }", nil, schema),
		BuildDocument(DocumentID{Path: "app.ts", Block: 1}, "query B { users { id } }", nil, schema),
	}
	ix.Replace("app.ts", docs, nil)

	got := ix.DocumentsForFile("app.ts")
	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].ID.Block)
	assert.Equal(t, 1, got[1].ID.Block)
	assert.Len(t, ix.Operations("A"), 1)
	assert.Len(t, ix.Operations("B"), 1)
}

func TestDocumentIndex_ConcurrentReadsAndWrites(t *testing.T) {
	schema := buildTestSchema(t)
	ix := NewDocumentIndex()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			path := fmt.Sprintf("f%d.graphql", n%4)
			for j := 0; j < 50; j++ {
				d := BuildDocument(DocumentID{Path: path}, "query { user(id: \"1\") { name } }", nil, schema)
				ix.Replace(path, []*Document{d}, nil)
				_ = ix.Documents()
				_ = ix.FragmentNames()
				_ = ix.DocumentsForFile(path)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, ix.Files(), 4)
}

func TestFragmentSite_NameLocation(t *testing.T) {
	ix := indexWith(t, map[string]string{
		"a.graphql": "fragment Bits on User {\n  name\n}\n",
	})
	sites := ix.Fragments("Bits")
	require.Len(t, sites, 1)

	loc := sites[0].NameLocation()
	assert.Equal(t, "a.graphql", loc.File)
	assert.Equal(t, 1, loc.Start.Line)
	assert.Equal(t, 9, loc.Start.Column)
	assert.Equal(t, 13, loc.End.Column)
}

func TestOperationSite_NameLocation(t *testing.T) {
	ix := indexWith(t, map[string]string{
		"a.graphql": "mutation DoThing {\n  user(id: \"1\") { id }\n}\n",
	})
	sites := ix.Operations("DoThing")
	require.Len(t, sites, 1)

	loc := sites[0].NameLocation()
	assert.Equal(t, 1, loc.Start.Line)
	assert.Equal(t, 9, loc.Start.Column)
}
