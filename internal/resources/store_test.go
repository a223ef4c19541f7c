// file: internal/resources/store_test.go
package resources

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/manifest-mcp/internal/manifest"
)

func newTestStore(files fstest.MapFS) *Store {
	return NewStore(manifest.New(files), nil)
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, MIMEMarkdown, MIMEType("guide.md"))
	assert.Equal(t, MIMEPlainText, MIMEType("guide.txt"))
	assert.Equal(t, MIMEPlainText, MIMEType("guide.markdown"))
	assert.Equal(t, MIMEPlainText, MIMEType("md"))
}

func TestURIRoundTrip(t *testing.T) {
	assert.Equal(t, "resource:///notes.md", URI("notes.md"))
	assert.Equal(t, "notes.md", NameFromURI(URI("notes.md")))
	assert.Equal(t, "bare.md", NameFromURI("bare.md"))
}

func TestStore_Read(t *testing.T) {
	s := newTestStore(fstest.MapFS{
		"resources/a.md":      {Data: []byte("alpha")},
		"resources/empty.txt": {Data: []byte("")},
		"resources/dir/b.md":  {Data: []byte("beta")},
		"secret.txt":          {Data: []byte("top secret")},
	})

	text, ok := s.Read("a.md")
	require.True(t, ok)
	assert.Equal(t, "alpha", text)

	text, ok = s.Read("dir/b.md")
	require.True(t, ok, "Nested names resolve relative to the resources directory.")
	assert.Equal(t, "beta", text)

	text, ok = s.Read("empty.txt")
	assert.True(t, ok, "An empty file still exists.")
	assert.Empty(t, text)

	for _, name := range []string{"missing.md", "dir", "", "../secret.txt", "/secret.txt"} {
		_, ok := s.Read(name)
		assert.False(t, ok, "Read(%q) should be absent.", name)
	}
}

func TestStore_ReadDirectory(t *testing.T) {
	s := newTestStore(fstest.MapFS{
		"resources/docs/team/2.md":        {Data: []byte("two")},
		"resources/docs/team/1.md":        {Data: []byte("one")},
		"resources/docs/team/nested/x.md": {Data: []byte("skip")},
	})

	got := s.ReadDirectory("docs/team")
	assert.Equal(t, []Entry{
		{Name: "docs/team/1.md", Content: "one"},
		{Name: "docs/team/2.md", Content: "two"},
	}, got, "Files come back in name order without descending into subdirectories.")

	assert.Empty(t, s.ReadDirectory("docs/other"))
	assert.Empty(t, s.ReadDirectory("../resources"))
}

func TestStore_List(t *testing.T) {
	s := newTestStore(fstest.MapFS{
		"resources/company-overall-information.md": {Data: []byte("x")},
		"resources/notes.txt":                      {Data: []byte("y")},
		"resources/company/about.md":               {Data: []byte("z")},
		"descriptions.yaml": {Data: []byte("resources:\n  notes.txt: Release notes\n")},
	})

	got := s.List()
	assert.Equal(t, []Resource{
		{
			URI:         "resource:///company-overall-information.md",
			Name:        "company-overall-information.md",
			Description: "Company background and history",
			MIMEType:    MIMEMarkdown,
		},
		{
			URI:         "resource:///notes.txt",
			Name:        "notes.txt",
			Description: "Release notes",
			MIMEType:    MIMEPlainText,
		},
	}, got)
}

func TestStore_List_EmptyOrAbsent(t *testing.T) {
	absent := newTestStore(fstest.MapFS{})
	got := absent.List()
	require.NotNil(t, got, "An absent root lists as an empty slice, not nil.")
	assert.Empty(t, got)

	empty := newTestStore(fstest.MapFS{"resources/only-dir/a.md": {Data: []byte("a")}})
	assert.Empty(t, empty.List())
}

func TestStore_Description(t *testing.T) {
	s := newTestStore(fstest.MapFS{
		"descriptions.yaml": {Data: []byte("resources:\n  name-instructions.md: Custom\n")},
	})
	assert.Equal(t, "Custom", s.Description("name-instructions.md"), "The manifest overrides defaults.")
	assert.Equal(t, "Engineering component and severity mapping", s.Description("engineering-handbook.md"))
	assert.Equal(t, "", s.Description("unknown.md"))

	broken := newTestStore(fstest.MapFS{"descriptions.yaml": {Data: []byte("resources: [unclosed")}})
	assert.Equal(t, "System-level instructions for security and output", broken.Description("system-instruction.md"),
		"A malformed descriptions file falls back to defaults.")
}
