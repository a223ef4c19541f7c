// file: internal/manifest/manifest_test.go
package manifest

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		local bool
	}{
		{"a.md", "a.md", true},
		{"docs/team/x.md", "docs/team/x.md", true},
		{"docs/../a.md", "a.md", true},
		{"./a.md", "a.md", true},
		{".", ".", true},
		{"", "", false},
		{"../secret", "", false},
		{"docs/../../secret", "", false},
		{"/etc/passwd", "", false},
		{`..\secret`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Clean(tt.in)
			assert.Equal(t, tt.local, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoin(t *testing.T) {
	got, ok := Join(ResourcesDir, "docs", "team")
	require.True(t, ok)
	assert.Equal(t, "resources/docs/team", got)

	_, ok = Join(ResourcesDir, "../prompts")
	assert.False(t, ok, "A relative element must not climb out of its parent.")

	got, ok = Join(PromptsDir, "")
	require.True(t, ok)
	assert.Equal(t, "prompts", got)
}

func TestFS_ReadFileAndDir(t *testing.T) {
	m := New(fstest.MapFS{
		"resources/b.md":       {Data: []byte("B")},
		"resources/a.txt":      {Data: []byte("A")},
		"resources/sub/c.md":   {Data: []byte("C")},
		"prompts/x/hello.json": {Data: []byte(`{}`)},
	})

	data, err := m.ReadFile("resources/b.md")
	require.NoError(t, err)
	assert.Equal(t, "B", string(data))

	_, err = m.ReadFile("resources/sub")
	assert.True(t, IsNotExist(err), "Directories read as absent files.")

	_, err = m.ReadFile("resources/../../etc/passwd")
	assert.True(t, IsNotExist(err), "Escaping names read as absent.")

	_, err = m.ReadFile("resources/missing.md")
	assert.True(t, IsNotExist(err))

	entries, err := m.ReadDir("resources")
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"a.txt", "b.md", "sub"}, names, "Entries are sorted by name.")

	assert.True(t, m.IsDir("prompts/x"))
	assert.False(t, m.IsDir("prompts/x/hello.json"))
	assert.False(t, m.IsDir("nowhere"))
}

func TestOpen_MissingDirectory(t *testing.T) {
	m := Open(t.TempDir() + "/does-not-exist")
	_, err := m.ReadDir(ResourcesDir)
	assert.True(t, IsNotExist(err), "A missing root behaves like an empty tree.")
}
