// Package manifest provides read-only access to a manifest tree: the prompt
// definitions, resources and descriptions a server instance publishes.
package manifest

// file: internal/manifest/manifest.go

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Top-level layout of a manifest tree.
const (
	PromptsDir       = "prompts"
	ResourcesDir     = "resources"
	DescriptionsFile = "descriptions.yaml"
)

// FS is a rooted, read-only view of a manifest tree. Every name handed to it
// is a slash-separated path relative to the root; names that would escape
// the root are reported as not existing.
type FS struct {
	fsys fs.FS
}

// New wraps fsys. Tests typically pass a fstest.MapFS.
func New(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

// Open returns an FS rooted at the directory dir on disk. A missing dir is
// not an error: every lookup on it reports absence.
func Open(dir string) *FS {
	return New(os.DirFS(dir))
}

// Clean returns the canonical form of name and whether it stays inside the
// root. "." (the root itself) is local.
func Clean(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if strings.ContainsRune(name, '\\') {
		name = strings.ReplaceAll(name, "\\", "/")
	}
	if path.IsAbs(name) || !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", false
	}
	cleaned := path.Clean(name)
	return cleaned, fs.ValidPath(cleaned)
}

// Join joins elem and validates the result with Clean.
func Join(elem ...string) (string, bool) {
	for _, e := range elem {
		if e == "" {
			continue
		}
		if _, ok := Clean(e); !ok {
			return "", false
		}
	}
	return Clean(path.Join(elem...))
}

func notExist(name string) error {
	return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// ReadFile returns the contents of the regular file name.
// Directories and non-local names report fs.ErrNotExist.
func (m *FS) ReadFile(name string) ([]byte, error) {
	clean, ok := Clean(name)
	if !ok {
		return nil, notExist(name)
	}
	info, err := fs.Stat(m.fsys, clean)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, notExist(name)
	}
	data, err := fs.ReadFile(m.fsys, clean)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest file '%s'", clean)
	}
	return data, nil
}

// ReadDir lists the entries of directory name sorted by file name.
func (m *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	clean, ok := Clean(name)
	if !ok {
		return nil, notExist(name)
	}
	entries, err := fs.ReadDir(m.fsys, clean)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// IsDir reports whether name exists and is a directory.
func (m *FS) IsDir(name string) bool {
	clean, ok := Clean(name)
	if !ok {
		return false
	}
	info, err := fs.Stat(m.fsys, clean)
	return err == nil && info.IsDir()
}

// IsDirEntry reports whether entry, found in directory dir, is a directory.
// Symlinks are resolved so a link to a directory counts as one.
func (m *FS) IsDirEntry(dir string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	return m.IsDir(path.Join(dir, entry.Name()))
}

// WalkDir walks the tree rooted at root depth-first in lexical order,
// calling fn for each file or directory. A missing root is an empty walk.
func (m *FS) WalkDir(root string, fn fs.WalkDirFunc) error {
	clean, ok := Clean(root)
	if !ok || !m.IsDir(clean) {
		return nil
	}
	return fs.WalkDir(m.fsys, clean, fn)
}

// IsNotExist reports whether err means a manifest file is absent.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
