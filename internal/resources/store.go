// Package resources reads the textual resources published under the
// manifest's resources directory.
package resources

// file: internal/resources/store.go

import (
	"path"
	"strings"

	"github.com/dkoosis/manifest-mcp/internal/logging"
	"github.com/dkoosis/manifest-mcp/internal/manifest"
)

// URIPrefix is prepended to a resource name to form its URI.
const URIPrefix = "resource:///"

// MIME types assigned to resources.
const (
	MIMEMarkdown  = "text/markdown"
	MIMEPlainText = "text/plain"
)

// Resource describes one listed resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
}

// Entry is a resource read as part of a directory.
type Entry struct {
	// Name is the resource name relative to the resources directory,
	// slash separated (e.g. "docs/payments/overview.md").
	Name    string
	Content string
}

// Store reads resources from a manifest tree. It holds no cached state;
// every call reads the tree afresh.
type Store struct {
	fs     *manifest.FS
	logger logging.Logger
}

// NewStore creates a Store over m.
func NewStore(m *manifest.FS, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Store{fs: m, logger: logger.WithField("component", "resource_store")}
}

// MIMEType classifies a resource by its name.
func MIMEType(name string) string {
	if strings.HasSuffix(name, ".md") {
		return MIMEMarkdown
	}
	return MIMEPlainText
}

// URI returns the URI under which name is published.
func URI(name string) string {
	return URIPrefix + name
}

// NameFromURI strips the resource URI prefix. URIs without the prefix are
// returned unchanged and treated as bare names.
func NameFromURI(uri string) string {
	return strings.TrimPrefix(uri, URIPrefix)
}

// Read returns the content of the resource name. It reports false when the
// resource is missing, is a directory, or names a path outside the
// resources directory.
func (s *Store) Read(name string) (string, bool) {
	full, ok := manifest.Join(manifest.ResourcesDir, name)
	if !ok || name == "" {
		s.logger.Debug("Rejected non-local resource name.", "name", name)
		return "", false
	}
	data, err := s.fs.ReadFile(full)
	if err != nil {
		if !manifest.IsNotExist(err) {
			s.logger.Warn("Failed to read resource.", "name", name, "error", err)
		}
		return "", false
	}
	return string(data), true
}

// ReadDirectory returns the files directly under the resource subdirectory
// sub, in name order. Nested directories are skipped. A missing directory
// yields an empty result.
func (s *Store) ReadDirectory(sub string) []Entry {
	dir, ok := manifest.Join(manifest.ResourcesDir, sub)
	if !ok {
		return nil
	}
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if !manifest.IsNotExist(err) {
			s.logger.Warn("Failed to list resource directory.", "dir", sub, "error", err)
		}
		return nil
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if s.fs.IsDirEntry(dir, e) {
			continue
		}
		data, err := s.fs.ReadFile(path.Join(dir, e.Name()))
		if err != nil {
			s.logger.Warn("Skipping unreadable resource.", "dir", sub, "file", e.Name(), "error", err)
			continue
		}
		out = append(out, Entry{Name: path.Join(sub, e.Name()), Content: string(data)})
	}
	return out
}

// List returns the files directly under the resources directory. An absent
// directory yields an empty, non-nil slice.
func (s *Store) List() []Resource {
	out := []Resource{}
	entries, err := s.fs.ReadDir(manifest.ResourcesDir)
	if err != nil {
		if !manifest.IsNotExist(err) {
			s.logger.Warn("Failed to list resources.", "error", err)
		}
		return out
	}

	descriptions := s.descriptions()
	for _, e := range entries {
		if s.fs.IsDirEntry(manifest.ResourcesDir, e) {
			continue
		}
		name := e.Name()
		out = append(out, Resource{
			URI:         URI(name),
			Name:        name,
			Description: descriptions.lookup(name),
			MIMEType:    MIMEType(name),
		})
	}
	return out
}

// Description returns the description published for name, or "".
func (s *Store) Description(name string) string {
	return s.descriptions().lookup(name)
}
