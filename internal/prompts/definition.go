// Package prompts loads prompt definitions from a manifest tree and assembles
// the messages a prompt expands to.
package prompts

// file: internal/prompts/definition.go

import (
	"path"
	"strings"
)

// Argument describes one argument a prompt accepts.
type Argument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// AttachmentKind selects how an attachment is read.
type AttachmentKind string

// Attachment kinds.
const (
	// AttachDirectory attaches every file directly under a resource subdirectory.
	AttachDirectory AttachmentKind = "directory"
	// AttachResource attaches a single named resource.
	AttachResource AttachmentKind = "resource"
)

// Attachment declares resources to attach ahead of a prompt's template.
type Attachment struct {
	Kind AttachmentKind `json:"kind" mapstructure:"kind"`
	Path string         `json:"path,omitempty" mapstructure:"path"`
	Name string         `json:"name,omitempty" mapstructure:"name"`
}

// Definition is the content of one prompt file.
type Definition struct {
	ID           string       `json:"id"`
	Description  string       `json:"description"`
	Arguments    []Argument   `json:"arguments"`
	Args         []Argument   `json:"args"`
	Template     string       `json:"template"`
	Instructions string       `json:"instructions"`
	Resources    []string     `json:"resources"`
	Attachments  []Attachment `json:"attachments"`
}

// Prompt is a definition together with where it was found.
type Prompt struct {
	Definition
	// Path is the file path relative to the prompts directory,
	// slash separated (e.g. "microservices/fetch-details.json").
	Path string
}

// Name returns the identifier the prompt is published under: its id, or
// the file name without its suffix when the id is empty.
func (p Prompt) Name() string {
	if p.ID != "" {
		return p.ID
	}
	return strings.TrimSuffix(path.Base(p.Path), promptSuffix)
}

// Dir returns the prompt directory: the parent of Path, or "" for prompts
// at the top of the prompts directory.
func (p Prompt) Dir() string {
	dir := path.Dir(p.Path)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// PublishedArguments returns the declared arguments, preferring "args" over
// "arguments", and an empty non-nil slice when neither is present.
func (d Definition) PublishedArguments() []Argument {
	switch {
	case d.Args != nil:
		return d.Args
	case d.Arguments != nil:
		return d.Arguments
	default:
		return []Argument{}
	}
}
