// file: internal/prompts/resolver.go
package prompts

import (
	"path"
	"strings"

	"github.com/dkoosis/manifest-mcp/internal/logging"
	"github.com/dkoosis/manifest-mcp/internal/resources"
)

// Conventional resource subdirectories matched against a prompt's directory.
const (
	DocsDir         = "docs"
	InstructionsDir = "instructions"
)

const resourceSeparator = "\n\n---\n\n"

// BlockKind distinguishes attached context from the prompt template.
type BlockKind string

// Block kinds.
const (
	BlockText     BlockKind = "text"
	BlockResource BlockKind = "resource"
)

// Block is one user message of an expanded prompt.
type Block struct {
	Kind BlockKind
	Text string
}

// DefaultFixedAttachments reproduces the long-standing behavior of the
// ask-name prompt, which always sees the company resources.
func DefaultFixedAttachments() map[string][]Attachment {
	return map[string][]Attachment{
		"ask-name": {{Kind: AttachDirectory, Path: "company"}},
	}
}

// Resolver expands a prompt into its ordered message blocks.
type Resolver struct {
	store  *resources.Store
	fixed  map[string][]Attachment
	logger logging.Logger
}

// NewResolver creates a Resolver. fixed maps a requested prompt name to
// attachments added on top of the prompt's own; nil means none.
func NewResolver(store *resources.Store, fixed map[string][]Attachment, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Resolver{
		store:  store,
		fixed:  fixed,
		logger: logger.WithField("component", "attachment_resolver"),
	}
}

// Messages returns the blocks for p, requested under the name requested.
// The order is fixed: directory docs, directory instructions, declared and
// fixed attachments, the instructions resource, listed resources and last
// the template. Steps with nothing to attach contribute no block, so the
// result always ends with exactly one text block.
func (r *Resolver) Messages(p Prompt, requested string) []Block {
	var blocks []Block
	add := func(text string) {
		if text != "" {
			blocks = append(blocks, Block{Kind: BlockResource, Text: text})
		}
	}

	if dir := p.Dir(); dir != "" {
		add(Frame(r.store.ReadDirectory(path.Join(DocsDir, dir))))
		add(Frame(r.store.ReadDirectory(path.Join(InstructionsDir, dir))))
	}

	add(Frame(r.attachments(p, requested)))

	if p.Instructions != "" {
		if content, ok := r.store.Read(p.Instructions); ok {
			add("Instructions: " + p.Instructions + "\n\n" + content)
		} else {
			r.logger.Debug("Instructions resource not found.", "prompt", p.Name(), "resource", p.Instructions)
		}
	}

	var listed []resources.Entry
	for _, name := range p.Resources {
		content, ok := r.store.Read(name)
		if !ok {
			r.logger.Debug("Listed resource not found.", "prompt", p.Name(), "resource", name)
			continue
		}
		listed = append(listed, resources.Entry{Name: name, Content: content})
	}
	add(Frame(listed))

	return append(blocks, Block{Kind: BlockText, Text: p.Template})
}

// attachments reads the prompt's declared attachments followed by the fixed
// ones configured for requested.
func (r *Resolver) attachments(p Prompt, requested string) []resources.Entry {
	declared := make([]Attachment, 0, len(p.Attachments)+len(r.fixed[requested]))
	declared = append(declared, p.Attachments...)
	declared = append(declared, r.fixed[requested]...)

	var out []resources.Entry
	for _, a := range declared {
		switch a.Kind {
		case AttachDirectory:
			out = append(out, r.store.ReadDirectory(a.Path)...)
		case AttachResource:
			if content, ok := r.store.Read(a.Name); ok {
				out = append(out, resources.Entry{Name: a.Name, Content: content})
			}
		default:
			r.logger.Warn("Ignoring attachment of unknown kind.", "prompt", p.Name(), "kind", a.Kind)
		}
	}
	return out
}

// Frame concatenates entries as "Resource: <name>" sections separated by a
// horizontal rule. No entries frame to "".
func Frame(entries []resources.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = "Resource: " + e.Name + "\n\n" + e.Content
	}
	return strings.Join(parts, resourceSeparator)
}
