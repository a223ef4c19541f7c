// file: internal/prompts/catalog.go
package prompts

import (
	"context"
	"encoding/json"
	"io/fs"
	"path"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/manifest-mcp/internal/logging"
	"github.com/dkoosis/manifest-mcp/internal/manifest"
	mcperrors "github.com/dkoosis/manifest-mcp/internal/mcp/mcp_errors"
	"github.com/dkoosis/manifest-mcp/internal/schema"
)

const promptSuffix = ".json"

// Catalog finds prompt definitions under the manifest's prompts directory.
// Nothing is cached: each call scans the tree again.
type Catalog struct {
	fs        *manifest.FS
	validator schema.ValidatorInterface
	logger    logging.Logger
}

// NewCatalog creates a Catalog over m. validator may be nil, in which case
// files are only checked by decoding them.
func NewCatalog(m *manifest.FS, validator schema.ValidatorInterface, logger logging.Logger) *Catalog {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Catalog{
		fs:        m,
		validator: validator,
		logger:    logger.WithField("component", "prompt_catalog"),
	}
}

// List returns every loadable prompt in scan order: depth-first, entries of
// each directory in name order. Malformed files are logged and skipped.
func (c *Catalog) List(ctx context.Context) ([]Prompt, error) {
	var out []Prompt
	err := c.walk(ctx, func(p Prompt) bool {
		out = append(out, p)
		return false
	})
	return out, err
}

// Resolve finds the prompt published as id. A file named <id>.json directly
// under the prompts directory wins; otherwise the first prompt in scan order
// whose Name equals id is returned.
func (c *Catalog) Resolve(ctx context.Context, id string) (Prompt, bool, error) {
	if id == "" {
		return Prompt{}, false, nil
	}

	if rel, ok := manifest.Clean(id + promptSuffix); ok && !strings.Contains(rel, "/") {
		if p, err := c.load(ctx, rel); err == nil {
			return p, true, nil
		} else if !manifest.IsNotExist(err) {
			c.logger.Warn("Skipping malformed prompt file.", "path", rel, "kind", "MalformedManifest", "error", err)
		}
	}

	var found Prompt
	var ok bool
	err := c.walk(ctx, func(p Prompt) bool {
		if p.Name() == id {
			found, ok = p, true
			return true
		}
		return false
	})
	return found, ok, err
}

// walk visits every prompt file until visit returns true.
func (c *Catalog) walk(ctx context.Context, visit func(Prompt) bool) error {
	stop := errors.New("stop walk")

	err := c.fs.WalkDir(manifest.PromptsDir, func(full string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			c.logger.Warn("Skipping unreadable prompt path.", "path", full, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), promptSuffix) {
			return nil
		}

		rel := strings.TrimPrefix(full, manifest.PromptsDir+"/")
		p, loadErr := c.load(ctx, rel)
		if loadErr != nil {
			c.logger.Warn("Skipping malformed prompt file.", "path", rel, "kind", "MalformedManifest", "error", loadErr)
			return nil
		}
		if visit(p) {
			return stop
		}
		return nil
	})

	if errors.Is(err, stop) {
		return nil
	}
	return errors.Wrap(err, "scanning prompts")
}

// load reads and validates the prompt file at rel, relative to the prompts
// directory. Absent files return an error satisfying manifest.IsNotExist;
// everything else that goes wrong is a malformed manifest error.
func (c *Catalog) load(ctx context.Context, rel string) (Prompt, error) {
	full := path.Join(manifest.PromptsDir, rel)
	data, err := c.fs.ReadFile(full)
	if err != nil {
		if manifest.IsNotExist(err) {
			return Prompt{}, err
		}
		return Prompt{}, mcperrors.NewMalformedManifestError(full, err)
	}

	if c.validator != nil {
		if err := c.validator.Validate(ctx, schema.PromptDefinition, data); err != nil {
			return Prompt{}, mcperrors.NewMalformedManifestError(full, err)
		}
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return Prompt{}, mcperrors.NewMalformedManifestError(full, err)
	}
	return Prompt{Definition: def, Path: rel}, nil
}
