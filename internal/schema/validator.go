// Package schema validates manifest documents against embedded JSON schemas.
// file: internal/schema/validator.go
//
// Schemas are embedded at build time, compiled once by Initialize and then
// shared read-only. Validation reports the most specific failing location.
package schema

import (
	"bytes"
	"context"
	_ "embed" // Required for go:embed.
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dkoosis/manifest-mcp/internal/logging"
)

//go:embed prompt.schema.json
var promptSchemaContent []byte

// PromptDefinition names the schema for prompt definition files.
const PromptDefinition = "prompt"

// embeddedSchemas maps schema names to their resource id and content.
var embeddedSchemas = map[string]struct {
	id      string
	content []byte
}{
	PromptDefinition: {id: "manifest://prompt.schema.json", content: promptSchemaContent},
}

// ValidatorInterface defines the methods needed for schema validation.
type ValidatorInterface interface {
	Validate(ctx context.Context, schemaName string, data []byte) error
	HasSchema(name string) bool
}

// Validator compiles the embedded schemas and validates documents against them.
type Validator struct {
	compiler    *jsonschema.Compiler
	schemas     map[string]*jsonschema.Schema
	mu          sync.RWMutex
	initialized bool
	logger      logging.Logger
}

// Ensure Validator implements the interface.
var _ ValidatorInterface = (*Validator)(nil)

// NewValidator creates a Validator. Call Initialize before Validate.
func NewValidator(logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	return &Validator{
		compiler: compiler,
		schemas:  make(map[string]*jsonschema.Schema),
		logger:   logger.WithField("component", "schema_validator"),
	}
}

// Initialize compiles every embedded schema. Calling it again is a no-op.
func (v *Validator) Initialize(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.initialized {
		return nil
	}

	start := time.Now()
	names := make([]string, 0, len(embeddedSchemas))
	for name := range embeddedSchemas {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		embedded := embeddedSchemas[name]
		if err := v.compiler.AddResource(embedded.id, bytes.NewReader(embedded.content)); err != nil {
			return NewValidationError(ErrSchemaCompileFailed, "Failed to add schema resource", errors.Wrap(err, "compiler.AddResource failed")).
				WithContext("schema", name)
		}
		compiled, err := v.compiler.Compile(embedded.id)
		if err != nil {
			return NewValidationError(ErrSchemaCompileFailed, "Failed to compile schema", errors.Wrap(err, "compiler.Compile failed")).
				WithContext("schema", name)
		}
		v.schemas[name] = compiled
	}

	v.initialized = true
	v.logger.Debug("Schema validator initialized.", "duration", time.Since(start), "schemasCompiled", len(v.schemas))
	return nil
}

// HasSchema reports whether a compiled schema named name exists.
func (v *Validator) HasSchema(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.schemas[name]
	return ok
}

// Validate checks data against the schema named schemaName.
func (v *Validator) Validate(_ context.Context, schemaName string, data []byte) error {
	v.mu.RLock()
	compiled, ok := v.schemas[schemaName]
	initialized := v.initialized
	v.mu.RUnlock()

	if !initialized {
		return NewValidationError(ErrSchemaNotFound, "Schema validator not initialized", nil)
	}
	if !ok {
		return NewValidationError(ErrSchemaNotFound, fmt.Sprintf("Schema '%s' not found", schemaName), nil)
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return NewValidationError(ErrInvalidJSONFormat, "Invalid JSON format", errors.Wrap(err, "json.Unmarshal failed")).
			WithContext("schema", schemaName).
			WithContext("dataPreview", calculatePreview(data))
	}

	if err := compiled.Validate(instance); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			return convertValidationError(valErr, schemaName, data)
		}
		return NewValidationError(ErrValidationFailed, "Schema validation failed with unexpected error", errors.Wrap(err, "schema.Validate failed"))
	}
	return nil
}
