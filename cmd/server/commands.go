// file: cmd/server/commands.go
package server

import (
	"context"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/manifest-mcp/internal/config"
	"github.com/dkoosis/manifest-mcp/internal/logging"
	"github.com/dkoosis/manifest-mcp/internal/mcp"
)

// ListPrompts writes the prompts/list result for cfg's manifest tree to w
// as indented JSON.
func ListPrompts(ctx context.Context, cfg *config.Config, w io.Writer, logger logging.Logger) error {
	server, err := mcp.NewServer(cfg, mcp.ServerOptions{}, logger)
	if err != nil {
		return errors.Wrap(err, "failed to create MCP server")
	}
	result, err := server.Handler().ListPrompts(ctx)
	if err != nil {
		return err
	}
	return writeJSON(w, result)
}

// GetPrompt writes the messages prompt name expands to, exactly as
// prompts/get would return them.
func GetPrompt(ctx context.Context, cfg *config.Config, name string, w io.Writer, logger logging.Logger) error {
	server, err := mcp.NewServer(cfg, mcp.ServerOptions{}, logger)
	if err != nil {
		return errors.Wrap(err, "failed to create MCP server")
	}
	result, err := server.Handler().GetPrompt(ctx, name)
	if err != nil {
		return errors.Wrapf(err, "prompt %q", name)
	}
	return writeJSON(w, result)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to write JSON output")
	}
	return nil
}
