// file: internal/mcp/handler.go
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dkoosis/manifest-mcp/internal/config"
	"github.com/dkoosis/manifest-mcp/internal/logging"
	"github.com/dkoosis/manifest-mcp/internal/prompts"
	"github.com/dkoosis/manifest-mcp/internal/resources"
)

// Method names served by this server.
const (
	methodInitialize    = string(mcp.MethodInitialize)
	methodInitialized   = "notifications/initialized"
	methodPromptsList   = string(mcp.MethodPromptsList)
	methodPromptsGet    = string(mcp.MethodPromptsGet)
	methodResourcesList = string(mcp.MethodResourcesList)
	methodResourcesRead = string(mcp.MethodResourcesRead)
)

// Handler holds dependencies for MCP method handlers.
type Handler struct {
	config   *config.Config
	catalog  *prompts.Catalog
	resolver *prompts.Resolver
	store    *resources.Store
	logger   logging.Logger
}

// NewHandler creates a new Handler.
func NewHandler(cfg *config.Config, catalog *prompts.Catalog, resolver *prompts.Resolver, store *resources.Store, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &Handler{
		config:   cfg,
		catalog:  catalog,
		resolver: resolver,
		store:    store,
		logger:   logger.WithField("component", "mcp_handler"),
	}
}
