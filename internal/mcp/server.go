// Package mcp implements the Model Context Protocol server: method dispatch,
// response envelopes and the serve loop over a transport.
// file: internal/mcp/server.go
package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/dkoosis/manifest-mcp/internal/config"
	"github.com/dkoosis/manifest-mcp/internal/logging"
	"github.com/dkoosis/manifest-mcp/internal/manifest"
	"github.com/dkoosis/manifest-mcp/internal/mcp/router"
	"github.com/dkoosis/manifest-mcp/internal/mcp/state"
	"github.com/dkoosis/manifest-mcp/internal/metrics"
	"github.com/dkoosis/manifest-mcp/internal/middleware"
	"github.com/dkoosis/manifest-mcp/internal/prompts"
	"github.com/dkoosis/manifest-mcp/internal/resources"
	"github.com/dkoosis/manifest-mcp/internal/schema"
	"github.com/dkoosis/manifest-mcp/internal/transport"
)

// ServerOptions contains optional collaborators and limits for the server.
type ServerOptions struct {
	// RequestTimeout bounds the handling of a single message. Zero means no limit.
	RequestTimeout time.Duration

	// Validator checks prompt files. Nil uses the embedded prompt schema.
	Validator schema.ValidatorInterface

	// Metrics receives per-request measurements. Nil creates a private collector.
	Metrics *metrics.Collector

	// TracerProvider creates request spans. Nil uses the global provider.
	TracerProvider trace.TracerProvider
}

// Server represents an MCP server instance. A Server serves a single
// transport once; its lifecycle moves from idle to serving to stopped.
type Server struct {
	config     *config.Config
	options    ServerOptions
	instanceID string

	handler   *Handler
	router    router.Router
	lifecycle *state.Lifecycle
	metrics   *metrics.Collector
	logger    logging.Logger

	mu        sync.Mutex
	transport transport.Transport
}

// NewServer wires a server for the manifest tree at cfg.ManifestRoot.
func NewServer(cfg *config.Config, opts ServerOptions, logger logging.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server requires a configuration")
	}
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	instanceID := uuid.NewString()
	log := logger.WithField("component", "mcp_server").WithField("instance", instanceID)

	validator := opts.Validator
	if validator == nil {
		v := schema.NewValidator(logger)
		if err := v.Initialize(context.Background()); err != nil {
			return nil, errors.Wrap(err, "failed to initialize prompt schema validator")
		}
		validator = v
	}

	collector := opts.Metrics
	if collector == nil {
		collector = metrics.NewMetricsCollector(cfg.Server.Name, cfg.Server.Version)
	}

	lifecycle, err := state.NewLifecycle(log)
	if err != nil {
		return nil, err
	}

	fsys := manifest.Open(cfg.ManifestRoot)
	store := resources.NewStore(fsys, logger)
	catalog := prompts.NewCatalog(fsys, validator, logger)
	resolver := prompts.NewResolver(store, cfg.FixedAttachmentMap(), logger)

	s := &Server{
		config:     cfg,
		options:    opts,
		instanceID: instanceID,
		handler:    NewHandler(cfg, catalog, resolver, store, log),
		router:     router.NewRouter(log),
		lifecycle:  lifecycle,
		metrics:    collector,
		logger:     log,
	}
	if err := s.registerMethods(); err != nil {
		return nil, err
	}

	log.Info("MCP server created.", "manifestRoot", cfg.ManifestRoot, "methods", s.router.GetRoutes())
	return s, nil
}

// registerMethods registers all supported MCP methods.
func (s *Server) registerMethods() error {
	routes := []router.Route{
		{Method: methodInitialize, Handler: s.handler.handleInitialize},
		{Method: methodInitialized, NotificationHandler: s.handler.handleNotificationsInitialized},
		{Method: methodPromptsList, Handler: s.handler.handlePromptsList},
		{Method: methodPromptsGet, Handler: s.handler.handlePromptsGet},
		{Method: methodResourcesList, Handler: s.handler.handleResourcesList},
		{Method: methodResourcesRead, Handler: s.handler.handleResourcesRead},
	}
	for _, r := range routes {
		if err := s.router.AddRoute(r); err != nil {
			return errors.Wrapf(err, "failed to register %s", r.Method)
		}
	}
	return nil
}

// InstanceID identifies this server in logs.
func (s *Server) InstanceID() string {
	return s.instanceID
}

// State returns the current lifecycle state.
func (s *Server) State() string {
	return string(s.lifecycle.CurrentState())
}

// Metrics returns the collector this server records into.
func (s *Server) Metrics() *metrics.Collector {
	return s.metrics
}

// Handler returns the method handlers, for callers that expand prompts
// without a transport.
func (s *Server) Handler() *Handler {
	return s.handler
}

// Serve reads messages from t until end of input, transport close or ctx
// cancellation, answering each before reading the next. It returns nil when
// the input ends, and ctx.Err() when cancelled. The transport is closed on
// return. A server can only be served once.
func (s *Server) Serve(ctx context.Context, t transport.Transport) error {
	if t == nil {
		return errors.New("serve called with nil transport")
	}
	if err := s.lifecycle.Start(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.transport = t
	s.mu.Unlock()

	defer func() {
		if err := t.Close(); err != nil {
			s.logger.Warn("Failed to close transport.", "error", err)
		}
		if err := s.lifecycle.Stop(context.Background()); err != nil {
			s.logger.Warn("Failed to record server stop.", "error", err)
		}
		s.logger.Info("Server stopped.")
	}()

	chain := middleware.NewChain(s.handleMessage).
		Use(middleware.Tracing(s.options.TracerProvider)).
		Use(middleware.Logging(s.logger))

	s.logger.Info("Server serving.")
	return s.serverProcessing(ctx, chain.Handler())
}

// Shutdown stops a server. A serving server is stopped by closing its
// transport, which ends the serve loop; an idle server can no longer serve.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server.")
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	if t != nil {
		if err := t.Close(); err != nil {
			return errors.Wrap(err, "failed to close transport")
		}
		return nil
	}
	return s.lifecycle.Stop(ctx)
}
