// Package server runs the MCP server process: the serve loop over stdio and,
// when configured, the Prometheus metrics endpoint.
// file: cmd/server/server_runner.go
package server

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/manifest-mcp/internal/config"
	"github.com/dkoosis/manifest-mcp/internal/logging"
	"github.com/dkoosis/manifest-mcp/internal/mcp"
	"github.com/dkoosis/manifest-mcp/internal/transport"
)

// Streams are the process streams the server talks over. In carries
// requests, Out carries responses only, Err receives the startup banner.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// RunServer serves MCP over s until the input ends or ctx is cancelled.
// Both count as a clean exit.
func RunServer(ctx context.Context, cfg *config.Config, s Streams, logger logging.Logger) error {
	startTime := time.Now()
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	server, err := mcp.NewServer(cfg, mcp.ServerOptions{}, logger)
	if err != nil {
		logger.Error("Failed to create MCP server.", "error", fmt.Sprintf("%+v", err))
		return errors.Wrap(err, "failed to create MCP server")
	}
	log := logger.WithField("instance", server.InstanceID())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	t := transport.NewNDJSONTransport(s.In, s.Out, nil, logger)
	g.Go(func() error {
		// The metrics endpoint has nothing to report once the input is gone.
		defer cancel()
		return server.Serve(gctx, t)
	})
	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return server.Metrics().Serve(gctx, cfg.Metrics.Addr, log)
		})
	}

	if s.Err != nil {
		fmt.Fprintln(s.Err, "MCP server started on stdio")
	}
	log.Info("Server startup complete.",
		"manifestRoot", cfg.ManifestRoot,
		"metricsAddr", cfg.Metrics.Addr,
		"startupMs", time.Since(startTime).Milliseconds())

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Server exited with error.", "error", fmt.Sprintf("%+v", err))
		return err
	}
	log.Info("Server exited.", "uptime", time.Since(startTime).String())
	return nil
}
