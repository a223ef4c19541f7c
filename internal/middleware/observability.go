// file: internal/middleware/observability.go
package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dkoosis/manifest-mcp/internal/logging"
	mcptypes "github.com/dkoosis/manifest-mcp/internal/mcp_types"
)

// TracerName identifies spans produced by this server.
const TracerName = "github.com/dkoosis/manifest-mcp"

// Tracing starts one span per inbound message. Handlers further down may
// rename it once the method is known. A nil provider uses the global one.
func Tracing(provider trace.TracerProvider) mcptypes.MiddlewareFunc {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	tracer := provider.Tracer(TracerName)

	return func(next mcptypes.MessageHandler) mcptypes.MessageHandler {
		return func(ctx context.Context, message []byte) ([]byte, error) {
			ctx, span := tracer.Start(ctx, "mcp.message",
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.Int("mcp.message.size", len(message))),
			)
			defer span.End()

			resp, err := next(ctx, message)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.SetAttributes(attribute.Int("mcp.response.size", len(resp)))
			return resp, err
		}
	}
}

// Logging logs each message at debug level with its handling time.
func Logging(logger logging.Logger) mcptypes.MiddlewareFunc {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	logger = logger.WithField("component", "message_log")

	return func(next mcptypes.MessageHandler) mcptypes.MessageHandler {
		return func(ctx context.Context, message []byte) ([]byte, error) {
			start := time.Now()
			resp, err := next(ctx, message)
			l := logger.WithContext(ctx)
			if err != nil {
				l.Warn("Message handling failed.", "duration", time.Since(start), "error", err)
				return resp, err
			}
			l.Debug("Message handled.", "duration", time.Since(start), "requestSize", len(message), "responseSize", len(resp))
			return resp, nil
		}
	}
}
