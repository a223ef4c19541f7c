// Package router dispatches MCP method calls to registered handlers.
// file: internal/mcp/router/router.go
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/dkoosis/manifest-mcp/internal/logging"
	mcperrors "github.com/dkoosis/manifest-mcp/internal/mcp/mcp_errors"
)

// Handler handles a request that expects a response. It returns the
// marshaled result.
type Handler func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

// NotificationHandler handles a notification. No response is ever sent.
type NotificationHandler func(ctx context.Context, params json.RawMessage) error

// Route maps an MCP method name to its handler(s).
type Route struct {
	Method              string
	Handler             Handler
	NotificationHandler NotificationHandler
}

// Router registers routes and dispatches messages to them.
type Router interface {
	// AddRoute registers a handler for a specific MCP method.
	AddRoute(route Route) error
	// Route dispatches an incoming message to the registered handler.
	Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (json.RawMessage, error)
	// HasRoute reports whether method is registered.
	HasRoute(method string) bool
	// GetRoutes returns the registered method names in sorted order.
	GetRoutes() []string
}

type router struct {
	routes map[string]Route
	mu     sync.RWMutex
	logger logging.Logger
}

// NewRouter creates a new Router instance.
func NewRouter(logger logging.Logger) Router {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &router{
		routes: make(map[string]Route),
		logger: logger.WithField("component", "mcp_router"),
	}
}

// AddRoute registers a new route. Returns error if the method is already registered.
func (r *router) AddRoute(route Route) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if route.Method == "" {
		return errors.New("cannot register route with empty method name")
	}
	if route.Handler == nil && route.NotificationHandler == nil {
		return errors.Newf("route for method '%s' must have at least one handler", route.Method)
	}
	if _, exists := r.routes[route.Method]; exists {
		r.logger.Warn("Attempted to register duplicate route.", "method", route.Method)
		return errors.Newf("route for method '%s' already registered", route.Method)
	}

	r.routes[route.Method] = route
	r.logger.Debug("Registered route.", "method", route.Method)
	return nil
}

// HasRoute reports whether method is registered.
func (r *router) HasRoute(method string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.routes[method]
	return ok
}

// Route looks up the handler for method and runs it. A panicking handler is
// reported as an internal error instead of taking the server down.
func (r *router) Route(ctx context.Context, method string, params json.RawMessage, isNotification bool) (result json.RawMessage, err error) {
	r.mu.RLock()
	route, exists := r.routes[method]
	r.mu.RUnlock()

	if !exists {
		r.logger.Debug("Method not found in router.", "method", method)
		return nil, mcperrors.NewMethodNotFoundError(method)
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Handler panicked.", "method", method, "panic", fmt.Sprint(rec))
			result = nil
			err = mcperrors.NewInternalError(
				fmt.Sprintf("handler for '%s' panicked", method),
				errors.Newf("%v", rec),
				map[string]interface{}{"method": method},
			)
		}
	}()

	if isNotification {
		if route.NotificationHandler != nil {
			r.logger.Debug("Routing to notification handler.", "method", method)
			return nil, route.NotificationHandler(ctx, params)
		}
		// The result of a request handler is discarded for notifications.
		r.logger.Debug("Notification for request method, discarding result.", "method", method)
		_, err := route.Handler(ctx, params)
		return nil, err
	}

	if route.Handler != nil {
		r.logger.Debug("Routing to request handler.", "method", method)
		return route.Handler(ctx, params)
	}

	r.logger.Warn("Received request for notification-only method.", "method", method)
	return nil, mcperrors.NewMethodNotFoundError(method)
}

// GetRoutes returns the registered method names in sorted order.
func (r *router) GetRoutes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.routes))
	for method := range r.routes {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}
