// file: internal/mcp/mcp_server_metrics.go
package mcp

import (
	"time"
)

// unknownMethodLabel stands in for unregistered method names so clients
// cannot grow the metric label set.
const unknownMethodLabel = "unknown"

// recordRequestMetrics records the outcome and latency of one dispatched message.
func (s *Server) recordRequestMetrics(method string, startTime time.Time, err error) {
	label := method
	if !s.router.HasRoute(method) {
		label = unknownMethodLabel
	}
	s.metrics.RecordRequest(label, time.Since(startTime), err == nil)
}
