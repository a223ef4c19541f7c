// file: internal/mcp/helpers.go
package mcp

import (
	"encoding/json"

	mcperrors "github.com/dkoosis/manifest-mcp/internal/mcp/mcp_errors"
)

// marshalResult encodes a handler result. Failure is an internal error.
func marshalResult(v interface{}, what string) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, mcperrors.NewInternalError("failed to marshal "+what, err, nil)
	}
	return b, nil
}

// decodeParams unmarshals request params into v. Absent params leave v at
// its zero value.
func decodeParams(params json.RawMessage, v interface{}, method string) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return mcperrors.NewInvalidParamsError("params for "+method+" could not be decoded", err,
			map[string]interface{}{"method": method})
	}
	return nil
}
