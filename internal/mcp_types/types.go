// Package mcptypes defines the wire types exchanged with MCP clients and the
// message handler signatures shared by the server and its middleware.
// file: internal/mcp_types/types.go
package mcptypes

import (
	"encoding/json"
)

// --- JSON-RPC envelope ---.

// Request is an inbound JSON-RPC message. ID is kept raw so it can be echoed
// back verbatim; a nil ID means the member was absent (a notification).
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a successful JSON-RPC response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result"`
}

// JSONRPCErrorPayload represents the 'error' object in a JSON-RPC error response.
type JSONRPCErrorPayload struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSONRPCErrorContainer represents the full JSON-RPC error response object.
type JSONRPCErrorContainer struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      json.RawMessage     `json:"id"`
	Error   JSONRPCErrorPayload `json:"error"`
}

// NullID is the id sent when the request id could not be determined.
var NullID = json.RawMessage("null")

// --- initialize ---.

// Implementation describes the name and version of an MCP client or server.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeRequest represents the parameters for the 'initialize' request.
type InitializeRequest struct {
	ProtocolVersion string          `json:"protocolVersion"`
	ClientInfo      Implementation  `json:"clientInfo"`
	Capabilities    json.RawMessage `json:"capabilities,omitempty"`
}

// PromptsCapability indicates server support for prompts.
// Fields are always serialized, including false values.
type PromptsCapability struct {
	ListChanged bool `json:"listChanged"`
}

// ResourcesCapability indicates server support for resources.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe"`
	ListChanged bool `json:"listChanged"`
}

// ServerCapabilities describes features supported by the server.
type ServerCapabilities struct {
	Prompts   PromptsCapability   `json:"prompts"`
	Resources ResourcesCapability `json:"resources"`
}

// InitializeResult represents the successful result of an 'initialize' request.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
}

// --- prompts ---.

// PromptArgument describes an argument for a prompt template.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Prompt represents a prompt template offered by the server.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Arguments   []PromptArgument `json:"arguments"`
}

// ListPromptsResult represents the successful result of a 'prompts/list' request.
type ListPromptsResult struct {
	Prompts []Prompt `json:"prompts"`
}

// GetPromptRequest defines the parameters for the prompts/get request.
// Arguments are accepted but templates are returned unrendered.
type GetPromptRequest struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// TextContent is a plain text message body.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// EmbeddedText is the text carried by a resource message body.
type EmbeddedText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ResourceContent is a message body carrying attached resource text.
type ResourceContent struct {
	Type     string       `json:"type"`
	Resource EmbeddedText `json:"resource"`
}

// PromptMessage is a single message within a prompts/get result. Content
// is a TextContent or a ResourceContent.
type PromptMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// GetPromptResult represents the successful result of a 'prompts/get' request.
type GetPromptResult struct {
	Description string          `json:"description"`
	Messages    []PromptMessage `json:"messages"`
}

// --- resources ---.

// Resource represents a resource that the server offers to the client.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// ListResourcesResult represents the successful result of a 'resources/list' request.
type ListResourcesResult struct {
	Resources []Resource `json:"resources"`
}

// ReadResourceRequest represents the parameters for the 'resources/read' request.
type ReadResourceRequest struct {
	URI string `json:"uri"`
}
