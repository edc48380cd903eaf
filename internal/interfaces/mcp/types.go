// Package mcp implements a minimal Model Context Protocol server over
// the streamable HTTP transport: JSON-RPC 2.0 messages carried in POST
// bodies, answered with plain JSON responses. Sessions are stateless;
// every request is self-contained.
package mcp

import (
	"context"
	"encoding/json"
)

// ProtocolVersion is the MCP revision this server speaks.
const ProtocolVersion = "2025-06-18"

// JSON-RPC 2.0 error codes
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// request is an incoming JSON-RPC message. A request without an ID is a
// notification and gets no response.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// isNotification reports whether the message carries no ID.
func (r *request) isNotification() bool {
	return len(r.ID) == 0 || string(r.ID) == "null"
}

// response is an outgoing JSON-RPC message.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// rpcError is a JSON-RPC protocol-level error.
type rpcError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// serverInfo identifies the server in the initialize handshake.
type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// capabilities advertises what this server supports. Empty objects mean
// "supported, no sub-features".
type capabilities struct {
	Tools     struct{} `json:"tools"`
	Resources struct{} `json:"resources"`
}

// initializeResult is the reply to the initialize request.
type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    capabilities `json:"capabilities"`
	ServerInfo      serverInfo   `json:"serverInfo"`
}

// ToolHandler executes a tool call. Validation failures are reported
// through the returned error; the server maps domain errors to
// isError tool results rather than protocol errors.
type ToolHandler func(ctx context.Context, args json.RawMessage) (*ToolResult, error)

// Tool describes one callable tool and its input schema.
type Tool struct {
	Name        string
	Title       string
	Description string
	InputSchema map[string]interface{}
	Meta        map[string]interface{}
	Handler     ToolHandler
}

// toolDescriptor is the wire form returned by tools/list.
type toolDescriptor struct {
	Name        string                 `json:"name"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Meta        map[string]interface{} `json:"_meta,omitempty"`
}

type listToolsResult struct {
	Tools []toolDescriptor `json:"tools"`
}

type callToolParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Content is one block of human-readable tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextContent builds a text content block.
func TextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

// ToolResult is the result of a tool call: display content for the
// conversation plus structured data for the rendering surface.
type ToolResult struct {
	Content           []Content   `json:"content"`
	StructuredContent interface{} `json:"structuredContent,omitempty"`
	IsError           bool        `json:"isError,omitempty"`
}

// ResourceReader produces the current contents of a resource.
type ResourceReader func(ctx context.Context) (string, error)

// Resource describes one addressable resource.
type Resource struct {
	URI      string
	Name     string
	MimeType string
	Meta     map[string]interface{}
	Reader   ResourceReader
}

// resourceDescriptor is the wire form returned by resources/list.
type resourceDescriptor struct {
	URI      string `json:"uri"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type listResourcesResult struct {
	Resources []resourceDescriptor `json:"resources"`
}

type readResourceParams struct {
	URI string `json:"uri"`
}

type resourceContents struct {
	URI      string                 `json:"uri"`
	MimeType string                 `json:"mimeType,omitempty"`
	Text     string                 `json:"text"`
	Meta     map[string]interface{} `json:"_meta,omitempty"`
}

type readResourceResult struct {
	Contents []resourceContents `json:"contents"`
}
