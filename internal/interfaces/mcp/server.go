package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invoicedesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Server dispatches JSON-RPC messages to registered tools and
// resources. It holds no per-session state, so a single instance serves
// every connection for the process lifetime.
type Server struct {
	name      string
	version   string
	tools     map[string]Tool
	toolOrder []string
	resources map[string]Resource
	resOrder  []string
	logger    *zap.Logger
}

// NewServer creates a Server identified by name and version in the
// initialize handshake.
func NewServer(name, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		name:      name,
		version:   version,
		tools:     make(map[string]Tool),
		resources: make(map[string]Resource),
		logger:    logger,
	}
}

// RegisterTool adds a tool. Registration order is preserved in
// tools/list output.
func (s *Server) RegisterTool(t Tool) {
	if _, exists := s.tools[t.Name]; !exists {
		s.toolOrder = append(s.toolOrder, t.Name)
	}
	s.tools[t.Name] = t
}

// RegisterResource adds a resource. Registration order is preserved in
// resources/list output.
func (s *Server) RegisterResource(r Resource) {
	if _, exists := s.resources[r.URI]; !exists {
		s.resOrder = append(s.resOrder, r.URI)
	}
	s.resources[r.URI] = r
}

// Handle processes one JSON-RPC message and returns the serialized
// response. A nil return with nil error means the message was a
// notification and needs no reply.
func (s *Server) Handle(ctx context.Context, body []byte) ([]byte, error) {
	var req request
	if err := json.Unmarshal(body, &req); err != nil {
		return marshalResponse(errorResponse(nil, codeParseError, "parse error: invalid JSON"))
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		return marshalResponse(errorResponse(req.ID, codeInvalidRequest, "invalid JSON-RPC 2.0 request"))
	}

	s.logger.Debug("mcp message", zap.String("method", req.Method))

	if req.isNotification() {
		// notifications/initialized and friends need no reply
		return nil, nil
	}

	resp := s.dispatch(ctx, &req)
	return marshalResponse(resp)
}

// dispatch routes a single request to its method handler.
func (s *Server) dispatch(ctx context.Context, req *request) response {
	switch req.Method {
	case "initialize":
		return okResponse(req.ID, initializeResult{
			ProtocolVersion: ProtocolVersion,
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
		})
	case "ping":
		return okResponse(req.ID, struct{}{})
	case "tools/list":
		return okResponse(req.ID, s.listTools())
	case "tools/call":
		return s.callTool(ctx, req)
	case "resources/list":
		return okResponse(req.ID, s.listResources())
	case "resources/read":
		return s.readResource(ctx, req)
	default:
		return errorResponse(req.ID, codeMethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
	}
}

func (s *Server) listTools() listToolsResult {
	result := listToolsResult{Tools: make([]toolDescriptor, 0, len(s.toolOrder))}
	for _, name := range s.toolOrder {
		t := s.tools[name]
		result.Tools = append(result.Tools, toolDescriptor{
			Name:        t.Name,
			Title:       t.Title,
			Description: t.Description,
			InputSchema: t.InputSchema,
			Meta:        t.Meta,
		})
	}
	return result
}

func (s *Server) callTool(ctx context.Context, req *request) response {
	var params callToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid tools/call params")
	}

	tool, ok := s.tools[params.Name]
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("unknown tool: %s", params.Name))
	}

	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	result, err := tool.Handler(ctx, args)
	if err != nil {
		// Domain validation failures are reported as tool execution
		// errors so the calling agent can see the message and retry
		// with corrected input.
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			s.logger.Warn("tool call rejected",
				zap.String("tool", params.Name),
				zap.String("code", domainErr.Code),
				zap.String("reason", domainErr.Error()),
			)
			return okResponse(req.ID, &ToolResult{
				Content: []Content{TextContent(domainErr.Error())},
				IsError: true,
			})
		}
		s.logger.Error("tool call failed", zap.String("tool", params.Name), zap.Error(err))
		return errorResponse(req.ID, codeInternalError, "internal error")
	}

	s.logger.Info("tool call completed", zap.String("tool", params.Name))
	return okResponse(req.ID, result)
}

func (s *Server) listResources() listResourcesResult {
	result := listResourcesResult{Resources: make([]resourceDescriptor, 0, len(s.resOrder))}
	for _, uri := range s.resOrder {
		r := s.resources[uri]
		result.Resources = append(result.Resources, resourceDescriptor{
			URI:      r.URI,
			Name:     r.Name,
			MimeType: r.MimeType,
		})
	}
	return result
}

func (s *Server) readResource(ctx context.Context, req *request) response {
	var params readResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, codeInvalidParams, "invalid resources/read params")
	}

	res, ok := s.resources[params.URI]
	if !ok {
		return errorResponse(req.ID, codeInvalidParams, fmt.Sprintf("unknown resource: %s", params.URI))
	}

	text, err := res.Reader(ctx)
	if err != nil {
		s.logger.Error("resource read failed", zap.String("uri", params.URI), zap.Error(err))
		return errorResponse(req.ID, codeInternalError, "internal error")
	}

	return okResponse(req.ID, readResourceResult{
		Contents: []resourceContents{{
			URI:      res.URI,
			MimeType: res.MimeType,
			Text:     text,
			Meta:     res.Meta,
		}},
	})
}

func okResponse(id json.RawMessage, result interface{}) response {
	return response{JSONRPC: "2.0", ID: normalizeID(id), Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) response {
	return response{JSONRPC: "2.0", ID: normalizeID(id), Error: &rpcError{Code: code, Message: message}}
}

// normalizeID keeps "id": null in responses to requests whose ID could
// not be read, as JSON-RPC requires.
func normalizeID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func marshalResponse(resp response) ([]byte, error) {
	out, err := json.Marshal(resp)
	if err != nil {
		// Result failed to serialize; fall back to a protocol error so
		// the caller still gets a well-formed reply.
		fallback := errorResponse(resp.ID, codeInternalError, "failed to encode response")
		return json.Marshal(fallback)
	}
	return out, nil
}
