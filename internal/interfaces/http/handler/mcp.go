package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoicedesk/backend/internal/interfaces/mcp"
	"go.uber.org/zap"
)

// SessionIDHeader carries the MCP session identifier. The server is
// stateless, so the ID only gives clients a stable handle to echo back.
const SessionIDHeader = "Mcp-Session-Id"

// MCPHandler bridges the streamable HTTP transport to the MCP server.
type MCPHandler struct {
	BaseHandler
	server *mcp.Server
	logger *zap.Logger
}

// NewMCPHandler creates a new MCPHandler
func NewMCPHandler(server *mcp.Server, logger *zap.Logger) *MCPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MCPHandler{server: server, logger: logger}
}

// Handle serves one MCP exchange. POST carries a JSON-RPC message and
// gets a JSON response; DELETE ends the (stateless) session; anything
// else is not supported on this endpoint.
func (h *MCPHandler) Handle(c *gin.Context) {
	h.ensureSessionID(c)

	switch c.Request.Method {
	case http.MethodPost:
		h.post(c)
	case http.MethodDelete:
		// Nothing server-side to tear down.
		c.Status(http.StatusNoContent)
	default:
		c.Header("Allow", "POST, DELETE, OPTIONS")
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func (h *MCPHandler) post(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Warn("failed to read mcp request body", zap.Error(err))
		c.String(http.StatusBadRequest, "Bad Request")
		return
	}

	out, err := h.server.Handle(c.Request.Context(), body)
	if err != nil {
		h.logger.Error("mcp dispatch failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if out == nil {
		// Notification: acknowledged, nothing to send back.
		c.Status(http.StatusAccepted)
		return
	}

	c.Data(http.StatusOK, "application/json", out)
}

// ensureSessionID echoes the client's session ID, minting one on first
// contact so the host can correlate the conversation.
func (h *MCPHandler) ensureSessionID(c *gin.Context) {
	id := c.GetHeader(SessionIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(SessionIDHeader, id)
}
