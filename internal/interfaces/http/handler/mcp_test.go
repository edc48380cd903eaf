package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinvoice "github.com/invoicedesk/backend/internal/application/invoice"
	"github.com/invoicedesk/backend/internal/domain/invoice"
	"github.com/invoicedesk/backend/internal/interfaces/mcp"
)

func setupMCPRouter(t *testing.T) *gin.Engine {
	t.Helper()

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	svc := appinvoice.NewDocumentService(invoice.NewDocument(now), nil)
	server := mcp.NewInvoiceServer("invoicedesk", "1.0.0", svc, "<html></html>", nil)

	h := NewMCPHandler(server, nil)
	engine := gin.New()
	engine.Any("/mcp", h.Handle)
	return engine
}

func TestMCPHandlerPost(t *testing.T) {
	engine := setupMCPRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp struct {
		JSONRPC string `json:"jsonrpc"`
		ID      any    `json:"id"`
		Result  struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2.0", resp.JSONRPC)
	require.Len(t, resp.Result.Tools, 4)
	assert.Equal(t, "update_metadata", resp.Result.Tools[0].Name)
}

func TestMCPHandlerSessionID(t *testing.T) {
	engine := setupMCPRouter(t)

	t.Run("mints an ID on first contact", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mcp",
			strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get(SessionIDHeader))
	})

	t.Run("echoes a supplied ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/mcp",
			strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
		req.Header.Set(SessionIDHeader, "session-abc")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, "session-abc", w.Header().Get(SessionIDHeader))
	})
}

func TestMCPHandlerNotification(t *testing.T) {
	engine := setupMCPRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/mcp",
		strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestMCPHandlerMethods(t *testing.T) {
	engine := setupMCPRouter(t)

	t.Run("delete ends the session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("get is not supported", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assert.Contains(t, w.Header().Get("Allow"), "POST")
	})
}

func TestMCPHandlerToolCall(t *testing.T) {
	engine := setupMCPRouter(t)

	body := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{
		"name":"update_sender",
		"arguments":{"name":"Studio North"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Result struct {
			IsError           bool `json:"isError"`
			StructuredContent struct {
				Invoice struct {
					Sender struct {
						Name string `json:"name"`
					} `json:"sender"`
				} `json:"invoice"`
			} `json:"structuredContent"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Result.IsError)
	assert.Equal(t, "Studio North", resp.Result.StructuredContent.Invoice.Sender.Name)
}
