package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	appinvoice "github.com/invoicedesk/backend/internal/application/invoice"
	"github.com/invoicedesk/backend/internal/domain/invoice"
	"github.com/invoicedesk/backend/internal/interfaces/http/dto"
)

// InvoiceHandler exposes the invoice document over REST. The GET
// endpoint is the initial-state channel for the rendering surface; the
// mutation endpoints mirror the MCP tool set with identical semantics.
type InvoiceHandler struct {
	BaseHandler
	svc *appinvoice.DocumentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(svc *appinvoice.DocumentService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// RegisterRoutes registers invoice routes on the API group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/invoice", h.Get)
	rg.PATCH("/invoice/metadata", h.UpdateMetadata)
	rg.PATCH("/invoice/sender", h.UpdateSender)
	rg.PATCH("/invoice/client", h.UpdateClient)
	rg.PUT("/invoice/items", h.SetItems)
}

// StateResponse carries the current document together with its derived
// display projection.
type StateResponse struct {
	Document   *invoice.Document  `json:"document"`
	Projection invoice.Projection `json:"projection"`
}

// UpdateMetadataRequest is a partial metadata update. Omitted fields
// keep their prior value.
type UpdateMetadataRequest struct {
	Number  *string `json:"number"`
	Date    *string `json:"date"`
	DueDate *string `json:"dueDate"`
	Notes   *string `json:"notes"`
}

// UpdatePartyRequest is a partial sender or client update.
type UpdatePartyRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Email   *string `json:"email"`
}

// SetItemsRequest replaces the full item list.
type SetItemsRequest struct {
	Items []appinvoice.LineItemInput `json:"items"`
}

// Get returns the current document and projection. A view attaching
// after operations have already happened converges from this alone.
func (h *InvoiceHandler) Get(c *gin.Context) {
	h.Success(c, StateResponse{
		Document:   h.svc.Current(),
		Projection: h.svc.CurrentProjection(),
	})
}

// UpdateMetadata merges the supplied metadata fields into the document
func (h *InvoiceHandler) UpdateMetadata(c *gin.Context) {
	var req UpdateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	env, err := h.svc.UpdateMetadata(c.Request.Context(), invoice.MetadataPatch{
		Number:  req.Number,
		Date:    req.Date,
		DueDate: req.DueDate,
		Notes:   req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, env)
}

// UpdateSender merges the supplied fields into the sender party
func (h *InvoiceHandler) UpdateSender(c *gin.Context) {
	var req UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	env, err := h.svc.UpdateSender(c.Request.Context(), invoice.PartyPatch(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, env)
}

// UpdateClient merges the supplied fields into the client party
func (h *InvoiceHandler) UpdateClient(c *gin.Context) {
	var req UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	env, err := h.svc.UpdateClient(c.Request.Context(), invoice.PartyPatch(req))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, env)
}

// SetItems replaces the item list wholesale
func (h *InvoiceHandler) SetItems(c *gin.Context) {
	var req SetItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}

	env, err := h.svc.SetItems(c.Request.Context(), req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, env)
}

// bindError reports a body that could not be decoded at all, as opposed
// to one that decoded but failed operation validation.
func (h *InvoiceHandler) bindError(c *gin.Context, err error) {
	msg := err.Error()
	if strings.Contains(msg, "EOF") {
		msg = "request body is required"
	}
	h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, msg)
}
