package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	appinvoice "github.com/invoicedesk/backend/internal/application/invoice"
	"github.com/invoicedesk/backend/internal/domain/invoice"
	"github.com/invoicedesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// WidgetURI is the addressable resource the rendering surface fetches
// once to obtain its shell. The document itself is never baked into the
// resource; it flows through tool result envelopes.
const WidgetURI = "ui://widget/invoice.html"

// widgetMimeType marks the resource as an embeddable UI document for
// hosts that support inline widgets.
const widgetMimeType = "text/html+skybridge"

// outputTemplateMeta points every tool at the widget so the host
// re-renders it after each call.
var outputTemplateMeta = map[string]interface{}{
	"openai/outputTemplate": WidgetURI,
}

// NewInvoiceServer builds the MCP server exposing the invoice operation
// set and the widget resource. widgetHTML is the static rendering shell
// served for WidgetURI.
func NewInvoiceServer(name, version string, svc *appinvoice.DocumentService, widgetHTML string, logger *zap.Logger) *Server {
	s := NewServer(name, version, logger)

	s.RegisterTool(Tool{
		Name:        "update_metadata",
		Title:       "Update Invoice Metadata",
		Description: "Sets the invoice number, dates, and notes.",
		InputSchema: objectSchema(map[string]interface{}{
			"number":  stringProp("Invoice number, e.g. INV-001"),
			"date":    stringProp("Invoice date in YYYY-MM-DD form"),
			"dueDate": stringProp("Due date in YYYY-MM-DD form"),
			"notes":   stringProp("Free-form notes shown at the bottom of the invoice"),
		}, nil),
		Meta: outputTemplateMeta,
		Handler: func(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
			var patch invoice.MetadataPatch
			if err := decodeArgs(args, &patch); err != nil {
				return nil, err
			}
			env, err := svc.UpdateMetadata(ctx, patch)
			if err != nil {
				return nil, err
			}
			return envelopeResult(env), nil
		},
	})

	s.RegisterTool(Tool{
		Name:        "update_sender",
		Title:       "Update Sender (Freelancer) Details",
		Description: "Sets the invoice sender's name, address, and email.",
		InputSchema: partySchema(),
		Meta:        outputTemplateMeta,
		Handler: func(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
			var patch invoice.PartyPatch
			if err := decodeArgs(args, &patch); err != nil {
				return nil, err
			}
			env, err := svc.UpdateSender(ctx, patch)
			if err != nil {
				return nil, err
			}
			return envelopeResult(env), nil
		},
	})

	s.RegisterTool(Tool{
		Name:        "update_client",
		Title:       "Update Client Details",
		Description: "Sets the client's name, address, and email.",
		InputSchema: partySchema(),
		Meta:        outputTemplateMeta,
		Handler: func(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
			var patch invoice.PartyPatch
			if err := decodeArgs(args, &patch); err != nil {
				return nil, err
			}
			env, err := svc.UpdateClient(ctx, patch)
			if err != nil {
				return nil, err
			}
			return envelopeResult(env), nil
		},
	})

	s.RegisterTool(Tool{
		Name:        "set_items",
		Title:       "Set Invoice Items",
		Description: "Sets the list of services or products. Completely replaces existing items.",
		InputSchema: objectSchema(map[string]interface{}{
			"items": map[string]interface{}{
				"type": "array",
				"items": objectSchema(map[string]interface{}{
					"description": stringProp("What was delivered"),
					"quantity":    numberProp("Units delivered"),
					"rate":        numberProp("Price per unit in the invoice currency"),
				}, []string{"description", "quantity", "rate"}),
			},
		}, []string{"items"}),
		Meta: outputTemplateMeta,
		Handler: func(ctx context.Context, args json.RawMessage) (*ToolResult, error) {
			var in struct {
				Items []appinvoice.LineItemInput `json:"items"`
			}
			if err := decodeArgs(args, &in); err != nil {
				return nil, err
			}
			env, err := svc.SetItems(ctx, in.Items)
			if err != nil {
				return nil, err
			}
			return envelopeResult(env), nil
		},
	})

	s.RegisterResource(Resource{
		URI:      WidgetURI,
		Name:     "invoice-widget",
		MimeType: widgetMimeType,
		Meta: map[string]interface{}{
			"openai/widgetPrefersBorder": true,
		},
		Reader: func(ctx context.Context) (string, error) {
			return widgetHTML, nil
		},
	})

	return s
}

// envelopeResult maps an operation envelope to a tool result: the
// acknowledgment as display text, the full document as structured
// content keyed the way the widget reads it.
func envelopeResult(env *appinvoice.Envelope) *ToolResult {
	return &ToolResult{
		Content: []Content{TextContent(env.Acknowledgment)},
		StructuredContent: map[string]interface{}{
			"invoice": env.Document,
		},
	}
}

// decodeArgs unmarshals tool arguments, turning type mismatches into
// validation errors naming the offending field.
func decodeArgs(args json.RawMessage, dst interface{}) error {
	if err := json.Unmarshal(args, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "arguments"
			}
			return shared.NewValidationError(field, fmt.Sprintf("must be of type %s", typeErr.Type))
		}
		return shared.NewDomainError(shared.CodeValidation, "malformed tool arguments")
	}
	return nil
}

// objectSchema builds a JSON Schema object with the given properties.
func objectSchema(props map[string]interface{}, required []string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func partySchema() map[string]interface{} {
	return objectSchema(map[string]interface{}{
		"name":    stringProp("Display name"),
		"address": stringProp("Postal address, may span multiple lines"),
		"email":   stringProp("Contact email address"),
	}, nil)
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{"type": "number", "description": description}
}
