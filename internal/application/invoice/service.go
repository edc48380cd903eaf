package invoice

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/invoicedesk/backend/internal/domain/invoice"
	"github.com/invoicedesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Envelope is the response package returned after every successful
// operation: a short human-readable acknowledgment plus the complete
// current document. It always carries the entire document, never a
// diff, so any observer can re-render from the latest envelope alone.
type Envelope struct {
	Acknowledgment string            `json:"acknowledgment"`
	Document       *invoice.Document `json:"document"`
}

// LineItemInput is one element of a set_items call. All three fields
// are required; pointers distinguish "absent" from zero values.
type LineItemInput struct {
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	Rate        *float64 `json:"rate"`
}

// DocumentService owns the single invoice document and exposes the
// operation set as its only mutation surface. All operations are
// serialized by a mutation lock; each one validates its input fully
// before touching the document, so a failed call leaves the document
// unchanged.
type DocumentService struct {
	mu       sync.Mutex
	doc      *invoice.Document
	validate *validator.Validate
	logger   *zap.Logger
}

// NewDocumentService creates a DocumentService owning the given document.
func NewDocumentService(doc *invoice.Document, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		doc:      doc,
		validate: validator.New(),
		logger:   logger,
	}
}

// Current returns a copy of the document as it stands. This is the
// initial-state channel for a rendering surface that attaches after
// operations have already happened.
func (s *DocumentService) Current() *invoice.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// CurrentProjection derives display totals and formatted strings from
// the current document.
func (s *DocumentService) CurrentProjection() invoice.Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return invoice.Project(s.doc)
}

// UpdateMetadata merges the supplied metadata fields into the document.
// Fields absent from the patch keep their prior value.
func (s *DocumentService) UpdateMetadata(ctx context.Context, patch invoice.MetadataPatch) (*Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.ApplyMetadata(patch)
	s.logger.Info("invoice metadata updated", zap.String("number", s.doc.Number))
	return s.envelope("Updated invoice metadata."), nil
}

// UpdateSender merges the supplied fields into the sender party.
// A supplied email must be syntactically valid.
func (s *DocumentService) UpdateSender(ctx context.Context, patch invoice.PartyPatch) (*Envelope, error) {
	if err := s.validatePartyPatch(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Sender.Apply(patch)
	s.logger.Info("invoice sender updated", zap.String("name", s.doc.Sender.Name))
	return s.envelope("Updated sender details."), nil
}

// UpdateClient merges the supplied fields into the client party.
// A supplied email must be syntactically valid.
func (s *DocumentService) UpdateClient(ctx context.Context, patch invoice.PartyPatch) (*Envelope, error) {
	if err := s.validatePartyPatch(patch); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Client.Apply(patch)
	s.logger.Info("invoice client updated", zap.String("name", s.doc.Client.Name))
	return s.envelope("Updated client details."), nil
}

// SetItems replaces the item list wholesale. Every element must carry
// description, quantity and rate; the first offending element is named
// in the validation error and nothing is applied.
func (s *DocumentService) SetItems(ctx context.Context, items []LineItemInput) (*Envelope, error) {
	if items == nil {
		return nil, shared.NewValidationError("items", "is required")
	}

	replacement := make([]invoice.LineItem, len(items))
	for i, in := range items {
		switch {
		case in.Description == nil:
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].description", i), "is required")
		case in.Quantity == nil:
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "is required")
		case in.Rate == nil:
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].rate", i), "is required")
		}
		replacement[i] = invoice.LineItem{
			Description: *in.Description,
			Quantity:    *in.Quantity,
			Rate:        *in.Rate,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.ReplaceItems(replacement)
	s.logger.Info("invoice items replaced", zap.Int("count", len(replacement)))
	return s.envelope(fmt.Sprintf("Updated invoice with %d items.", len(replacement))), nil
}

// validatePartyPatch checks the email field when supplied. An explicit
// empty string counts as supplied and is rejected, matching the rule
// that a present email must always be syntactically valid.
func (s *DocumentService) validatePartyPatch(patch invoice.PartyPatch) error {
	if patch.Email == nil {
		return nil
	}
	if err := s.validate.Var(*patch.Email, "required,email"); err != nil {
		return shared.NewValidationError("email", "must be a valid email address")
	}
	return nil
}

// envelope builds the post-mutation response. Callers must hold the
// mutation lock.
func (s *DocumentService) envelope(ack string) *Envelope {
	return &Envelope{
		Acknowledgment: ack,
		Document:       s.doc.Clone(),
	}
}
