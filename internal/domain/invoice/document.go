package invoice

import (
	"time"
)

// Default values for a freshly created document
const (
	DefaultNumber   = "INV-001"
	DefaultCurrency = "INR"
	DefaultNetDays  = 14
)

// DateLayout is the wire format for invoice dates.
// Dates are carried as plain strings and are not validated as real
// calendar dates at this layer.
const DateLayout = "2006-01-02"

// Party represents a sender or client contact block on the invoice.
// All fields are optional; address may embed line breaks which are
// preserved verbatim.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// LineItem represents one billable entry on the invoice.
// Quantity and rate are unconstrained at this layer; negative and zero
// values are accepted. The line amount (quantity * rate) is never
// stored, it is derived by the projection.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Rate        float64 `json:"rate"`
}

// Document is the single invoice record, the system's entire state.
// It is created once at process start and mutated only through the
// operation set.
type Document struct {
	Number   string     `json:"number"`
	Date     string     `json:"date"`
	DueDate  string     `json:"dueDate"`
	Currency string     `json:"currency"`
	Sender   Party      `json:"sender"`
	Client   Party      `json:"client"`
	Items    []LineItem `json:"items"`
	Notes    string     `json:"notes"`
}

// NewDocument creates the default document for a process started at the
// given instant: today's date, due in DefaultNetDays days, no parties,
// no items.
func NewDocument(now time.Time) *Document {
	return NewDocumentWith(now, DefaultNumber, DefaultCurrency, DefaultNetDays)
}

// NewDocumentWith creates the default document with configured initial
// number, currency and payment terms. Zero values fall back to the
// package defaults.
func NewDocumentWith(now time.Time, number, currency string, netDays int) *Document {
	if number == "" {
		number = DefaultNumber
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	if netDays <= 0 {
		netDays = DefaultNetDays
	}
	return &Document{
		Number:   number,
		Date:     now.Format(DateLayout),
		DueDate:  now.AddDate(0, 0, netDays).Format(DateLayout),
		Currency: currency,
		Items:    []LineItem{},
	}
}

// Clone returns a deep copy of the document. Operations hand copies to
// callers so no shared mutable reference ever leaves the owning service.
func (d *Document) Clone() *Document {
	c := *d
	c.Items = make([]LineItem, len(d.Items))
	copy(c.Items, d.Items)
	return &c
}

// MetadataPatch is a partial update of the document's top-level metadata.
// Nil fields are left untouched by Apply.
type MetadataPatch struct {
	Number  *string `json:"number"`
	Date    *string `json:"date"`
	DueDate *string `json:"dueDate"`
	Notes   *string `json:"notes"`
}

// ApplyMetadata merges the patch into the document, field by field.
// Absent (nil) fields pass through unchanged.
func (d *Document) ApplyMetadata(p MetadataPatch) {
	if p.Number != nil {
		d.Number = *p.Number
	}
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.DueDate != nil {
		d.DueDate = *p.DueDate
	}
	if p.Notes != nil {
		d.Notes = *p.Notes
	}
}

// PartyPatch is a partial update of a sender or client block.
// Nil fields are left untouched by Apply.
type PartyPatch struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

// Apply merges the patch into the party, field by field.
func (p *Party) Apply(patch PartyPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
}

// ReplaceItems replaces the item list wholesale. The prior sequence is
// discarded; ordering of the new list is preserved exactly. Items carry
// no persistent identity across calls.
func (d *Document) ReplaceItems(items []LineItem) {
	d.Items = make([]LineItem, len(items))
	copy(d.Items, items)
}
