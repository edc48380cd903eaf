// Package widget carries the static rendering shell for the invoice
// view. The shell is fixed for the process lifetime; document state is
// injected at runtime through tool result envelopes or the initial
// state endpoint, never baked into this file.
package widget

import _ "embed"

//go:embed invoice.html
var HTML string
