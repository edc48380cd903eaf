package invoice

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display placeholders shown in place of fields the user has not filled
// in yet. They are visually and semantically distinct from real content
// so that "blank" reads as "not yet provided" rather than "deleted".
const (
	PlaceholderNumber        = "---"
	PlaceholderSenderName    = "[Sender Name]"
	PlaceholderSenderAddress = "[Sender Address]"
	PlaceholderSenderEmail   = "[Sender Email]"
	PlaceholderClientName    = "[Client Name]"
	PlaceholderClientAddress = "[Client Address]"
	PlaceholderClientEmail   = "[Client Email]"
)

// DisplayField is a rendered text field together with a flag marking
// whether the text is a placeholder for missing content.
type DisplayField struct {
	Text        string `json:"text"`
	Placeholder bool   `json:"placeholder"`
}

// ProjectedItem is a line item enriched with its derived amount and
// formatted display strings.
type ProjectedItem struct {
	Description string          `json:"description"`
	Quantity    float64         `json:"quantity"`
	Rate        float64         `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	RateText    string          `json:"rateText"`
	AmountText  string          `json:"amountText"`
}

// ProjectedParty is a party block rendered for display, with
// placeholders substituted for blank fields.
type ProjectedParty struct {
	Name    DisplayField `json:"name"`
	Address DisplayField `json:"address"`
	Email   DisplayField `json:"email"`
}

// Projection is the pure derivation of display totals and formatted
// strings from a document. Nothing here is ever cached on the document;
// every call recomputes from current state.
type Projection struct {
	Number    DisplayField    `json:"number"`
	Date      string          `json:"date"`
	DueDate   string          `json:"dueDate"`
	Currency  string          `json:"currency"`
	Sender    ProjectedParty  `json:"sender"`
	Client    ProjectedParty  `json:"client"`
	Items     []ProjectedItem `json:"items"`
	Total     decimal.Decimal `json:"total"`
	TotalText string          `json:"totalText"`
	Notes     string          `json:"notes"`
}

// Project derives the projection from a document.
func Project(d *Document) Projection {
	items := make([]ProjectedItem, len(d.Items))
	total := decimal.Zero
	for i, it := range d.Items {
		amount := ItemAmount(it)
		total = total.Add(amount)
		items[i] = ProjectedItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      amount,
			RateText:    FormatAmount(d.Currency, decimal.NewFromFloat(it.Rate)),
			AmountText:  FormatAmount(d.Currency, amount),
		}
	}

	return Projection{
		Number:    displayOr(d.Number, PlaceholderNumber),
		Date:      d.Date,
		DueDate:   d.DueDate,
		Currency:  d.Currency,
		Sender:    projectParty(d.Sender, PlaceholderSenderName, PlaceholderSenderAddress, PlaceholderSenderEmail),
		Client:    projectParty(d.Client, PlaceholderClientName, PlaceholderClientAddress, PlaceholderClientEmail),
		Items:     items,
		Total:     total,
		TotalText: FormatAmount(d.Currency, total),
		Notes:     d.Notes,
	}
}

// ItemAmount computes a line item's amount as quantity * rate.
func ItemAmount(it LineItem) decimal.Decimal {
	return decimal.NewFromFloat(it.Quantity).Mul(decimal.NewFromFloat(it.Rate))
}

// Total computes the document total as the sum of all line amounts.
func Total(d *Document) decimal.Decimal {
	total := decimal.Zero
	for _, it := range d.Items {
		total = total.Add(ItemAmount(it))
	}
	return total
}

// FormatAmount formats a monetary amount with the currency's symbol,
// thousand separators and exactly two fractional digits.
// Example: ("INR", 24500) -> "₹24,500.00"
func FormatAmount(code string, v decimal.Decimal) string {
	return currencySymbol(code) + formatGrouped(v)
}

// symbolPrinter resolves currency symbols the way the widget's
// en-US number formatting does.
var symbolPrinter = message.NewPrinter(language.English)

// currencySymbol resolves the display symbol for an ISO 4217 code.
// Unknown codes fall back to the code itself followed by a space.
func currencySymbol(code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " "
	}
	return symbolPrinter.Sprintf("%v", currency.Symbol(unit))
}

// formatGrouped renders a decimal with two fixed fraction digits and
// comma thousand separators. Example: 1234.5 -> "1,234.50"
func formatGrouped(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Abs()
	}

	parts := strings.Split(v.StringFixed(2), ".")
	intPart := parts[0]
	decPart := "00"
	if len(parts) > 1 {
		decPart = parts[1]
	}

	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}

	return sign + result.String() + "." + decPart
}

// projectParty renders a party block, substituting placeholders for
// blank fields.
func projectParty(p Party, namePH, addressPH, emailPH string) ProjectedParty {
	return ProjectedParty{
		Name:    displayOr(p.Name, namePH),
		Address: displayOr(p.Address, addressPH),
		Email:   displayOr(p.Email, emailPH),
	}
}

func displayOr(value, placeholder string) DisplayField {
	if value == "" {
		return DisplayField{Text: placeholder, Placeholder: true}
	}
	return DisplayField{Text: value}
}
