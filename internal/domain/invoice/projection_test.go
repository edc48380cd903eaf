package invoice

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemAmount(t *testing.T) {
	tests := []struct {
		name     string
		item     LineItem
		expected string
	}{
		{"whole numbers", LineItem{Quantity: 3, Rate: 1500}, "4500"},
		{"fractional quantity", LineItem{Quantity: 2.5, Rate: 100}, "250"},
		{"fractional rate", LineItem{Quantity: 3, Rate: 19.99}, "59.97"},
		{"zero quantity", LineItem{Quantity: 0, Rate: 1500}, "0"},
		{"negative quantity accepted", LineItem{Quantity: -1, Rate: 100}, "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expected, err := decimal.NewFromString(tt.expected)
			require.NoError(t, err)
			assert.True(t, ItemAmount(tt.item).Equal(expected),
				"got %s, want %s", ItemAmount(tt.item), expected)
		})
	}
}

func TestTotal(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	t.Run("empty document totals zero", func(t *testing.T) {
		doc := NewDocument(now)
		assert.True(t, Total(doc).IsZero())
	})

	t.Run("sum of line amounts", func(t *testing.T) {
		doc := NewDocument(now)
		doc.ReplaceItems([]LineItem{
			{Description: "Design", Quantity: 3, Rate: 1500},
			{Description: "Dev", Quantity: 10, Rate: 2000},
		})

		assert.True(t, Total(doc).Equal(decimal.NewFromInt(24500)))
	})

	t.Run("recomputed after replace", func(t *testing.T) {
		doc := NewDocument(now)
		doc.ReplaceItems([]LineItem{{Description: "Design", Quantity: 3, Rate: 1500}})
		doc.ReplaceItems([]LineItem{{Description: "Audit", Quantity: 1, Rate: 500}})

		assert.True(t, Total(doc).Equal(decimal.NewFromInt(500)))
	})
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		amount   string
		expected string
	}{
		{"INR with grouping", "INR", "24500", "₹24,500.00"},
		{"USD", "USD", "1234.5", "$1,234.50"},
		{"EUR", "EUR", "0", "€0.00"},
		{"millions", "USD", "1234567.891", "$1,234,567.89"},
		{"negative", "USD", "-42", "$-42.00"},
		{"unknown code falls back to code prefix", "ZZZ", "10", "ZZZ 10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, FormatAmount(tt.code, v))
		})
	}
}

func TestProject(t *testing.T) {
	now := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	t.Run("fresh document projects placeholders", func(t *testing.T) {
		doc := NewDocument(now)
		p := Project(doc)

		assert.Equal(t, DisplayField{Text: "INV-001"}, p.Number)
		assert.Equal(t, DisplayField{Text: "[Sender Name]", Placeholder: true}, p.Sender.Name)
		assert.Equal(t, DisplayField{Text: "[Client Email]", Placeholder: true}, p.Client.Email)
		assert.Empty(t, p.Items)
		assert.True(t, p.Total.IsZero())
		assert.Equal(t, "₹0.00", p.TotalText)
	})

	t.Run("filled fields project verbatim", func(t *testing.T) {
		doc := NewDocument(now)
		doc.Sender = Party{Name: "Alice", Address: "1 Main St", Email: "alice@example.com"}
		p := Project(doc)

		assert.Equal(t, DisplayField{Text: "Alice"}, p.Sender.Name)
		assert.False(t, p.Sender.Address.Placeholder)
	})

	t.Run("per-item amounts and total", func(t *testing.T) {
		doc := NewDocument(now)
		doc.ReplaceItems([]LineItem{
			{Description: "Design", Quantity: 3, Rate: 1500},
			{Description: "Dev", Quantity: 10, Rate: 2000},
		})
		p := Project(doc)

		require.Len(t, p.Items, 2)
		assert.True(t, p.Items[0].Amount.Equal(decimal.NewFromInt(4500)))
		assert.True(t, p.Items[1].Amount.Equal(decimal.NewFromInt(20000)))
		assert.Equal(t, "₹4,500.00", p.Items[0].AmountText)
		assert.Equal(t, "₹1,500.00", p.Items[0].RateText)
		assert.True(t, p.Total.Equal(decimal.NewFromInt(24500)))
		assert.Equal(t, "₹24,500.00", p.TotalText)
	})

	t.Run("projection does not mutate the document", func(t *testing.T) {
		doc := NewDocument(now)
		doc.ReplaceItems([]LineItem{{Description: "Design", Quantity: 3, Rate: 1500}})
		before := doc.Clone()

		_ = Project(doc)

		assert.Equal(t, before, doc)
	})
}
