package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finchat/internal/models"
	"finchat/internal/symbols"
)

func newTestExtractor() *Extractor {
	return New(symbols.NewStatic())
}

// ==========================
// Core Extraction Tests
// ==========================

func TestExtractor_Extract(t *testing.T) {
	ex := newTestExtractor()

	tests := []struct {
		name     string
		text     string
		expected []models.Entity
	}{
		{
			name: "known ticker",
			text: "What's the price of AAPL?",
			expected: []models.Entity{
				{Type: models.EntityTicker, Text: "AAPL", Value: "AAPL", Confidence: 1.0},
			},
		},
		{
			name: "company name with percent and date phrase",
			text: "Apple is up 5% today",
			expected: []models.Entity{
				{Type: models.EntityCompany, Text: "Apple", Value: "AAPL", Confidence: 1.0},
				{Type: models.EntityPercent, Text: "5%", Value: "5", Confidence: 1.0},
				{Type: models.EntityDateRange, Text: "today", Value: "today", Confidence: 1.0},
			},
		},
		{
			name: "dollar amount with thousands separator and ISO date",
			text: "I invested $1,250.50 in MSFT on 2024-01-31",
			expected: []models.Entity{
				{Type: models.EntityAmount, Text: "$1,250.50", Value: "1250.50", Confidence: 1.0},
				{Type: models.EntityTicker, Text: "MSFT", Value: "MSFT", Confidence: 1.0},
				{Type: models.EntityDateRange, Text: "2024-01-31", Value: "2024-01-31", Confidence: 1.0},
			},
		},
		{
			name: "worded amount and percent",
			text: "Moving 100 bucks, maybe 3.5 percent of my cash",
			expected: []models.Entity{
				{Type: models.EntityAmount, Text: "100 bucks", Value: "100", Confidence: 1.0},
				{Type: models.EntityPercent, Text: "3.5 percent", Value: "3.5", Confidence: 1.0},
			},
		},
		{
			name: "relative day range",
			text: "Show performance over the last 30 days",
			expected: []models.Entity{
				{Type: models.EntityDateRange, Text: "last 30 days", Value: "last_30_days", Confidence: 1.0},
			},
		},
		{
			name: "year to date phrase",
			text: "How did the market do year to date?",
			expected: []models.Entity{
				{Type: models.EntityDateRange, Text: "year to date", Value: "year_to_date", Confidence: 1.0},
			},
		},
		{
			name: "unknown uppercase token falls back to ticker",
			text: "Any news on ZZZZ?",
			expected: []models.Entity{
				{Type: models.EntityTicker, Text: "ZZZZ", Value: "ZZZZ", Confidence: FallbackTickerConfidence},
			},
		},
		{
			name: "dotted symbol survives tokenization",
			text: "BRK.B closed higher",
			expected: []models.Entity{
				{Type: models.EntityTicker, Text: "BRK.B", Value: "BRK.B", Confidence: 1.0},
			},
		},
		{
			name:     "stopword acronyms produce nothing",
			text:     "The CEO spoke to US media about the IPO",
			expected: []models.Entity{},
		},
		{
			name:     "empty text",
			text:     "",
			expected: []models.Entity{},
		},
		{
			name:     "whitespace only",
			text:     "   \t  ",
			expected: []models.Entity{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ex.Extract(tt.text)

			assert.Equal(t, len(tt.expected), len(got), "entity count for %q: %v", tt.text, got)
			for i, want := range tt.expected {
				if i >= len(got) {
					break
				}
				assert.Equal(t, want.Type, got[i].Type)
				assert.Equal(t, want.Text, got[i].Text)
				assert.Equal(t, want.Value, got[i].Value)
				assert.Equal(t, want.Confidence, got[i].Confidence)
			}
		})
	}
}

// ==========================
// Overlap Resolution Tests
// ==========================

func TestExtractor_OverlapResolution(t *testing.T) {
	ex := newTestExtractor()

	t.Run("ticker beats company on the same span", func(t *testing.T) {
		got := ex.Extract("Is META a buy?")

		assert.Equal(t, 1, len(got))
		assert.Equal(t, models.EntityTicker, got[0].Type)
		assert.Equal(t, "META", got[0].Value)
		assert.Equal(t, 1.0, got[0].Confidence)
	})

	t.Run("amount claims the currency word before the fallback ticker", func(t *testing.T) {
		got := ex.Extract("They paid 150 USD per share")

		assert.Equal(t, 1, len(got))
		assert.Equal(t, models.EntityAmount, got[0].Type)
		assert.Equal(t, "150 USD", got[0].Text)
		assert.Equal(t, "150", got[0].Value)
	})

	t.Run("longest company phrase wins over its alias", func(t *testing.T) {
		got := ex.Extract("Thoughts on JPMorgan Chase earnings?")

		assert.Equal(t, 1, len(got))
		assert.Equal(t, models.EntityCompany, got[0].Type)
		assert.Equal(t, "JPMorgan Chase", got[0].Text)
		assert.Equal(t, "JPM", got[0].Value)
	})

	t.Run("single-letter symbol requires uppercase", func(t *testing.T) {
		upper := ex.Extract("Add V to the watchlist")
		assert.Equal(t, 1, len(upper))
		assert.Equal(t, models.EntityTicker, upper[0].Type)
		assert.Equal(t, "V", upper[0].Value)

		lower := ex.Extract("add v to the watchlist")
		assert.Equal(t, 0, len(lower))
	})
}

// ==========================
// Invariant Tests
// ==========================

func TestExtractor_SpanInvariants(t *testing.T) {
	ex := newTestExtractor()

	texts := []string{
		"What's the price of AAPL?",
		"Apple is up 5% today, Microsoft down $2.50",
		"I invested $1,250.50 in MSFT on 2024-01-31",
		"Compare Berkshire Hathaway and JPMorgan over the last 90 days",
		"¿Qué precio tiene AAPL hoy? é",
		"TSLA MSFT NVDA 5% $10 today",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			got := ex.Extract(text)

			for i, e := range got {
				// spans index the source text exactly
				assert.True(t, e.Start >= 0 && e.End <= len(text) && e.Start < e.End)
				assert.Equal(t, e.Text, text[e.Start:e.End])

				// ordered by start, pairwise non-overlapping
				if i > 0 {
					assert.GreaterOrEqual(t, e.Start, got[i-1].End,
						"entities %d and %d overlap or are unordered", i-1, i)
				}
			}
		})
	}
}

func TestExtractor_Deterministic(t *testing.T) {
	ex := newTestExtractor()
	text := "Apple and MSFT both moved 5% in the last 30 days on $1,000 volume"

	first := ex.Extract(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ex.Extract(text))
	}
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkExtractor_Extract(b *testing.B) {
	ex := newTestExtractor()
	text := "I invested $1,250.50 in MSFT and Apple moved 5% over the last 30 days"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ex.Extract(text)
	}
}
