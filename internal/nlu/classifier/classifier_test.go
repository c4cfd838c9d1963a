package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finchat/internal/models"
)

func tickerEntity(value string) models.Entity {
	return models.Entity{
		Type: models.EntityTicker, Text: value, Value: value,
		Start: 0, End: len(value), Confidence: 1.0,
	}
}

// ==========================
// Core Classification Tests
// ==========================

func TestClassifier_Classify(t *testing.T) {
	c := New(Config{})

	tests := []struct {
		name            string
		text            string
		entities        []models.Entity
		expectedIntent  models.Intent
		expectedConf    float64
		expectedPattern string
	}{
		{
			name:            "stock price with ticker gets entity bonus",
			text:            "What's the price of AAPL?",
			entities:        []models.Entity{tickerEntity("AAPL")},
			expectedIntent:  models.IntentStockPrice,
			expectedConf:    0.8,
			expectedPattern: "price",
		},
		{
			name:            "stock price without entities stays at base weight",
			text:            "What's the price?",
			entities:        nil,
			expectedIntent:  models.IntentStockPrice,
			expectedConf:    0.55,
			expectedPattern: "price",
		},
		{
			name:            "longest matching pattern is reported",
			text:            "what is the stock price of AAPL",
			entities:        []models.Entity{tickerEntity("AAPL")},
			expectedIntent:  models.IntentStockPrice,
			expectedConf:    0.8,
			expectedPattern: "stock price",
		},
		{
			name: "market summary with date range entity",
			text: "How's the market today?",
			entities: []models.Entity{
				{Type: models.EntityDateRange, Text: "today", Value: "today", Confidence: 1.0},
			},
			expectedIntent:  models.IntentMarketSummary,
			expectedConf:    0.85,
			expectedPattern: "market",
		},
		{
			name:            "portfolio view",
			text:            "Show me my portfolio",
			expectedIntent:  models.IntentPortfolioView,
			expectedConf:    0.65,
			expectedPattern: "portfolio",
		},
		{
			name:            "advice intent ignores unrelated entity types",
			text:            "Should I invest in TSLA?",
			entities:        []models.Entity{tickerEntity("TSLA")},
			expectedIntent:  models.IntentFinancialAdvice,
			expectedConf:    0.6,
			expectedPattern: "should i invest",
		},
		{
			name:            "general question",
			text:            "What is a dividend?",
			expectedIntent:  models.IntentGeneralQuestion,
			expectedConf:    0.45,
			expectedPattern: "what is a",
		},
		{
			name:            "greeting",
			text:            "Hello!",
			expectedIntent:  models.IntentGreeting,
			expectedConf:    0.7,
			expectedPattern: "hello",
		},
		{
			name:            "goodbye matches the full word, not the embedded bye",
			text:            "Goodbye",
			expectedIntent:  models.IntentGoodbye,
			expectedConf:    0.7,
			expectedPattern: "goodbye",
		},
		{
			name:           "gibberish resolves to unknown with zero confidence",
			text:           "asdf qwerty zxcv",
			expectedIntent: models.IntentUnknown,
			expectedConf:   0,
		},
		{
			name:           "pattern embedded inside a word does not match",
			text:           "this is something",
			expectedIntent: models.IntentUnknown,
			expectedConf:   0,
		},
		{
			name:           "empty text",
			text:           "",
			expectedIntent: models.IntentUnknown,
			expectedConf:   0,
		},
		{
			name:            "punctuation and case are ignored",
			text:            "PRICE... of AAPL???",
			entities:        []models.Entity{tickerEntity("AAPL")},
			expectedIntent:  models.IntentStockPrice,
			expectedConf:    0.8,
			expectedPattern: "price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text, tt.entities)

			assert.Equal(t, tt.expectedIntent, got.Intent)
			assert.InDelta(t, tt.expectedConf, got.Confidence, 1e-9)
			assert.Equal(t, tt.expectedPattern, got.MatchedPattern)
		})
	}
}

// ==========================
// Scoring Rule Tests
// ==========================

func TestClassifier_BelowThresholdKeepsRawScore(t *testing.T) {
	rules := []Rule{
		{Intent: models.IntentGeneralQuestion, Patterns: []string{"maybe"}, Weight: 0.2},
	}
	c := NewWithRules(rules, Config{})

	got := c.Classify("maybe later", nil)

	assert.Equal(t, models.IntentUnknown, got.Intent)
	assert.InDelta(t, 0.2, got.Confidence, 1e-9)
	assert.Equal(t, "maybe", got.MatchedPattern)
}

func TestClassifier_TieKeepsEarlierRule(t *testing.T) {
	rules := []Rule{
		{Intent: models.IntentStockPrice, Patterns: []string{"alpha"}, Weight: 0.6},
		{Intent: models.IntentMarketSummary, Patterns: []string{"alpha"}, Weight: 0.6},
	}
	c := NewWithRules(rules, Config{})

	got := c.Classify("alpha", nil)

	assert.Equal(t, models.IntentStockPrice, got.Intent)
}

func TestClassifier_HigherScoreWinsRegardlessOfOrder(t *testing.T) {
	c := New(Config{})

	// "price" (0.55, no entity) loses to "market" (0.6) even though the
	// stock price rule comes first in the table.
	got := c.Classify("price action across the market", nil)

	assert.Equal(t, models.IntentMarketSummary, got.Intent)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)
}

func TestClassifier_ConfidenceCappedAtOne(t *testing.T) {
	rules := []Rule{
		{
			Intent:           models.IntentStockPrice,
			Patterns:         []string{"quote"},
			Weight:           0.9,
			ExpectedEntities: []models.EntityType{models.EntityTicker},
		},
	}
	c := NewWithRules(rules, Config{})

	got := c.Classify("quote please", []models.Entity{tickerEntity("AAPL")})

	assert.Equal(t, 1.0, got.Confidence)
}

func TestClassifier_CustomThreshold(t *testing.T) {
	c := New(Config{Threshold: 0.5})

	got := c.Classify("what is a bond", nil)

	// the general question base weight 0.45 sits under the raised threshold
	assert.Equal(t, models.IntentUnknown, got.Intent)
	assert.InDelta(t, 0.45, got.Confidence, 1e-9)
	assert.Equal(t, 0.5, c.Threshold())
}

func TestClassifier_Deterministic(t *testing.T) {
	c := New(Config{})
	entities := []models.Entity{tickerEntity("MSFT")}

	first := c.Classify("how much is MSFT worth", entities)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify("how much is MSFT worth", entities))
	}
}

// ==========================
// Benchmark Tests
// ==========================

func BenchmarkClassifier_Classify(b *testing.B) {
	c := New(Config{})
	entities := []models.Entity{tickerEntity("AAPL")}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Classify("What's the stock price of AAPL today?", entities)
	}
}
