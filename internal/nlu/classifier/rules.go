package classifier

import "finchat/internal/models"

// Rule ties an intent to its trigger patterns. Patterns are lowercase
// token phrases matched against the normalized message; Weight is the base
// confidence a match contributes. ExpectedEntities lists entity types whose
// presence earns the entity bonus.
type Rule struct {
	Intent           models.Intent
	Patterns         []string
	Weight           float64
	ExpectedEntities []models.EntityType
}

// DefaultRules is the built-in trigger table. Order is the fixed tie-break
// priority: domain intents first, then greetings, then goodbyes. UNKNOWN
// has no rule; it is the below-threshold outcome.
func DefaultRules() []Rule {
	return []Rule{
		{
			Intent: models.IntentStockPrice,
			Patterns: []string{
				"price", "stock price", "share price", "trading at",
				"quote", "how much is", "worth", "valued at",
			},
			Weight:           0.55,
			ExpectedEntities: []models.EntityType{models.EntityTicker, models.EntityCompany},
		},
		{
			Intent: models.IntentMarketSummary,
			Patterns: []string{
				"market", "markets", "s p 500", "dow", "dow jones",
				"nasdaq", "indices", "index", "market summary",
			},
			Weight:           0.6,
			ExpectedEntities: []models.EntityType{models.EntityDateRange},
		},
		{
			Intent: models.IntentPortfolioView,
			Patterns: []string{
				"portfolio", "my balance", "my investments", "my holdings",
				"my positions", "my performance", "how are my",
			},
			Weight: 0.65,
		},
		{
			Intent: models.IntentFinancialAdvice,
			Patterns: []string{
				"should i invest", "should i buy", "should i sell",
				"advice", "advise", "recommend", "strategy",
				"diversify", "retirement", "retire",
			},
			Weight: 0.6,
		},
		{
			Intent: models.IntentGeneralQuestion,
			Patterns: []string{
				"what is a", "what is an", "what are", "explain",
				"how do", "how does", "define", "meaning of",
			},
			Weight: 0.45,
		},
		{
			Intent: models.IntentGreeting,
			Patterns: []string{
				"hello", "hi", "hey", "good morning", "good afternoon",
				"good evening", "greetings",
			},
			Weight: 0.7,
		},
		{
			Intent: models.IntentGoodbye,
			Patterns: []string{
				"bye", "goodbye", "see you later", "see you", "farewell",
				"thanks bye",
			},
			Weight: 0.7,
		},
	}
}
